package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Report is the /health payload.
type Report struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
}

// Service encapsulates health-related checks.
type Service struct {
	DB Pinger
}

// NewService constructs a new health service. db may be nil when running on
// in-memory repositories.
func NewService(db Pinger) *Service {
	return &Service{DB: db}
}

// Status reports liveness and, when configured, database reachability.
func (s *Service) Status(ctx context.Context) Report {
	if s == nil || s.DB == nil {
		return Report{OK: true, Database: "disabled"}
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		return Report{OK: false, Database: "down"}
	}
	return Report{OK: true, Database: "up"}
}
