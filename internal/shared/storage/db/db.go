package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver
	"go.uber.org/multierr"

	"inreader-backend/internal/shared/telemetry"
)

// Options controls database pool and connectivity behavior.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	// ConnectAttempts bounds how many pings Connect tries before giving up;
	// the database container may still be starting when the API boots.
	ConnectAttempts int
	RetryDelay      time.Duration
}

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

var openDB = sql.Open

// DefaultServerOptions returns defaults for long-running server processes.
func DefaultServerOptions() Options {
	return Options{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxIdleTime: 2 * time.Minute,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
		ConnectAttempts: 5,
		RetryDelay:      time.Second,
	}
}

// DefaultMigrateOptions returns defaults for short-lived CLI migrations.
func DefaultMigrateOptions() Options {
	return Options{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxIdleTime: 2 * time.Minute,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
		ConnectAttempts: 1,
	}
}

// OptionsFromEnv overrides defaults with DB_* env vars if present.
func OptionsFromEnv(defaults Options) Options {
	opts := defaults
	if v, ok := readEnvInt("DB_MAX_OPEN_CONNS"); ok {
		opts.MaxOpenConns = v
	}
	if v, ok := readEnvInt("DB_MAX_IDLE_CONNS"); ok {
		opts.MaxIdleConns = v
	}
	if v, ok := readEnvDuration("DB_CONN_MAX_LIFETIME"); ok {
		opts.ConnMaxLifetime = v
	}
	if v, ok := readEnvDuration("DB_CONN_MAX_IDLE_TIME"); ok {
		opts.ConnMaxIdleTime = v
	}
	if v, ok := readEnvDuration("DB_PING_TIMEOUT"); ok {
		opts.PingTimeout = v
	}
	if v, ok := readEnvInt("DB_CONNECT_ATTEMPTS"); ok {
		opts.ConnectAttempts = v
	}
	return opts
}

// Connect opens a *sql.DB using the provided DATABASE_URL and verifies connectivity.
// The returned *sql.DB should be shared and re-used by callers.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	applyOptions(db, opts)

	if err := ping(ctx, db, opts); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logPoolStats(db, "db.init")
	return db, nil
}

func ping(ctx context.Context, db *sql.DB, opts Options) error {
	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	attempts := max(opts.ConnectAttempts, 1)

	var err error
	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil || attempt >= attempts {
			return err
		}
		telemetry.Warn("db.ping_retry", map[string]any{"attempt": attempt, "of": attempts, "error": err})
		select {
		case <-ctx.Done():
			return multierr.Append(err, ctx.Err())
		case <-time.After(opts.RetryDelay * time.Duration(attempt)):
		}
	}
}

func applyOptions(db *sql.DB, opts Options) {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 5
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = time.Hour
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

func logPoolStats(db *sql.DB, label string) {
	stats := db.Stats()
	telemetry.Info(label, map[string]any{
		"open":     stats.OpenConnections,
		"in_use":   stats.InUse,
		"idle":     stats.Idle,
		"wait":     stats.WaitCount,
		"max_open": stats.MaxOpenConnections,
	})
}

func readEnvInt(key string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": key, "error": err})
		return 0, false
	}
	return val, true
}

func readEnvDuration(key string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": key, "error": err})
		return 0, false
	}
	return val, true
}
