package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inreader-backend/internal/ownership"
)

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = fmt.Errorf("user: %w", ownership.ErrMissing)
	// ErrEmailTaken is returned when another user already has the e-mail.
	ErrEmailTaken = errors.New("user: email already in use")
)

// User is an account. PasswordHash never leaves the service layer.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repo defines persistence operations for users.
type Repo interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Update(ctx context.Context, u User) error
}
