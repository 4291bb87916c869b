package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"inreader-backend/internal/ownership"
	"inreader-backend/internal/shared/apperr"
	"inreader-backend/internal/shared/auth"
	"inreader-backend/internal/shared/telemetry"
)

const emailTakenMessage = "E-mail already in use"

// Service contains account logic.
type Service struct {
	Repo  Repo
	Now   func() time.Time
	NewID func() string
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Create registers a user with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, req CreateRequest) (User, error) {
	email := normalizeEmail(req.Email)
	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return User{}, apperr.Conflict(emailTakenMessage)
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, apperr.Internal(err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return User{}, apperr.Internal(err)
	}
	now := s.now()
	u := User{
		ID:           s.newID(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return User{}, apperr.Conflict(emailTakenMessage)
		}
		return User{}, apperr.Internal(err)
	}
	telemetry.Info("user.created", map[string]any{"user_id": u.ID})
	return u, nil
}

// Get returns the caller's own user.
func (s *Service) Get(ctx context.Context, callerID, id string) (User, error) {
	return s.owned(ctx, ownership.UserAccess, callerID, id)
}

func (s *Service) owned(ctx context.Context, rule ownership.Rule, callerID, id string) (User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err := rule.Verify(callerID, u.ID, err); err != nil {
		if _, ok := apperr.As(err); !ok {
			return User{}, apperr.Internal(err)
		}
		return User{}, err
	}
	return u, nil
}

// Update changes the caller's own name, e-mail or password.
func (s *Service) Update(ctx context.Context, callerID, id string, req UpdateRequest) (User, error) {
	u, err := s.owned(ctx, ownership.UserUpdate, callerID, id)
	if err != nil {
		return User{}, err
	}
	if req.Email != nil {
		u.Email = normalizeEmail(*req.Email)
	}
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return User{}, apperr.Internal(err)
		}
		u.PasswordHash = hash
	}
	u.UpdatedAt = s.now()

	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return User{}, apperr.Conflict(emailTakenMessage)
		}
		return User{}, apperr.Internal(err)
	}
	return u, nil
}

// Authenticate returns the user matching the credentials. Unknown e-mails
// and wrong passwords fail identically.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return User{}, apperr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return User{}, apperr.Internal(err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return User{}, apperr.Unauthorized("Invalid credentials")
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
