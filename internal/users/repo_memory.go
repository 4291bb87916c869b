package users

import (
	"context"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]User)}
}

// Create stores a user unless the e-mail is taken.
func (r *MemoryRepo) Create(ctx context.Context, u User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTakenLocked(u.Email, u.ID) {
		return ErrEmailTaken
	}
	r.users[u.ID] = u
	return nil
}

// GetByID returns a user by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// GetByEmail returns a user by e-mail, case-insensitively.
func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

// Update replaces a stored user.
func (r *MemoryRepo) Update(ctx context.Context, u User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return ErrNotFound
	}
	if r.emailTakenLocked(u.Email, u.ID) {
		return ErrEmailTaken
	}
	r.users[u.ID] = u
	return nil
}

func (r *MemoryRepo) emailTakenLocked(email, exceptID string) bool {
	for id, u := range r.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

var _ Repo = (*MemoryRepo)(nil)
