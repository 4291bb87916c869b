package users

import (
	"context"
	"database/sql"
	"errors"

	"inreader-backend/internal/shared/storage/db"
)

const selectColumns = `id, email, name, password_hash, created_at, updated_at`

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a user.
func (r *PGRepo) Create(ctx context.Context, u User) error {
	const query = `
INSERT INTO users (id, email, name, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query, u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	return mapErr(err)
}

// GetByID fetches a user by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (User, error) {
	return r.getOne(ctx, `SELECT `+selectColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail fetches a user by e-mail, case-insensitively.
func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, `SELECT `+selectColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

// Update writes the mutable fields of a user.
func (r *PGRepo) Update(ctx context.Context, u User) error {
	const query = `
UPDATE users
SET email = $2, name = $3, password_hash = $4, updated_at = $5
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, u.ID, u.Email, u.Name, u.PasswordHash, u.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) getOne(ctx context.Context, query, arg string) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func mapErr(err error) error {
	if db.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

var _ Repo = (*PGRepo)(nil)
