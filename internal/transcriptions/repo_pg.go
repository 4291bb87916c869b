package transcriptions

import (
	"context"
	"database/sql"
	"errors"

	"inreader-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a transcription. The unique index on document_id turns a
// concurrent second insert into ErrConflict.
func (r *PGRepo) Create(ctx context.Context, t Transcription) error {
	const query = `
INSERT INTO transcriptions (id, document_id, text, created_at)
VALUES ($1, $2, $3, $4)`
	_, err := r.DB.ExecContext(ctx, query, t.ID, t.DocumentID, t.Text, t.CreatedAt)
	if db.IsUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// GetByID fetches a transcription by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Transcription, error) {
	const query = `SELECT id, document_id, text, created_at FROM transcriptions WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByDocument fetches the transcription of a document.
func (r *PGRepo) GetByDocument(ctx context.Context, documentID string) (Transcription, error) {
	const query = `SELECT id, document_id, text, created_at FROM transcriptions WHERE document_id = $1`
	return r.getOne(ctx, query, documentID)
}

// DeleteByDocument removes the transcription of a document; completions cascade.
func (r *PGRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM transcriptions WHERE document_id = $1`, documentID)
	return err
}

func (r *PGRepo) getOne(ctx context.Context, query string, arg string) (Transcription, error) {
	var t Transcription
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(&t.ID, &t.DocumentID, &t.Text, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Transcription{}, ErrNotFound
	}
	if err != nil {
		return Transcription{}, err
	}
	return t, nil
}

var _ Repo = (*PGRepo)(nil)
