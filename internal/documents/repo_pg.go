package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, user_id, key, mime_type, status, processed_at, created_at`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (id, user_id, key, mime_type, status, processed_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.UserID,
		doc.Key,
		doc.MimeType,
		doc.Status,
		nullTime(doc.ProcessedAt),
		doc.CreatedAt,
	)
	return err
}

// GetByID fetches a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	query := `SELECT ` + selectColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return doc, err
}

// ListByUser lists documents ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	query := `SELECT ` + selectColumns + ` FROM documents WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// MarkDone moves a non-DONE document to DONE.
func (r *PGRepo) MarkDone(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `
UPDATE documents
SET status = 'DONE', processed_at = $2
WHERE id = $1 AND status <> 'DONE'`
	return changed(r.DB.ExecContext(ctx, query, id, at))
}

// MarkFailed moves a non-DONE document to FAILED.
func (r *PGRepo) MarkFailed(ctx context.Context, id string) (bool, error) {
	const query = `
UPDATE documents
SET status = 'FAILED', processed_at = NULL
WHERE id = $1 AND status <> 'DONE'`
	return changed(r.DB.ExecContext(ctx, query, id))
}

func changed(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes a document; transcriptions and completions cascade.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var processedAt sql.NullTime
	if err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Key,
		&doc.MimeType,
		&doc.Status,
		&processedAt,
		&doc.CreatedAt,
	); err != nil {
		return Document{}, err
	}
	if processedAt.Valid {
		doc.ProcessedAt = &processedAt.Time
	}
	return doc, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
