package aicompletions

import (
	"context"
	"database/sql"
	"errors"
)

const selectColumns = `id, transcription_id, prompt, response, tokens_used, created_at`

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a completion.
func (r *PGRepo) Create(ctx context.Context, c AiCompletion) error {
	const query = `
INSERT INTO ai_completions (id, transcription_id, prompt, response, tokens_used, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query, c.ID, c.TranscriptionID, c.Prompt, c.Response, nullInt(c.TokensUsed), c.CreatedAt)
	return err
}

// GetByID fetches a completion by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (AiCompletion, error) {
	query := `SELECT ` + selectColumns + ` FROM ai_completions WHERE id = $1`
	c, err := scanCompletion(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return AiCompletion{}, ErrNotFound
	}
	return c, err
}

// ListByTranscription lists completions newest first.
func (r *PGRepo) ListByTranscription(ctx context.Context, transcriptionID string) ([]AiCompletion, error) {
	query := `SELECT ` + selectColumns + ` FROM ai_completions WHERE transcription_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, transcriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]AiCompletion, 0)
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteByTranscription removes every completion of a transcription.
func (r *PGRepo) DeleteByTranscription(ctx context.Context, transcriptionID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM ai_completions WHERE transcription_id = $1`, transcriptionID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompletion(row rowScanner) (AiCompletion, error) {
	var (
		c      AiCompletion
		tokens sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.TranscriptionID, &c.Prompt, &c.Response, &tokens, &c.CreatedAt); err != nil {
		return AiCompletion{}, err
	}
	if tokens.Valid {
		v := int(tokens.Int64)
		c.TokensUsed = &v
	}
	return c, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

var _ Repo = (*PGRepo)(nil)
