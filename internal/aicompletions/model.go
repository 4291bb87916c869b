package aicompletions

import (
	"context"
	"fmt"
	"time"

	"inreader-backend/internal/ownership"
)

// ErrNotFound is returned when no completion matches.
var ErrNotFound = fmt.Errorf("ai completion: %w", ownership.ErrMissing)

// AiCompletion is a prompt answered against a transcription.
type AiCompletion struct {
	ID              string
	TranscriptionID string
	Prompt          string
	Response        string
	TokensUsed      *int
	CreatedAt       time.Time
}

// Repo defines persistence operations for completions.
type Repo interface {
	Create(ctx context.Context, c AiCompletion) error
	GetByID(ctx context.Context, id string) (AiCompletion, error)
	// ListByTranscription returns completions newest first.
	ListByTranscription(ctx context.Context, transcriptionID string) ([]AiCompletion, error)
	DeleteByTranscription(ctx context.Context, transcriptionID string) error
}
