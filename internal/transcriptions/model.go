package transcriptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inreader-backend/internal/ownership"
)

var (
	// ErrNotFound is returned when no transcription matches.
	ErrNotFound = fmt.Errorf("transcription: %w", ownership.ErrMissing)
	// ErrConflict is returned when the document already has a transcription.
	ErrConflict = errors.New("transcription already exists for document")
)

// Transcription is the text extracted from a document.
type Transcription struct {
	ID         string
	DocumentID string
	Text       string
	CreatedAt  time.Time
}

// Repo defines persistence operations for transcriptions. A document has at
// most one transcription; Create reports ErrConflict otherwise.
type Repo interface {
	Create(ctx context.Context, t Transcription) error
	GetByID(ctx context.Context, id string) (Transcription, error)
	GetByDocument(ctx context.Context, documentID string) (Transcription, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}
