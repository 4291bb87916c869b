package documents

import (
	"context"
	"fmt"
	"time"

	"inreader-backend/internal/ownership"
)

// Status is the processing state of a document.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusDone    Status = "DONE"
	StatusFailed  Status = "FAILED"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = fmt.Errorf("document: %w", ownership.ErrMissing)

// Document represents an uploaded file owned by a user.
type Document struct {
	ID          string
	UserID      string
	Key         string
	MimeType    string
	Status      Status
	ProcessedAt *time.Time
	CreatedAt   time.Time
}

// IsPDF reports whether the document is a PDF.
func (d Document) IsPDF() bool {
	return d.MimeType == "application/pdf"
}

// Repo defines persistence operations for documents.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	ListByUser(ctx context.Context, userID string) ([]Document, error)
	// MarkDone moves a non-DONE document to DONE and stamps processedAt.
	// It reports false when the document was already DONE.
	MarkDone(ctx context.Context, id string, at time.Time) (bool, error)
	// MarkFailed moves a non-DONE document to FAILED, reporting false when
	// the document was already DONE.
	MarkFailed(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}
