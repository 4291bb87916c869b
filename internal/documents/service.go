package documents

import (
	"context"
	"io"

	"inreader-backend/internal/ownership"
	"inreader-backend/internal/shared/apperr"
	"inreader-backend/internal/shared/storage/object"
	"inreader-backend/internal/shared/telemetry"
)

// Dependents removes rows hanging off a document when the store does not
// cascade on its own.
type Dependents interface {
	DeleteByDocument(ctx context.Context, documentID string) error
}

// Submitter accepts uploads into the processing pipeline.
type Submitter interface {
	Submit(ctx context.Context, ownerID, fileName, mimeType string, data []byte) (Document, error)
}

// Service contains business logic for documents.
type Service struct {
	Repo       Repo
	Store      object.ObjectStore
	Dependents Dependents
}

// List returns the caller's documents, newest first.
func (s *Service) List(ctx context.Context, callerID string) ([]Document, error) {
	docs, err := s.Repo.ListByUser(ctx, callerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return docs, nil
}

// Get returns a document the caller owns.
func (s *Service) Get(ctx context.Context, callerID, id string) (Document, error) {
	return Owned(ctx, s.Repo, ownership.DocumentAccess, callerID, id)
}

// Delete removes a document, its dependents and its blob.
func (s *Service) Delete(ctx context.Context, callerID, id string) (Document, error) {
	doc, err := s.Get(ctx, callerID, id)
	if err != nil {
		return Document{}, err
	}
	if s.Dependents != nil {
		if err := s.Dependents.DeleteByDocument(ctx, doc.ID); err != nil {
			return Document{}, apperr.Internal(err)
		}
	}
	if err := s.Repo.Delete(ctx, doc.ID); err != nil {
		return Document{}, apperr.Internal(err)
	}
	if s.Store != nil {
		if err := s.Store.Delete(ctx, doc.Key); err != nil {
			telemetry.Warn("document.blob_delete_failed", map[string]any{
				"document_id": doc.ID,
				"key":         doc.Key,
				"error":       err,
			})
		}
	}
	return doc, nil
}

// Open streams the stored bytes of a document.
func (s *Service) Open(ctx context.Context, doc Document) (io.ReadCloser, error) {
	rc, err := s.Store.Open(ctx, doc.Key)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return rc, nil
}

// Owned loads a document and applies rule to it.
func Owned(ctx context.Context, repo Repo, rule ownership.Rule, callerID, id string) (Document, error) {
	doc, err := repo.GetByID(ctx, id)
	if err := rule.Verify(callerID, doc.UserID, err); err != nil {
		if _, typed := apperr.As(err); !typed {
			return Document{}, apperr.Internal(err)
		}
		return Document{}, err
	}
	return doc, nil
}
