package transcriptions

import (
	"context"
	"errors"

	"inreader-backend/internal/documents"
	"inreader-backend/internal/ownership"
	"inreader-backend/internal/shared/apperr"
)

// Transcriber runs extraction for a document on demand.
type Transcriber interface {
	ReTranscribe(ctx context.Context, callerID, documentID string) (Transcription, error)
}

// Service contains read-side logic for transcriptions.
type Service struct {
	Repo Repo
	Docs documents.Repo
}

// GetByDocument returns the transcription of a document the caller owns, or
// nil when none exists yet.
func (s *Service) GetByDocument(ctx context.Context, callerID, documentID string) (*Transcription, error) {
	if _, err := documents.Owned(ctx, s.Docs, ownership.TranscriptionOfDocument, callerID, documentID); err != nil {
		return nil, err
	}
	t, err := s.Repo.GetByDocument(ctx, documentID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &t, nil
}

// GetVerified returns a transcription whose document the caller owns.
func (s *Service) GetVerified(ctx context.Context, callerID, id string) (Transcription, documents.Document, error) {
	t, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Transcription{}, documents.Document{}, verifyErr(ownership.TranscriptionAccess.Verify(callerID, "", err))
	}
	doc, err := s.Docs.GetByID(ctx, t.DocumentID)
	if err != nil && !errors.Is(err, documents.ErrNotFound) {
		return Transcription{}, documents.Document{}, apperr.Internal(err)
	}
	// an orphaned transcription is reported as missing
	if err := ownership.TranscriptionAccess.Verify(callerID, doc.UserID, translateMissing(err)); err != nil {
		return Transcription{}, documents.Document{}, verifyErr(err)
	}
	return t, doc, nil
}

func translateMissing(err error) error {
	if errors.Is(err, documents.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func verifyErr(err error) error {
	if _, typed := apperr.As(err); !typed {
		return apperr.Internal(err)
	}
	return err
}
