package downloads

import (
	"context"
	"errors"
	"fmt"

	"inreader-backend/internal/aicompletions"
	"inreader-backend/internal/documents"
	"inreader-backend/internal/ownership"
	"inreader-backend/internal/report"
	"inreader-backend/internal/shared/apperr"
	"inreader-backend/internal/shared/storage/object"
	"inreader-backend/internal/transcriptions"
)

// Service assembles document downloads.
type Service struct {
	Docs           documents.Repo
	Store          object.ObjectStore
	Transcriptions transcriptions.Repo
	Completions    aicompletions.Repo
}

// Download returns the original bytes or the composed report of a document
// the caller owns.
func (s *Service) Download(ctx context.Context, callerID, documentID string, opts report.Options) (report.Output, error) {
	doc, err := documents.Owned(ctx, s.Docs, ownership.DocumentAccess, callerID, documentID)
	if err != nil {
		return report.Output{}, err
	}
	data, err := object.ReadAll(ctx, s.Store, doc.Key)
	if err != nil {
		return report.Output{}, apperr.Storage(fmt.Errorf("read %s: %w", doc.Key, err))
	}
	src := report.Source{Data: data, MimeType: doc.MimeType, Key: doc.Key}
	if !opts.Original {
		if err := s.attachText(ctx, doc.ID, &src); err != nil {
			return report.Output{}, apperr.Internal(err)
		}
	}

	out, err := report.Compose(src, opts)
	if err != nil {
		return report.Output{}, apperr.Internal(err)
	}
	return out, nil
}

func (s *Service) attachText(ctx context.Context, documentID string, src *report.Source) error {
	t, err := s.Transcriptions.GetByDocument(ctx, documentID)
	if errors.Is(err, transcriptions.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	src.Transcription = t.Text

	items, err := s.Completions.ListByTranscription(ctx, t.ID)
	if err != nil {
		return err
	}
	// stored newest first, rendered oldest first
	for i := len(items) - 1; i >= 0; i-- {
		src.Completions = append(src.Completions, report.Completion{Prompt: items[i].Prompt, Response: items[i].Response})
	}
	return nil
}
