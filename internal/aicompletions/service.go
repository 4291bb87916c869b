package aicompletions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"inreader-backend/internal/documents"
	"inreader-backend/internal/llm"
	"inreader-backend/internal/ownership"
	"inreader-backend/internal/shared/apperr"
	"inreader-backend/internal/shared/metrics"
	"inreader-backend/internal/shared/telemetry"
	"inreader-backend/internal/transcriptions"
)

// Service runs completions against transcriptions the caller owns.
type Service struct {
	Repo           Repo
	Transcriptions *transcriptions.Service
	Completer      llm.Completer
	Metrics        *metrics.Metrics
	Now            func() time.Time
	NewID          func() string
}

// Create asks the completion engine to answer prompt against the
// transcription text and stores the result.
func (s *Service) Create(ctx context.Context, callerID, transcriptionID, prompt string) (AiCompletion, error) {
	t, _, err := s.Transcriptions.GetVerified(ctx, callerID, transcriptionID)
	if err != nil {
		return AiCompletion{}, err
	}

	result, err := s.Completer.Complete(ctx, prompt, t.Text)
	if err != nil {
		s.Metrics.CompletionRequested(false, 0)
		telemetry.Error("ai_completion.failed", map[string]any{
			"transcription_id": transcriptionID,
			"error":            err,
		})
		return AiCompletion{}, apperr.Internal(err)
	}
	tokens := 0
	if result.TokensUsed != nil {
		tokens = *result.TokensUsed
	}
	s.Metrics.CompletionRequested(true, tokens)

	c := AiCompletion{
		ID:              s.newID(),
		TranscriptionID: t.ID,
		Prompt:          prompt,
		Response:        result.Text,
		TokensUsed:      result.TokensUsed,
		CreatedAt:       s.now(),
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return AiCompletion{}, apperr.Internal(err)
	}
	telemetry.Info("ai_completion.created", map[string]any{
		"completion_id":    c.ID,
		"transcription_id": c.TranscriptionID,
		"tokens_used":      tokens,
	})
	return c, nil
}

// ListByTranscription returns the completions of an owned transcription,
// newest first.
func (s *Service) ListByTranscription(ctx context.Context, callerID, transcriptionID string) ([]AiCompletion, error) {
	if _, _, err := s.Transcriptions.GetVerified(ctx, callerID, transcriptionID); err != nil {
		return nil, err
	}
	items, err := s.Repo.ListByTranscription(ctx, transcriptionID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

// Get returns a completion whose document the caller owns.
func (s *Service) Get(ctx context.Context, callerID, id string) (AiCompletion, error) {
	c, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return AiCompletion{}, typed(ownership.CompletionAccess.Verify(callerID, "", err))
	}

	ownerID, err := s.ownerOf(ctx, c.TranscriptionID)
	if err != nil {
		return AiCompletion{}, typed(ownership.CompletionAccess.Verify(callerID, "", err))
	}
	if err := ownership.CompletionAccess.Verify(callerID, ownerID, nil); err != nil {
		return AiCompletion{}, err
	}
	return c, nil
}

// ownerOf resolves the user owning a transcription's document. A broken
// chain is reported as ErrNotFound.
func (s *Service) ownerOf(ctx context.Context, transcriptionID string) (string, error) {
	t, err := s.Transcriptions.Repo.GetByID(ctx, transcriptionID)
	if errors.Is(err, transcriptions.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	doc, err := s.Transcriptions.Docs.GetByID(ctx, t.DocumentID)
	if errors.Is(err, documents.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return doc.UserID, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func typed(err error) error {
	if _, ok := apperr.As(err); !ok {
		return apperr.Internal(err)
	}
	return err
}
