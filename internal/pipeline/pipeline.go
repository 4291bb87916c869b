// Package pipeline turns uploads into transcriptions: it stores the bytes,
// records a PENDING document and runs extraction in the background, moving
// the document to DONE or FAILED and notifying its owner.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"inreader-backend/internal/documents"
	"inreader-backend/internal/extract"
	"inreader-backend/internal/notify"
	"inreader-backend/internal/ownership"
	"inreader-backend/internal/shared/apperr"
	"inreader-backend/internal/shared/metrics"
	"inreader-backend/internal/shared/storage/object"
	"inreader-backend/internal/shared/telemetry"
	"inreader-backend/internal/shared/util"
	"inreader-backend/internal/transcriptions"
)

// FailureMessage is the public error of every failed run.
const FailureMessage = "transcription failed"

const conflictMessage = "Transcription already exists for this document"

// Extractor turns stored bytes into text.
type Extractor interface {
	Extract(ctx context.Context, mimeType string, data []byte) (string, error)
}

// Pipeline runs document processing.
type Pipeline struct {
	Docs           documents.Repo
	Transcriptions transcriptions.Repo
	// Stale clears a transcription left behind by a run that did not reach
	// DONE. Defaults to Transcriptions.DeleteByDocument.
	Stale     documents.Dependents
	Store     object.ObjectStore
	Extractor Extractor
	Notifier  notify.Publisher
	Metrics   *metrics.Metrics
	Now       func() time.Time
	NewID     func() string

	wg sync.WaitGroup
}

// Submit stores the upload, records a PENDING document and starts a
// detached extraction run. It returns as soon as the document exists.
func (p *Pipeline) Submit(ctx context.Context, ownerID, fileName, mimeType string, data []byte) (documents.Document, error) {
	key := util.ObjectKey(fileName)
	if _, err := p.Store.Save(ctx, key, mimeType, bytes.NewReader(data)); err != nil {
		return documents.Document{}, apperr.Storage(fmt.Errorf("save %s: %w", key, err))
	}

	doc := documents.Document{
		ID:        p.newID(),
		UserID:    ownerID,
		Key:       key,
		MimeType:  mimeType,
		Status:    documents.StatusPending,
		CreatedAt: p.now(),
	}
	if err := p.Docs.Create(ctx, doc); err != nil {
		if delErr := p.Store.Delete(ctx, key); delErr != nil {
			telemetry.Warn("document.blob_cleanup_failed", map[string]any{"key": key, "error": delErr})
		}
		return documents.Document{}, apperr.Internal(err)
	}
	telemetry.Info("document.status", map[string]any{
		"request_id":        telemetry.RequestIDFromContext(ctx),
		"user_id":           doc.UserID,
		"document_id":       doc.ID,
		"status":            doc.Status,
		"status_transition": "->PENDING",
	})

	p.wg.Add(1)
	go func(runCtx context.Context) {
		defer p.wg.Done()
		_, _ = p.run(runCtx, doc)
	}(telemetry.Detach(ctx))
	return doc, nil
}

// ReTranscribe runs extraction synchronously for a document the caller owns.
// A document that is already DONE with a transcription is a conflict; a
// transcription left by an unfinished run is replaced.
func (p *Pipeline) ReTranscribe(ctx context.Context, callerID, documentID string) (transcriptions.Transcription, error) {
	doc, err := documents.Owned(ctx, p.Docs, ownership.DocumentTranscribe, callerID, documentID)
	if err != nil {
		return transcriptions.Transcription{}, err
	}

	_, err = p.Transcriptions.GetByDocument(ctx, doc.ID)
	switch {
	case err == nil:
		if doc.Status == documents.StatusDone {
			return transcriptions.Transcription{}, apperr.Conflict(conflictMessage)
		}
		if err := p.stale().DeleteByDocument(ctx, doc.ID); err != nil {
			return transcriptions.Transcription{}, apperr.Internal(err)
		}
	case !errors.Is(err, transcriptions.ErrNotFound):
		return transcriptions.Transcription{}, apperr.Internal(err)
	}

	// The status write and the notification must land even when the caller
	// goes away mid-extraction.
	p.wg.Add(1)
	defer p.wg.Done()
	return p.run(telemetry.Detach(ctx), doc)
}

// Wait blocks until every in-flight run has finished or ctx ends.
func (p *Pipeline) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) run(ctx context.Context, doc documents.Document) (t transcriptions.Transcription, err error) {
	source := extract.Source(doc.MimeType)
	startedAt := time.Now()
	defer func() {
		if r := recover(); r != nil {
			t = transcriptions.Transcription{}
			err = p.fail(ctx, doc, source, startedAt, fmt.Errorf("panic: %v", r))
		}
	}()
	p.Metrics.TranscriptionStarted(source)

	data, err := object.ReadAll(ctx, p.Store, doc.Key)
	if err != nil {
		return transcriptions.Transcription{}, p.fail(ctx, doc, source, startedAt, fmt.Errorf("fetch %s: %w", doc.Key, err))
	}
	text, err := p.Extractor.Extract(ctx, doc.MimeType, data)
	if err != nil {
		return transcriptions.Transcription{}, p.fail(ctx, doc, source, startedAt, err)
	}

	t = transcriptions.Transcription{
		ID:         p.newID(),
		DocumentID: doc.ID,
		Text:       text,
		CreatedAt:  p.now(),
	}
	if err := p.Transcriptions.Create(ctx, t); err != nil {
		if errors.Is(err, transcriptions.ErrConflict) {
			p.Metrics.TranscriptionFinished(source, metrics.OutcomeConflict, time.Since(startedAt))
			telemetry.Warn("document.transcription_conflict", map[string]any{
				"request_id":  telemetry.RequestIDFromContext(ctx),
				"document_id": doc.ID,
			})
			return transcriptions.Transcription{}, apperr.Conflict(conflictMessage)
		}
		return transcriptions.Transcription{}, p.fail(ctx, doc, source, startedAt, fmt.Errorf("store transcription: %w", err))
	}

	changed, err := p.Docs.MarkDone(ctx, doc.ID, p.now())
	if err != nil {
		// FAILED carries no transcription.
		if derr := p.stale().DeleteByDocument(ctx, doc.ID); derr != nil {
			telemetry.Error("document.stale_cleanup_error", map[string]any{
				"request_id":  telemetry.RequestIDFromContext(ctx),
				"document_id": doc.ID,
				"error":       derr,
			})
		}
		return transcriptions.Transcription{}, p.fail(ctx, doc, source, startedAt, fmt.Errorf("mark done: %w", err))
	}
	p.Metrics.TranscriptionFinished(source, metrics.OutcomeDone, time.Since(startedAt))
	if !changed {
		p.logUnchanged(ctx, doc, documents.StatusDone)
		return t, nil
	}
	p.logTransition(ctx, doc, documents.StatusDone, nil)
	p.publish(ctx, doc, notify.Update{
		Status:        notify.StatusDone,
		DocumentID:    doc.ID,
		Transcription: transcriptions.ToResponse(t),
	})
	return t, nil
}

// fail marks the document FAILED, notifies the owner and returns the public
// extraction error. The cause is only logged. The owner hears about FAILED
// only when the status write actually moved the document.
func (p *Pipeline) fail(ctx context.Context, doc documents.Document, source string, startedAt time.Time, cause error) error {
	p.Metrics.TranscriptionFinished(source, metrics.OutcomeFailed, time.Since(startedAt))
	failure := apperr.Wrap(apperr.KindExtraction, cause, FailureMessage)
	changed, err := p.Docs.MarkFailed(ctx, doc.ID)
	if err != nil {
		telemetry.Error("document.mark_failed_error", map[string]any{
			"request_id":  telemetry.RequestIDFromContext(ctx),
			"document_id": doc.ID,
			"error":       err,
			"cause":       cause,
		})
		return failure
	}
	if !changed {
		p.logUnchanged(ctx, doc, documents.StatusFailed)
		return failure
	}
	p.logTransition(ctx, doc, documents.StatusFailed, cause)
	p.publish(ctx, doc, notify.Update{
		Status:     notify.StatusFailed,
		DocumentID: doc.ID,
		Error:      FailureMessage,
	})
	return failure
}

// logUnchanged records a transition skipped because another run already
// finished the document.
func (p *Pipeline) logUnchanged(ctx context.Context, doc documents.Document, to documents.Status) {
	telemetry.Warn("document.status_unchanged", map[string]any{
		"request_id":  telemetry.RequestIDFromContext(ctx),
		"document_id": doc.ID,
		"status":      to,
	})
}

func (p *Pipeline) logTransition(ctx context.Context, doc documents.Document, to documents.Status, cause error) {
	fields := map[string]any{
		"request_id":        telemetry.RequestIDFromContext(ctx),
		"user_id":           doc.UserID,
		"document_id":       doc.ID,
		"mime_type":         doc.MimeType,
		"status":            to,
		"status_transition": string(doc.Status) + "->" + string(to),
	}
	if cause != nil {
		fields["error"] = cause
		telemetry.Error("document.status", fields)
		return
	}
	telemetry.Info("document.status", fields)
}

func (p *Pipeline) publish(ctx context.Context, doc documents.Document, u notify.Update) {
	if p.Notifier == nil {
		return
	}
	if err := p.Notifier.Publish(ctx, doc.UserID, u); err != nil {
		telemetry.Warn("document.notify_failed", map[string]any{
			"document_id": doc.ID,
			"status":      u.Status,
			"error":       err,
		})
	}
}

func (p *Pipeline) stale() documents.Dependents {
	if p.Stale != nil {
		return p.Stale
	}
	return p.Transcriptions
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now().UTC()
}

func (p *Pipeline) newID() string {
	if p.NewID != nil {
		return p.NewID()
	}
	return uuid.NewString()
}

var (
	_ documents.Submitter        = (*Pipeline)(nil)
	_ transcriptions.Transcriber = (*Pipeline)(nil)
)
