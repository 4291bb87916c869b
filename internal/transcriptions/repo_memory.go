package transcriptions

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	byID  map[string]Transcription
	byDoc map[string]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:  make(map[string]Transcription),
		byDoc: make(map[string]string),
	}
}

// Create stores a transcription unless the document already has one.
func (r *MemoryRepo) Create(ctx context.Context, t Transcription) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byDoc[t.DocumentID]; exists {
		return ErrConflict
	}
	r.byID[t.ID] = t
	r.byDoc[t.DocumentID] = t.ID
	return nil
}

// GetByID returns a transcription by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Transcription, error) {
	if err := ctx.Err(); err != nil {
		return Transcription{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	if !ok {
		return Transcription{}, ErrNotFound
	}
	return t, nil
}

// GetByDocument returns the transcription of a document.
func (r *MemoryRepo) GetByDocument(ctx context.Context, documentID string) (Transcription, error) {
	if err := ctx.Err(); err != nil {
		return Transcription{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byDoc[documentID]
	if !ok {
		return Transcription{}, ErrNotFound
	}
	return r.byID[id], nil
}

// DeleteByDocument removes the transcription of a document, if any.
func (r *MemoryRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byDoc[documentID]; ok {
		delete(r.byID, id)
		delete(r.byDoc, documentID)
	}
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
