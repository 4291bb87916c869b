package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Document)}
}

// Create stores a new document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return nil
}

// GetByID returns a document by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// ListByUser returns documents for a user, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	docs := make([]Document, 0)
	for _, doc := range r.data {
		if doc.UserID == userID {
			docs = append(docs, doc)
		}
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// MarkDone moves a non-DONE document to DONE.
func (r *MemoryRepo) MarkDone(ctx context.Context, id string, at time.Time) (bool, error) {
	return r.transition(ctx, id, func(doc *Document) {
		doc.Status = StatusDone
		doc.ProcessedAt = &at
	})
}

// MarkFailed moves a non-DONE document to FAILED.
func (r *MemoryRepo) MarkFailed(ctx context.Context, id string) (bool, error) {
	return r.transition(ctx, id, func(doc *Document) {
		doc.Status = StatusFailed
		doc.ProcessedAt = nil
	})
}

func (r *MemoryRepo) transition(ctx context.Context, id string, apply func(*Document)) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok {
		return false, ErrNotFound
	}
	if doc.Status == StatusDone {
		return false, nil
	}
	apply(&doc)
	r.data[id] = doc
	return true, nil
}

// Delete removes a document.
func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
