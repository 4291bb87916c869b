package aicompletions

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]AiCompletion
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]AiCompletion)}
}

// Create stores a completion.
func (r *MemoryRepo) Create(ctx context.Context, c AiCompletion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ID] = c
	return nil
}

// GetByID returns a completion by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (AiCompletion, error) {
	if err := ctx.Err(); err != nil {
		return AiCompletion{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return AiCompletion{}, ErrNotFound
	}
	return c, nil
}

// ListByTranscription returns a transcription's completions newest first.
func (r *MemoryRepo) ListByTranscription(ctx context.Context, transcriptionID string) ([]AiCompletion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]AiCompletion, 0)
	for _, c := range r.items {
		if c.TranscriptionID == transcriptionID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteByTranscription removes every completion of a transcription.
func (r *MemoryRepo) DeleteByTranscription(ctx context.Context, transcriptionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.items {
		if c.TranscriptionID == transcriptionID {
			delete(r.items, id)
		}
	}
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
