package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("object not found")

// ObjectStore puts, gets and deletes byte payloads by opaque key.
type ObjectStore interface {
	Save(ctx context.Context, key string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// ReadAll fetches the full payload stored under key.
func ReadAll(ctx context.Context, store ObjectStore, key string) ([]byte, error) {
	rc, err := store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
