package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"inreader-backend/internal/shared/storage/object"
)

// Store implements ObjectStore using the local filesystem.
type Store struct {
	baseDir string
}

// New creates a new local object store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Save writes r under key. The body lands in a temp file first and is
// renamed into place, so a concurrent Open never sees a partial blob.
func (s *Store) Save(ctx context.Context, key string, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return 0, err
	}
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("write body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return 0, fmt.Errorf("rename: %w", err)
	}
	return written, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", object.ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Delete removes the object at key. Missing objects are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func (s *Store) resolve(key string) (string, error) {
	clean := filepath.Clean(key)
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key")
	}
	return filepath.Join(s.baseDir, clean), nil
}

var _ object.ObjectStore = (*Store)(nil)
