package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/patrickmn/go-cache"
)

// FileStore is a MemoryStore written through to a file after every change,
// so its content survives restarts.
type FileStore struct {
	MemoryStore

	mu   sync.Mutex
	path string
}

// OpenFileStore loads the store saved at path. A missing file gives an empty
// store.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		MemoryStore: MemoryStore{cache: cache.New(cache.NoExpiration, 0)},
		path:        path,
	}

	err := s.cache.LoadFile(path)

	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load storage file '%v': %w", path, err)
	}

	return s, nil
}

func (s *FileStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.MemoryStore.Set(ctx, key, value); err != nil {
		return err
	}

	return s.persistLocked()
}

func (s *FileStore) Remove(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.MemoryStore.Remove(ctx, keys...); err != nil {
		return err
	}

	return s.persistLocked()
}

// persistLocked replaces the file atomically.
func (s *FileStore) persistLocked() error {
	dir := filepath.Dir(s.path)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")

	if err != nil {
		return fmt.Errorf("failed to create storage file: %w", err)
	}

	defer os.Remove(tmp.Name())

	if err := s.cache.Save(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace storage file: %w", err)
	}

	return nil
}
