// Package storage provides the durable string key/value storage the client
// keeps its session and last viewed booking in.
package storage

import (
	"context"
	"fmt"

	"github.com/patrickmn/go-cache"
)

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// MemoryStore keeps values for the lifetime of the process. Entries never
// expire.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: cache.New(cache.NoExpiration, 0)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	value, found := s.cache.Get(key)

	if !found {
		return "", ErrKeyNotFound
	}

	str, ok := value.(string)

	if !ok {
		return "", fmt.Errorf("unexpected value type %T for key '%v'", value, key)
	}

	return str, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.cache.Set(key, value, cache.NoExpiration)

	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, key := range keys {
		s.cache.Delete(key)
	}

	return nil
}
