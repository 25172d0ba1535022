package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tablebook/booking-client/storage"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		s := storage.NewMemoryStore()

		_, err := s.Get(ctx, "username")
		require.ErrorIs(t, err, storage.ErrKeyNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		s := storage.NewMemoryStore()

		require.NoError(t, s.Set(ctx, "username", "alice"))
		require.NoError(t, s.Set(ctx, "username", "bob"))

		got, err := s.Get(ctx, "username")
		require.NoError(t, err)
		require.Equal(t, "bob", got)
	})

	t.Run("remove several keys", func(t *testing.T) {
		s := storage.NewMemoryStore()

		require.NoError(t, s.Set(ctx, "a", "1"))
		require.NoError(t, s.Set(ctx, "b", "2"))
		require.NoError(t, s.Set(ctx, "c", "3"))
		require.NoError(t, s.Remove(ctx, "a", "b", "missing"))

		_, err := s.Get(ctx, "a")
		require.ErrorIs(t, err, storage.ErrKeyNotFound)
		_, err = s.Get(ctx, "b")
		require.ErrorIs(t, err, storage.ErrKeyNotFound)

		got, err := s.Get(ctx, "c")
		require.NoError(t, err)
		require.Equal(t, "3", got)
	})

	t.Run("canceled context", func(t *testing.T) {
		s := storage.NewMemoryStore()
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		require.ErrorIs(t, s.Set(canceled, "a", "1"), context.Canceled)
		_, err := s.Get(canceled, "a")
		require.ErrorIs(t, err, context.Canceled)
		require.ErrorIs(t, s.Remove(canceled, "a"), context.Canceled)
	})
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file is empty", func(t *testing.T) {
		s, err := storage.OpenFileStore(filepath.Join(t.TempDir(), "client.gob"))
		require.NoError(t, err)

		_, err = s.Get(ctx, "session")
		require.ErrorIs(t, err, storage.ErrKeyNotFound)
	})

	t.Run("survives reopening", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "client.gob")

		s, err := storage.OpenFileStore(path)
		require.NoError(t, err)
		require.NoError(t, s.Set(ctx, "session", `{"username":"alice"}`))
		require.NoError(t, s.Set(ctx, "lastBooking", `{"_id":"1"}`))
		require.NoError(t, s.Remove(ctx, "lastBooking"))

		reopened, err := storage.OpenFileStore(path)
		require.NoError(t, err)

		got, err := reopened.Get(ctx, "session")
		require.NoError(t, err)
		require.Equal(t, `{"username":"alice"}`, got)

		_, err = reopened.Get(ctx, "lastBooking")
		require.ErrorIs(t, err, storage.ErrKeyNotFound)
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "client.gob")
		require.NoError(t, os.WriteFile(path, []byte("not gob"), 0o600))

		_, err := storage.OpenFileStore(path)
		require.Error(t, err)
	})
}
