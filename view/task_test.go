package view_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tablebook/booking-client/view"
)

func TestTask(t *testing.T) {

	t.Run("await result", func(t *testing.T) {
		task := view.Start(context.Background(), func(ctx context.Context) (int, error) {
			return 42, nil
		})

		got, err := task.Await(context.Background())

		require.NoError(t, err)
		require.Equal(t, 42, got)
	})

	t.Run("await error", func(t *testing.T) {
		boom := errors.New("boom")
		task := view.Start(context.Background(), func(ctx context.Context) (int, error) {
			return 0, boom
		})

		_, err := task.Await(context.Background())
		require.ErrorIs(t, err, boom)
	})

	t.Run("cancel reaches the function", func(t *testing.T) {
		task := view.Start(context.Background(), func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})

		task.Cancel()

		_, err := task.Await(context.Background())
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("await gives up with its context", func(t *testing.T) {
		stopped := make(chan struct{})
		task := view.Start(context.Background(), func(ctx context.Context) (int, error) {
			<-ctx.Done()
			close(stopped)
			return 0, ctx.Err()
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := task.Await(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)

		select {
		case <-stopped:
		case <-time.After(time.Second):
			t.Fatal("task was not canceled")
		}
	})
}

func TestScope(t *testing.T) {
	scope := view.NewScope(context.Background())

	task := view.Go(scope, func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	require.False(t, scope.Closed())
	scope.Close()
	require.True(t, scope.Closed())

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task outlived its scope")
	}

	_, err := task.Await(context.Background())
	require.ErrorIs(t, err, context.Canceled)
}
