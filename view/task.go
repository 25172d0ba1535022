package view

import (
	"context"
	"sync"
)

// Task is the pending result of a function running in its own goroutine.
type Task[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc
	value  T
	err    error
}

// Start runs fn with a context derived from ctx. Canceling the task or ctx
// cancels the context seen by fn.
func Start[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Task[T] {
	ctx, cancel := context.WithCancel(ctx)

	t := &Task[T]{done: make(chan struct{}), cancel: cancel}

	go func() {
		defer close(t.done)
		defer cancel()
		t.value, t.err = fn(ctx)
	}()

	return t
}

func (t *Task[T]) Cancel() {
	t.cancel()
}

func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Await blocks until the task finishes or ctx is done. In the latter case the
// task is canceled and ctx's error is returned.
func (t *Task[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		t.cancel()
		var zero T
		return zero, ctx.Err()
	}
}

// Scope ties tasks to the lifetime of a view. Closing it cancels every task
// started in it.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

func NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

func (s *Scope) Context() context.Context {
	return s.ctx
}

func (s *Scope) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
}

func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// Go starts fn as a task bound to scope.
func Go[T any](scope *Scope, fn func(ctx context.Context) (T, error)) *Task[T] {
	return Start(scope.Context(), fn)
}
