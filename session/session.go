package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tablebook/booking-client/backend"
	"github.com/tablebook/booking-client/storage"
)

const (
	sessionKey     = "session"
	lastBookingKey = "lastBooking"

	// written by older clients, read once and then folded into sessionKey
	legacyUsernameKey = "username"
	legacyLoggedInKey = "isLoggedIn"
)

var ErrEmptyUsername = errors.New("username cannot be empty")

var ErrAlreadyAuthenticated = errors.New("already logged in as another user")

type record struct {
	Username string `json:"username"`
}

// Session is the process wide authentication state. It is either anonymous
// or authenticated as a single username, and survives restarts through the
// storage it was created with.
type Session struct {
	store storage.Store

	mu       sync.RWMutex
	username string
}

func New(store storage.Store) *Session {
	return &Session{store: store}
}

// Load derives the initial state from storage.
func Load(ctx context.Context, store storage.Store) (*Session, error) {
	s := New(store)

	raw, err := store.Get(ctx, sessionKey)

	switch {
	case err == nil:
		var rec record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode session record: %w", err)
		}
		s.username = rec.Username
		return s, nil
	case !errors.Is(err, storage.ErrKeyNotFound):
		return nil, fmt.Errorf("failed to read session record: %w", err)
	}

	legacy, err := store.Get(ctx, legacyUsernameKey)

	if errors.Is(err, storage.ErrKeyNotFound) || (err == nil && len(legacy) == 0) {
		return s, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read legacy session: %w", err)
	}

	if err := s.Login(ctx, legacy); err != nil {
		return nil, err
	}

	return s, nil
}

// Identity returns the current username and whether there is one.
func (s *Session) Identity() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.username, len(s.username) != 0
}

func (s *Session) IsAuthenticated() bool {
	_, ok := s.Identity()
	return ok
}

// Login switches to the authenticated state and persists username. Logging
// in again as the current user is a no-op; another user must wait for a
// logout.
func (s *Session) Login(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)

	if len(username) == 0 {
		return ErrEmptyUsername
	}

	raw, err := json.Marshal(record{Username: username})

	if err != nil {
		return fmt.Errorf("failed to encode session record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.username) != 0 {
		if s.username != username {
			return ErrAlreadyAuthenticated
		}

		return nil
	}

	if err := s.store.Set(ctx, sessionKey, string(raw)); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	if err := s.store.Remove(ctx, legacyUsernameKey, legacyLoggedInKey); err != nil {
		return fmt.Errorf("failed to clear legacy session: %w", err)
	}

	s.username = username

	return nil
}

// Logout clears the persisted identity. The in-memory state is anonymous
// afterwards even when storage fails.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.username = ""

	if err := s.store.Remove(ctx, sessionKey, legacyUsernameKey, legacyLoggedInKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	return nil
}

// SaveLastBooking remembers booking as the fallback context of the summary.
func (s *Session) SaveLastBooking(ctx context.Context, booking backend.Booking) error {
	raw, err := json.Marshal(booking)

	if err != nil {
		return fmt.Errorf("failed to encode last booking: %w", err)
	}

	if err := s.store.Set(ctx, lastBookingKey, string(raw)); err != nil {
		return fmt.Errorf("failed to persist last booking: %w", err)
	}

	return nil
}

// LastBooking returns the booking saved by SaveLastBooking. The boolean is
// false when there is none.
func (s *Session) LastBooking(ctx context.Context) (backend.Booking, bool, error) {
	raw, err := s.store.Get(ctx, lastBookingKey)

	if errors.Is(err, storage.ErrKeyNotFound) {
		return backend.Booking{}, false, nil
	}

	if err != nil {
		return backend.Booking{}, false, fmt.Errorf("failed to read last booking: %w", err)
	}

	var booking backend.Booking

	if err := json.Unmarshal([]byte(raw), &booking); err != nil {
		return backend.Booking{}, false, fmt.Errorf("failed to decode last booking: %w", err)
	}

	return booking, true, nil
}
