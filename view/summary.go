package view

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tablebook/booking-client/backend"
	"github.com/tablebook/booking-client/booking"
)

type SummaryService interface {
	Bookings(ctx context.Context, date string) ([]backend.Booking, error)
	Cancel(ctx context.Context, listing booking.Listing) error
	Session() booking.Session
}

type SummaryState struct {
	Date     string            `json:"date"`
	Bookings []booking.Listing `json:"bookings"`
	Notice   *Notice           `json:"notice,omitempty"`
}

// Summary lists every booking of a date and lets the viewer cancel their
// own ones. Bookings are kept as received and redacted for the current
// identity on every read.
type Summary struct {
	service SummaryService
	logger  *slog.Logger

	mu       sync.Mutex
	scope    *Scope
	gen      uint64
	viewer   string
	date     string
	bookings []backend.Booking
	notice   *Notice
}

func NewSummary(service SummaryService) *Summary {
	return &Summary{
		service: service,
		logger:  slog.Default().With("component", "summary"),
		scope:   NewScope(context.Background()),
	}
}

// Open enters the summary for date, falling back to the date of the last
// booking made on this client. Without a logged in user or a date it returns
// ErrRedirectToEntry and leaves the view untouched. Entering again abandons
// the requests of the previous visit.
func (s *Summary) Open(ctx context.Context, date string) (SummaryState, error) {
	sess := s.service.Session()

	username, ok := sess.Identity()

	if !ok {
		return SummaryState{}, ErrRedirectToEntry
	}

	if len(date) == 0 {
		last, found, err := sess.LastBooking(ctx)

		if err != nil {
			s.logger.Warn("failed to read last booking", "err", err)
		}

		if !found || len(last.Date) == 0 {
			return SummaryState{}, ErrRedirectToEntry
		}

		date = last.Date
	}

	s.mu.Lock()

	s.scope.Close()
	s.scope = NewScope(context.Background())
	s.gen++
	gen := s.gen
	scope := s.scope

	s.viewer = username
	s.date = date
	s.bookings = nil
	s.notice = nil

	task := Go(scope, func(ctx context.Context) ([]backend.Booking, error) {
		return s.service.Bookings(ctx, date)
	})

	s.mu.Unlock()

	bookings, err := task.Await(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return s.stateLocked(), ErrSuperseded
	}

	if scope.Closed() {
		return SummaryState{}, ErrViewClosed
	}

	if err != nil {
		s.logger.Error("failed to fetch bookings", "err", err, "date", date)
		s.notice = &Notice{Severity: SeverityError, Text: backend.Message(err, booking.MsgFetchFailed)}
		return s.stateLocked(), nil
	}

	s.bookings = bookings

	return s.stateLocked(), nil
}

// Cancel deletes the viewer's booking id. The row is removed only when the
// booking API confirms; otherwise the list is left as it was.
func (s *Summary) Cancel(ctx context.Context, id string) (SummaryState, error) {
	s.mu.Lock()

	if s.scope.Closed() {
		s.mu.Unlock()
		return SummaryState{}, ErrViewClosed
	}

	s.syncViewerLocked()

	idx := s.indexLocked(id)

	if idx < 0 {
		state := s.stateLocked()
		s.mu.Unlock()
		return state, ErrListingNotFound
	}

	listing := booking.Redact(s.bookings[idx:idx+1], s.viewer)[0]
	gen := s.gen
	scope := s.scope

	task := Go(scope, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.service.Cancel(ctx, listing)
	})

	s.mu.Unlock()

	_, err := task.Await(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || scope.Closed() {
		return SummaryState{}, ErrViewClosed
	}

	if err != nil {
		s.logger.Error("failed to cancel booking", "err", err, "bookingId", id)
		s.notice = &Notice{Severity: SeverityError, Text: cancelMessage(err)}
		return s.stateLocked(), err
	}

	if idx := s.indexLocked(id); idx >= 0 {
		s.bookings = append(s.bookings[:idx:idx], s.bookings[idx+1:]...)
	}

	s.notice = &Notice{Severity: SeverityInfo, Text: booking.MsgCanceled}

	return s.stateLocked(), nil
}

func (s *Summary) State() SummaryState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncViewerLocked()

	return s.stateLocked()
}

func (s *Summary) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scope.Close()
}

// syncViewerLocked forgets the visit of a user who has logged out since
// opening the summary.
func (s *Summary) syncViewerLocked() {
	current, _ := s.service.Session().Identity()

	if len(s.viewer) != 0 && s.viewer != current {
		if !s.scope.Closed() {
			s.scope.Close()
			s.scope = NewScope(context.Background())
		}

		s.gen++
		s.date = ""
		s.bookings = nil
		s.notice = nil
	}

	s.viewer = current
}

func (s *Summary) indexLocked(id string) int {
	for i, b := range s.bookings {
		if b.ID == id {
			return i
		}
	}

	return -1
}

func (s *Summary) stateLocked() SummaryState {
	viewer, _ := s.service.Session().Identity()

	state := SummaryState{
		Date:     s.date,
		Bookings: booking.Redact(s.bookings, viewer),
	}

	if s.notice != nil {
		notice := *s.notice
		state.Notice = &notice
	}

	return state
}

func cancelMessage(err error) string {
	if errors.Is(err, booking.ErrNotAllowed) {
		return "You can only cancel your own bookings."
	}

	return booking.MsgCancelFailed
}
