package view

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tablebook/booking-client/backend"
	"github.com/tablebook/booking-client/booking"
	"github.com/tablebook/booking-client/slots"
)

const (
	SeverityError   = "error"
	SeveritySuccess = "success"
	SeverityInfo    = "info"
)

const msgBooked = "Booking successful! Redirecting to summary..."

type Notice struct {
	Severity string `json:"severity"`
	Text     string `json:"text"`
}

type EntryService interface {
	Session() booking.Session
	Slots() []string
	BookedTimes(ctx context.Context, date string) ([]string, error)
	Submit(ctx context.Context, draft booking.Draft) (backend.Booking, error)
}

type EntryState struct {
	Draft  booking.Draft        `json:"draft"`
	Slots  []slots.Availability `json:"slots"`
	Notice *Notice              `json:"notice,omitempty"`
}

// Entry holds the booking being prepared: the draft, the selected date and
// the times already booked on it.
type Entry struct {
	service EntryService
	now     func() time.Time

	mu      sync.Mutex
	scope   *Scope
	gen     uint64
	pending *Task[[]string]
	viewer  string
	draft   booking.Draft
	booked  []string
	loaded  bool
	notice  *Notice
}

func NewEntry(service EntryService) *Entry {
	return &Entry{
		service: service,
		now:     time.Now,
		scope:   NewScope(context.Background()),
	}
}

// WithClock replaces the clock used to reject past dates.
func (e *Entry) WithClock(now func() time.Time) *Entry {
	e.now = now
	return e
}

func (e *Entry) Today() string {
	return e.now().Format(time.DateOnly)
}

// SelectDate makes date the draft's date and loads its booked times. A
// selection made while an earlier one is still loading cancels the earlier
// one, which then returns ErrSuperseded.
func (e *Entry) SelectDate(ctx context.Context, date string) (EntryState, error) {
	day, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(date), time.Local)

	if err != nil {
		return e.State(), ErrInvalidDate
	}

	date = day.Format(time.DateOnly)

	if date < e.Today() {
		return e.State(), ErrPastDate
	}

	e.mu.Lock()

	if e.scope.Closed() {
		e.mu.Unlock()
		return EntryState{}, ErrViewClosed
	}

	e.syncViewerLocked()

	if e.pending != nil {
		e.pending.Cancel()
	}

	e.gen++
	gen := e.gen

	if e.draft.Date != date {
		e.draft.Time = ""
	}

	e.draft.Date = date
	e.booked = nil
	e.loaded = false
	e.notice = nil

	task := Go(e.scope, func(ctx context.Context) ([]string, error) {
		return e.service.BookedTimes(ctx, date)
	})
	e.pending = task

	e.mu.Unlock()

	booked, err := task.Await(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.scope.Closed() {
		return EntryState{}, ErrViewClosed
	}

	if gen != e.gen {
		return e.stateLocked(), ErrSuperseded
	}

	e.pending = nil

	if err != nil {
		e.notice = &Notice{Severity: SeverityError, Text: backend.Message(err, booking.MsgFetchFailed)}
		return e.stateLocked(), err
	}

	e.booked = booked
	e.loaded = true

	return e.stateLocked(), nil
}

// SelectTime picks slot for the draft. Only free slots of the loaded date
// can be picked.
func (e *Entry) SelectTime(slot string) (EntryState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.scope.Closed() {
		return EntryState{}, ErrViewClosed
	}

	e.syncViewerLocked()

	if !e.loaded {
		return e.stateLocked(), ErrSlotsNotLoaded
	}

	if !slices.Contains(e.service.Slots(), slot) {
		return e.stateLocked(), ErrUnknownSlot
	}

	if slots.IsBooked(slot, e.booked) {
		return e.stateLocked(), ErrSlotTaken
	}

	e.draft.Time = slot

	return e.stateLocked(), nil
}

func (e *Entry) SetDetails(name, contact string, guests int) (EntryState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.scope.Closed() {
		return EntryState{}, ErrViewClosed
	}

	e.syncViewerLocked()

	e.draft.Name = name
	e.draft.Contact = contact
	e.draft.Guests = guests

	return e.stateLocked(), nil
}

// Submit sends the draft. On success the draft is cleared except for its
// date and the created booking is returned.
func (e *Entry) Submit(ctx context.Context) (backend.Booking, EntryState, error) {
	e.mu.Lock()

	if e.scope.Closed() {
		e.mu.Unlock()
		return backend.Booking{}, EntryState{}, ErrViewClosed
	}

	e.syncViewerLocked()

	e.notice = nil
	draft := e.draft

	if len(draft.Time) != 0 && slots.IsBooked(draft.Time, e.booked) {
		e.notice = &Notice{Severity: SeverityError, Text: ErrSlotTaken.Error()}
		state := e.stateLocked()
		e.mu.Unlock()
		return backend.Booking{}, state, ErrSlotTaken
	}

	task := Go(e.scope, func(ctx context.Context) (backend.Booking, error) {
		return e.service.Submit(ctx, draft)
	})

	e.mu.Unlock()

	created, err := task.Await(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.scope.Closed() {
		return backend.Booking{}, EntryState{}, ErrViewClosed
	}

	if err != nil {
		e.notice = &Notice{Severity: SeverityError, Text: submitMessage(err)}
		return backend.Booking{}, e.stateLocked(), err
	}

	e.draft = booking.Draft{Date: draft.Date}
	e.booked = append(e.booked, created.Time)
	e.notice = &Notice{Severity: SeveritySuccess, Text: msgBooked}

	return created, e.stateLocked(), nil
}

func (e *Entry) State() EntryState {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.syncViewerLocked()

	return e.stateLocked()
}

// Close cancels every request of the view. Results arriving afterwards are
// dropped.
func (e *Entry) Close() {
	e.scope.Close()
}

// syncViewerLocked drops the personal details of the draft once the user
// who entered them is no longer logged in. Details entered anonymously are
// kept across a login.
func (e *Entry) syncViewerLocked() {
	current, _ := e.service.Session().Identity()

	if len(e.viewer) != 0 && e.viewer != current {
		e.draft = booking.Draft{Date: e.draft.Date}
		e.notice = nil
	}

	e.viewer = current
}

func (e *Entry) stateLocked() EntryState {
	state := EntryState{Draft: e.draft, Slots: []slots.Availability{}}

	if e.loaded {
		state.Slots = slots.Classify(e.service.Slots(), e.booked)
	}

	if e.notice != nil {
		notice := *e.notice
		state.Notice = &notice
	}

	return state
}

func submitMessage(err error) string {
	switch {
	case errors.Is(err, booking.ErrUnauthenticated):
		return "You must be logged in to make a booking."
	case errors.Is(err, booking.ErrIncompleteDraft):
		return "Please select a date and a time slot."
	default:
		return backend.Message(err, booking.MsgCreateFailed)
	}
}
