package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tablebook/booking-client/backend"
	"github.com/tablebook/booking-client/session"
	"github.com/tablebook/booking-client/slots"
)

type Session interface {
	Identity() (string, bool)
	Login(ctx context.Context, username string) error
	Logout(ctx context.Context) error
	SaveLastBooking(ctx context.Context, booking backend.Booking) error
	LastBooking(ctx context.Context) (backend.Booking, bool, error)
}

type Service struct {
	client   backend.BackendClient
	session  Session
	schedule Schedule
	logger   *slog.Logger
}

func NewService(client backend.BackendClient, session Session, schedule Schedule) *Service {
	return &Service{
		client:   client,
		session:  session,
		schedule: schedule,
		logger:   slog.Default().With("component", "booking"),
	}
}

func (s *Service) Session() Session {
	return s.session
}

// Slots returns every bookable time of the configured business day.
func (s *Service) Slots() []string {
	return slots.Generate(s.schedule.Open, s.schedule.Close, s.schedule.Interval)
}

// BookedTimes returns the times already taken on date.
func (s *Service) BookedTimes(ctx context.Context, date string) ([]string, error) {
	bookings, err := s.client.ListBookings(ctx, date)

	if err != nil {
		return nil, err
	}

	times := make([]string, 0, len(bookings))

	for _, b := range bookings {
		times = append(times, b.Time)
	}

	return times, nil
}

func (s *Service) Availability(ctx context.Context, date string) ([]slots.Availability, error) {
	booked, err := s.BookedTimes(ctx, date)

	if err != nil {
		return nil, err
	}

	return slots.Classify(s.Slots(), booked), nil
}

// Submit sends draft to the booking API on behalf of the current identity.
// Nothing is sent when the session is anonymous.
func (s *Service) Submit(ctx context.Context, draft Draft) (backend.Booking, error) {
	username, ok := s.session.Identity()

	if !ok {
		return backend.Booking{}, ErrUnauthenticated
	}

	if len(strings.TrimSpace(draft.Date)) == 0 || len(strings.TrimSpace(draft.Time)) == 0 {
		return backend.Booking{}, ErrIncompleteDraft
	}

	created, err := s.client.CreateBooking(ctx, backend.NewBooking{
		Name:     draft.Name,
		Contact:  draft.Contact,
		Guests:   draft.Guests,
		Date:     draft.Date,
		Time:     draft.Time,
		Username: username,
	})

	if err != nil {
		return backend.Booking{}, err
	}

	if err := s.session.SaveLastBooking(ctx, created); err != nil {
		s.logger.Warn("failed to remember last booking", "err", err, "bookingId", created.ID)
	}

	return created, nil
}

// Bookings returns the bookings of date unredacted. Callers must pass them
// through Redact before showing them.
func (s *Service) Bookings(ctx context.Context, date string) ([]backend.Booking, error) {
	return s.client.ListBookings(ctx, date)
}

// BookingsForDate lists the bookings of date as seen by the current identity.
func (s *Service) BookingsForDate(ctx context.Context, date string) ([]Listing, error) {
	bookings, err := s.Bookings(ctx, date)

	if err != nil {
		return nil, err
	}

	viewer, _ := s.session.Identity()

	return Redact(bookings, viewer), nil
}

// Cancel deletes listing when it belongs to the current identity. The
// ownership check only decides what the client offers; the booking API is
// expected to enforce it as well.
func (s *Service) Cancel(ctx context.Context, listing Listing) error {
	username, ok := s.session.Identity()

	if !ok {
		return ErrUnauthenticated
	}

	if !isOwner(listing.Username, username) {
		return ErrNotAllowed
	}

	if err := s.client.DeleteBooking(ctx, listing.ID); err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	return nil
}

// Login authenticates against the booking API and then persists the
// returned identity. While another user is logged in nothing is sent.
func (s *Service) Login(ctx context.Context, credentials backend.Credentials) (string, error) {
	if current, ok := s.session.Identity(); ok && current != strings.TrimSpace(credentials.Username) {
		return "", session.ErrAlreadyAuthenticated
	}

	user, err := s.client.Login(ctx, credentials)

	if err != nil {
		return "", err
	}

	username := user.Username

	if len(username) == 0 {
		username = credentials.Username
	}

	if err := s.session.Login(ctx, username); err != nil {
		return "", err
	}

	s.logger.Info("logged in", "username", username)

	return username, nil
}

func (s *Service) Signup(ctx context.Context, credentials backend.Credentials) error {
	return s.client.Signup(ctx, credentials)
}

// Logout forgets the identity locally. The booking API is not called.
func (s *Service) Logout(ctx context.Context) error {
	s.client.ForgetCredentials()

	return s.session.Logout(ctx)
}
