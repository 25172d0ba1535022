package view_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tablebook/booking-client/backend"
	bk "github.com/tablebook/booking-client/booking"
	"github.com/tablebook/booking-client/view"
	"go.uber.org/mock/gomock"
)

var dayBookings = []backend.Booking{
	{ID: "1", Name: "Alice", Contact: "0123456789", Guests: 2, Date: "2026-10-20", Time: "10:00", Username: "alice"},
	{ID: "2", Name: "Bob", Contact: "0987654321", Guests: 4, Date: "2026-10-20", Time: "11:00", Username: "bob"},
}

func TestSummaryOpen(t *testing.T) {

	t.Run("redacts other users", func(t *testing.T) {
		ctrl, testDeps := newTestDeps(t)
		defer ctrl.Finish()
		require.NoError(t, testDeps.session.Login(testDeps.ctx, "alice"))

		testDeps.client.EXPECT().ListBookings(gomock.Any(), "2026-10-20").Return(dayBookings, nil).Times(1)

		state, err := view.NewSummary(testDeps.service).Open(testDeps.ctx, "2026-10-20")

		require.NoError(t, err)
		require.Equal(t, "2026-10-20", state.Date)
		require.Len(t, state.Bookings, 2)
		require.True(t, state.Bookings[0].CanCancel)
		require.Equal(t, "0123456789", state.Bookings[0].Contact)
		require.False(t, state.Bookings[1].CanCancel)
		require.Equal(t, bk.HiddenContact, state.Bookings[1].Contact)
	})

	t.Run("anonymous is redirected", func(t *testing.T) {
		ctrl, testDeps := newTestDeps(t)
		defer ctrl.Finish()

		testDeps.client.EXPECT().ListBookings(gomock.Any(), gomock.Any()).Times(0)

		_, err := view.NewSummary(testDeps.service).Open(testDeps.ctx, "2026-10-20")
		require.ErrorIs(t, err, view.ErrRedirectToEntry)
	})

	t.Run("falls back to last booking date", func(t *testing.T) {
		ctrl, testDeps := newTestDeps(t)
		defer ctrl.Finish()
		require.NoError(t, testDeps.session.Login(testDeps.ctx, "alice"))
		require.NoError(t, testDeps.session.SaveLastBooking(testDeps.ctx, dayBookings[0]))

		testDeps.client.EXPECT().ListBookings(gomock.Any(), "2026-10-20").Return(dayBookings, nil).Times(1)

		state, err := view.NewSummary(testDeps.service).Open(testDeps.ctx, "")

		require.NoError(t, err)
		require.Equal(t, "2026-10-20", state.Date)
	})

	t.Run("no date at all", func(t *testing.T) {
		ctrl, testDeps := newTestDeps(t)
		defer ctrl.Finish()
		require.NoError(t, testDeps.session.Login(testDeps.ctx, "alice"))

		_, err := view.NewSummary(testDeps.service).Open(testDeps.ctx, "")
		require.ErrorIs(t, err, view.ErrRedirectToEntry)
	})

	t.Run("fetch failure shows a notice", func(t *testing.T) {
		ctrl, testDeps := newTestDeps(t)
		defer ctrl.Finish()
		require.NoError(t, testDeps.session.Login(testDeps.ctx, "alice"))

		testDeps.client.EXPECT().ListBookings(gomock.Any(), "2026-10-20").Return(nil, errors.New("connection refused")).Times(1)

		state, err := view.NewSummary(testDeps.service).Open(testDeps.ctx, "2026-10-20")

		require.NoError(t, err)
		require.Empty(t, state.Bookings)
		require.Equal(t, bk.MsgFetchFailed, state.Notice.Text)
	})
}

func TestSummaryCancel(t *testing.T) {

	open := func(t *testing.T, deps testDeps) *view.Summary {
		t.Helper()
		require.NoError(t, deps.session.Login(deps.ctx, "alice"))
		deps.client.EXPECT().ListBookings(gomock.Any(), "2026-10-20").Return(dayBookings, nil).Times(1)

		summary := view.NewSummary(deps.service)
		_, err := summary.Open(deps.ctx, "2026-10-20")
		require.NoError(t, err)

		return summary
	}

	t.Run("own booking", func(t *testing.T) {
		ctrl, testDeps := newTestDeps(t)
		defer ctrl.Finish()

		summary := open(t, testDeps)

		testDeps.client.EXPECT().DeleteBooking(gomock.Any(), "1").Return(nil).Times(1)

		state, err := summary.Cancel(testDeps.ctx, "1")

		require.NoError(t, err)
		require.Len(t, state.Bookings, 1)
		require.Equal(t, "2", state.Bookings[0].ID)
		require.Equal(t, bk.MsgCanceled, state.Notice.Text)
		require.Equal(t, view.SeverityInfo, state.Notice.Severity)
	})

	t.Run("someone else's booking", func(t *testing.T) {
		ctrl, testDeps := newTestDeps(t)
		defer ctrl.Finish()

		summary := open(t, testDeps)

		testDeps.client.EXPECT().DeleteBooking(gomock.Any(), gomock.Any()).Times(0)

		state, err := summary.Cancel(testDeps.ctx, "2")

		require.ErrorIs(t, err, bk.ErrNotAllowed)
		require.Len(t, state.Bookings, 2)
	})

	t.Run("server refuses", func(t *testing.T) {
		ctrl, testDeps := newTestDeps(t)
		defer ctrl.Finish()

		summary := open(t, testDeps)

		testDeps.client.EXPECT().DeleteBooking(gomock.Any(), "1").
			Return(&backend.RemoteError{Status: http.StatusInternalServerError, Message: "boom"}).Times(1)

		state, err := summary.Cancel(testDeps.ctx, "1")

		require.Error(t, err)
		require.Len(t, state.Bookings, 2)
		require.Equal(t, bk.MsgCancelFailed, state.Notice.Text)
		require.Equal(t, view.SeverityError, state.Notice.Severity)
	})

	t.Run("unknown id", func(t *testing.T) {
		ctrl, testDeps := newTestDeps(t)
		defer ctrl.Finish()

		summary := open(t, testDeps)

		_, err := summary.Cancel(testDeps.ctx, "99")
		require.ErrorIs(t, err, view.ErrListingNotFound)
	})

	t.Run("closed view", func(t *testing.T) {
		ctrl, testDeps := newTestDeps(t)
		defer ctrl.Finish()

		summary := open(t, testDeps)
		summary.Close()

		_, err := summary.Cancel(testDeps.ctx, "1")
		require.ErrorIs(t, err, view.ErrViewClosed)
	})
}

func TestSummaryReopenAbandonsPreviousVisit(t *testing.T) {
	ctrl, testDeps := newTestDeps(t)
	defer ctrl.Finish()
	require.NoError(t, testDeps.session.Login(testDeps.ctx, "alice"))

	started := make(chan struct{})

	testDeps.client.EXPECT().ListBookings(gomock.Any(), "2026-10-20").DoAndReturn(func(ctx context.Context, date string) ([]backend.Booking, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}).Times(1)
	testDeps.client.EXPECT().ListBookings(gomock.Any(), "2026-10-21").Return([]backend.Booking{}, nil).Times(1)

	summary := view.NewSummary(testDeps.service)

	first := make(chan error, 1)
	go func() {
		_, err := summary.Open(testDeps.ctx, "2026-10-20")
		first <- err
	}()

	<-started

	state, err := summary.Open(testDeps.ctx, "2026-10-21")
	require.NoError(t, err)
	require.Equal(t, "2026-10-21", state.Date)

	require.ErrorIs(t, <-first, view.ErrSuperseded)
	require.Equal(t, "2026-10-21", summary.State().Date)
}

func TestSummaryAfterAnotherUserLogsIn(t *testing.T) {
	ctrl, testDeps := newTestDeps(t)
	defer ctrl.Finish()
	require.NoError(t, testDeps.session.Login(testDeps.ctx, "alice"))

	testDeps.client.EXPECT().ListBookings(gomock.Any(), "2026-10-20").Return(dayBookings, nil).Times(2)

	summary := view.NewSummary(testDeps.service)
	_, err := summary.Open(testDeps.ctx, "2026-10-20")
	require.NoError(t, err)

	require.NoError(t, testDeps.session.Logout(testDeps.ctx))
	require.NoError(t, testDeps.session.Login(testDeps.ctx, "bob"))

	state := summary.State()
	require.Empty(t, state.Date)
	require.Empty(t, state.Bookings)

	testDeps.client.EXPECT().DeleteBooking(gomock.Any(), gomock.Any()).Times(0)
	_, err = summary.Cancel(testDeps.ctx, "1")
	require.ErrorIs(t, err, view.ErrListingNotFound)

	state, err = summary.Open(testDeps.ctx, "2026-10-20")
	require.NoError(t, err)
	require.Equal(t, bk.HiddenContact, state.Bookings[0].Contact)
	require.False(t, state.Bookings[0].CanCancel)
	require.Equal(t, "0987654321", state.Bookings[1].Contact)
	require.True(t, state.Bookings[1].CanCancel)

	testDeps.client.EXPECT().DeleteBooking(gomock.Any(), "2").Return(nil).Times(1)

	state, err = summary.Cancel(testDeps.ctx, "2")
	require.NoError(t, err)
	require.Len(t, state.Bookings, 1)
	require.Equal(t, "1", state.Bookings[0].ID)
	require.Equal(t, bk.HiddenContact, state.Bookings[0].Contact)
	require.False(t, state.Bookings[0].CanCancel)
}
