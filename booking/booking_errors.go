package booking

import "errors"

var ErrUnauthenticated = errors.New("you must be logged in to make a booking")

var ErrNotAllowed = errors.New("not allowed to perform this operation")

var ErrIncompleteDraft = errors.New("booking is missing a date or a time slot")

// Fallback messages shown when the booking API gives no message of its own.
const (
	MsgCreateFailed = "Error creating booking"
	MsgLoginFailed  = "Error during login"
	MsgSignupFailed = "Error during signup"
	MsgFetchFailed  = "Error fetching bookings"
	MsgCancelFailed = "Failed to cancel booking. Please try again."
	MsgCanceled     = "Your booking has been canceled successfully."
)
