package view

import "errors"

var ErrViewClosed = errors.New("view is closed")

// ErrSuperseded is returned to a request whose result was replaced by a
// newer one before it arrived.
var ErrSuperseded = errors.New("request superseded by a newer one")

var ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")

var ErrPastDate = errors.New("date is in the past")

var ErrSlotsNotLoaded = errors.New("time slots for the selected date are not loaded")

var ErrUnknownSlot = errors.New("time is not a bookable slot")

var ErrSlotTaken = errors.New("time slot is already booked")

var ErrRedirectToEntry = errors.New("summary requires a logged in user and a date")

var ErrListingNotFound = errors.New("booking not found in summary")
