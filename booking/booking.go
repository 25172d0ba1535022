package booking

import "github.com/tablebook/booking-client/backend"

// HiddenContact replaces the contact of bookings the viewer does not own.
const HiddenContact = "Hidden for privacy"

// Draft is a booking being filled in, not yet sent to the booking API.
type Draft struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Guests  int    `json:"guests"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

// Listing is a booking as shown to a given viewer.
type Listing struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	Guests    int    `json:"guests"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Username  string `json:"username"`
	Owned     bool   `json:"owned"`
	CanCancel bool   `json:"canCancel"`
}

// Schedule describes the bookable part of a business day.
type Schedule struct {
	Open     string `json:"open"`
	Close    string `json:"close"`
	Interval int    `json:"interval"`
}

var DefaultSchedule = Schedule{Open: "10:00", Close: "22:00", Interval: 30}

// Redact builds the listings of bookings as seen by viewer. Contacts are only
// kept on bookings owned by viewer, and only those can be canceled.
func Redact(bookings []backend.Booking, viewer string) []Listing {
	listings := make([]Listing, 0, len(bookings))

	for _, b := range bookings {
		owned := isOwner(b.Username, viewer)

		listing := Listing{
			ID:        b.ID,
			Name:      b.Name,
			Contact:   HiddenContact,
			Guests:    b.Guests,
			Date:      b.Date,
			Time:      b.Time,
			Username:  b.Username,
			Owned:     owned,
			CanCancel: owned,
		}

		if owned {
			listing.Contact = b.Contact
		}

		listings = append(listings, listing)
	}

	return listings
}

func isOwner(owner, viewer string) bool {
	return len(viewer) != 0 && owner == viewer
}
