package backend

type Booking struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Contact  string `json:"contact"`
	Guests   int    `json:"guests"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Username string `json:"username"`
}

type NewBooking struct {
	Name     string `json:"name"`
	Contact  string `json:"contact"`
	Guests   int    `json:"guests"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Username string `json:"username"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type User struct {
	Username string `json:"username"`
}

type createBookingResponse struct {
	Booking Booking `json:"booking"`
}

type loginResponse struct {
	User User `json:"user"`
}

type errorResponse struct {
	Message string `json:"message"`
}
