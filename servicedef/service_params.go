// Package servicedef describes the HTTP surface of the restful-booker service that the
// contract tests are run against.
package servicedef

import (
	"fmt"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	PingPath    = "/ping"
	AuthPath    = "/auth"
	BookingPath = "/booking"

	// TokenCookie is the name of the cookie that carries the auth token on mutating requests.
	TokenCookie = "token"

	// DateFormat is the layout used for bookingdates.checkin and bookingdates.checkout.
	DateFormat = "2006-01-02"
)

// BookingItemPath returns the path of a single booking.
func BookingItemPath(id int) string {
	return fmt.Sprintf("%s/%d", BookingPath, id)
}

// Credentials is the request body for POST /auth.
type Credentials struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// AuthResponse is the response body for POST /auth. The service answers 200 even for bad
// credentials, in which case Token is undefined and Reason says why.
type AuthResponse struct {
	Token  ldvalue.OptionalString `json:"token"`
	Reason ldvalue.OptionalString `json:"reason"`
}

// BookingDates is the nested date range of a booking.
type BookingDates struct {
	Checkin  string `json:"checkin"`
	Checkout string `json:"checkout"`
}

// Validate returns an error if either date is malformed or checkout precedes checkin.
func (d BookingDates) Validate() error {
	in, err := time.Parse(DateFormat, d.Checkin)
	if err != nil {
		return fmt.Errorf("invalid checkin date %q: %w", d.Checkin, err)
	}
	out, err := time.Parse(DateFormat, d.Checkout)
	if err != nil {
		return fmt.Errorf("invalid checkout date %q: %w", d.Checkout, err)
	}
	if out.Before(in) {
		return fmt.Errorf("checkout %s is before checkin %s", d.Checkout, d.Checkin)
	}
	return nil
}

// Booking is the full booking representation used by POST /booking, PUT /booking/{id}, and
// GET /booking/{id}.
type Booking struct {
	Firstname       string       `json:"firstname"`
	Lastname        string       `json:"lastname"`
	TotalPrice      int          `json:"totalprice"`
	DepositPaid     bool         `json:"depositpaid"`
	BookingDates    BookingDates `json:"bookingdates"`
	AdditionalNeeds string       `json:"additionalneeds,omitempty"`
}

// CreateBookingResponse is the response body for POST /booking.
type CreateBookingResponse struct {
	BookingID int     `json:"bookingid"`
	Booking   Booking `json:"booking"`
}

// BookingIDEntry is one element of the GET /booking list.
type BookingIDEntry struct {
	BookingID int `json:"bookingid"`
}
