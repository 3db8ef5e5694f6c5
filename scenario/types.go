// Package scenario runs ordered sequences of calls against the booking service and checks each
// response.
//
// A scenario is a list of steps. Each step performs one Action, such as creating a booking, and
// checks the response against an expect.Set. Values produced by one step are available to later
// steps in the same scenario: a booking created by CREATE_BOOKING is the default target of
// GET_BOOKING, UPDATE_BOOKING, and DELETE_BOOKING, and a token obtained by AUTHENTICATE is used by
// later updates and deletes.
package scenario

import (
	"errors"
	"fmt"

	"github.com/restfulbooker/booker-contract-tests/expect"
	"github.com/restfulbooker/booker-contract-tests/payload"
	"github.com/restfulbooker/booker-contract-tests/servicedef"
)

// Action is the operation a step performs.
type Action string

const (
	Ping          Action = "PING"
	Authenticate  Action = "AUTHENTICATE"
	CreateBooking Action = "CREATE_BOOKING"
	GetBooking    Action = "GET_BOOKING"
	ListBookings  Action = "LIST_BOOKINGS"
	UpdateBooking Action = "UPDATE_BOOKING"
	DeleteBooking Action = "DELETE_BOOKING"
)

var allActions = []Action{Ping, Authenticate, CreateBooking, GetBooking, ListBookings, UpdateBooking, DeleteBooking}

func (a Action) valid() bool {
	for _, x := range allActions {
		if a == x {
			return true
		}
	}
	return false
}

func (a Action) needsBookingID() bool {
	return a == GetBooking || a == UpdateBooking || a == DeleteBooking
}

func (a Action) needsToken() bool {
	return a == UpdateBooking || a == DeleteBooking
}

func (a Action) hasBody() bool {
	return a == CreateBooking || a == UpdateBooking
}

// Scenario is a named, ordered list of steps.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Steps       []Step `yaml:"steps"`

	// Source is the file the scenario was loaded from, if any.
	Source string `yaml:"-"`
}

// Step is one call to the service and the expectations for its response.
type Step struct {
	Name   string `yaml:"name,omitempty"`
	Action Action `yaml:"action"`

	// Credentials are used by AUTHENTICATE. If nil, the runner's configured credentials are used.
	Credentials *servicedef.Credentials `yaml:"credentials,omitempty"`

	// Payload names a canned booking body ("default", "random", or "updated") that Fields are
	// applied on top of, for CREATE_BOOKING and UPDATE_BOOKING.
	Payload string         `yaml:"payload,omitempty"`
	Fields  payload.Fields `yaml:"fields,omitempty"`

	// BookingID targets a specific booking. If nil, the booking created by the most recent
	// successful CREATE_BOOKING step is used.
	BookingID *int `yaml:"bookingId,omitempty"`

	// WithoutToken makes UPDATE_BOOKING or DELETE_BOOKING send no token at all.
	WithoutToken bool `yaml:"withoutToken,omitempty"`

	Expect expect.Set `yaml:"expect"`
}

// ID returns a pointer to id, for use as Step.BookingID.
func ID(id int) *int { return &id }

var cannedPayloads = map[string]func() payload.Fields{
	"default": payload.DefaultBooking,
	"random":  payload.RandomBooking,
	"updated": payload.UpdatedBooking,
}

// BodyFields returns the fields of the request body: the named canned payload, if any, with
// Fields applied on top.
func (s Step) BodyFields() payload.Fields {
	ret := payload.Fields{}
	if canned, ok := cannedPayloads[s.Payload]; ok {
		ret = canned()
	}
	for k, v := range s.Fields {
		ret = ret.With(k, v)
	}
	return ret
}

func (s Step) displayName(index int) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("%d %s", index+1, s.Action)
}

// Validate checks that the scenario is well-formed. It does not contact the service.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if len(s.Steps) == 0 {
		return errors.New("at least one step is required")
	}
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("step %q: %w", step.displayName(i), err)
		}
	}
	return nil
}

func (s Step) validate() error {
	if !s.Action.valid() {
		return fmt.Errorf("unknown action %q", s.Action)
	}
	if len(s.Expect) == 0 {
		return errors.New("no expectations: a step must check at least the status")
	}
	if s.Payload != "" {
		if _, ok := cannedPayloads[s.Payload]; !ok {
			return fmt.Errorf("unknown payload %q", s.Payload)
		}
	}
	if (s.Payload != "" || len(s.Fields) != 0) && !s.Action.hasBody() {
		return fmt.Errorf("%s does not take a request body", s.Action)
	}
	if s.Credentials != nil && s.Action != Authenticate {
		return fmt.Errorf("%s does not take credentials", s.Action)
	}
	if s.WithoutToken && !s.Action.needsToken() {
		return fmt.Errorf("%s does not use a token", s.Action)
	}
	if s.BookingID != nil && !s.Action.needsBookingID() {
		return fmt.Errorf("%s does not take a booking id", s.Action)
	}
	if dates, ok := literalDates(s.BodyFields()); ok {
		if err := dates.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// literalDates returns the booking dates if both are fixed strings.
func literalDates(fields payload.Fields) (servicedef.BookingDates, bool) {
	var dates servicedef.BookingDates
	if obj, ok := fields["bookingdates"]; ok && !obj.IsGenerated() {
		v := obj.LiteralValue()
		dates.Checkin = v.GetByKey("checkin").StringValue()
		dates.Checkout = v.GetByKey("checkout").StringValue()
	}
	if in, ok := fields["bookingdates.checkin"]; ok && !in.IsGenerated() {
		dates.Checkin = in.LiteralValue().StringValue()
	}
	if out, ok := fields["bookingdates.checkout"]; ok && !out.IsGenerated() {
		dates.Checkout = out.LiteralValue().StringValue()
	}
	return dates, dates.Checkin != "" && dates.Checkout != ""
}
