package bookertests

import (
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/restfulbooker/booker-contract-tests/expect"
	"github.com/restfulbooker/booker-contract-tests/payload"
	"github.com/restfulbooker/booker-contract-tests/scenario"
	"github.com/restfulbooker/booker-contract-tests/servicedef"
)

// Entry is one scenario of the suite. Its test id is Group/Scenario.Name.
type Entry struct {
	Group    string
	Scenario scenario.Scenario
}

// FileGroup is the group that scenarios loaded from files are reported under.
const FileGroup = "files"

// NonexistentBookingID is an id that the service is not expected to have.
const NonexistentBookingID = 99999999

var badCredentials = servicedef.Credentials{Username: "usuarioErrado", Password: "senhaErrada"}

func steps(s ...scenario.Step) []scenario.Step { return s }

func expectStatus(code int, more ...expect.Expectation) expect.Set {
	return append(expect.Set{expect.Status(code)}, more...)
}

// AllScenarios returns the built-in suite, in the order it is reported.
func AllScenarios() []Entry {
	return []Entry{
		{"ping", scenario.Scenario{
			Name:        "service answers repeated pings",
			Description: "GET /ping always answers 201",
			Steps: steps(
				scenario.Step{Action: scenario.Ping, Expect: expectStatus(201)},
				scenario.Step{Action: scenario.Ping, Expect: expectStatus(201)},
				scenario.Step{Action: scenario.Ping, Expect: expectStatus(201)},
			),
		}},

		{"auth", scenario.Scenario{
			Name: "valid credentials get a token",
			Steps: steps(
				scenario.Step{Action: scenario.Authenticate,
					Expect: expectStatus(200, expect.NotNull("token"), expect.NotEmpty("token"))},
			),
		}},
		{"auth", scenario.Scenario{
			Name:        "invalid credentials get no token",
			Description: "the service reports bad credentials with a 200 status and no token",
			Steps: steps(
				scenario.Step{Action: scenario.Authenticate, Credentials: &badCredentials,
					Expect: expectStatus(200, expect.Null("token"))},
			),
		}},

		{"create booking", scenario.Scenario{
			Name: "generated payload is echoed back",
			Steps: steps(
				scenario.Step{Action: scenario.CreateBooking, Fields: payload.RandomBooking(),
					Expect: expectStatus(200,
						expect.NotNull("bookingid"),
						expect.Echoes("booking.firstname", "firstname"),
						expect.Echoes("booking.lastname", "lastname"),
						expect.Echoes("booking.totalprice", "totalprice"),
						expect.Echoes("booking.depositpaid", "depositpaid"),
					)},
			),
		}},
		{"create booking", scenario.Scenario{
			Name: "fixed payload is echoed back",
			Steps: steps(
				scenario.Step{Action: scenario.CreateBooking, Fields: payload.DefaultBooking(),
					Expect: expectStatus(200,
						expect.NotNull("bookingid"),
						expect.Equals("booking.firstname", ldvalue.String("Gabriel")),
						expect.Equals("booking.lastname", ldvalue.String("Testador")),
						expect.Equals("booking.totalprice", ldvalue.Int(150)),
						expect.Equals("booking.depositpaid", ldvalue.Bool(true)),
						expect.Equals("booking.bookingdates.checkin", ldvalue.String("2025-08-01")),
						expect.Equals("booking.bookingdates.checkout", ldvalue.String("2025-08-10")),
						expect.Equals("booking.additionalneeds", ldvalue.String("Café da manhã")),
					)},
			),
		}},
		{"create booking", scenario.Scenario{
			Name:        "missing required fields are rejected",
			Description: "the service has answered both 400 and 500 for this; either is accepted",
			Steps: steps(
				scenario.Step{Action: scenario.CreateBooking,
					Fields: payload.Fields{"lastname": payload.String("Silva")},
					Expect: expect.Set{expect.StatusIn(400, 500)}},
			),
		}},

		{"get booking", scenario.Scenario{
			Name: "list contains booking ids",
			Steps: steps(
				scenario.Step{Action: scenario.ListBookings, Expect: expectStatus(200, expect.NotEmpty("bookingid"))},
			),
		}},
		{"get booking", scenario.Scenario{
			Name: "created booking can be fetched",
			Steps: steps(
				scenario.Step{Name: "create", Action: scenario.CreateBooking, Fields: payload.RandomBooking(),
					Expect: expectStatus(200, expect.NotNull("bookingid"))},
				scenario.Step{Name: "fetch", Action: scenario.GetBooking,
					Expect: expectStatus(200, expect.NotNull("firstname"), expect.NotNull("bookingdates.checkin"))},
			),
		}},
		{"get booking", scenario.Scenario{
			Name: "nonexistent booking is not found",
			Steps: steps(
				scenario.Step{Action: scenario.GetBooking, BookingID: scenario.ID(NonexistentBookingID),
					Expect: expectStatus(404)},
			),
		}},

		{"update booking", scenario.Scenario{
			Name:        "update with token round trip",
			Description: "create, authenticate, replace the booking, then fetch the new values",
			Steps: steps(
				scenario.Step{Name: "create", Action: scenario.CreateBooking, Fields: payload.RandomBooking(),
					Expect: expectStatus(200, expect.NotNull("bookingid"))},
				scenario.Step{Name: "authenticate", Action: scenario.Authenticate,
					Expect: expectStatus(200, expect.NotEmpty("token"))},
				scenario.Step{Name: "update", Action: scenario.UpdateBooking, Fields: payload.UpdatedBooking(),
					Expect: expectStatus(200,
						expect.Equals("firstname", ldvalue.String("Atualizado")),
						expect.Equals("lastname", ldvalue.String("Teste")),
					)},
				scenario.Step{Name: "fetch", Action: scenario.GetBooking,
					Expect: expectStatus(200,
						expect.Equals("lastname", ldvalue.String("Teste")),
						expect.Equals("totalprice", ldvalue.Int(250)),
						expect.Equals("additionalneeds", ldvalue.String("Jantar")),
					)},
			),
		}},
		{"update booking", scenario.Scenario{
			Name:        "update uses the run's token when none was obtained",
			Description: "no AUTHENTICATE step; the token comes from the configured credentials",
			Steps: steps(
				scenario.Step{Name: "create", Action: scenario.CreateBooking, Fields: payload.DefaultBooking(),
					Expect: expectStatus(200)},
				scenario.Step{Name: "update", Action: scenario.UpdateBooking,
					Fields: payload.DefaultBooking().With("lastname", payload.String("Teste")),
					Expect: expectStatus(200, expect.Equals("lastname", ldvalue.String("Teste")))},
			),
		}},
		{"update booking", scenario.Scenario{
			Name: "update without token is forbidden",
			Steps: steps(
				scenario.Step{Action: scenario.UpdateBooking, BookingID: scenario.ID(1), WithoutToken: true,
					Fields: payload.Fields{"firstname": payload.String("Atualizado")},
					Expect: expectStatus(403)},
			),
		}},

		{"delete booking", scenario.Scenario{
			Name: "delete with token removes the booking",
			Steps: steps(
				scenario.Step{Name: "create", Action: scenario.CreateBooking, Fields: payload.RandomBooking(),
					Expect: expectStatus(200)},
				scenario.Step{Name: "authenticate", Action: scenario.Authenticate,
					Expect: expectStatus(200, expect.NotEmpty("token"))},
				scenario.Step{Name: "delete", Action: scenario.DeleteBooking, Expect: expectStatus(201)},
				scenario.Step{Name: "fetch", Action: scenario.GetBooking, Expect: expectStatus(404)},
			),
		}},
		{"delete booking", scenario.Scenario{
			Name: "delete without token is forbidden",
			Steps: steps(
				scenario.Step{Name: "create", Action: scenario.CreateBooking, Fields: payload.RandomBooking(),
					Expect: expectStatus(200)},
				scenario.Step{Name: "delete", Action: scenario.DeleteBooking, WithoutToken: true,
					Expect: expectStatus(403)},
				scenario.Step{Name: "fetch", Action: scenario.GetBooking, Expect: expectStatus(200)},
			),
		}},
	}
}

// FileEntries puts scenarios loaded from files into FileGroup.
func FileEntries(scenarios []scenario.Scenario) []Entry {
	ret := make([]Entry, 0, len(scenarios))
	for _, s := range scenarios {
		ret = append(ret, Entry{Group: FileGroup, Scenario: s})
	}
	return ret
}
