package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/restfulbooker/booker-contract-tests/client"
	"github.com/restfulbooker/booker-contract-tests/expect"
	"github.com/restfulbooker/booker-contract-tests/framework"
	"github.com/restfulbooker/booker-contract-tests/payload"
	"github.com/restfulbooker/booker-contract-tests/servicedef"
)

// FailureKind classifies why a step failed.
type FailureKind string

const (
	// TransportFailure means no HTTP response was received. The scenario stops.
	TransportFailure FailureKind = "transport failure"
	// UnexpectedStatus means the status code was not one of those expected. The scenario stops.
	UnexpectedStatus FailureKind = "unexpected status"
	// AssertionMismatch means a field of the response was wrong. Later steps still run.
	AssertionMismatch FailureKind = "assertion mismatch"
	// AuthRefused means the service did not issue a token where one was needed or expected.
	AuthRefused FailureKind = "auth refused"
	// SetupFailure means the step could not be attempted, for instance because there was no
	// booking id to act on. The scenario stops.
	SetupFailure FailureKind = "setup failure"
)

// Failure is one problem found while running a step.
type Failure struct {
	Step    string
	Kind    FailureKind
	Message string
}

func (f Failure) Error() string {
	return fmt.Sprintf("step %q: %s: %s", f.Step, f.Kind, f.Message)
}

// StepResult records the outcome of a single step.
type StepResult struct {
	Name     string
	Action   Action
	Status   int
	Duration time.Duration
	Failures []Failure
	// Skipped is true if the step was not run because an earlier step stopped the scenario.
	Skipped bool
}

func (s StepResult) Passed() bool {
	return !s.Skipped && len(s.Failures) == 0
}

// Result records the outcome of an entire scenario.
type Result struct {
	Scenario string
	Passed   bool
	Steps    []StepResult
	Duration time.Duration
}

// Failures returns every failure of every step, in order.
func (r Result) Failures() []Failure {
	var ret []Failure
	for _, s := range r.Steps {
		ret = append(ret, s.Failures...)
	}
	return ret
}

// Runner executes scenarios. It holds no per-scenario state, so one Runner can run many
// scenarios concurrently.
type Runner struct {
	client  *client.Client
	auth    *client.AuthProvider
	builder *payload.Builder
}

func NewRunner(c *client.Client, auth *client.AuthProvider, builder *payload.Builder) *Runner {
	return &Runner{client: c, auth: auth, builder: builder}
}

// state is what one scenario's steps pass along to later steps.
type state struct {
	bookingID    int
	hasBookingID bool
	token        string
	// authenticated is set once an AUTHENTICATE step gets an answer, even a refusal. From then
	// on token is the only token used, and an empty one means no cookie is sent.
	authenticated bool
}

// Run executes the steps of s in order. A step that fails in a way that makes later steps
// meaningless (no response, wrong status, missing inputs) stops the scenario, and the remaining
// steps are reported as skipped. The call log for every step is written to logger.
func (r *Runner) Run(ctx context.Context, s Scenario, logger framework.Logger) Result {
	if logger == nil {
		logger = framework.NullLogger()
	}
	start := time.Now()
	result := Result{Scenario: s.Name, Passed: true}
	var st state
	stopped := false

	for i, step := range s.Steps {
		name := step.displayName(i)
		if stopped {
			result.Steps = append(result.Steps, StepResult{Name: name, Action: step.Action, Skipped: true})
			logger.Printf("[%s] skipped", name)
			continue
		}
		stepLogger := framework.PrefixedLogger(logger, "["+name+"] ")
		sr, stop := r.runStep(ctx, step, name, &st, stepLogger)
		for _, f := range sr.Failures {
			stepLogger.Printf("%s: %s", f.Kind, f.Message)
		}
		result.Steps = append(result.Steps, sr)
		if !sr.Passed() {
			result.Passed = false
		}
		stopped = stop
	}

	result.Duration = time.Since(start)
	return result
}

func (r *Runner) runStep(ctx context.Context, step Step, name string, st *state, logger framework.Logger) (StepResult, bool) {
	start := time.Now()
	sr := StepResult{Name: name, Action: step.Action}
	fail := func(kind FailureKind, format string, args ...interface{}) {
		sr.Failures = append(sr.Failures, Failure{Step: name, Kind: kind, Message: fmt.Sprintf(format, args...)})
	}
	finish := func(stop bool) (StepResult, bool) {
		sr.Duration = time.Since(start)
		return sr, stop
	}

	var bookingID int
	if step.Action.needsBookingID() {
		switch {
		case step.BookingID != nil:
			bookingID = *step.BookingID
		case st.hasBookingID:
			bookingID = st.bookingID
		default:
			fail(SetupFailure, "no booking id: set bookingId or create a booking in an earlier step")
			return finish(true)
		}
	}

	var token string
	if step.Action.needsToken() && !step.WithoutToken {
		token = st.token
		if !st.authenticated {
			t, ok, err := r.auth.Token(ctx, logger)
			switch {
			case err != nil:
				var te *client.TransportError
				if errors.As(err, &te) {
					fail(TransportFailure, "getting token: %s", err)
				} else {
					fail(AuthRefused, "getting token: %s", err)
				}
				return finish(true)
			case !ok:
				fail(AuthRefused, "credentials for %q were refused", r.auth.Credentials().Username)
				return finish(true)
			}
			token = t
		}
	}

	var body []byte
	if step.Action.hasBody() {
		body = r.builder.BuildJSON(step.BodyFields())
	}

	var (
		resp     client.Response
		err      error
		refused  bool
		newToken string
	)
	switch step.Action {
	case Ping:
		resp, err = r.client.Get(ctx, servicedef.PingPath, logger)
	case Authenticate:
		creds := r.auth.Credentials()
		if step.Credentials != nil {
			creds = *step.Credentials
		}
		var ar client.AuthResult
		ar, err = r.auth.Authenticate(ctx, creds, logger)
		resp = ar.Response
		refused = ar.Refused()
		if ar.OK() {
			newToken = ar.Token.StringValue()
		}
	case CreateBooking:
		resp, err = r.client.Post(ctx, servicedef.BookingPath, body, logger)
	case GetBooking:
		resp, err = r.client.Get(ctx, servicedef.BookingItemPath(bookingID), logger)
	case ListBookings:
		resp, err = r.client.Get(ctx, servicedef.BookingPath, logger)
	case UpdateBooking:
		resp, err = r.client.Put(ctx, servicedef.BookingItemPath(bookingID), body, token, logger)
	case DeleteBooking:
		resp, err = r.client.Delete(ctx, servicedef.BookingItemPath(bookingID), token, logger)
	default:
		fail(SetupFailure, "unknown action %q", step.Action)
		return finish(true)
	}
	if err != nil {
		fail(TransportFailure, "%s", err)
		return finish(true)
	}
	sr.Status = resp.StatusCode

	if step.Action == Authenticate {
		st.token, st.authenticated = newToken, true
		if newToken == "" {
			logger.Printf("no token issued; later steps send none")
		}
	}
	if step.Action == CreateBooking && resp.StatusCode == 200 {
		if id := resp.JSON().GetByKey("bookingid"); id.IsNumber() {
			st.bookingID, st.hasBookingID = id.IntValue(), true
			logger.Printf("created booking %d", st.bookingID)
		}
	}

	outcome := step.Expect.Check(resp)
	for _, m := range outcome.Mismatches {
		kind := AssertionMismatch
		switch {
		case m.Kind == expect.StatusMismatch:
			kind = UnexpectedStatus
		case refused && m.Path == "token":
			kind = AuthRefused
		}
		fail(kind, "%s", m.Error())
	}
	return finish(outcome.StatusFailed())
}
