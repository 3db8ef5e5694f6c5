// Package fakebooker is an in-memory imitation of the restful-booker service. It reproduces the
// status codes and bodies of the real service closely enough to exercise the contract tests
// without network access.
package fakebooker

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/restfulbooker/booker-contract-tests/servicedef"
)

// DefaultCredentials are the credentials the real service accepts.
var DefaultCredentials = servicedef.Credentials{Username: "admin", Password: "password123"}

// Options configures a Server.
type Options struct {
	// Credentials are the only credentials that get a token. Defaults to DefaultCredentials.
	Credentials servicedef.Credentials
	// MissingFieldStatus is returned when a created booking lacks a required field. The real
	// service has answered both 400 and 500 for this over time. Defaults to 500.
	MissingFieldStatus int
	// Latency is added to every response.
	Latency time.Duration
	// Empty starts the server with no bookings instead of the sample bookings.
	Empty  bool
	Logger *zap.Logger
}

// SampleBookings are present when a Server starts, unless Options.Empty is set.
func SampleBookings() []servicedef.Booking {
	return []servicedef.Booking{
		{
			Firstname:       "Sally",
			Lastname:        "Brown",
			TotalPrice:      111,
			DepositPaid:     true,
			BookingDates:    servicedef.BookingDates{Checkin: "2013-02-23", Checkout: "2014-10-23"},
			AdditionalNeeds: "Breakfast",
		},
		{
			Firstname:    "Jim",
			Lastname:     "Wilson",
			TotalPrice:   642,
			DepositPaid:  false,
			BookingDates: servicedef.BookingDates{Checkin: "2017-05-11", Checkout: "2018-01-03"},
		},
	}
}

// Server handles the booking API.
type Server struct {
	store  *Store
	opts   Options
	router chi.Router
}

// New creates a Server with an empty store.
func New(opts Options) *Server {
	if opts.Credentials == (servicedef.Credentials{}) {
		opts.Credentials = DefaultCredentials
	}
	if opts.MissingFieldStatus == 0 {
		opts.MissingFieldStatus = http.StatusInternalServerError
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Server{store: NewStore(), opts: opts}
	if !opts.Empty {
		s.store.Seed(SampleBookings()...)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(s.requestLog)
	r.Use(chimw.Recoverer)
	if opts.Latency > 0 {
		r.Use(s.latency)
	}
	r.Get(servicedef.PingPath, s.ping)
	r.Post(servicedef.AuthPath, s.auth)
	r.Route(servicedef.BookingPath, func(r chi.Router) {
		r.Get("/", s.listBookings)
		r.Post("/", s.createBooking)
		r.Get("/{id}", s.getBooking)
		r.Put("/{id}", s.updateBooking)
		r.Delete("/{id}", s.deleteBooking)
	})
	s.router = r
	return s
}

// Store returns the server's store, so that tests can seed or inspect it.
func (s *Server) Store() *Store { return s.store }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.opts.Logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", r.Header.Get("X-Request-Id")),
		)
	})
}

func (s *Server) latency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(s.opts.Latency):
		case <-r.Context().Done():
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeText answers with the status text as a plain body, as the real service does for errors.
func writeText(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(http.StatusText(status)))
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusCreated)
}

func (s *Server) auth(w http.ResponseWriter, r *http.Request) {
	var creds servicedef.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds != s.opts.Credentials {
		writeJSON(w, http.StatusOK, map[string]string{"reason": "Bad credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": s.store.IssueToken()})
}

// authorized accepts either the token cookie or basic auth with the configured credentials.
func (s *Server) authorized(r *http.Request) bool {
	if c, err := r.Cookie(servicedef.TokenCookie); err == nil && s.store.ValidToken(c.Value) {
		return true
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Basic ") {
		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(h, "Basic "))
		if err == nil {
			user, pass, _ := strings.Cut(string(raw), ":")
			return user == s.opts.Credentials.Username && pass == s.opts.Credentials.Password
		}
	}
	return false
}

func bookingID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil
}

type bookingInput struct {
	Firstname    *string `json:"firstname"`
	Lastname     *string `json:"lastname"`
	TotalPrice   *int    `json:"totalprice"`
	DepositPaid  *bool   `json:"depositpaid"`
	BookingDates *struct {
		Checkin  *string `json:"checkin"`
		Checkout *string `json:"checkout"`
	} `json:"bookingdates"`
	AdditionalNeeds string `json:"additionalneeds"`
}

func decodeBooking(r *http.Request) (servicedef.Booking, bool) {
	var in bookingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return servicedef.Booking{}, false
	}
	if in.Firstname == nil || in.Lastname == nil || in.TotalPrice == nil || in.DepositPaid == nil ||
		in.BookingDates == nil || in.BookingDates.Checkin == nil || in.BookingDates.Checkout == nil {
		return servicedef.Booking{}, false
	}
	return servicedef.Booking{
		Firstname:   *in.Firstname,
		Lastname:    *in.Lastname,
		TotalPrice:  *in.TotalPrice,
		DepositPaid: *in.DepositPaid,
		BookingDates: servicedef.BookingDates{
			Checkin:  *in.BookingDates.Checkin,
			Checkout: *in.BookingDates.Checkout,
		},
		AdditionalNeeds: in.AdditionalNeeds,
	}, true
}

func (s *Server) listBookings(w http.ResponseWriter, r *http.Request) {
	ids := s.store.IDs(r.URL.Query().Get("firstname"), r.URL.Query().Get("lastname"))
	ret := make([]servicedef.BookingIDEntry, 0, len(ids))
	for _, id := range ids {
		ret = append(ret, servicedef.BookingIDEntry{BookingID: id})
	}
	writeJSON(w, http.StatusOK, ret)
}

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	b, ok := decodeBooking(r)
	if !ok {
		writeText(w, s.opts.MissingFieldStatus)
		return
	}
	id := s.store.Create(b)
	s.opts.Logger.Info("booking created", zap.Int("bookingid", id))
	writeJSON(w, http.StatusOK, servicedef.CreateBookingResponse{BookingID: id, Booking: b})
}

func (s *Server) getBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(r)
	if !ok {
		writeText(w, http.StatusNotFound)
		return
	}
	b, ok := s.store.Get(id)
	if !ok {
		writeText(w, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) updateBooking(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeText(w, http.StatusForbidden)
		return
	}
	b, ok := decodeBooking(r)
	if !ok {
		writeText(w, http.StatusBadRequest)
		return
	}
	id, ok := bookingID(r)
	if !ok || !s.store.Replace(id, b) {
		writeText(w, http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) deleteBooking(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeText(w, http.StatusForbidden)
		return
	}
	id, ok := bookingID(r)
	if !ok || !s.store.Delete(id) {
		writeText(w, http.StatusMethodNotAllowed)
		return
	}
	s.opts.Logger.Info("booking deleted", zap.Int("bookingid", id))
	writeText(w, http.StatusCreated)
}
