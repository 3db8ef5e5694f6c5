package fakebooker

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/restfulbooker/booker-contract-tests/servicedef"
)

// Store holds bookings and issued tokens in memory. It is safe for concurrent use.
type Store struct {
	bookings map[int]servicedef.Booking
	tokens   map[string]struct{}
	nextID   int
	lock     sync.Mutex
}

func NewStore() *Store {
	return &Store{
		bookings: make(map[int]servicedef.Booking),
		tokens:   make(map[string]struct{}),
		nextID:   1,
	}
}

// Seed adds bookings as if they had been created in order.
func (s *Store) Seed(bookings ...servicedef.Booking) {
	for _, b := range bookings {
		s.Create(b)
	}
}

func (s *Store) Create(b servicedef.Booking) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	id := s.nextID
	s.nextID++
	s.bookings[id] = b
	return id
}

func (s *Store) Get(id int) (servicedef.Booking, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	b, ok := s.bookings[id]
	return b, ok
}

// Replace overwrites an existing booking. It returns false if there is none with that id.
func (s *Store) Replace(id int, b servicedef.Booking) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return false
	}
	s.bookings[id] = b
	return true
}

func (s *Store) Delete(id int) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return false
	}
	delete(s.bookings, id)
	return true
}

// IDs returns the ids of all bookings, optionally only those whose guest name matches the
// non-empty arguments.
func (s *Store) IDs(firstname, lastname string) []int {
	s.lock.Lock()
	defer s.lock.Unlock()
	ret := make([]int, 0, len(s.bookings))
	for id, b := range s.bookings {
		if (firstname == "" || b.Firstname == firstname) && (lastname == "" || b.Lastname == lastname) {
			ret = append(ret, id)
		}
	}
	sort.Ints(ret)
	return ret
}

// IssueToken creates a new token. Tokens never expire.
func (s *Store) IssueToken() string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:15]
	s.lock.Lock()
	s.tokens[token] = struct{}{}
	s.lock.Unlock()
	return token
}

func (s *Store) ValidToken(token string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	_, ok := s.tokens[token]
	return ok
}
