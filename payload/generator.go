package payload

import (
	"sync"

	"github.com/brianvoe/gofakeit/v6"
)

// Generator supplies the random parts of a payload.
type Generator interface {
	FirstName() string
	LastName() string
	// IntBetween returns an integer in the closed range [min, max].
	IntBetween(min, max int) int
	Bool() bool
}

// FakeGenerator produces realistic values with gofakeit. It is safe for concurrent use.
type FakeGenerator struct {
	faker *gofakeit.Faker
	lock  sync.Mutex
}

// NewFakeGenerator creates a FakeGenerator. The same non-zero seed always produces the same
// sequence of values; a zero seed picks a random one.
func NewFakeGenerator(seed int64) *FakeGenerator {
	return &FakeGenerator{faker: gofakeit.New(seed)}
}

func (g *FakeGenerator) FirstName() string {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.faker.FirstName()
}

func (g *FakeGenerator) LastName() string {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.faker.LastName()
}

func (g *FakeGenerator) IntBetween(min, max int) int {
	if max < min {
		min, max = max, min
	}
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.faker.Number(min, max)
}

func (g *FakeGenerator) Bool() bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.faker.Bool()
}

// FixedGenerator always returns the same values. IntBetween returns Int clamped to the requested
// range.
type FixedGenerator struct {
	First string
	Last  string
	Int   int
	Flag  bool
}

func (g FixedGenerator) FirstName() string { return g.First }
func (g FixedGenerator) LastName() string  { return g.Last }
func (g FixedGenerator) Bool() bool        { return g.Flag }

func (g FixedGenerator) IntBetween(min, max int) int {
	if max < min {
		min, max = max, min
	}
	switch {
	case g.Int < min:
		return min
	case g.Int > max:
		return max
	default:
		return g.Int
	}
}
