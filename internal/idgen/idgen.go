// Package idgen hands out process-unique identifiers for groups and conditions.
// Ids are ULIDs: a millisecond timestamp followed by monotonic entropy, so two
// ids minted in the same millisecond still sort in creation order.
package idgen

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator produces unique string ids. The zero value is not usable; call New.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// Option configures a Generator
type Option func(*Generator)

// WithClock replaces the wall clock, used by tests
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// New creates a generator backed by crypto/rand with monotonic entropy
func New(opts ...Option) *Generator {
	g := &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns a new id. Monotonic entropy is not safe for concurrent use,
// so calls are serialized.
func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
	return id.String()
}

var (
	defaultOnce sync.Once
	defaultGen  *Generator
)

// Default returns the process-wide generator. It is created on first use
// and never reset.
func Default() *Generator {
	defaultOnce.Do(func() {
		defaultGen = New()
	})
	return defaultGen
}

// Next returns a new id from the process-wide generator
func Next() string {
	return Default().Next()
}
