// Package id provides ULID based identifiers for requests and generations.
//
// IDs are lexicographically sortable and carry a short type prefix so they
// read well in logs and response headers:
//   - req_*: inbound HTTP request
//   - gen_*: one run of the post generation pipeline
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RequestID identifies an inbound API request
type RequestID string

// GenerationID identifies one pipeline run
type GenerationID string

const (
	RequestPrefix    = "req"
	GenerationPrefix = "gen"
)

// Generator produces ULIDs from a shared entropy source
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator(rand.Reader)
	})
	return defaultGenerator
}

// NewGenerator creates a generator reading entropy from r.
// Tests pass a deterministic reader.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{entropy: r}
}

// New returns a fresh ULID
func (g *Generator) New() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// WithPrefix returns prefix_ULID
func (g *Generator) WithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.New().String())
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().WithPrefix(RequestPrefix))
}

// NewGenerationID generates a new generation ID
func NewGenerationID() GenerationID {
	return GenerationID(Default().WithPrefix(GenerationPrefix))
}

func (id RequestID) String() string    { return string(id) }
func (id GenerationID) String() string { return string(id) }

// IsValid reports whether s is a ULID, optionally prefixed.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Parse parses a bare or prefixed ULID
func Parse(s string) (ulid.ULID, error) {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	return ulid.Parse(s)
}

// Timestamp extracts the creation time encoded in an ID
func Timestamp(s string) (time.Time, error) {
	parsed, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
