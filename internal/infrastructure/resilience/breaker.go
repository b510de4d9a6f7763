package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures a breaker guarding one upstream.
type Settings struct {
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32
	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration
	// HalfOpenProbes is the number of successful probes needed to close again.
	HalfOpenProbes uint32
	// IsFailure decides whether an error counts against the upstream.
	// Caller side errors such as a cancelled context should return false.
	IsFailure func(err error) bool
	// OnStateChange is called with the lock released.
	OnStateChange func(name string, from, to State)
}

// Counts holds statistics for the current state period.
type Counts struct {
	Requests             uint32
	Successes            uint32
	Failures             uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// Breaker implements the circuit breaker pattern
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu         sync.Mutex
	state      State
	counts     Counts
	openedAt   time.Time
	generation uint64
}

// New creates a breaker. Zero settings fall back to 5 failures, 30s cooldown
// and a single probe.
func New(name string, settings Settings) *Breaker {
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	if settings.HalfOpenProbes == 0 {
		settings.HalfOpenProbes = 1
	}
	if settings.IsFailure == nil {
		settings.IsFailure = DefaultIsFailure
	}
	return &Breaker{name: name, settings: settings, now: time.Now}
}

// DefaultIsFailure counts every error except context cancellation.
func DefaultIsFailure(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled)
}

// Name returns the name of the circuit breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state, promoting open to half-open once the
// cooldown has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	state, from, changed := b.refresh()
	b.mu.Unlock()
	b.notify(from, state, changed)
	return state
}

// Counts returns a copy of the counts for the current state period.
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Allow reserves a slot for one call. The returned done func must be called
// exactly once with the call's error.
func (b *Breaker) Allow() (done func(err error), err error) {
	b.mu.Lock()
	state, from, changed := b.refresh()
	gen := b.generation

	switch {
	case state == StateOpen:
		err = ErrCircuitOpen
	case state == StateHalfOpen && b.counts.Requests >= b.settings.HalfOpenProbes:
		err = ErrTooManyRequests
	default:
		b.counts.Requests++
	}
	b.mu.Unlock()
	b.notify(from, state, changed)

	if err != nil {
		return nil, err
	}
	return func(callErr error) { b.record(gen, callErr) }, nil
}

// Execute runs fn if the breaker admits it.
func (b *Breaker) Execute(fn func() error) error {
	done, err := b.Allow()
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			done(errors.New("panic"))
			panic(p)
		}
	}()
	err = fn()
	done(err)
	return err
}

// Do is Execute for functions returning a value.
func Do[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var out T
	err := b.Execute(func() error {
		var err error
		out, err = fn()
		return err
	})
	return out, err
}

func (b *Breaker) record(gen uint64, err error) {
	b.mu.Lock()
	state, from, changed := b.refresh()
	if gen != b.generation {
		b.mu.Unlock()
		b.notify(from, state, changed)
		return
	}

	var to State
	var moved bool
	if b.settings.IsFailure(err) {
		b.counts.Failures++
		b.counts.ConsecutiveFailures++
		b.counts.ConsecutiveSuccesses = 0
		if state == StateHalfOpen || b.counts.ConsecutiveFailures >= b.settings.FailureThreshold {
			to, moved = StateOpen, true
		}
	} else {
		b.counts.Successes++
		b.counts.ConsecutiveSuccesses++
		b.counts.ConsecutiveFailures = 0
		if state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.settings.HalfOpenProbes {
			to, moved = StateClosed, true
		}
	}
	if moved {
		from, state = b.state, to
		b.transition(to)
		changed = true
	}
	b.mu.Unlock()
	b.notify(from, state, changed)
}

// refresh must be called with mu held.
func (b *Breaker) refresh() (state, from State, changed bool) {
	from = b.state
	if b.state == StateOpen && !b.now().Before(b.openedAt.Add(b.settings.Cooldown)) {
		b.transition(StateHalfOpen)
		return b.state, from, true
	}
	return b.state, from, false
}

// transition must be called with mu held.
func (b *Breaker) transition(to State) {
	b.state = to
	b.counts = Counts{}
	b.generation++
	if to == StateOpen {
		b.openedAt = b.now()
	}
}

func (b *Breaker) notify(from, to State, changed bool) {
	if changed && b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}
