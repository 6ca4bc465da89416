package upstream

import (
	"errors"
	"sync"
	"time"
)

// ErrBreakerOpen is returned when the target's circuit is open
var ErrBreakerOpen = errors.New("upstream circuit is open")

type BreakerState int

const (
	// BreakerClosed - normal operation, requests pass through
	BreakerClosed BreakerState = iota

	// BreakerOpen - requests fail immediately
	BreakerOpen

	// BreakerHalfOpen - probing whether the target recovered
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker shields one upstream target: maxFailures consecutive failures open
// the circuit, and after cooldown a single probing request decides whether it
// closes again.
type Breaker struct {
	mu          sync.RWMutex
	state       BreakerState
	failures    int
	lastFailure time.Time
	lastChange  time.Time
	maxFailures int
	cooldown    time.Duration
}

func NewBreaker(maxFailures int, cooldown time.Duration) *Breaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	return &Breaker{
		state:       BreakerClosed,
		maxFailures: maxFailures,
		cooldown:    cooldown,
		lastChange:  time.Now(),
	}
}

// Call runs fn under the breaker. While open it fails fast with
// ErrBreakerOpen until the cooldown elapses.
func (b *Breaker) Call(fn func() error) error {
	b.mu.Lock()
	if b.state == BreakerOpen {
		if time.Since(b.lastFailure) <= b.cooldown {
			b.mu.Unlock()
			return ErrBreakerOpen
		}
		b.transition(BreakerHalfOpen)
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.failures++
		b.lastFailure = time.Now()
		if b.state == BreakerHalfOpen || b.failures >= b.maxFailures {
			b.transition(BreakerOpen)
		}
		return err
	}

	// Success: half-open closes, closed resets the failure streak
	if b.state == BreakerHalfOpen {
		b.transition(BreakerClosed)
	}
	b.failures = 0
	return nil
}

func (b *Breaker) transition(next BreakerState) {
	if b.state != next {
		b.state = next
		b.lastChange = time.Now()
	}
}

func (b *Breaker) State() BreakerState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Reset manually closes the breaker.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = BreakerClosed
	b.failures = 0
	b.lastChange = time.Now()
}

type BreakerSnapshot struct {
	State       string    `json:"state"`
	Failures    int       `json:"failures"`
	LastFailure time.Time `json:"last_failure"`
	LastChange  time.Time `json:"last_change"`
}

func (b *Breaker) Snapshot() BreakerSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return BreakerSnapshot{
		State:       b.state.String(),
		Failures:    b.failures,
		LastFailure: b.lastFailure,
		LastChange:  b.lastChange,
	}
}
