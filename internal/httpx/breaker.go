package httpx

import (
	"errors"
	"sync"
	"time"
)

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	// CircuitClosed is the normal state where requests are allowed.
	CircuitClosed CircuitState = iota
	// CircuitOpen is the state where requests fail fast.
	CircuitOpen
	// CircuitHalfOpen is the testing state where one request is allowed.
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

const (
	defaultFailureThreshold = 5
	defaultRecoveryTimeout  = 30 * time.Second
)

// ErrCircuitOpen is returned when the circuit breaker is open.
var ErrCircuitOpen = errors.New("httpx: circuit breaker is open")

// BreakerConfig configures circuit breaker behavior.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures to open the
	// circuit. Default: 5.
	FailureThreshold int
	// RecoveryTimeout is how long the circuit stays open before a probe
	// request is allowed. Default: 30 seconds.
	RecoveryTimeout time.Duration
}

type circuit struct {
	state             CircuitState
	consecutiveErrors int
	lastStateChange   time.Time
}

// Breaker tracks failures per host and fails fast when a host keeps erroring.
type Breaker struct {
	mu       sync.Mutex
	circuits map[string]*circuit
	config   BreakerConfig
}

// NewBreaker creates a circuit breaker with the given configuration.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = defaultRecoveryTimeout
	}
	return &Breaker{
		circuits: make(map[string]*circuit),
		config:   cfg,
	}
}

// Allow reports whether a request to host may proceed. When the circuit is
// open and the recovery timeout has elapsed, one probe request is let through
// in half-open state.
func (b *Breaker) Allow(host string) error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.get(host)
	switch c.state {
	case CircuitClosed:
		return nil
	case CircuitOpen:
		if time.Since(c.lastStateChange) >= b.config.RecoveryTimeout {
			c.state = CircuitHalfOpen
			c.lastStateChange = time.Now()
			return nil
		}
		return ErrCircuitOpen
	case CircuitHalfOpen:
		return ErrCircuitOpen
	}
	return nil
}

// RecordSuccess closes the circuit for host and resets the failure count.
func (b *Breaker) RecordSuccess(host string) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.get(host)
	c.consecutiveErrors = 0
	if c.state != CircuitClosed {
		c.state = CircuitClosed
		c.lastStateChange = time.Now()
	}
}

// RecordFailure counts a failure for host; the circuit opens at the
// configured threshold, and a failed half-open probe reopens it.
func (b *Breaker) RecordFailure(host string) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.get(host)
	c.consecutiveErrors++
	if c.state == CircuitHalfOpen || c.consecutiveErrors >= b.config.FailureThreshold {
		c.state = CircuitOpen
		c.lastStateChange = time.Now()
	}
}

// State returns the current state for host.
func (b *Breaker) State(host string) CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.get(host).state
}

func (b *Breaker) get(host string) *circuit {
	c, ok := b.circuits[host]
	if !ok {
		c = &circuit{state: CircuitClosed, lastStateChange: time.Now()}
		b.circuits[host] = c
	}
	return c
}
