package resilience

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker fails fast after threshold consecutive failures. Once
// timeout has passed since it opened, a single trial call is let through;
// its outcome closes or reopens the breaker.
type CircuitBreaker struct {
	name      string
	threshold int
	timeout   time.Duration
	now       func() time.Time

	// OnStateChange observes transitions. It runs with the breaker locked.
	OnStateChange func(name string, from, to State)

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
}

func NewCircuitBreaker(name string, threshold int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		name:      name,
		threshold: threshold,
		timeout:   timeout,
		now:       time.Now,
	}
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) setState(to State) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to
	if cb.OnStateChange != nil {
		cb.OnStateChange(cb.name, from, to)
	}
}

// allow reports whether a call may go through, moving an expired open
// breaker to half-open.
func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil
	case StateOpen:
		if cb.now().Sub(cb.openedAt) <= cb.timeout {
			return ErrCircuitOpen
		}
		cb.setState(StateHalfOpen)
		return nil
	default:
		// the trial call is still in flight
		return ErrCircuitOpen
	}
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		if cb.state == StateHalfOpen {
			zap.L().Info("Circuit breaker recovered", zap.String("breaker", cb.name))
		}
		cb.failures = 0
		cb.setState(StateClosed)
		return
	}

	cb.failures++
	if cb.state == StateHalfOpen || cb.failures >= cb.threshold {
		cb.openedAt = cb.now()
		if cb.state != StateOpen {
			zap.L().Warn("Circuit breaker opened",
				zap.String("breaker", cb.name),
				zap.Int("failures", cb.failures),
				zap.Duration("retry_after", cb.timeout),
				zap.Error(err),
			)
		}
		cb.setState(StateOpen)
	}
}

func (cb *CircuitBreaker) Execute(action func() (any, error)) (any, error) {
	return Call(cb, action)
}

// Call runs action through the breaker and keeps its result type.
func Call[T any](cb *CircuitBreaker, action func() (T, error)) (T, error) {
	var zero T
	if err := cb.allow(); err != nil {
		return zero, err
	}
	res, err := action()
	cb.record(err)
	if err != nil {
		return zero, err
	}
	return res, nil
}
