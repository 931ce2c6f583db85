package circuitbreaker

import (
	"errors"

	"github.com/sony/gobreaker/v2"
)

type (
	// CircuitBreaker guards calls to a dependency and stops issuing them once
	// FailureThreshold consecutive calls have failed.
	CircuitBreaker[T any] struct {
		cb *gobreaker.CircuitBreaker[T]
	}

	// Option customises the breaker settings built from Config.
	Option func(*gobreaker.Settings)

	// StateObserver is notified whenever the breaker changes state.
	StateObserver func(name, from, to string)
)

// WithSuccessPredicate decides which errors count as failures.
// Errors for which isSuccessful returns true leave the failure count untouched.
func WithSuccessPredicate(isSuccessful func(err error) bool) Option {
	return func(s *gobreaker.Settings) {
		s.IsSuccessful = isSuccessful
	}
}

func WithStateObserver(observer StateObserver) Option {
	return func(s *gobreaker.Settings) {
		s.OnStateChange = func(name string, from, to gobreaker.State) {
			observer(name, from.String(), to.String())
		}
	}
}

// New returns nil if the breaker is disabled; Execute then calls through directly.
func New[T any](cfg Config, opts ...Option) *CircuitBreaker[T] {
	if !cfg.Enabled {
		return nil
	}

	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: uint32(cfg.MaxRequests),
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
	}

	for _, opt := range opts {
		opt(&settings)
	}

	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

func (c *CircuitBreaker[T]) Name() string {
	return c.cb.Name()
}

// State reports "closed", "half-open" or "open".
func (c *CircuitBreaker[T]) State() string {
	return c.cb.State().String()
}

// Execute runs fn through cb, translating gobreaker rejections into
// ErrCircuitOpen and ErrTooManyRequests.
func Execute[T any](cb *CircuitBreaker[T], fn func() (T, error)) (T, error) {
	if cb == nil {
		return fn()
	}

	result, err := cb.cb.Execute(fn)

	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, gobreaker.ErrOpenState):
		var zero T

		return zero, ErrCircuitOpen
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		var zero T

		return zero, ErrTooManyRequests
	default:
		return result, err
	}
}
