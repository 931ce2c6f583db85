package circuitbreaker

import "time"

type Config struct {
	Name    string
	Enabled bool

	// MaxRequests is the number of probes let through while half-open. Zero means one.
	MaxRequests uint

	// Interval clears the closed-state counts periodically. Zero never clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing. Zero means 60s.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint
}
