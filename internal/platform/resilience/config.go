package resilience

import (
	"fmt"
	"time"
)

type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		HalfOpenMaxReq:   1,
	}
}

// Normalize fills unset or out-of-range values from the defaults.
func (c CircuitBreakerConfig) Normalize() CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if c.FailureThreshold < 1 {
		c.FailureThreshold = defaults.FailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaults.OpenTimeout
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return c
}

func (c CircuitBreakerConfig) String() string {
	if !c.Enabled {
		return "disabled"
	}
	return fmt.Sprintf("threshold=%d open_timeout=%s half_open=%d", c.FailureThreshold, c.OpenTimeout, c.HalfOpenMaxReq)
}

// RetryConfig bounds how often an idempotent upstream call is repeated.
type RetryConfig struct {
	MaxAttempts int
	Backoff     time.Duration
}

func (c RetryConfig) Normalize() RetryConfig {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.Backoff < 0 {
		c.Backoff = 0
	}
	return c
}

// Delay is the linear backoff before attempt (1-based, attempt > 1).
func (c RetryConfig) Delay(attempt int) time.Duration {
	if attempt <= 1 || c.Backoff <= 0 {
		return 0
	}
	return time.Duration(attempt-1) * c.Backoff
}
