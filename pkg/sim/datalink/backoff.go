package datalink

import (
	"math"
	"math/rand"
	"time"
)

// Backoff paces reconnect attempts with exponential delay and jitter.
// It belongs to the connection loop and is not safe for concurrent use.
type Backoff struct {
	baseDelay time.Duration
	maxDelay  time.Duration
	failures  int
}

// NewBackoff creates a backoff starting at baseDelay and capped at
// maxDelay.
func NewBackoff(baseDelay, maxDelay time.Duration) *Backoff {
	return &Backoff{baseDelay: baseDelay, maxDelay: maxDelay}
}

// RecordFailure increases the delay for the next attempt.
func (b *Backoff) RecordFailure() {
	b.failures++
}

// RecordSuccess clears the backoff after a stable connection.
func (b *Backoff) RecordSuccess() {
	b.failures = 0
}

// Delay returns how long to wait before the next attempt.
func (b *Backoff) Delay() time.Duration {
	if b.failures == 0 {
		return 0
	}

	// Exponential: baseDelay * 2^(failures-1), capped, with 10% jitter.
	multiplier := math.Pow(2, float64(b.failures-1))
	delay := time.Duration(float64(b.baseDelay) * multiplier)
	if delay > b.maxDelay {
		delay = b.maxDelay
	}
	jitter := time.Duration(rand.Float64() * 0.1 * float64(delay))
	return delay + jitter
}
