package webhook

import (
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy computes the delay before a retry attempt.
// Implementations must be safe for concurrent use.
type BackoffStrategy interface {
	// NextInterval returns the delay for the given attempt (starting at 1).
	NextInterval(attempt int) time.Duration
}

// FixedBackoff waits the same interval between every retry.
type FixedBackoff struct {
	Interval time.Duration
}

// NextInterval returns the fixed interval.
func (b FixedBackoff) NextInterval(int) time.Duration {
	return b.Interval
}

// ExponentialBackoff grows the delay exponentially with jitter so that a
// flapping alert endpoint does not get hammered by synchronized retries.
type ExponentialBackoff struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	JitterFactor    float64
}

// NextInterval returns the jittered exponential delay for attempt.
func (b ExponentialBackoff) NextInterval(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	multiplier := b.Multiplier
	if multiplier <= 1 {
		multiplier = 2
	}

	interval := float64(b.InitialInterval) * math.Pow(multiplier, float64(attempt-1))
	if b.MaxInterval > 0 && interval > float64(b.MaxInterval) {
		interval = float64(b.MaxInterval)
	}

	if b.JitterFactor > 0 {
		jitter := interval * b.JitterFactor
		interval += (rand.Float64()*2 - 1) * jitter
	}

	if interval < 0 {
		interval = 0
	}

	return time.Duration(interval)
}
