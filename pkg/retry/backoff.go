package retry

import (
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy defines the interface for different backoff strategies
type BackoffStrategy interface {
	// NextDelay returns the delay to sleep after the given failed attempt
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff grows the delay as Base*Multiplier^attempt and adds a
// uniform jitter in [0, Jitter).
type ExponentialBackoff struct {
	// Base is the unit the exponential term is expressed in
	Base time.Duration
	// Multiplier is the factor by which delay increases
	Multiplier float64
	// Jitter is the exclusive upper bound of the random addition
	Jitter time.Duration
	// MaxDelay caps the exponential term; zero means no cap
	MaxDelay time.Duration
	// Rand returns a value in [0,1); nil uses math/rand
	Rand func() float64
}

// DefaultExponentialBackoff returns the dashboard's fixed policy:
// 2^n seconds plus up to one second of jitter, uncapped.
func DefaultExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		Base:       time.Second,
		Multiplier: 2.0,
		Jitter:     time.Second,
	}
}

// NextDelay calculates the next delay with exponential backoff and jitter
func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := float64(eb.Base) * math.Pow(eb.Multiplier, float64(attempt))
	if eb.MaxDelay > 0 && delay > float64(eb.MaxDelay) {
		delay = float64(eb.MaxDelay)
	}

	if eb.Jitter > 0 {
		random := rand.Float64
		if eb.Rand != nil {
			random = eb.Rand
		}
		delay += random() * float64(eb.Jitter)
	}

	return time.Duration(delay)
}

// ConstantBackoff implements constant delay backoff
type ConstantBackoff struct {
	Delay time.Duration
}

// NextDelay returns a constant delay
func (cb *ConstantBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return cb.Delay
}
