package retry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"awsdash/pkg/config"
	"awsdash/pkg/logger"
)

const (
	// DefaultMaxAttempts is the attempt ceiling of the fixed policy
	DefaultMaxAttempts = 6
	// DefaultThrottleMarker identifies a throttling error by substring
	DefaultThrottleMarker = "Throttling"

	actionBackoff = "EXPONENTIAL_BACKOFF"
)

// ErrExhausted is matched by the error returned when every attempt was
// throttled.
var ErrExhausted = errors.New("retry attempts exhausted")

// ExhaustedError describes an invocation that ran out of attempts
type ExhaustedError struct {
	Operation  string
	Attempts   int
	TotalSleep time.Duration
	LastErr    error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: %s throttled %d times, slept %s", ErrExhausted, e.Operation, e.Attempts, e.TotalSleep)
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

func (e *ExhaustedError) Unwrap() error {
	return e.LastErr
}

// Attempt records one throttled attempt and the delay slept after it
type Attempt struct {
	Number int
	Delay  time.Duration
	Err    error
}

// Policy holds the retry policy of an Invoker
type Policy struct {
	// MaxAttempts is the maximum number of attempts
	MaxAttempts int
	// Backoff computes the sleep after each throttled attempt
	Backoff BackoffStrategy
	// Markers are the substrings that identify a throttling error
	Markers []string
}

// DefaultPolicy returns the fixed policy: 6 attempts, 2^n + U(0,1) seconds,
// retrying only errors whose text contains "Throttling".
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Backoff:     DefaultExponentialBackoff(),
		Markers:     []string{DefaultThrottleMarker},
	}
}

// PolicyFromConfig builds a policy from configuration, keeping the default
// backoff curve.
func PolicyFromConfig(cfg config.RetryConfig) Policy {
	p := DefaultPolicy()
	if cfg.MaxAttempts > 0 {
		p.MaxAttempts = cfg.MaxAttempts
	}
	if len(cfg.ThrottleMarkers) > 0 {
		p.Markers = append([]string(nil), cfg.ThrottleMarkers...)
	}
	return p
}

// IsThrottling reports whether err's text contains one of the markers
func (p Policy) IsThrottling(err error) bool {
	if err == nil {
		return false
	}
	text := err.Error()
	for _, marker := range p.Markers {
		if marker != "" && strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// Invoker runs remote operations under a Policy. Sleeps between attempts
// block the calling goroutine and are not interrupted by context
// cancellation; the context is only handed to the operation.
type Invoker struct {
	policy  Policy
	logger  logger.Logger
	sleep   func(time.Duration)
	onRetry func(Attempt)
}

// Option configures an Invoker
type Option func(*Invoker)

// WithSleep replaces time.Sleep
func WithSleep(sleep func(time.Duration)) Option {
	return func(i *Invoker) {
		i.sleep = sleep
	}
}

// WithOnRetry registers a callback that receives every throttled attempt
// before its sleep.
func WithOnRetry(fn func(Attempt)) Option {
	return func(i *Invoker) {
		i.onRetry = fn
	}
}

// NewInvoker creates an invoker. Zero policy fields fall back to the
// default policy.
func NewInvoker(policy Policy, log logger.Logger, opts ...Option) *Invoker {
	def := DefaultPolicy()
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = def.MaxAttempts
	}
	if policy.Backoff == nil {
		policy.Backoff = def.Backoff
	}
	if len(policy.Markers) == 0 {
		policy.Markers = def.Markers
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	inv := &Invoker{
		policy: policy,
		logger: log,
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Policy returns the invoker's effective policy
func (inv *Invoker) Policy() Policy {
	return inv.policy
}

// Do runs an operation that returns only an error
func (inv *Invoker) Do(ctx context.Context, operation string, fn func(context.Context) error) error {
	_, err := Invoke(ctx, inv, operation, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Invoke calls fn until it succeeds, fails with a non-throttling error, or
// has been throttled MaxAttempts times.
//
// A non-throttling error is returned unchanged after the first attempt that
// produced it. Each throttled attempt is logged, reported to OnRetry and
// followed by a sleep of Backoff.NextDelay(attempt), including the last
// one. Exhaustion returns an *ExhaustedError matching ErrExhausted.
func Invoke[T any](ctx context.Context, inv *Invoker, operation string, fn func(context.Context) (T, error)) (T, error) {
	var (
		zero       T
		totalSleep time.Duration
		lastErr    error
	)

	for attempt := 1; attempt <= inv.policy.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				inv.logger.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"operation": operation,
					"attempt":   attempt,
				})
			}
			return result, nil
		}

		if !inv.policy.IsThrottling(err) {
			return zero, err
		}

		delay := inv.policy.Backoff.NextDelay(attempt)
		logger.Action(inv.logger, actionBackoff, logger.StatusRetry,
			fmt.Sprintf("Performing exponential back off. Retry %d for api_call %s, sleeping for %.3f seconds",
				attempt, operation, delay.Seconds()),
			map[string]interface{}{
				"attempt":   attempt,
				"operation": operation,
				"delay":     delay,
			})

		if inv.onRetry != nil {
			inv.onRetry(Attempt{Number: attempt, Delay: delay, Err: err})
		}

		inv.sleep(delay)
		totalSleep += delay
		lastErr = err
	}

	logger.Action(inv.logger, actionBackoff, logger.StatusFailed,
		fmt.Sprintf("Exponential back off failed. Retried %d times for API call %s, slept a total of %.3f seconds.",
			inv.policy.MaxAttempts, operation, totalSleep.Seconds()),
		map[string]interface{}{
			"attempts":    inv.policy.MaxAttempts,
			"operation":   operation,
			"total_sleep": totalSleep,
		})

	return zero, &ExhaustedError{
		Operation:  operation,
		Attempts:   inv.policy.MaxAttempts,
		TotalSleep: totalSleep,
		LastErr:    lastErr,
	}
}
