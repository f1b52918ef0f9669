// Package retry wraps flaky external calls with bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// ErrRetriesExhausted is returned once MaxRetries consecutive retryable
// failures have been seen. The last underlying error is wrapped alongside it.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Policy holds the backoff parameters. The delay before retry n (0-indexed) is
// BaseDelay * 2^n plus a uniform jitter in [0, MaxJitter).
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxJitter  time.Duration
}

// DefaultPolicy returns 12 attempts, a 1s base delay and 250ms of jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 12,
		BaseDelay:  time.Second,
		MaxJitter:  250 * time.Millisecond,
	}
}

// Executor runs operations under a Policy.
type Executor struct {
	policy    Policy
	log       *zap.Logger
	retryable func(error) bool
	sleep     func(context.Context, time.Duration) error
	jitter    func(time.Duration) time.Duration
	onRetry   func(attempt int, delay time.Duration, err error)
}

// Option customizes an Executor.
type Option func(*Executor)

// WithClassifier replaces the default Retryable classification.
func WithClassifier(fn func(error) bool) Option {
	return func(e *Executor) { e.retryable = fn }
}

// WithSleep replaces the context-aware sleep, mainly for tests.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(e *Executor) { e.sleep = fn }
}

// WithJitter replaces the random jitter source.
func WithJitter(fn func(max time.Duration) time.Duration) Option {
	return func(e *Executor) { e.jitter = fn }
}

// OnRetry registers a hook invoked before each backoff sleep.
func OnRetry(fn func(attempt int, delay time.Duration, err error)) Option {
	return func(e *Executor) { e.onRetry = fn }
}

// New creates an Executor. A nil logger disables retry logging.
func New(p Policy, log *zap.Logger, opts ...Option) *Executor {
	if p.MaxRetries <= 0 {
		p.MaxRetries = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	e := &Executor{
		policy:    p,
		log:       log,
		retryable: Retryable,
		sleep:     sleepContext,
		jitter:    uniformJitter,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the executor's backoff policy.
func (e *Executor) Policy() Policy {
	return e.policy
}

// Delay computes the backoff before retry attempt (0-indexed).
func (e *Executor) Delay(attempt int) time.Duration {
	base := float64(e.policy.BaseDelay) * math.Pow(2, float64(attempt))
	return time.Duration(base) + e.jitter(e.policy.MaxJitter)
}

// Do runs op until it succeeds, fails fatally, or exhausts the retry budget.
// Fatal errors are returned untouched and without sleeping.
func (e *Executor) Do(ctx context.Context, op func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < e.policy.MaxRetries; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !e.retryable(err) {
			return err
		}
		lastErr = err

		if attempt+1 == e.policy.MaxRetries {
			break
		}

		delay := e.Delay(attempt)
		e.log.Warn("transient failure, backing off",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", e.policy.MaxRetries),
			zap.Duration("delay", delay),
			zap.Error(err))
		if e.onRetry != nil {
			e.onRetry(attempt+1, delay, err)
		}
		if err := e.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, e.policy.MaxRetries, lastErr)
}

// Execute is Do for operations that produce a value.
func Execute[T any](ctx context.Context, e *Executor, op func(context.Context) (T, error)) (T, error) {
	var out T
	err := e.Do(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func uniformJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(max))) //nolint:gosec // jitter only
}
