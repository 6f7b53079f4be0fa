package resilience

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// Observer receives the outcome of every attempt made by a Caller.
// err is nil on success.
type Observer interface {
	Attempt(name string, attempt, maxAttempts int, err error)
}

// ZapObserver logs attempts through a zap logger.
type ZapObserver struct {
	logger *zap.Logger
}

func NewZapObserver(logger *zap.Logger) *ZapObserver {
	return &ZapObserver{logger: logger}
}

func (o *ZapObserver) Attempt(name string, attempt, maxAttempts int, err error) {
	if err == nil {
		o.logger.Debug("call succeeded",
			zap.String("op", name),
			zap.Int("attempt", attempt),
		)
		return
	}
	o.logger.Warn("call failed",
		zap.String("op", name),
		zap.Int("attempt", attempt),
		zap.Int("max_attempts", maxAttempts),
		zap.String("kind", KindOf(err).String()),
		zap.Error(err),
	)
}

// Caller executes fallible external operations with bounded retries. Only
// transient and rate-limited failures are retried; every other kind aborts
// on first occurrence. The caller itself holds no global state.
type Caller struct {
	obs   Observer
	sleep func(ctx context.Context, d time.Duration) error
}

func New(obs Observer) *Caller {
	return &Caller{obs: obs, sleep: sleepCtx}
}

// Do runs op up to maxAttempts times. Transient failures back off
// exponentially from baseDelay; rate-limited failures wait exactly as long
// as the remote asked. Exhausting the attempts yields ErrExhausted wrapping
// the last cause.
func (c *Caller) Do(ctx context.Context, name string, maxAttempts int, baseDelay time.Duration, op func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var last error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := op(ctx)
		c.obs.Attempt(name, attempt, maxAttempts, err)
		if err == nil {
			return nil
		}
		last = err

		var wait time.Duration
		switch KindOf(err) {
		case KindTransient:
			wait = backoff(baseDelay, attempt)
		case KindRateLimited:
			wait = retryAfterOf(err)
		default:
			return err
		}

		if attempt == maxAttempts {
			break
		}
		if err := c.sleep(ctx, wait); err != nil {
			return err
		}
	}

	return fmt.Errorf("%s: %w: %w", name, ErrExhausted, last)
}

// Invoke is Do for operations that produce a value.
func Invoke[T any](ctx context.Context, c *Caller, name string, maxAttempts int, baseDelay time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := c.Do(ctx, name, maxAttempts, baseDelay, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// backoff grows as baseDelay^attempt: 2s, 4s, 8s for a 2s base.
func backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	secs := math.Pow(base.Seconds(), float64(attempt))
	return time.Duration(secs * float64(time.Second))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
