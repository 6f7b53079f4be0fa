package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	attempts []error
}

func (o *recordingObserver) Attempt(name string, attempt, maxAttempts int, err error) {
	o.attempts = append(o.attempts, err)
}

func newTestCaller(obs Observer) (*Caller, *[]time.Duration) {
	var slept []time.Duration
	c := New(obs)
	c.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return c, &slept
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	obs := &recordingObserver{}
	c, slept := newTestCaller(obs)

	calls := 0
	err := c.Do(context.Background(), "op", 3, time.Second, func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *slept)
	assert.Len(t, obs.attempts, 1)
}

func TestDoRetriesTransientUntilExhausted(t *testing.T) {
	obs := &recordingObserver{}
	c, slept := newTestCaller(obs)

	calls := 0
	err := c.Do(context.Background(), "op", 3, 2*time.Second, func(ctx context.Context) error {
		calls++
		return Transient(errors.New("connection reset"))
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 3, calls)
	// No sleep after the final attempt.
	require.Len(t, *slept, 2)
	assert.Equal(t, 2*time.Second, (*slept)[0])
	assert.Equal(t, 4*time.Second, (*slept)[1])
}

func TestDoRecoversAfterTransientFailure(t *testing.T) {
	c, _ := newTestCaller(&recordingObserver{})

	calls := 0
	err := c.Do(context.Background(), "op", 3, time.Second, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return Transient(errors.New("timeout"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoNeverRetriesUnauthorized(t *testing.T) {
	c, slept := newTestCaller(&recordingObserver{})

	calls := 0
	cause := errors.New("bot was blocked by the user")
	err := c.Do(context.Background(), "op", 5, time.Second, func(ctx context.Context) error {
		calls++
		return Unauthorized(cause)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *slept)
	assert.Equal(t, KindUnauthorized, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrExhausted)
}

func TestDoNeverRetriesMalformed(t *testing.T) {
	c, _ := newTestCaller(&recordingObserver{})

	calls := 0
	err := c.Do(context.Background(), "op", 5, time.Second, func(ctx context.Context) error {
		calls++
		return Malformed(errors.New("can't parse entities"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, KindMalformed, KindOf(err))
}

func TestDoHonorsRateLimitWait(t *testing.T) {
	c, slept := newTestCaller(&recordingObserver{})

	calls := 0
	err := c.Do(context.Background(), "op", 3, time.Second, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return RateLimited(errors.New("too many requests"), 31*time.Second)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, *slept, 1)
	assert.Equal(t, 31*time.Second, (*slept)[0])
}

func TestDoStopsWhenContextCancelled(t *testing.T) {
	c := New(&recordingObserver{})

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Do(ctx, "op", 5, time.Hour, func(ctx context.Context) error {
			calls++
			return Transient(errors.New("unreachable"))
		})
	}()

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
	assert.Equal(t, 1, calls)
}

func TestInvokeReturnsValue(t *testing.T) {
	c, _ := newTestCaller(&recordingObserver{})

	calls := 0
	got, err := Invoke(context.Background(), c, "op", 3, time.Second, func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", Transient(errors.New("timeout"))
		}
		return "ephemeral", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ephemeral", got)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"transient", Transient(errors.New("x")), KindTransient},
		{"rate limited", RateLimited(errors.New("x"), time.Second), KindRateLimited},
		{"unauthorized", Unauthorized(errors.New("x")), KindUnauthorized},
		{"malformed", Malformed(errors.New("x")), KindMalformed},
		{"wrapped transient", errors.Join(errors.New("outer"), Transient(errors.New("x"))), KindTransient},
		{"deadline", context.DeadlineExceeded, KindTransient},
		{"plain", errors.New("x"), KindFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}
