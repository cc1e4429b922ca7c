package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSleeper struct {
	waits []time.Duration
}

func (f *fakeSleeper) Sleep(_ context.Context, d time.Duration) error {
	f.waits = append(f.waits, d)
	return nil
}

func TestDo_ProgressiveBackoff(t *testing.T) {
	fs := &fakeSleeper{}
	calls := 0

	attempts, err := Do(context.Background(), Policy{
		MaxAttempts: 5,
		Backoff:     Linear(time.Second),
		Sleep:       fs.Sleep,
	}, func(_ context.Context, _ int) (bool, error) {
		calls++
		return false, nil
	})

	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 5, attempts)
	assert.Equal(t, 5, calls)
	// 0s is skipped, then 1s, 2s, 3s, 4s
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 4 * time.Second}, fs.waits)
}

func TestDo_StopsEarlyWhenDone(t *testing.T) {
	fs := &fakeSleeper{}

	attempts, err := Do(context.Background(), Policy{
		MaxAttempts: 5,
		Backoff:     Linear(time.Second),
		Sleep:       fs.Sleep,
	}, func(_ context.Context, attempt int) (bool, error) {
		return attempt == 2, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, fs.waits)
}

func TestDo_FixedIntervalWaitsBeforeFirstAttempt(t *testing.T) {
	fs := &fakeSleeper{}

	attempts, err := Do(context.Background(), Policy{
		MaxAttempts: 3,
		Backoff:     Fixed(3 * time.Second),
		Sleep:       fs.Sleep,
	}, func(_ context.Context, _ int) (bool, error) {
		return false, nil
	})

	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second, 3 * time.Second}, fs.waits)
}

func TestDo_ReturnsLastError(t *testing.T) {
	fs := &fakeSleeper{}
	boom := errors.New("store warming up")

	_, err := Do(context.Background(), Policy{
		MaxAttempts: 3,
		Backoff:     Linear(time.Millisecond),
		Sleep:       fs.Sleep,
	}, func(_ context.Context, _ int) (bool, error) {
		return false, boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestDo_ErrorThenSuccess(t *testing.T) {
	fs := &fakeSleeper{}

	attempts, err := Do(context.Background(), Policy{
		MaxAttempts: 3,
		Backoff:     Constant(time.Millisecond),
		Sleep:       fs.Sleep,
	}, func(_ context.Context, attempt int) (bool, error) {
		if attempt == 0 {
			return false, errors.New("transient")
		}
		return true, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Do(ctx, Policy{MaxAttempts: 3}, func(_ context.Context, _ int) (bool, error) {
		calls++
		return false, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestContextSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := ContextSleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
