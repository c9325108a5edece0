package retry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bufferLogger returns a logger writing text records into buf.
func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	var calls int

	got, err := Do(context.Background(), Policy{Attempts: 3, Delay: time.Millisecond}, func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, calls)
}

func TestDo_FailsTwiceThenSucceeds(t *testing.T) {
	var buf bytes.Buffer

	var calls int

	p := Policy{Attempts: 3, Delay: time.Millisecond, Logger: bufferLogger(&buf)}

	got, err := Do(context.Background(), p, func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}

		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)

	// One diagnostic per failed attempt that was retried.
	logged := buf.String()
	assert.Equal(t, 2, strings.Count(logged, "attempt failed, retrying"))
	assert.Contains(t, logged, "attempt=1")
	assert.Contains(t, logged, "attempt=2")
	assert.Contains(t, logged, "error=transient")
	assert.Contains(t, logged, "delay=1ms")
}

func TestDo_ExhaustedReturnsLastErrorUnchanged(t *testing.T) {
	first := errors.New("first")
	last := errors.New("last")

	var (
		buf   bytes.Buffer
		calls int
	)

	p := Policy{Attempts: 3, Delay: time.Millisecond, Logger: bufferLogger(&buf)}

	_, err := Do(context.Background(), p, func(context.Context) (string, error) {
		calls++
		if calls == 3 {
			return "", last
		}

		return "", first
	})

	require.Error(t, err)
	assert.Same(t, last, err, "the last attempt's error must come back as-is")
	assert.Equal(t, 3, calls)

	// The final failure is returned, not logged as a retry.
	assert.Equal(t, 2, strings.Count(buf.String(), "attempt failed, retrying"))
}

// typedErr checks that errors.As keeps working through the wrapper.
type typedErr struct{ code int }

func (e *typedErr) Error() string { return "typed" }

func TestDo_PreservesErrorType(t *testing.T) {
	_, err := Do(context.Background(), Policy{Attempts: 2}, func(context.Context) (int, error) {
		return 0, &typedErr{code: 7}
	})

	var te *typedErr
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 7, te.code)
}

func TestDo_WaitsFixedDelayBetweenAttempts(t *testing.T) {
	const delay = 20 * time.Millisecond

	start := time.Now()

	_, err := Do(context.Background(), Policy{Attempts: 3, Delay: delay}, func(context.Context) (int, error) {
		return 0, errors.New("nope")
	})

	require.Error(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 2*delay)
}

func TestDo_AttemptsBelowOneRunOnce(t *testing.T) {
	var calls int

	_, err := Do(context.Background(), Policy{Attempts: 0}, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("nope")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int

	_, err := Do(ctx, Policy{Attempts: 5, Delay: time.Hour}, func(context.Context) (int, error) {
		calls++
		cancel()

		return 0, errors.New("nope")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRun(t *testing.T) {
	var calls int

	err := Run(context.Background(), Policy{Attempts: 2}, func(context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("once")
		}

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 3, p.Attempts)
	assert.Equal(t, 2*time.Second, p.Delay)
}
