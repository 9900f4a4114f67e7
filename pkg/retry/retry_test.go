package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:     attempts,
		InitialDelay:    time.Millisecond,
		MaxDelay:        2 * time.Millisecond,
		BackoffFactor:   2,
		MaxTotalTimeout: time.Second,
	}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(5), func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoWithLog_StopsAtMaxAttempts(t *testing.T) {
	calls := 0
	logged := 0
	err := DoWithLog(context.Background(), fastConfig(3), "postgres", func() error {
		calls++
		return errors.New("connection refused")
	}, func(attempt int, err error, next time.Duration) {
		logged++
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, logged)
}

func TestDo_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, fastConfig(5), func() error {
		calls++
		return errors.New("down")
	})

	assert.Error(t, err)
	assert.LessOrEqual(t, calls, 1)
}
