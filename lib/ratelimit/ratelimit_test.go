package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFixedJitterBounds(t *testing.T) {
	limiter := FixedJitter{
		Min:    time.Millisecond * 20,
		Jitter: time.Millisecond * 30,
	}

	start := time.Now()
	err := limiter.Wait(context.Background())
	require.NoError(t, err)

	elapsed := time.Since(start)
	require.GreaterOrEqual(t, elapsed, time.Millisecond*20)
	// generous upper bound, jitter max is 30ms
	require.Less(t, elapsed, time.Second)
}

func TestFixedJitterZeroValue(t *testing.T) {
	err := FixedJitter{}.Wait(context.Background())
	require.NoError(t, err)
}

func TestFixedJitterCancelled(t *testing.T) {
	limiter := FixedJitter{Min: time.Second * 10}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(time.Millisecond * 10)
		cancel()
	}()

	start := time.Now()
	err := limiter.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), time.Second)
}

func TestIntervalSpacing(t *testing.T) {
	limiter := &Interval{Every: time.Millisecond * 30}

	start := time.Now()
	for i := 0; i < 3; i++ {
		err := limiter.Wait(context.Background())
		require.NoError(t, err)
	}

	// first release is immediate, the next two are spaced
	require.GreaterOrEqual(t, time.Since(start), time.Millisecond*60)
}

func TestNone(t *testing.T) {
	require.NoError(t, None{}.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, None{}.Wait(ctx), context.Canceled)
}
