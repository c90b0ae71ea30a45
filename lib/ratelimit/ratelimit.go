// Package ratelimit holds the politeness policies used by the scrapers.
// The catalog sites being crawled are small institutional services, so
// every fetch is followed by a mandatory delay regardless of how fast
// the server answered.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/mazen160/go-random"
)

// Limiter is a throttling policy. Wait blocks until the caller is
// allowed to proceed, or until the context is cancelled.
type Limiter interface {
	Wait(ctx context.Context) error
}

// FixedJitter waits Min plus a uniformly random extra duration in
// [0, Jitter). The zero value waits not at all.
type FixedJitter struct {
	Min    time.Duration
	Jitter time.Duration
}

func (f FixedJitter) Wait(ctx context.Context) error {
	wait := f.Min
	if f.Jitter > 0 {
		extra, err := random.IntRange(0, int(f.Jitter.Milliseconds()))
		if err != nil {
			return err
		}
		wait += time.Duration(extra) * time.Millisecond
	}
	return sleep(ctx, wait)
}

// Interval releases at most one caller per interval, measured from the
// previous release. The first call passes through immediately.
type Interval struct {
	Every time.Duration

	mu   sync.Mutex
	last time.Time
}

func (i *Interval) Wait(ctx context.Context) error {
	i.mu.Lock()
	now := time.Now()
	wait := i.Every - now.Sub(i.last)
	if wait < 0 {
		wait = 0
	}
	i.last = now.Add(wait)
	i.mu.Unlock()

	return sleep(ctx, wait)
}

// None is a no-op limiter, used in tests.
type None struct{}

func (None) Wait(ctx context.Context) error {
	return ctx.Err()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
