// Package ratelimit spaces outgoing API calls so a fixed number of calls per
// second is never exceeded.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRate is the number of destination write calls allowed per second.
const DefaultRate = 3

// Throttle is a leaky bucket of one: each call to Wait blocks until at least
// 1/rate has elapsed since the previous call was let through. It is not a
// token bucket, there is no burst beyond a single call.
type Throttle struct {
	limiter  *rate.Limiter
	interval time.Duration
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// New returns a throttle allowing perSecond calls per second. A zero or
// negative value disables throttling.
func New(perSecond float64) *Throttle {
	t := &Throttle{
		now:   time.Now,
		sleep: sleepContext,
	}
	if perSecond <= 0 {
		t.limiter = rate.NewLimiter(rate.Inf, 1)
		return t
	}
	t.interval = time.Duration(float64(time.Second) / perSecond)
	t.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	return t
}

// Interval is the minimum spacing between two calls.
func (t *Throttle) Interval() time.Duration {
	return t.interval
}

// Wait blocks until the next call may proceed or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	now := t.now()
	r := t.limiter.ReserveN(now, 1)
	if !r.OK() {
		return fmt.Errorf("throttle cannot admit a call")
	}

	delay := r.DelayFrom(now)
	if delay <= 0 {
		return nil
	}
	if err := t.sleep(ctx, delay); err != nil {
		r.CancelAt(t.now())
		return err
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
