// Package pacing gates upstream calls so the provider does not throttle us.
package pacing

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/stockpick/internal/contracts"
)

// Fixed waits the full interval before every call, regardless of how long
// ago the previous call was. This is the sequential collector's contract.
type Fixed struct {
	interval time.Duration
}

var _ contracts.Pacer = (*Fixed)(nil)

// NewFixed creates a fixed-delay pacer
func NewFixed(interval time.Duration) *Fixed {
	return &Fixed{interval: interval}
}

// Wait sleeps for the interval or until ctx is done
func (f *Fixed) Wait(ctx context.Context) error {
	if f.interval <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(f.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Interval returns the configured delay
func (f *Fixed) Interval() time.Duration {
	return f.interval
}

// Limiter is a token bucket shared by concurrent workers: at most one call
// starts per interval across all goroutines.
type Limiter struct {
	limiter *rate.Limiter
}

var _ contracts.Pacer = (*Limiter)(nil)

// NewLimiter creates a shared minimum-interval gate
func NewLimiter(interval time.Duration) *Limiter {
	if interval <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until a token is available or ctx is done
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Chain waits on every pacer in order, e.g. a local limiter followed by a
// Redis limiter shared with other processes.
type Chain []contracts.Pacer

// Wait implements contracts.Pacer
func (c Chain) Wait(ctx context.Context) error {
	for _, p := range c {
		if err := p.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}
