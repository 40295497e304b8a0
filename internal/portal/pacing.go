package portal

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces portal actions out like a person clicking through the
// screens: a floor of one action per minDelay plus random jitter up to
// maxDelay.
type Pacer struct {
	limiter  *rate.Limiter
	minDelay time.Duration
	maxDelay time.Duration
	jitter   func(n int64) int64
}

// NewPacer returns a pacer. A zero minDelay disables the rate floor.
func NewPacer(minDelay, maxDelay time.Duration) *Pacer {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	limit := rate.Inf
	if minDelay > 0 {
		limit = rate.Every(minDelay)
	}
	return &Pacer{
		limiter:  rate.NewLimiter(limit, 1),
		minDelay: minDelay,
		maxDelay: maxDelay,
		jitter:   rand.Int64N,
	}
}

// Delay returns the extra pause added after the rate floor.
func (p *Pacer) Delay() time.Duration {
	spread := int64(p.maxDelay - p.minDelay)
	if spread <= 0 {
		return 0
	}
	return time.Duration(p.jitter(spread + 1))
}

// Wait blocks until the next action may run or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	delay := p.Delay()
	if delay == 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
