package client

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer is waited on before every request is issued
type Pacer interface {
	Wait(ctx context.Context) error
}

// NoDelay issues requests immediately
type NoDelay struct{}

// Wait returns at once unless the context is already done
func (NoDelay) Wait(ctx context.Context) error {
	return ctx.Err()
}

// FixedDelay sleeps for a fixed duration before each request
type FixedDelay time.Duration

// Wait sleeps for the delay or until the context is cancelled
func (d FixedDelay) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RateLimit paces requests through a token bucket
type RateLimit struct {
	limiter *rate.Limiter
}

// NewRateLimit allows perSecond requests per second with the given burst
func NewRateLimit(perSecond float64, burst int) *RateLimit {
	if burst < 1 {
		burst = 1
	}
	return &RateLimit{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until a token is available
func (r *RateLimit) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// NewPacer picks a pacer from configuration: a positive delay wins over a rate limit
func NewPacer(delay time.Duration, perSecond float64, burst int) Pacer {
	switch {
	case delay > 0:
		return FixedDelay(delay)
	case perSecond > 0:
		return NewRateLimit(perSecond, burst)
	default:
		return NoDelay{}
	}
}
