// Package backoff provides bounded retry with exponential delays, used for
// one-shot startup calls (steady-state pollers never retry: a failed poll
// waits for the next scheduled tick).
package backoff

import (
	"context"
	"math/rand"
	"time"
)

const (
	defaultInitialDelay = 500 * time.Millisecond
	defaultMaxDelay     = 8 * time.Second
	defaultAttempts     = 4
	defaultJitter       = 0.2
)

// Policy describes the retry schedule. The zero value is unusable; use New.
type Policy struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	attempts     int
	jitter       float64
}

// Option configures a Policy.
type Option func(*Policy)

// WithInitialDelay sets the delay before the second attempt.
func WithInitialDelay(d time.Duration) Option {
	return func(p *Policy) { p.initialDelay = d }
}

// WithMaxDelay caps the delay between attempts.
func WithMaxDelay(d time.Duration) Option {
	return func(p *Policy) { p.maxDelay = d }
}

// WithAttempts sets the total number of attempts, including the first.
func WithAttempts(n int) Option {
	return func(p *Policy) { p.attempts = n }
}

// WithJitter sets the jitter fraction applied to each delay (0.0 to 1.0).
func WithJitter(j float64) Option {
	return func(p *Policy) { p.jitter = j }
}

// New builds a Policy with defaults and optional overrides.
func New(opts ...Option) *Policy {
	p := &Policy{
		initialDelay: defaultInitialDelay,
		maxDelay:     defaultMaxDelay,
		attempts:     defaultAttempts,
		jitter:       defaultJitter,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.attempts < 1 {
		p.attempts = 1
	}
	return p
}

// Do runs fn until it succeeds, the attempts are exhausted, or ctx is
// cancelled. The last error is returned.
func (p *Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	delay := p.initialDelay
	var err error

	for attempt := 0; attempt < p.attempts; attempt++ {
		if attempt > 0 {
			sleep := time.Duration(float64(delay) * (1 + (rand.Float64()*2-1)*p.jitter))
			if sleep < 0 {
				sleep = 0
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sleep):
			}
			delay *= 2
			if delay > p.maxDelay {
				delay = p.maxDelay
			}
		}

		if err = fn(ctx); err == nil {
			return nil
		}
	}
	return err
}
