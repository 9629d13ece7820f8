package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmehdipour/segment-reports/internal/logger"
	"github.com/jmehdipour/segment-reports/internal/model"
	"go.uber.org/zap"
)

var ErrBreakerOpen = errors.New("circuit open")

// RetryConfig bounds how hard a sink is retried.
type RetryConfig struct {
	Attempts         int           // e.g. 3
	Backoff          time.Duration // doubled after each failed attempt
	BreakerThreshold int
	BreakerOpenFor   time.Duration
}

// Retrying wraps a sink with bounded attempts behind a breaker.
type Retrying struct {
	next     Sink
	breaker  *Breaker
	attempts int
	backoff  time.Duration
}

func NewRetrying(next Sink, c RetryConfig) *Retrying {
	if c.Attempts < 1 {
		c.Attempts = 3
	}
	if c.BreakerThreshold < 1 {
		c.BreakerThreshold = c.Attempts
	}
	return &Retrying{
		next:     next,
		breaker:  NewBreaker(c.BreakerThreshold, c.BreakerOpenFor),
		attempts: c.Attempts,
		backoff:  c.Backoff,
	}
}

func (r *Retrying) Name() string { return r.next.Name() }

func (r *Retrying) Publish(ctx context.Context, events []model.AssignmentEvent) error {
	var last error
	wait := r.backoff
	for i := 0; i < r.attempts; i++ {
		if i > 0 && wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
		}

		if !r.breaker.TryAcquire() {
			last = ErrBreakerOpen
			break
		}
		err := r.next.Publish(ctx, events)
		if err == nil {
			r.breaker.OnSuccess()
			return nil
		}
		r.breaker.OnFailure()
		last = err
		logger.Log.Warn("sink attempt failed",
			zap.String("sink", r.next.Name()),
			zap.Int("attempt", i+1),
			zap.Error(err))
	}

	if last == nil {
		last = fmt.Errorf("publish to %s failed", r.next.Name())
	}
	return last
}
