package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrMaxRetries is returned once a policy's attempt budget is exhausted.
// Callers treat it as "no result this cycle", not a fatal condition.
var ErrMaxRetries = errors.New("max retries exceeded")

// BackoffFunc computes the wait before the next attempt. The failed
// attempt's error is passed in so rate-limit style errors can dictate
// their own wait.
type BackoffFunc func(attempt int, err error) time.Duration

// Policy is a bounded-retry discipline shared by the fetch, generation
// and post paths. All attempts draw from one counter regardless of the
// error class.
type Policy struct {
	MaxAttempts int
	Backoff     BackoffFunc
	// Retryable reports whether an error is worth another attempt.
	// Nil means everything is retryable.
	Retryable func(error) bool
	// Sleep is injectable for tests; nil uses a context-aware wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Do runs op until it succeeds, a non-retryable error occurs, or the
// attempt budget runs out.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}
		if p.Backoff != nil {
			if wait := p.Backoff(attempt, err); wait > 0 {
				if serr := p.sleep(ctx, wait); serr != nil {
					return serr
				}
			}
		}
	}
	return fmt.Errorf("%w: %v", ErrMaxRetries, err)
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Exponential doubles the base wait per attempt: base * 2^attempt.
func Exponential(base time.Duration) BackoffFunc {
	return func(attempt int, _ error) time.Duration {
		return time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	}
}

// Linear grows the wait by one step per attempt: step * (attempt+1).
func Linear(step time.Duration) BackoffFunc {
	return func(attempt int, _ error) time.Duration {
		return step * time.Duration(attempt+1)
	}
}
