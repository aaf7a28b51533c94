package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	p := Policy{MaxAttempts: 3, Backoff: Exponential(time.Second)}
	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDoExhaustsBudget(t *testing.T) {
	var waits []time.Duration
	p := Policy{
		MaxAttempts: 3,
		Backoff:     Exponential(5 * time.Second),
		Sleep: func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		},
	}
	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("boom")
	})
	if !errors.Is(err, ErrMaxRetries) {
		t.Fatalf("expected ErrMaxRetries, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	// base*2^0, base*2^1; no sleep after the last attempt
	if len(waits) != 2 || waits[0] != 5*time.Second || waits[1] != 10*time.Second {
		t.Fatalf("unexpected waits: %v", waits)
	}
}

func TestDoNonRetryable(t *testing.T) {
	permanent := errors.New("permanent")
	p := Policy{
		MaxAttempts: 3,
		Backoff:     Linear(time.Second),
		Retryable:   func(err error) bool { return !errors.Is(err, permanent) },
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}
	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestLinearBackoff(t *testing.T) {
	b := Linear(10 * time.Second)
	if got := b(0, nil); got != 10*time.Second {
		t.Fatalf("attempt 0: got %v", got)
	}
	if got := b(2, nil); got != 30*time.Second {
		t.Fatalf("attempt 2: got %v", got)
	}
}
