package usecase

import (
	"context"
	"testing"
	"time"

	"ChainPulse/internal/domain/models"
	"ChainPulse/internal/services/analytics"
	"ChainPulse/pkg/logger"
)

func newTrigger(store *stubStore, clk *testClock) *TriggerEngine {
	cfg := engineConfig()
	analyzer := analytics.NewAnalyzer(cfg.Triggers.VolumeTrendThreshold, logger.Discard())
	return NewTriggerEngine(cfg, analyzer, store, logger.Discard(), WithTriggerClock(clk.now))
}

func TestTriggerFirstCallIsInitialPost(t *testing.T) {
	e := newTrigger(newStubStore(), newTestClock())

	ok, reason := e.ShouldPost(context.Background(), testSnapshots(100, 1e9, 10, 1e8))
	if !ok || reason != "initial_post" {
		t.Fatalf("ShouldPost = (%v, %q), want (true, initial_post)", ok, reason)
	}
}

func TestTriggerPriceChangeAtExactThreshold(t *testing.T) {
	e := newTrigger(newStubStore(), newTestClock())
	ctx := context.Background()

	e.ShouldPost(ctx, testSnapshots(100, 1e9, 10, 1e8))

	ok, reason := e.ShouldPost(ctx, testSnapshots(105, 1e9, 10, 1e8))
	if !ok || reason != "price_change_sol" {
		t.Fatalf("ShouldPost = (%v, %q), want (true, price_change_sol)", ok, reason)
	}
}

func TestTriggerVolumeChange(t *testing.T) {
	e := newTrigger(newStubStore(), newTestClock())
	ctx := context.Background()

	e.ShouldPost(ctx, testSnapshots(100, 1e9, 10, 1e8))

	ok, reason := e.ShouldPost(ctx, testSnapshots(100, 1.1e9, 10, 1e8))
	if !ok || reason != "volume_change_sol" {
		t.Fatalf("ShouldPost = (%v, %q), want (true, volume_change_sol)", ok, reason)
	}
}

func TestTriggerChainsCheckedInOrder(t *testing.T) {
	e := newTrigger(newStubStore(), newTestClock())
	ctx := context.Background()

	e.ShouldPost(ctx, testSnapshots(100, 1e9, 10, 1e8))

	// Both chains cross the price threshold; the first configured chain
	// must win.
	ok, reason := e.ShouldPost(ctx, testSnapshots(110, 1e9, 11, 1e8))
	if !ok || reason != "price_change_sol" {
		t.Fatalf("ShouldPost = (%v, %q), want (true, price_change_sol)", ok, reason)
	}

	// Only the second chain moves.
	e2 := newTrigger(newStubStore(), newTestClock())
	e2.ShouldPost(ctx, testSnapshots(100, 1e9, 10, 1e8))
	ok, reason = e2.ShouldPost(ctx, testSnapshots(100, 1e9, 11, 1e8))
	if !ok || reason != "price_change_dot" {
		t.Fatalf("ShouldPost = (%v, %q), want (true, price_change_dot)", ok, reason)
	}
}

func TestTriggerVolumeTrend(t *testing.T) {
	store := newStubStore()
	store.volumes["SOL"] = []models.VolumeHistoryPoint{{Volume: 1e9}}
	e := newTrigger(store, newTestClock())
	ctx := context.Background()

	e.ShouldPost(ctx, testSnapshots(100, 1e9, 10, 1e8))

	// A 5% rise over the window is only moderate and must not trigger.
	ok, reason := e.ShouldPost(ctx, testSnapshots(100, 1.05e9, 10, 1e8))
	if ok {
		t.Fatalf("moderate trend should not trigger, got %q", reason)
	}

	store.volumes["SOL"] = []models.VolumeHistoryPoint{{Volume: 0.9e9}}
	ok, reason = e.ShouldPost(ctx, testSnapshots(100, 1.04e9, 10, 1e8))
	if !ok || reason != "volume_trend_sol_significant_increase" {
		t.Fatalf("ShouldPost = (%v, %q), want (true, volume_trend_sol_significant_increase)", ok, reason)
	}
}

func TestTriggerNoChangeBelowInterval(t *testing.T) {
	e := newTrigger(newStubStore(), newTestClock())
	ctx := context.Background()

	snaps := testSnapshots(100, 1e9, 10, 1e8)
	e.ShouldPost(ctx, snaps)

	ok, reason := e.ShouldPost(ctx, testSnapshots(101, 1.01e9, 10, 1e8))
	if ok || reason != "" {
		t.Fatalf("ShouldPost = (%v, %q), want (false, \"\")", ok, reason)
	}
}

func TestTriggerRegularInterval(t *testing.T) {
	clk := newTestClock()
	e := newTrigger(newStubStore(), clk)
	ctx := context.Background()

	e.ShouldPost(ctx, testSnapshots(100, 1e9, 10, 1e8))

	clk.advance(30 * time.Minute)
	ok, reason := e.ShouldPost(ctx, testSnapshots(100, 1e9, 10, 1e8))
	if !ok || reason != "regular_interval" {
		t.Fatalf("ShouldPost = (%v, %q), want (true, regular_interval)", ok, reason)
	}
}

func TestTriggerBaselineFrozenAcrossNoPostCycles(t *testing.T) {
	e := newTrigger(newStubStore(), newTestClock())
	ctx := context.Background()

	e.ShouldPost(ctx, testSnapshots(100, 1e9, 10, 1e8))

	// 3% drift does not trigger and must not move the baseline.
	ok, _ := e.ShouldPost(ctx, testSnapshots(103, 1e9, 10, 1e8))
	if ok {
		t.Fatal("3% drift should not trigger")
	}

	// Another 2.1% against the original baseline crosses the threshold.
	ok, reason := e.ShouldPost(ctx, testSnapshots(105.1, 1e9, 10, 1e8))
	if !ok || reason != "price_change_sol" {
		t.Fatalf("ShouldPost = (%v, %q), want (true, price_change_sol)", ok, reason)
	}
}

func TestTriggerStoreErrorSkipsTrendCheck(t *testing.T) {
	store := newStubStore()
	store.volumesErr = context.DeadlineExceeded
	e := newTrigger(store, newTestClock())
	ctx := context.Background()

	e.ShouldPost(ctx, testSnapshots(100, 1e9, 10, 1e8))

	ok, reason := e.ShouldPost(ctx, testSnapshots(101, 1.01e9, 10, 1e8))
	if ok || reason != "" {
		t.Fatalf("ShouldPost = (%v, %q), want (false, \"\")", ok, reason)
	}
}
