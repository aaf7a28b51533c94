package usecase

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"ChainPulse/internal/services/analytics"
	"ChainPulse/pkg/logger"
)

type engineFixture struct {
	engine    *Engine
	clock     *testClock
	store     *stubStore
	source    *stubSource
	narrative *stubNarrative
	publisher *stubPublisher
	events    *stubEvents
	metrics   *stubMetrics
	tracker   *PredictionTracker
}

func newEngineFixture() *engineFixture {
	cfg := engineConfig()
	clk := newTestClock()
	log := logger.Discard()

	f := &engineFixture{
		clock:     clk,
		store:     newStubStore(),
		source:    &stubSource{snaps: testSnapshots(100, 1e9, 10, 1e8)},
		narrative: &stubNarrative{text: "SOL and DOT trading calmly while the market naps."},
		publisher: &stubPublisher{},
		events:    &stubEvents{},
		metrics:   &stubMetrics{},
	}

	analyzer := analytics.NewAnalyzer(cfg.Triggers.VolumeTrendThreshold, log)
	classifier := analytics.NewClassifier()
	memes := analytics.NewMemeGenerator(rand.New(rand.NewSource(1)))
	f.tracker = NewPredictionTracker(cfg.Predictions.Retention,
		WithTrackerClock(clk.now),
		WithTrackerRand(rand.New(rand.NewSource(1))))
	trigger := NewTriggerEngine(cfg, analyzer, f.store, log, WithTriggerClock(clk.now))

	f.engine = NewEngine(cfg, f.source, f.store, f.events, f.metrics,
		analyzer, classifier, memes, f.tracker, trigger,
		f.narrative, f.publisher, log,
		WithEngineClock(clk.now))
	return f
}

func TestRunCyclePostsOnInitialTrigger(t *testing.T) {
	f := newEngineFixture()

	if err := f.engine.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if len(f.publisher.posted) != 1 {
		t.Fatalf("posts = %d, want 1", len(f.publisher.posted))
	}
	post := f.publisher.posted[0]
	if !strings.Contains(post, f.narrative.text) {
		t.Errorf("post %q missing narrative", post)
	}
	if !strings.Contains(post, "#Layer1") {
		t.Errorf("post %q missing hashtags", post)
	}

	if f.store.storedSnapshots != 2 {
		t.Errorf("stored snapshots = %d, want 2", f.store.storedSnapshots)
	}
	if f.store.storedMoods != 2 {
		t.Errorf("stored moods = %d, want 2", f.store.storedMoods)
	}
	if f.store.storedCorrelations != 1 {
		t.Errorf("stored correlations = %d, want 1", f.store.storedCorrelations)
	}
	if len(f.store.storedContent) != 1 {
		t.Fatalf("stored content = %d, want 1", len(f.store.storedContent))
	}
	if f.store.storedContent[0].TriggerType != "initial_post" {
		t.Errorf("trigger type = %q, want initial_post", f.store.storedContent[0].TriggerType)
	}
	if f.events.published != 1 {
		t.Errorf("post events = %d, want 1", f.events.published)
	}

	preds := f.tracker.Recent()
	if len(preds) != 1 {
		t.Fatalf("tracked predictions = %d, want 1", len(preds))
	}
	if preds[0].Prices["SOL"] != 100 {
		t.Errorf("recorded SOL price = %v, want 100", preds[0].Prices["SOL"])
	}
	if len(f.metrics.triggers) != 1 || f.metrics.triggers[0] != "initial_post" {
		t.Errorf("recorded triggers = %v, want [initial_post]", f.metrics.triggers)
	}
}

func TestRunCycleSkipsWithoutTrigger(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()

	if err := f.engine.RunCycle(ctx); err != nil {
		t.Fatalf("first RunCycle: %v", err)
	}
	if err := f.engine.RunCycle(ctx); err != nil {
		t.Fatalf("second RunCycle: %v", err)
	}

	if len(f.publisher.posted) != 1 {
		t.Fatalf("posts = %d, want 1 (second cycle had no trigger)", len(f.publisher.posted))
	}
	// Snapshots persist every cycle regardless of the decision.
	if f.store.storedSnapshots != 4 {
		t.Errorf("stored snapshots = %d, want 4", f.store.storedSnapshots)
	}
}

func TestRunCyclePropagatesFetchFailure(t *testing.T) {
	f := newEngineFixture()
	f.source.err = errors.New("upstream down")

	if err := f.engine.RunCycle(context.Background()); err == nil {
		t.Fatal("expected an error when the fetch fails")
	}
	if len(f.publisher.posted) != 0 {
		t.Errorf("posts = %d, want 0", len(f.publisher.posted))
	}
}

func TestRunCycleRegeneratesOnDuplicate(t *testing.T) {
	f := newEngineFixture()
	f.store.duplicate = true

	err := f.engine.RunCycle(context.Background())
	if err == nil {
		t.Fatal("expected an error once the compose budget is exhausted")
	}
	if !errors.Is(err, errDuplicateContent) {
		t.Fatalf("err = %v, want duplicate content", err)
	}
	if f.narrative.calls != 3 {
		t.Errorf("generate calls = %d, want 3", f.narrative.calls)
	}
	if len(f.publisher.posted) != 0 {
		t.Errorf("posts = %d, want 0", len(f.publisher.posted))
	}
}

func TestRunCycleChecksPublisherTimeline(t *testing.T) {
	f := newEngineFixture()
	dup := formatPost(f.narrative.text, "#SOL #DOT #Layer1 #L1Analysis", 280)
	f.publisher.recent = []string{dup}

	err := f.engine.RunCycle(context.Background())
	if err == nil {
		t.Fatal("expected duplicate detection against the recent timeline")
	}
	if len(f.publisher.posted) != 0 {
		t.Errorf("posts = %d, want 0", len(f.publisher.posted))
	}
}

func TestRunCycleGenerationFailureAbortsPost(t *testing.T) {
	f := newEngineFixture()
	f.narrative.err = errors.New("model unavailable")

	if err := f.engine.RunCycle(context.Background()); err == nil {
		t.Fatal("expected an error when generation fails")
	}
	if len(f.metrics.posts) != 1 || f.metrics.posts[0] != "failure" {
		t.Errorf("recorded posts = %v, want [failure]", f.metrics.posts)
	}
}

func TestFormatPostTruncatesLongNarratives(t *testing.T) {
	hashtags := "#SOL #DOT"

	short := formatPost("brief take", hashtags, 280)
	if short != "brief take\n\n#SOL #DOT" {
		t.Errorf("short post = %q", short)
	}

	long := formatPost(strings.Repeat("x", 500), hashtags, 280)
	if utf8.RuneCountInString(long) > 260 {
		t.Errorf("long post runs %d runes, want <= 260", utf8.RuneCountInString(long))
	}
	if !strings.HasSuffix(long, hashtags) {
		t.Errorf("long post %q must keep hashtags", long)
	}
	if !strings.Contains(long, "...") {
		t.Errorf("long post %q should mark the truncation", long)
	}
}
