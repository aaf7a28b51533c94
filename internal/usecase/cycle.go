package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ChainPulse/internal/domain/models"
	"ChainPulse/internal/domain/repository"
	"ChainPulse/internal/domain/service"
	"ChainPulse/internal/services/analytics"
	"ChainPulse/pkg/config"
	"ChainPulse/pkg/logger"
)

// errDuplicateContent marks a generated post that matches recent output.
var errDuplicateContent = errors.New("duplicate content")

// Engine runs the fetch/decide/post cycle. One cycle runs to completion
// before the next begins; every steady-state failure degrades to "skip
// this cycle" rather than stopping the loop.
type Engine struct {
	chains        []config.Chain
	baseInterval  time.Duration
	errorWait     time.Duration
	maxComposes   int
	volumeWindow  time.Duration
	statsHours    int
	hashtags      string
	maxPostLength int

	source     repository.MarketSource
	store      repository.MarketStore
	events     repository.EventPublisher
	metrics    repository.Metrics
	analyzer   *analytics.Analyzer
	classifier *analytics.Classifier
	memes      *analytics.MemeGenerator
	tracker    *PredictionTracker
	trigger    *TriggerEngine
	narrative  service.NarrativeGenerator
	publisher  service.Publisher
	log        *logger.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// EngineOption configures the cycle engine.
type EngineOption func(*Engine)

// WithEngineClock injects the time source.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithEngineSleep injects the inter-cycle wait.
func WithEngineSleep(sleep func(ctx context.Context, d time.Duration) error) EngineOption {
	return func(e *Engine) { e.sleep = sleep }
}

func NewEngine(
	cfg *config.Config,
	source repository.MarketSource,
	store repository.MarketStore,
	events repository.EventPublisher,
	metrics repository.Metrics,
	analyzer *analytics.Analyzer,
	classifier *analytics.Classifier,
	memes *analytics.MemeGenerator,
	tracker *PredictionTracker,
	trigger *TriggerEngine,
	narrative service.NarrativeGenerator,
	publisher service.Publisher,
	log *logger.Logger,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		chains:        cfg.Chains,
		baseInterval:  cfg.Triggers.BaseInterval,
		errorWait:     time.Minute,
		maxComposes:   cfg.Narrative.MaxRetries,
		volumeWindow:  time.Duration(cfg.Triggers.VolumeWindowMinutes) * time.Minute,
		statsHours:    24,
		hashtags:      cfg.Publisher.Hashtags,
		maxPostLength: cfg.Publisher.MaxPostLength,
		source:        source,
		store:         store,
		events:        events,
		metrics:       metrics,
		analyzer:      analyzer,
		classifier:    classifier,
		memes:         memes,
		tracker:       tracker,
		trigger:       trigger,
		narrative:     narrative,
		publisher:     publisher,
		log:           log,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sleep == nil {
		e.sleep = func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		}
	}
	return e
}

// Run executes cycles until the context is canceled. Cycle errors are
// logged and answered with a short sleep; the regular cadence resumes on
// the next pass.
func (e *Engine) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := e.RunCycle(ctx); err != nil {
			e.log.Error("analysis cycle failed", logger.Error(err))
			if serr := e.sleep(ctx, e.errorWait); serr != nil {
				return serr
			}
			continue
		}

		elapsed := e.now().Sub(e.trigger.LastCheckTime())
		wait := e.baseInterval - elapsed
		if wait < 0 {
			wait = 0
		}
		e.log.Debug("sleeping until next check", logger.Duration("wait", wait))
		if err := e.sleep(ctx, wait); err != nil {
			return err
		}
		e.trigger.MarkChecked()
	}
}

// RunCycle performs one fetch/decide/post pass.
func (e *Engine) RunCycle(ctx context.Context) error {
	started := e.now()
	defer func() {
		e.metrics.RecordCycleDuration(e.now().Sub(started).Seconds())
	}()

	snaps, err := e.source.Markets(ctx)
	if err != nil {
		return fmt.Errorf("fetch market data: %w", err)
	}

	for _, chain := range e.chains {
		snap := snaps[chain.Symbol]
		e.metrics.RecordLastPrice(chain.Symbol, snap.CurrentPrice)
		if err := e.store.StoreMarketData(ctx, chain.Symbol, snap); err != nil {
			e.log.Error("persist market data failed",
				logger.String("chain", chain.Symbol), logger.Error(err))
		}
	}

	shouldPost, reason := e.trigger.ShouldPost(ctx, snaps)
	if !shouldPost {
		e.log.Debug("no significant changes detected, skipping post")
		return nil
	}

	e.metrics.RecordTrigger(reason)
	e.log.Info("update triggered", logger.String("reason", reason))

	if err := e.composeAndPost(ctx, snaps, reason); err != nil {
		e.metrics.RecordPost("failure")
		return fmt.Errorf("compose and post: %w", err)
	}
	e.metrics.RecordPost("success")
	return nil
}

// composeAndPost builds the analysis context, generates a narrative, and
// publishes it. Duplicate narratives are regenerated up to the compose
// budget.
func (e *Engine) composeAndPost(ctx context.Context, snaps map[string]*models.MarketSnapshot, reason string) error {
	analysis := e.analyze(ctx, snaps)
	currentPrices := make(map[string]float64, len(e.chains))
	for _, chain := range e.chains {
		currentPrices[chain.Symbol] = snaps[chain.Symbol].CurrentPrice
	}

	callback, _ := e.tracker.Callback(currentPrices)
	prompt := buildPrompt(analysis.chains, analysis.correlation, reason, callback)

	var lastErr error
	for attempt := 0; attempt < e.maxComposes; attempt++ {
		narrative, err := e.narrative.Generate(ctx, prompt)
		if err != nil {
			return fmt.Errorf("generate narrative: %w", err)
		}

		post := formatPost(narrative, e.hashtags, e.maxPostLength)

		if dup, err := e.isDuplicate(ctx, post); err != nil {
			e.log.Warn("duplicate check failed, posting anyway", logger.Error(err))
		} else if dup {
			e.log.Info("similar content detected, regenerating")
			lastErr = errDuplicateContent
			continue
		}

		if err := e.publisher.Post(ctx, post); err != nil {
			return fmt.Errorf("publish: %w", err)
		}

		e.tracker.Record(narrative, analysis.sentiment, currentPrices)

		content := &models.PostedContent{
			Timestamp:   e.now(),
			Content:     post,
			Sentiment:   analysis.sentiment,
			TriggerType: reason,
			PriceData:   analysis.priceData(snaps),
			MemePhrases: analysis.memes,
		}
		if err := e.store.StorePostedContent(ctx, content); err != nil {
			e.log.Error("persist posted content failed", logger.Error(err))
		}
		if err := e.events.PublishPost(ctx, content); err != nil {
			e.log.Error("publish post event failed", logger.Error(err))
		}

		e.log.Info("posted analysis", logger.String("trigger", reason))
		return nil
	}

	return fmt.Errorf("compose budget exhausted: %w", lastErr)
}

// cycleAnalysis is the per-cycle derived context shared between the
// prompt, the prediction record, and the persisted post.
type cycleAnalysis struct {
	chains      []chainContext
	sentiment   map[string]models.Mood
	memes       map[string]string
	correlation models.CorrelationResult
}

func (a *cycleAnalysis) priceData(snaps map[string]*models.MarketSnapshot) map[string]models.PricePoint {
	out := make(map[string]models.PricePoint, len(snaps))
	for sym, snap := range snaps {
		out[sym] = models.PricePoint{Price: snap.CurrentPrice, Volume: snap.Volume}
	}
	return out
}

// analyze derives moods, memes, trends, stats and correlations for the
// cycle. Store failures degrade to missing context, never abort the post.
func (e *Engine) analyze(ctx context.Context, snaps map[string]*models.MarketSnapshot) *cycleAnalysis {
	a := &cycleAnalysis{
		sentiment: make(map[string]models.Mood, len(e.chains)),
		memes:     make(map[string]string, len(e.chains)),
	}

	for _, chain := range e.chains {
		snap := snaps[chain.Symbol]

		indicators := analytics.IndicatorsFromSnapshot(snap)
		mood := e.classifier.Classify(indicators)
		a.sentiment[chain.Symbol] = mood

		if err := e.store.StoreMood(ctx, chain.Symbol, mood, indicators); err != nil {
			e.log.Error("persist mood failed",
				logger.String("chain", chain.Symbol), logger.Error(err))
		}

		meme := e.memes.Phrase(strings.ToUpper(chain.Symbol), mood)
		a.memes[chain.Symbol] = meme

		cc := chainContext{
			Symbol:      chain.Symbol,
			Mood:        mood,
			PriceChange: snap.PriceChangePct24h,
			ATHDistance: snap.ATHChangePct,
			Meme:        meme,
		}

		if history, err := e.store.HistoricalVolume(ctx, chain.Symbol, e.volumeWindow); err == nil && len(history) > 0 {
			trend := e.analyzer.AnalyzeVolumeTrend(snap.Volume, history)
			cc.Trend = &trend
		}
		if stats, err := e.store.ChainStats(ctx, chain.Symbol, e.statsHours); err == nil {
			cc.Stats = stats
		}

		a.chains = append(a.chains, cc)
	}

	if len(e.chains) >= 2 {
		a.correlation = e.analyzer.ComputeCorrelations(snaps[e.chains[0].Symbol], snaps[e.chains[1].Symbol])
		if err := e.store.StoreCorrelation(ctx, a.correlation); err != nil {
			e.log.Error("persist correlation failed", logger.Error(err))
		}
	}

	return a
}

// isDuplicate checks the post against stored content from the last hour
// and the publisher's recent timeline.
func (e *Engine) isDuplicate(ctx context.Context, post string) (bool, error) {
	if seen, err := e.store.RecentlyPosted(ctx, post); err != nil {
		return false, err
	} else if seen {
		return true, nil
	}

	recent, err := e.publisher.RecentPosts(ctx)
	if err != nil {
		return false, err
	}
	trimmed := strings.TrimSpace(post)
	for _, p := range recent {
		if strings.TrimSpace(p) == trimmed {
			return true, nil
		}
	}
	return false, nil
}
