package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"ChainPulse/internal/domain/models"
	"ChainPulse/internal/domain/repository"
	"ChainPulse/internal/services/analytics"
	"ChainPulse/pkg/config"
	"ChainPulse/pkg/logger"
)

// TriggerEngine decides whether a cycle's snapshots justify a post. It
// keeps the previous positive decision's snapshots as the comparison
// baseline; no-post cycles keep comparing against that same baseline.
type TriggerEngine struct {
	chains          []config.Chain
	priceThreshold  float64
	volumeThreshold float64
	volumeWindow    time.Duration
	baseInterval    time.Duration

	analyzer *analytics.Analyzer
	store    repository.MarketStore
	log      *logger.Logger
	now      func() time.Time

	mu            sync.Mutex
	lastSnapshots map[string]*models.MarketSnapshot
	lastCheckTime time.Time
}

// TriggerOption configures the engine.
type TriggerOption func(*TriggerEngine)

// WithTriggerClock injects the time source.
func WithTriggerClock(now func() time.Time) TriggerOption {
	return func(e *TriggerEngine) { e.now = now }
}

func NewTriggerEngine(cfg *config.Config, analyzer *analytics.Analyzer, store repository.MarketStore, log *logger.Logger, opts ...TriggerOption) *TriggerEngine {
	e := &TriggerEngine{
		chains:          cfg.Chains,
		priceThreshold:  cfg.Triggers.PriceChangeThreshold,
		volumeThreshold: cfg.Triggers.VolumeChangeThreshold,
		volumeWindow:    time.Duration(cfg.Triggers.VolumeWindowMinutes) * time.Minute,
		baseInterval:    cfg.Triggers.BaseInterval,
		analyzer:        analyzer,
		store:           store,
		log:             log,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.lastCheckTime = e.now()
	return e
}

// ShouldPost evaluates the new snapshots against the baseline. Chains are
// checked in configured order and the first firing check wins; remaining
// checks are skipped for the cycle. A positive decision adopts the new
// snapshots as the baseline.
func (e *TriggerEngine) ShouldPost(ctx context.Context, snaps map[string]*models.MarketSnapshot) (bool, string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lastSnapshots == nil {
		e.lastSnapshots = snaps
		return true, "initial_post"
	}

	reason := ""
	for _, chain := range e.chains {
		curr, ok := snaps[chain.Symbol]
		prev, okPrev := e.lastSnapshots[chain.Symbol]
		if !ok || !okPrev {
			continue
		}

		sym := strings.ToLower(chain.Symbol)

		if prev.CurrentPrice != 0 {
			priceChange := math.Abs((curr.CurrentPrice - prev.CurrentPrice) / prev.CurrentPrice * 100)
			if priceChange >= e.priceThreshold {
				reason = "price_change_" + sym
				e.log.Info("significant price change detected",
					logger.String("chain", chain.Symbol),
					logger.Float64("pct", priceChange))
				break
			}
		}

		if prev.Volume != 0 {
			volumeChange := math.Abs((curr.Volume - prev.Volume) / prev.Volume * 100)
			if volumeChange >= e.volumeThreshold {
				reason = "volume_change_" + sym
				e.log.Info("significant volume change detected",
					logger.String("chain", chain.Symbol),
					logger.Float64("pct", volumeChange))
				break
			}
		}

		history, err := e.store.HistoricalVolume(ctx, chain.Symbol, e.volumeWindow)
		if err != nil {
			e.log.Warn("volume history unavailable, skipping trend check",
				logger.String("chain", chain.Symbol), logger.Error(err))
			continue
		}
		trend := e.analyzer.AnalyzeVolumeTrend(curr.Volume, history)
		if trend.Significant() {
			reason = fmt.Sprintf("volume_trend_%s_%s", sym, trend.Classification)
			e.log.Info("significant volume trend detected",
				logger.String("chain", chain.Symbol),
				logger.Float64("pct", trend.PctChange),
				logger.String("trend", string(trend.Classification)))
			break
		}
	}

	if reason == "" && e.now().Sub(e.lastCheckTime) >= e.baseInterval {
		reason = "regular_interval"
	}

	if reason == "" {
		return false, ""
	}

	e.lastSnapshots = snaps
	return true, reason
}

// MarkChecked records the start of a new wait period. The cycle loop
// calls it after each inter-cycle sleep so the regular-interval trigger
// measures from the last scheduled check, not the last post.
func (e *TriggerEngine) MarkChecked() {
	e.mu.Lock()
	e.lastCheckTime = e.now()
	e.mu.Unlock()
}

// LastCheckTime returns the start of the current wait period.
func (e *TriggerEngine) LastCheckTime() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastCheckTime
}
