package analytics

import (
	"math"

	"ChainPulse/internal/domain/models"
	"ChainPulse/pkg/logger"
)

// Analyzer computes volume trends over a rolling window and heuristic
// proximity scores between the two tracked chains.
type Analyzer struct {
	trendThreshold float64
	log            *logger.Logger
}

func NewAnalyzer(trendThreshold float64, log *logger.Logger) *Analyzer {
	return &Analyzer{trendThreshold: trendThreshold, log: log}
}

// AnalyzeVolumeTrend compares the current volume to the mean of the
// historical window. Thresholds are checked in order; the first match
// wins.
func (a *Analyzer) AnalyzeVolumeTrend(currentVolume float64, history []models.VolumeHistoryPoint) models.TrendResult {
	if len(history) == 0 {
		return models.TrendResult{PctChange: 0, Classification: models.TrendInsufficientData}
	}

	var sum float64
	for _, p := range history {
		sum += p.Volume
	}
	avg := sum / float64(len(history))
	if avg == 0 {
		a.log.Warn("volume history averages to zero, cannot compute trend")
		return models.TrendResult{PctChange: 0, Classification: models.TrendError}
	}

	pct := (currentVolume - avg) / avg * 100

	var cls models.TrendClassification
	switch {
	case pct >= a.trendThreshold:
		cls = models.TrendSignificantIncrease
	case pct <= -a.trendThreshold:
		cls = models.TrendSignificantDecrease
	case pct >= 5:
		cls = models.TrendModerateIncrease
	case pct <= -5:
		cls = models.TrendModerateDecrease
	default:
		cls = models.TrendStable
	}

	return models.TrendResult{PctChange: pct, Classification: cls}
}

// ComputeCorrelations derives proximity scores for the tracked pair.
// Price and volume scores are symmetric in their arguments; the market
// cap ratio inverts when the arguments swap. Any degenerate input
// (nil snapshot, zero denominator) yields the neutral fallback rather
// than an error.
func (a *Analyzer) ComputeCorrelations(snapA, snapB *models.MarketSnapshot) models.CorrelationResult {
	fallback := models.CorrelationResult{PriceCorrelation: 0, VolumeCorrelation: 0, MarketCapRatio: 1}

	if snapA == nil || snapB == nil {
		a.log.Warn("correlation inputs incomplete, using fallback")
		return fallback
	}

	maxChange := math.Max(math.Abs(snapA.PriceChangePct24h), math.Abs(snapB.PriceChangePct24h))
	maxVolume := math.Max(snapA.Volume, snapB.Volume)
	if maxChange == 0 || maxVolume == 0 || snapB.MarketCap == 0 {
		a.log.Warn("degenerate correlation inputs, using fallback",
			logger.String("chain_a", snapA.Chain),
			logger.String("chain_b", snapB.Chain))
		return fallback
	}

	priceDelta := math.Abs(snapA.PriceChangePct24h-snapB.PriceChangePct24h) / maxChange
	volumeDelta := math.Abs(snapA.Volume-snapB.Volume) / maxVolume

	return models.CorrelationResult{
		PriceCorrelation:  1 - priceDelta,
		VolumeCorrelation: 1 - volumeDelta,
		MarketCapRatio:    snapA.MarketCap / snapB.MarketCap,
	}
}
