package analytics

import (
	"math"

	"ChainPulse/internal/domain/models"
)

// Classifier scores market indicators into a single mood. Stateless and
// safe for concurrent use.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// IndicatorsFromSnapshot builds classification inputs from a snapshot.
// Volatility is the 24h price change magnitude expressed as a fraction.
func IndicatorsFromSnapshot(snap *models.MarketSnapshot) models.MoodIndicators {
	return models.MoodIndicators{
		PriceChange:   snap.PriceChangePct24h,
		TradingVolume: snap.Volume,
		Volatility:    math.Abs(snap.PriceChangePct24h) / 100,
	}
}

// Classify accumulates weighted scores per mood and returns the highest.
// Ties resolve to the earliest mood in models.MoodPriority; that order is
// a contract, not an artifact.
func (c *Classifier) Classify(ind models.MoodIndicators) models.Mood {
	scores := map[models.Mood]int{
		models.MoodBullish:    0,
		models.MoodBearish:    0,
		models.MoodNeutral:    0,
		models.MoodVolatile:   0,
		models.MoodRecovering: 0,
	}

	// Price change
	switch {
	case ind.PriceChange > 5:
		scores[models.MoodBullish] += 3
	case ind.PriceChange < -5:
		scores[models.MoodBearish] += 3
	case ind.PriceChange >= -2 && ind.PriceChange <= 2:
		scores[models.MoodNeutral] += 2
	case ind.PriceChange >= -5 && ind.PriceChange < -2:
		scores[models.MoodRecovering] += 2
	}

	// Volatility
	switch {
	case ind.Volatility > 0.1:
		scores[models.MoodVolatile] += 3
	case ind.Volatility > 0.05 && ind.Volatility <= 0.1:
		scores[models.MoodVolatile] += 1
	}

	// Volume impact
	if ind.TradingVolume > 1.5e9 {
		scores[models.MoodVolatile]++
		if ind.PriceChange > 0 {
			scores[models.MoodBullish]++
		} else {
			scores[models.MoodBearish]++
		}
	}

	// Recovery pattern, additive with the price-change bucket
	if ind.PriceChange >= -8 && ind.PriceChange < -2 && ind.Volatility < 0.08 {
		scores[models.MoodRecovering] += 2
	}

	// Optional indicators participate only when present
	if ind.SocialSentiment != nil {
		switch {
		case *ind.SocialSentiment > 0.7:
			scores[models.MoodBullish]++
		case *ind.SocialSentiment < 0.3:
			scores[models.MoodBearish]++
		}
	}
	if ind.FundingRates != nil && math.Abs(*ind.FundingRates) > 0.01 {
		scores[models.MoodVolatile]++
	}
	if ind.LiquidationVolume != nil && *ind.LiquidationVolume > 100e6 {
		scores[models.MoodVolatile] += 2
		scores[models.MoodBearish]++
	}

	best := models.MoodPriority[0]
	for _, mood := range models.MoodPriority[1:] {
		if scores[mood] > scores[best] {
			best = mood
		}
	}
	return best
}
