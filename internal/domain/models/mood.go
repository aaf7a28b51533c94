package models

// Mood is one of five discrete market-sentiment classifications.
type Mood string

const (
	MoodBullish    Mood = "bullish"
	MoodBearish    Mood = "bearish"
	MoodNeutral    Mood = "neutral"
	MoodVolatile   Mood = "volatile"
	MoodRecovering Mood = "recovering"
)

// MoodPriority is the fixed tie-break order: when scores tie for the
// maximum, the earliest mood in this list wins. The ordering is part of
// the classifier contract.
var MoodPriority = []Mood{
	MoodBullish,
	MoodBearish,
	MoodNeutral,
	MoodVolatile,
	MoodRecovering,
}

// MoodIndicators carries the inputs to mood classification. The optional
// fields participate only when non-nil.
type MoodIndicators struct {
	PriceChange       float64  `json:"price_change"`
	TradingVolume     float64  `json:"trading_volume"`
	Volatility        float64  `json:"volatility"`
	SocialSentiment   *float64 `json:"social_sentiment,omitempty"`
	FundingRates      *float64 `json:"funding_rates,omitempty"`
	LiquidationVolume *float64 `json:"liquidation_volume,omitempty"`
}
