package models

import "time"

// MarketSnapshot is one fetch cycle's normalized market data for a chain.
// Immutable after creation; owned by the cycle that created it.
type MarketSnapshot struct {
	Chain             string
	CurrentPrice      float64
	Volume            float64
	PriceChangePct24h float64
	MarketCap         float64
	MarketCapRank     int
	ATH               float64
	ATHChangePct      float64
	CirculatingSupply float64
	TotalSupply       float64
	MaxSupply         float64
	Sparkline         []float64
	FetchedAt         time.Time
}

// VolumeHistoryPoint is a read-only projection of persisted volume history.
type VolumeHistoryPoint struct {
	Timestamp time.Time
	Volume    float64
}

// TrendClassification labels a rolling-window volume trend.
type TrendClassification string

const (
	TrendInsufficientData    TrendClassification = "insufficient_data"
	TrendSignificantIncrease TrendClassification = "significant_increase"
	TrendSignificantDecrease TrendClassification = "significant_decrease"
	TrendModerateIncrease    TrendClassification = "moderate_increase"
	TrendModerateDecrease    TrendClassification = "moderate_decrease"
	TrendStable              TrendClassification = "stable"
	TrendError               TrendClassification = "error"
)

// TrendResult is the outcome of a volume trend analysis.
type TrendResult struct {
	PctChange      float64
	Classification TrendClassification
}

// Significant reports whether the trend alone justifies a post.
func (t TrendResult) Significant() bool {
	return t.Classification == TrendSignificantIncrease ||
		t.Classification == TrendSignificantDecrease
}

// CorrelationResult holds heuristic proximity scores for the tracked pair.
// Not Pearson correlation; both correlations live in [0,1].
type CorrelationResult struct {
	PriceCorrelation  float64 `json:"price_correlation"`
	VolumeCorrelation float64 `json:"volume_correlation"`
	MarketCapRatio    float64 `json:"market_cap_ratio"`
}

// ChainStats is a statistical summary over a store window.
type ChainStats struct {
	AvgPrice       float64 `json:"avg_price"`
	MaxPrice       float64 `json:"max_price"`
	MinPrice       float64 `json:"min_price"`
	AvgVolume      float64 `json:"avg_volume"`
	MaxVolume      float64 `json:"max_volume"`
	AvgPriceChange float64 `json:"avg_price_change"`
}

// FetcherStats is an observable snapshot of upstream API usage.
type FetcherStats struct {
	DailyRequests      int        `json:"daily_requests"`
	FailedRequests     int        `json:"failed_requests"`
	CacheSize          int        `json:"cache_size"`
	RateLimitRemaining int        `json:"rate_limit_remaining"`
	RateLimitResetAt   *time.Time `json:"rate_limit_reset_at,omitempty"`
}
