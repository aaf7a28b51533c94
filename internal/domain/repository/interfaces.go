package repository

import (
	"context"
	"time"

	"ChainPulse/internal/domain/models"
)

// MarketSource produces normalized per-chain snapshots from the upstream
// markets API, with caching and rate limiting behind the interface.
type MarketSource interface {
	// Markets returns one snapshot per tracked chain, keyed by symbol.
	// A nil map with an error means "no data this cycle".
	Markets(ctx context.Context) (map[string]*models.MarketSnapshot, error)
	Stats() models.FetcherStats
}

// MarketStore is the persistence collaborator.
type MarketStore interface {
	Init(ctx context.Context) error
	StoreMarketData(ctx context.Context, chain string, snap *models.MarketSnapshot) error
	StoreCorrelation(ctx context.Context, res models.CorrelationResult) error
	StoreMood(ctx context.Context, chain string, mood models.Mood, ind models.MoodIndicators) error
	StorePostedContent(ctx context.Context, content *models.PostedContent) error
	HistoricalVolume(ctx context.Context, chain string, window time.Duration) ([]models.VolumeHistoryPoint, error)
	ChainStats(ctx context.Context, chain string, hours int) (*models.ChainStats, error)
	// RecentlyPosted reports whether identical content was posted within
	// the last hour.
	RecentlyPosted(ctx context.Context, content string) (bool, error)
	Health(ctx context.Context) error
	Close() error
}

// EventPublisher emits posted updates to an event stream.
type EventPublisher interface {
	PublishPost(ctx context.Context, content *models.PostedContent) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordAPIRequest(endpoint, outcome string)
	RecordCacheLookup(result string)
	RecordTrigger(reason string)
	RecordPost(outcome string)
	RecordLastPrice(chain string, price float64)
	RecordCycleDuration(seconds float64)
}
