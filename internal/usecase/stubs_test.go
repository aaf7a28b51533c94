package usecase

import (
	"context"
	"sync"
	"time"

	"ChainPulse/internal/domain/models"
	"ChainPulse/pkg/config"
)

// testClock is a manually advanced time source.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// stubStore implements the persistence collaborator in memory.
type stubStore struct {
	volumes    map[string][]models.VolumeHistoryPoint
	volumesErr error
	stats      map[string]*models.ChainStats
	duplicate  bool

	storedSnapshots    int
	storedMoods        int
	storedCorrelations int
	storedContent      []*models.PostedContent
}

func newStubStore() *stubStore {
	return &stubStore{
		volumes: map[string][]models.VolumeHistoryPoint{},
		stats:   map[string]*models.ChainStats{},
	}
}

func (s *stubStore) Init(context.Context) error { return nil }

func (s *stubStore) StoreMarketData(_ context.Context, _ string, _ *models.MarketSnapshot) error {
	s.storedSnapshots++
	return nil
}

func (s *stubStore) StoreCorrelation(_ context.Context, _ models.CorrelationResult) error {
	s.storedCorrelations++
	return nil
}

func (s *stubStore) StoreMood(_ context.Context, _ string, _ models.Mood, _ models.MoodIndicators) error {
	s.storedMoods++
	return nil
}

func (s *stubStore) StorePostedContent(_ context.Context, content *models.PostedContent) error {
	s.storedContent = append(s.storedContent, content)
	return nil
}

func (s *stubStore) HistoricalVolume(_ context.Context, chain string, _ time.Duration) ([]models.VolumeHistoryPoint, error) {
	if s.volumesErr != nil {
		return nil, s.volumesErr
	}
	return s.volumes[chain], nil
}

func (s *stubStore) ChainStats(_ context.Context, chain string, _ int) (*models.ChainStats, error) {
	return s.stats[chain], nil
}

func (s *stubStore) RecentlyPosted(context.Context, string) (bool, error) {
	return s.duplicate, nil
}

func (s *stubStore) Health(context.Context) error { return nil }
func (s *stubStore) Close() error                 { return nil }

// stubSource serves canned snapshots.
type stubSource struct {
	snaps map[string]*models.MarketSnapshot
	err   error
	calls int
}

func (s *stubSource) Markets(context.Context) (map[string]*models.MarketSnapshot, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.snaps, nil
}

func (s *stubSource) Stats() models.FetcherStats { return models.FetcherStats{} }

// stubNarrative returns a fixed narrative.
type stubNarrative struct {
	text  string
	err   error
	calls int
}

func (s *stubNarrative) Generate(context.Context, string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

// stubPublisher records posts and serves a canned timeline.
type stubPublisher struct {
	recent []string
	posted []string
	err    error
}

func (s *stubPublisher) Post(_ context.Context, text string) error {
	if s.err != nil {
		return s.err
	}
	s.posted = append(s.posted, text)
	return nil
}

func (s *stubPublisher) RecentPosts(context.Context) ([]string, error) {
	return s.recent, nil
}

// stubEvents counts emitted post events.
type stubEvents struct {
	published int
}

func (s *stubEvents) PublishPost(context.Context, *models.PostedContent) error {
	s.published++
	return nil
}

func (s *stubEvents) Close() error { return nil }

// stubMetrics counts recorded measurements.
type stubMetrics struct {
	triggers []string
	posts    []string
}

func (s *stubMetrics) RecordAPIRequest(string, string)  {}
func (s *stubMetrics) RecordCacheLookup(string)         {}
func (s *stubMetrics) RecordTrigger(reason string)      { s.triggers = append(s.triggers, reason) }
func (s *stubMetrics) RecordPost(outcome string)        { s.posts = append(s.posts, outcome) }
func (s *stubMetrics) RecordLastPrice(string, float64)  {}
func (s *stubMetrics) RecordCycleDuration(float64)      {}

func engineConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Chains = []config.Chain{
		{Symbol: "SOL", ID: "solana"},
		{Symbol: "DOT", ID: "polkadot"},
	}
	cfg.Triggers.PriceChangeThreshold = 5.0
	cfg.Triggers.VolumeChangeThreshold = 10.0
	cfg.Triggers.VolumeTrendThreshold = 10.0
	cfg.Triggers.VolumeWindowMinutes = 60
	cfg.Triggers.BaseInterval = 30 * time.Minute
	cfg.Predictions.Retention = 24 * time.Hour
	cfg.Narrative.MaxRetries = 3
	cfg.Publisher.MaxPostLength = 280
	cfg.Publisher.Hashtags = "#SOL #DOT #Layer1 #L1Analysis"
	return cfg
}

func testSnapshots(solPrice, solVolume, dotPrice, dotVolume float64) map[string]*models.MarketSnapshot {
	return map[string]*models.MarketSnapshot{
		"SOL": {
			Chain:             "SOL",
			CurrentPrice:      solPrice,
			Volume:            solVolume,
			PriceChangePct24h: 2.0,
			MarketCap:         7e10,
			ATHChangePct:      -40,
		},
		"DOT": {
			Chain:             "DOT",
			CurrentPrice:      dotPrice,
			Volume:            dotVolume,
			PriceChangePct24h: 1.0,
			MarketCap:         1e10,
			ATHChangePct:      -60,
		},
	}
}
