package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ChainPulse/internal/domain/models"
	pkgch "ChainPulse/pkg/clickhouse"
	"ChainPulse/pkg/logger"
)

// schemaStatements create the analysis tables. Idempotent; run at startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS market_data (
		timestamp             DateTime64(3) NOT NULL,
		chain                 LowCardinality(String) NOT NULL,
		price                 Float64 NOT NULL,
		volume                Float64 NOT NULL,
		price_change_24h      Float64 NOT NULL,
		market_cap            Float64 NOT NULL,
		ath                   Float64 NOT NULL,
		ath_change_percentage Float64 NOT NULL
	) ENGINE = MergeTree()
	ORDER BY (chain, timestamp)`,

	`CREATE TABLE IF NOT EXISTS correlation_analysis (
		timestamp          DateTime64(3) NOT NULL,
		price_correlation  Float64 NOT NULL,
		volume_correlation Float64 NOT NULL,
		market_cap_ratio   Float64 NOT NULL
	) ENGINE = MergeTree()
	ORDER BY timestamp`,

	`CREATE TABLE IF NOT EXISTS mood_history (
		timestamp  DateTime64(3) NOT NULL,
		chain      LowCardinality(String) NOT NULL,
		mood       LowCardinality(String) NOT NULL,
		indicators String NOT NULL
	) ENGINE = MergeTree()
	ORDER BY (chain, timestamp)`,

	`CREATE TABLE IF NOT EXISTS posted_content (
		timestamp    DateTime64(3) NOT NULL,
		content      String NOT NULL,
		sentiment    String NOT NULL,
		trigger_type LowCardinality(String) NOT NULL,
		price_data   String NOT NULL,
		meme_phrases String NOT NULL
	) ENGINE = MergeTree()
	ORDER BY timestamp`,
}

// CHMarketStore persists market history and posted content in ClickHouse.
type CHMarketStore struct {
	ch *pkgch.Client
	db *sql.DB
	l  *logger.Logger
}

func NewCHMarketStore(ch *pkgch.Client, l *logger.Logger) *CHMarketStore {
	return &CHMarketStore{ch: ch, db: ch.DB(), l: l}
}

// Init creates the schema.
func (s *CHMarketStore) Init(ctx context.Context) error {
	if err := s.ch.InitSchema(ctx, schemaStatements); err != nil {
		return fmt.Errorf("market store schema: %w", err)
	}
	s.l.Info("market store schema ready")
	return nil
}

func (s *CHMarketStore) StoreMarketData(ctx context.Context, chain string, snap *models.MarketSnapshot) error {
	const q = `
        INSERT INTO market_data
            (timestamp, chain, price, volume, price_change_24h, market_cap, ath, ath_change_percentage)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := s.db.ExecContext(ctx, q,
		snap.FetchedAt, chain, snap.CurrentPrice, snap.Volume,
		snap.PriceChangePct24h, snap.MarketCap, snap.ATH, snap.ATHChangePct)
	if err != nil {
		s.l.Error("clickhouse store market_data error",
			logger.String("chain", chain), logger.Error(err))
		return fmt.Errorf("store market data: %w", err)
	}
	return nil
}

func (s *CHMarketStore) StoreCorrelation(ctx context.Context, res models.CorrelationResult) error {
	const q = `
        INSERT INTO correlation_analysis
            (timestamp, price_correlation, volume_correlation, market_cap_ratio)
        VALUES (?, ?, ?, ?)
    `
	_, err := s.db.ExecContext(ctx, q,
		time.Now(), res.PriceCorrelation, res.VolumeCorrelation, res.MarketCapRatio)
	if err != nil {
		s.l.Error("clickhouse store correlation error", logger.Error(err))
		return fmt.Errorf("store correlation: %w", err)
	}
	return nil
}

func (s *CHMarketStore) StoreMood(ctx context.Context, chain string, mood models.Mood, ind models.MoodIndicators) error {
	indicators, err := json.Marshal(ind)
	if err != nil {
		return fmt.Errorf("encode indicators: %w", err)
	}

	const q = `
        INSERT INTO mood_history (timestamp, chain, mood, indicators)
        VALUES (?, ?, ?, ?)
    `
	if _, err := s.db.ExecContext(ctx, q, time.Now(), chain, string(mood), string(indicators)); err != nil {
		s.l.Error("clickhouse store mood error",
			logger.String("chain", chain), logger.Error(err))
		return fmt.Errorf("store mood: %w", err)
	}
	return nil
}

func (s *CHMarketStore) StorePostedContent(ctx context.Context, content *models.PostedContent) error {
	sentiment, err := json.Marshal(content.Sentiment)
	if err != nil {
		return fmt.Errorf("encode sentiment: %w", err)
	}
	priceData, err := json.Marshal(content.PriceData)
	if err != nil {
		return fmt.Errorf("encode price data: %w", err)
	}
	memes, err := json.Marshal(content.MemePhrases)
	if err != nil {
		return fmt.Errorf("encode meme phrases: %w", err)
	}

	const q = `
        INSERT INTO posted_content
            (timestamp, content, sentiment, trigger_type, price_data, meme_phrases)
        VALUES (?, ?, ?, ?, ?, ?)
    `
	_, err = s.db.ExecContext(ctx, q,
		content.Timestamp, content.Content, string(sentiment),
		content.TriggerType, string(priceData), string(memes))
	if err != nil {
		s.l.Error("clickhouse store posted_content error", logger.Error(err))
		return fmt.Errorf("store posted content: %w", err)
	}
	return nil
}

// HistoricalVolume returns the volume points recorded for a chain within
// the window, oldest first.
func (s *CHMarketStore) HistoricalVolume(ctx context.Context, chain string, window time.Duration) ([]models.VolumeHistoryPoint, error) {
	const q = `
        SELECT timestamp, volume
        FROM market_data
        WHERE chain = ? AND timestamp >= ?
        ORDER BY timestamp ASC
    `
	rows, err := s.db.QueryContext(ctx, q, chain, time.Now().Add(-window))
	if err != nil {
		s.l.Error("clickhouse historical_volume query error",
			logger.String("chain", chain), logger.Error(err))
		return nil, fmt.Errorf("historical volume: %w", err)
	}
	defer rows.Close()

	var out []models.VolumeHistoryPoint
	for rows.Next() {
		var p models.VolumeHistoryPoint
		if err := rows.Scan(&p.Timestamp, &p.Volume); err != nil {
			return nil, fmt.Errorf("scan volume point: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// ChainStats aggregates price and volume over the last N hours. Returns
// nil when the window holds no rows.
func (s *CHMarketStore) ChainStats(ctx context.Context, chain string, hours int) (*models.ChainStats, error) {
	const q = `
        SELECT
            avg(price)            AS avg_price,
            max(price)            AS max_price,
            min(price)            AS min_price,
            avg(volume)           AS avg_volume,
            max(volume)           AS max_volume,
            avg(price_change_24h) AS avg_price_change,
            count()               AS n
        FROM market_data
        WHERE chain = ? AND timestamp >= ?
    `
	since := time.Now().Add(-time.Duration(hours) * time.Hour)

	var stats models.ChainStats
	var n uint64
	err := s.db.QueryRowContext(ctx, q, chain, since).Scan(
		&stats.AvgPrice, &stats.MaxPrice, &stats.MinPrice,
		&stats.AvgVolume, &stats.MaxVolume, &stats.AvgPriceChange, &n)
	if err != nil {
		s.l.Error("clickhouse chain_stats query error",
			logger.String("chain", chain), logger.Error(err))
		return nil, fmt.Errorf("chain stats: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return &stats, nil
}

// RecentlyPosted reports whether the exact content (modulo surrounding
// whitespace) was posted within the last hour.
func (s *CHMarketStore) RecentlyPosted(ctx context.Context, content string) (bool, error) {
	const q = `
        SELECT content
        FROM posted_content
        WHERE timestamp >= ?
    `
	rows, err := s.db.QueryContext(ctx, q, time.Now().Add(-time.Hour))
	if err != nil {
		s.l.Error("clickhouse recently_posted query error", logger.Error(err))
		return false, fmt.Errorf("recently posted: %w", err)
	}
	defer rows.Close()

	needle := strings.TrimSpace(content)
	for rows.Next() {
		var posted string
		if err := rows.Scan(&posted); err != nil {
			return false, fmt.Errorf("scan content: %w", err)
		}
		if strings.TrimSpace(posted) == needle {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("rows: %w", err)
	}
	return false, nil
}

func (s *CHMarketStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *CHMarketStore) Close() error {
	return s.ch.Close()
}
