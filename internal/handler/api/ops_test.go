package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"ChainPulse/internal/domain/models"
	"ChainPulse/internal/usecase"
	"ChainPulse/pkg/config"
	"ChainPulse/pkg/logger"
)

type fakeSource struct {
	stats models.FetcherStats
}

func (f *fakeSource) Markets(context.Context) (map[string]*models.MarketSnapshot, error) {
	return nil, nil
}

func (f *fakeSource) Stats() models.FetcherStats { return f.stats }

type fakeStore struct {
	healthErr error
	stats     map[string]*models.ChainStats
}

func (f *fakeStore) Init(context.Context) error { return nil }
func (f *fakeStore) StoreMarketData(context.Context, string, *models.MarketSnapshot) error {
	return nil
}
func (f *fakeStore) StoreCorrelation(context.Context, models.CorrelationResult) error { return nil }
func (f *fakeStore) StoreMood(context.Context, string, models.Mood, models.MoodIndicators) error {
	return nil
}
func (f *fakeStore) StorePostedContent(context.Context, *models.PostedContent) error { return nil }
func (f *fakeStore) HistoricalVolume(context.Context, string, time.Duration) ([]models.VolumeHistoryPoint, error) {
	return nil, nil
}
func (f *fakeStore) ChainStats(_ context.Context, chain string, _ int) (*models.ChainStats, error) {
	return f.stats[chain], nil
}
func (f *fakeStore) RecentlyPosted(context.Context, string) (bool, error) { return false, nil }
func (f *fakeStore) Health(context.Context) error                        { return f.healthErr }
func (f *fakeStore) Close() error                                        { return nil }

func newOpsFixture(store *fakeStore) (*echo.Echo, *usecase.PredictionTracker) {
	cfg := &config.Config{}
	cfg.Chains = []config.Chain{
		{Symbol: "SOL", ID: "solana"},
		{Symbol: "DOT", ID: "polkadot"},
	}

	tracker := usecase.NewPredictionTracker(24 * time.Hour)
	h := NewOpsHandler(cfg, logger.Discard(), &fakeSource{stats: models.FetcherStats{DailyRequests: 7}}, store, tracker)

	e := echo.New()
	h.RegisterRoutes(e)
	return e, tracker
}

func doRequest(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	e, _ := newOpsFixture(&fakeStore{})

	rec := doRequest(e, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data["status"] != "ok" {
		t.Errorf("status = %q, want ok", body.Data["status"])
	}
}

func TestStatsEndpoint(t *testing.T) {
	e, _ := newOpsFixture(&fakeStore{})

	rec := doRequest(e, http.MethodGet, "/api/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Data models.FetcherStats `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data.DailyRequests != 7 {
		t.Errorf("daily requests = %d, want 7", body.Data.DailyRequests)
	}
}

func TestChainStatsEndpoint(t *testing.T) {
	store := &fakeStore{stats: map[string]*models.ChainStats{
		"SOL": {AvgPrice: 150, MaxPrice: 160, MinPrice: 140},
	}}
	e, _ := newOpsFixture(store)

	rec := doRequest(e, http.MethodGet, "/api/stats/sol")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Data models.ChainStats `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data.AvgPrice != 150 {
		t.Errorf("avg price = %v, want 150", body.Data.AvgPrice)
	}
}

func TestChainStatsUnknownChain(t *testing.T) {
	e, _ := newOpsFixture(&fakeStore{})

	rec := doRequest(e, http.MethodGet, "/api/stats/btc")
	var body struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != http.StatusNotFound {
		t.Errorf("envelope status = %d, want 404", body.Status)
	}
}

func TestPredictionsEndpoint(t *testing.T) {
	e, tracker := newOpsFixture(&fakeStore{})
	tracker.Record("SOL up only", map[string]models.Mood{"SOL": models.MoodBullish}, map[string]float64{"SOL": 100})

	rec := doRequest(e, http.MethodGet, "/api/predictions")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Data []models.Prediction `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].Narrative != "SOL up only" {
		t.Errorf("predictions = %+v", body.Data)
	}
}
