package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"ChainPulse/internal/domain/models"
	"ChainPulse/internal/service/retry"
	"ChainPulse/pkg/cache"
	"ChainPulse/pkg/config"
	xhttp "ChainPulse/pkg/http"
	"ChainPulse/pkg/logger"
	"ChainPulse/pkg/util"
)

var (
	// ErrMissingChains marks a cycle whose payload lacked a tracked chain.
	ErrMissingChains = errors.New("coingecko: missing chain data")
)

// rateLimitError carries the server-declared reset time from a 429.
type rateLimitError struct {
	resetAt *time.Time
}

func (e *rateLimitError) Error() string {
	if e.resetAt != nil {
		return fmt.Sprintf("rate limited until %s", e.resetAt.Format(time.RFC3339))
	}
	return "rate limited"
}

// waitFor returns how long to hold off before retrying: until the declared
// reset plus a one-second buffer, or the fallback when headers were absent.
func (e *rateLimitError) waitFor(now time.Time, fallback time.Duration) time.Duration {
	if e.resetAt == nil {
		return fallback
	}
	wait := e.resetAt.Sub(now) + time.Second
	if wait < time.Second {
		wait = time.Second
	}
	return wait
}

// Clock supplies the current time; injectable for tests.
type Clock func() time.Time

// SleepFunc performs a blocking wait; injectable for tests.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Client fetches market data with response caching, a minimum
// inter-request interval, and bounded retries. One mutex guards all
// counters so instances are safe for concurrent use.
type Client struct {
	baseURL    string
	vsCurrency string
	chains     []config.Chain

	http    *xhttp.Client
	cache   cache.Service
	log     *logger.Logger
	metrics MetricsRecorder

	cacheDuration time.Duration
	minInterval   time.Duration
	maxRetries    int
	baseWait      time.Duration
	rateLimitWait time.Duration

	now   Clock
	sleep SleepFunc

	mu                 sync.Mutex
	lastRequestTime    time.Time
	dailyRequests      int
	failedRequests     int
	dailyResetTime     time.Time
	rateLimitRemaining int
	rateLimitResetAt   *time.Time
}

// MetricsRecorder is the subset of metrics the fetcher emits.
type MetricsRecorder interface {
	RecordAPIRequest(endpoint, outcome string)
	RecordCacheLookup(result string)
}

type noopMetrics struct{}

func (noopMetrics) RecordAPIRequest(string, string) {}
func (noopMetrics) RecordCacheLookup(string)        {}

// Option configures the Client.
type Option func(*Client)

// WithClock injects the time source.
func WithClock(now Clock) Option {
	return func(c *Client) { c.now = now }
}

// WithSleep injects the blocking wait.
func WithSleep(sleep SleepFunc) Option {
	return func(c *Client) { c.sleep = sleep }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient injects the HTTP client, mainly to shorten test timeouts.
func WithHTTPClient(hc *xhttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a CoinGecko client from config.
func New(cfg *config.Config, store cache.Service, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(cfg.CoinGecko.BaseURL, "/"),
		vsCurrency:    cfg.CoinGecko.VsCurrency,
		chains:        cfg.Chains,
		http:          xhttp.NewClient(xhttp.WithTimeout(cfg.CoinGecko.Timeout)),
		cache:         store,
		log:           log,
		metrics:       noopMetrics{},
		cacheDuration: cfg.CoinGecko.CacheDuration,
		minInterval:   cfg.CoinGecko.MinRequestInterval,
		maxRetries:    cfg.CoinGecko.MaxRetries,
		baseWait:      cfg.CoinGecko.BaseWait,
		rateLimitWait: cfg.CoinGecko.RateLimitWait,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.sleep == nil {
		c.sleep = func(ctx context.Context, d time.Duration) error {
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

	c.dailyResetTime = c.now()
	return c
}

// Markets fetches one snapshot per tracked chain, keyed by symbol.
func (c *Client) Markets(ctx context.Context) (map[string]*models.MarketSnapshot, error) {
	ids := make([]string, len(c.chains))
	for i, ch := range c.chains {
		ids[i] = ch.ID
	}

	params := map[string]string{
		"vs_currency":             c.vsCurrency,
		"ids":                     strings.Join(ids, ","),
		"order":                   "market_cap_desc",
		"sparkline":               "true",
		"price_change_percentage": "24h",
	}

	body, err := c.fetch(ctx, "coins/markets", params)
	if err != nil {
		return nil, err
	}

	var coins []coinMarket
	if err := json.Unmarshal(body, &coins); err != nil {
		return nil, fmt.Errorf("decode markets payload: %w", err)
	}

	fetchedAt := c.now()
	out := make(map[string]*models.MarketSnapshot, len(c.chains))
	for _, chain := range c.chains {
		var found *coinMarket
		for i := range coins {
			if coins[i].matchesSymbol(chain.Symbol) {
				found = &coins[i]
				break
			}
		}
		if found == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingChains, chain.Symbol)
		}
		snap, err := found.normalize(chain.Symbol, fetchedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingChains, err)
		}
		out[chain.Symbol] = snap
	}

	return out, nil
}

// Stats returns an observable snapshot of API usage.
func (c *Client) Stats() models.FetcherStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.FetcherStats{
		DailyRequests:      c.dailyRequests,
		FailedRequests:     c.failedRequests,
		CacheSize:          c.cache.Len(context.Background()),
		RateLimitRemaining: c.rateLimitRemaining,
		RateLimitResetAt:   c.rateLimitResetAt,
	}
}

// cacheEnvelope wraps a cached payload with the instant it was fetched.
// Freshness is judged against this timestamp, not the cache's own TTL.
type cacheEnvelope struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Data      json.RawMessage `json:"data"`
}

// fetch returns the raw payload for an endpoint, serving a live cache
// entry when one exists and otherwise going to the network under the
// rate-limit and retry discipline.
func (c *Client) fetch(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	key := cacheKey(endpoint, params)

	if b, err := c.cache.Get(ctx, key); err == nil {
		var env cacheEnvelope
		if err := json.Unmarshal(b, &env); err == nil && c.now().Sub(env.FetchedAt) < c.cacheDuration {
			c.metrics.RecordCacheLookup("hit")
			c.log.Debug("cache hit", logger.String("key", key))
			return env.Data, nil
		}
		// Stale entry; drop it and refetch.
		_ = c.cache.Delete(ctx, key)
	}
	c.metrics.RecordCacheLookup("miss")
	c.cache.Purge(ctx)

	var body []byte
	policy := retry.Policy{
		MaxAttempts: c.maxRetries,
		Sleep:       c.sleep,
		Backoff: func(attempt int, err error) time.Duration {
			var rl *rateLimitError
			if errors.As(err, &rl) {
				wait := rl.waitFor(c.now(), c.rateLimitWait)
				c.log.Warn("rate limit exceeded, backing off",
					logger.Duration("wait", wait))
				return wait
			}
			return retry.Exponential(c.baseWait)(attempt, err)
		},
	}

	err := policy.Do(ctx, func(ctx context.Context) error {
		var attemptErr error
		body, attemptErr = c.attempt(ctx, endpoint, params)
		return attemptErr
	})
	if err != nil {
		c.log.Error("fetch failed", logger.String("endpoint", endpoint), logger.Error(err))
		return nil, err
	}

	env, _ := json.Marshal(cacheEnvelope{FetchedAt: c.now(), Data: body})
	_ = c.cache.Set(ctx, key, env, c.cacheDuration)

	return body, nil
}

// attempt issues exactly one outbound request, honoring the minimum
// inter-request interval first.
func (c *Client) attempt(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	if err := c.waitForInterval(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.resetDailyCountersLocked()
	c.lastRequestTime = c.now()
	c.dailyRequests++
	c.mu.Unlock()

	query := make(map[string][]string, len(params))
	for k, v := range params {
		query[k] = []string{v}
	}

	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/" + endpoint,
		QueryParams: query,
	})
	if err != nil {
		c.recordFailure(endpoint)
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	c.updateRateLimits(resp)

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			c.recordFailure(endpoint)
			return nil, fmt.Errorf("read body: %w", err)
		}
		c.metrics.RecordAPIRequest(endpoint, "success")
		return body, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		c.recordFailure(endpoint)
		c.mu.Lock()
		resetAt := c.rateLimitResetAt
		c.mu.Unlock()
		return nil, &rateLimitError{resetAt: resetAt}

	default:
		c.recordFailure(endpoint)
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

// waitForInterval blocks until the minimum inter-request interval has
// passed since the previous outbound request.
func (c *Client) waitForInterval(ctx context.Context) error {
	c.mu.Lock()
	first := c.lastRequestTime.IsZero()
	wait := c.minInterval - c.now().Sub(c.lastRequestTime)
	c.mu.Unlock()

	if first || wait <= 0 {
		return nil
	}
	c.log.Debug("rate limit wait", logger.Duration("sleep", wait))
	return c.sleep(ctx, wait)
}

// resetDailyCountersLocked zeroes the daily counters when the wall-clock
// day has rolled over. Caller holds the lock.
func (c *Client) resetDailyCountersLocked() {
	now := c.now()
	y1, m1, d1 := now.Date()
	y2, m2, d2 := c.dailyResetTime.Date()
	if y1 != y2 || m1 != m2 || d1 != d2 {
		c.dailyRequests = 0
		c.failedRequests = 0
		c.dailyResetTime = now
		c.log.Info("reset daily API request counters")
	}
}

func (c *Client) recordFailure(endpoint string) {
	c.mu.Lock()
	c.failedRequests++
	c.mu.Unlock()
	c.metrics.RecordAPIRequest(endpoint, "failure")
}

// updateRateLimits reads rate-limit headers off a response.
func (c *Client) updateRateLimits(resp *http.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v := resp.Header.Get("X-RateLimit-Remaining"); v != "" {
		c.rateLimitRemaining = util.ParseIntDefault(v, c.rateLimitRemaining)
	}
	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if t, ok := util.ParseTime(v); ok {
			c.rateLimitResetAt = &t
		}
	}
}

// cacheKey canonicalizes an endpoint plus params into a stable key.
func cacheKey(endpoint string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(endpoint)
	for _, k := range keys {
		sb.WriteByte('&')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
	}
	return sb.String()
}
