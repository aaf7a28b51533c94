package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	apiRequests   *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	triggersTotal *prometheus.CounterVec
	postsTotal    *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	cycleDuration prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		apiRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainpulse_api_requests_total",
				Help: "Total number of upstream API requests",
			},
			[]string{"endpoint", "outcome"},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainpulse_cache_lookups_total",
				Help: "Total number of fetch cache lookups",
			},
			[]string{"result"},
		),
		triggersTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainpulse_triggers_total",
				Help: "Total number of posting triggers by reason",
			},
			[]string{"reason"},
		),
		postsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainpulse_posts_total",
				Help: "Total number of publish attempts",
			},
			[]string{"outcome"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chainpulse_last_price",
				Help: "Last recorded price for a chain",
			},
			[]string{"chain"},
		),
		cycleDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chainpulse_cycle_duration_seconds",
				Help:    "Duration of one analysis cycle in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordAPIRequest records an upstream API request result.
func (r *Recorder) RecordAPIRequest(endpoint, outcome string) {
	r.apiRequests.WithLabelValues(endpoint, outcome).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func (r *Recorder) RecordCacheLookup(result string) {
	r.cacheLookups.WithLabelValues(result).Inc()
}

// RecordTrigger records a positive trigger decision.
func (r *Recorder) RecordTrigger(reason string) {
	r.triggersTotal.WithLabelValues(reason).Inc()
}

// RecordPost records a publish attempt outcome.
func (r *Recorder) RecordPost(outcome string) {
	r.postsTotal.WithLabelValues(outcome).Inc()
}

// RecordLastPrice records the last price for a chain.
func (r *Recorder) RecordLastPrice(chain string, price float64) {
	r.lastPrice.WithLabelValues(chain).Set(price)
}

// RecordCycleDuration records analysis cycle latency in seconds.
func (r *Recorder) RecordCycleDuration(seconds float64) {
	r.cycleDuration.Observe(seconds)
}
