package usecase

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"ChainPulse/internal/domain/models"
)

// callbackTemplates reference a past wrong prediction's age in hours and
// its original text.
var callbackTemplates = []string{
	"(Unlike my galaxy-brain take %dh ago about %s... this time I'm sure!)",
	"(Looks like my %dh old prediction about %s aged like milk. But trust me bro!)",
	"(That awkward moment when your %dh old prediction of %s was completely wrong... but this one's different!)",
}

// PredictionTracker keeps recent predictions so later posts can call
// back to ones that aged badly. Append and prune happen atomically with
// respect to reads.
type PredictionTracker struct {
	retention time.Duration
	now       func() time.Time
	rng       *rand.Rand

	mu          sync.Mutex
	predictions []*models.Prediction
}

// TrackerOption configures the tracker.
type TrackerOption func(*PredictionTracker)

// WithTrackerClock injects the time source.
func WithTrackerClock(now func() time.Time) TrackerOption {
	return func(t *PredictionTracker) { t.now = now }
}

// WithTrackerRand injects the template selector's random source.
func WithTrackerRand(rng *rand.Rand) TrackerOption {
	return func(t *PredictionTracker) { t.rng = rng }
}

func NewPredictionTracker(retention time.Duration, opts ...TrackerOption) *PredictionTracker {
	t := &PredictionTracker{
		retention: retention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.rng == nil {
		t.rng = rand.New(rand.NewSource(t.now().UnixNano()))
	}
	return t
}

// Record appends a pending prediction, then prunes entries older than
// the retention window.
func (t *PredictionTracker) Record(narrative string, sentiment map[string]models.Mood, prices map[string]float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.predictions = append(t.predictions, &models.Prediction{
		Timestamp: t.now(),
		Narrative: narrative,
		Prices:    prices,
		Sentiment: sentiment,
		Outcome:   models.OutcomePending,
	})

	now := t.now()
	kept := t.predictions[:0]
	for _, p := range t.predictions {
		if now.Sub(p.Timestamp) < t.retention {
			kept = append(kept, p)
		}
	}
	t.predictions = kept
}

// validate scores a prediction against current prices. A chain counts as
// wrong when the price moved at least 2% against the predicted sentiment.
// The whole prediction is wrong if any chain is.
func validate(p *models.Prediction, currentPrices map[string]float64) models.Outcome {
	for chain, oldPrice := range p.Prices {
		current, ok := currentPrices[chain]
		if !ok || oldPrice == 0 {
			continue
		}
		priceChangePct := (current - oldPrice) / oldPrice * 100

		var sign float64
		switch p.Sentiment[chain] {
		case models.MoodBullish:
			sign = 1
		case models.MoodBearish:
			sign = -1
		default:
			sign = 0
		}

		if sign*priceChangePct < -2 {
			return models.OutcomeWrong
		}
	}
	return models.OutcomeRight
}

// Callback lazily validates pending predictions from the retention window
// and, when any turned out wrong, formats a line referencing the most
// recently recorded one. Each prediction's outcome is computed at most
// once; later calls reuse the stored value.
func (t *PredictionTracker) Callback(currentPrices map[string]float64) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	var worst *models.Prediction
	for _, p := range t.predictions {
		if now.Sub(p.Timestamp) >= t.retention {
			continue
		}
		if p.Outcome == models.OutcomePending {
			p.Outcome = validate(p, currentPrices)
		}
		if p.Outcome == models.OutcomeWrong {
			worst = p
		}
	}
	if worst == nil {
		return "", false
	}

	ageHours := int(now.Sub(worst.Timestamp).Hours())
	template := callbackTemplates[t.rng.Intn(len(callbackTemplates))]
	return fmt.Sprintf(template, ageHours, worst.Narrative), true
}

// Recent returns copies of the tracked predictions, newest last.
func (t *PredictionTracker) Recent() []models.Prediction {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]models.Prediction, 0, len(t.predictions))
	for _, p := range t.predictions {
		out = append(out, *p)
	}
	return out
}
