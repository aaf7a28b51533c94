package analytics

import (
	"math/rand"
	"strings"
	"testing"

	"ChainPulse/internal/domain/models"
)

func fptr(v float64) *float64 { return &v }

func TestClassifyScoring(t *testing.T) {
	c := NewClassifier()

	cases := []struct {
		name string
		ind  models.MoodIndicators
		want models.Mood
	}{
		{
			"strong rally",
			models.MoodIndicators{PriceChange: 6, TradingVolume: 1e9, Volatility: 0.06},
			models.MoodBullish,
		},
		{
			"heavy selloff with volume",
			models.MoodIndicators{PriceChange: -6, TradingVolume: 2e9, Volatility: 0.06},
			models.MoodBearish,
		},
		{
			"flat market",
			models.MoodIndicators{PriceChange: 0, TradingVolume: 1e9, Volatility: 0},
			models.MoodNeutral,
		},
		{
			"mild dip doubles up on recovery",
			models.MoodIndicators{PriceChange: -3, TradingVolume: 1e9, Volatility: 0.03},
			models.MoodRecovering,
		},
		{
			"churning high volume",
			models.MoodIndicators{PriceChange: 0.5, TradingVolume: 2e9, Volatility: 0.12},
			models.MoodVolatile,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.Classify(tc.ind); got != tc.want {
				t.Errorf("Classify = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestClassifyOptionalIndicators(t *testing.T) {
	c := NewClassifier()

	// Large liquidations push a choppy but neutral market to volatile.
	ind := models.MoodIndicators{
		PriceChange:       0,
		TradingVolume:     1e9,
		Volatility:        0.06,
		LiquidationVolume: fptr(200e6),
	}
	if got := c.Classify(ind); got != models.MoodVolatile {
		t.Errorf("with liquidations Classify = %s, want %s", got, models.MoodVolatile)
	}

	// Strong social sentiment breaks a tie toward bullish.
	ind = models.MoodIndicators{
		PriceChange:     3,
		TradingVolume:   1e9,
		Volatility:      0.03,
		SocialSentiment: fptr(0.8),
	}
	if got := c.Classify(ind); got != models.MoodBullish {
		t.Errorf("with sentiment Classify = %s, want %s", got, models.MoodBullish)
	}
}

func TestClassifyAllZeroScoresUsesPriorityOrder(t *testing.T) {
	c := NewClassifier()

	// Price change of 3 lands in no scoring bucket; with volatility and
	// volume below every threshold, all accumulators stay zero and the
	// first mood in priority order must win.
	ind := models.MoodIndicators{PriceChange: 3, TradingVolume: 1e8, Volatility: 0.03}
	if got := c.Classify(ind); got != models.MoodPriority[0] {
		t.Errorf("Classify = %s, want %s", got, models.MoodPriority[0])
	}
}

func TestClassifyReturnsExactlyOneMood(t *testing.T) {
	c := NewClassifier()
	known := map[models.Mood]bool{}
	for _, m := range models.MoodPriority {
		known[m] = true
	}

	for pc := -12.0; pc <= 12.0; pc += 0.5 {
		ind := models.MoodIndicators{PriceChange: pc, TradingVolume: 2e9, Volatility: pc / 100}
		if got := c.Classify(ind); !known[got] {
			t.Fatalf("Classify(%v) returned unknown mood %q", pc, got)
		}
	}
}

func TestIndicatorsFromSnapshot(t *testing.T) {
	snap := &models.MarketSnapshot{PriceChangePct24h: -7.5, Volume: 3e9}
	ind := IndicatorsFromSnapshot(snap)
	if ind.PriceChange != -7.5 {
		t.Errorf("PriceChange = %v, want -7.5", ind.PriceChange)
	}
	if ind.Volatility != 0.075 {
		t.Errorf("Volatility = %v, want 0.075", ind.Volatility)
	}
	if ind.SocialSentiment != nil || ind.FundingRates != nil || ind.LiquidationVolume != nil {
		t.Error("optional indicators must default to absent")
	}
}

func TestMemePhraseForTrackedChain(t *testing.T) {
	g := NewMemeGenerator(rand.New(rand.NewSource(7)))

	phrase := g.Phrase("sol", models.MoodBullish)
	found := false
	for _, p := range chainPhrases["SOL"][models.MoodBullish] {
		if p == phrase {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("phrase %q not in the SOL bullish set", phrase)
	}
}

func TestMemePhraseFallsBackToTemplates(t *testing.T) {
	g := NewMemeGenerator(rand.New(rand.NewSource(7)))

	phrase := g.Phrase("avax", models.MoodVolatile)
	if !strings.Contains(phrase, "AVAX") {
		t.Errorf("phrase %q does not mention AVAX", phrase)
	}
	if strings.Contains(phrase, "{chain}") {
		t.Errorf("phrase %q has an unexpanded placeholder", phrase)
	}
}

func TestMemePhraseUnknownMoodUsesNeutral(t *testing.T) {
	g := NewMemeGenerator(rand.New(rand.NewSource(7)))

	phrase := g.Phrase("avax", models.Mood("confused"))
	found := false
	for _, tmpl := range moodTemplates[models.MoodNeutral] {
		if strings.ReplaceAll(tmpl, "{chain}", "AVAX") == phrase {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("phrase %q not derived from the neutral templates", phrase)
	}
}
