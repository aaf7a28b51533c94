package analytics

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"ChainPulse/internal/domain/models"
)

// chainPhrases holds curated phrases for the tracked chains, keyed by
// uppercase symbol then mood.
var chainPhrases = map[string]map[models.Mood][]string{
	"SOL": {
		models.MoodBullish: {
			"Solana breaking orbit!",
			"SOL ready for liftoff!",
			"Solana bulls charging ahead!",
			"SOL showing that Layer 1 strength!",
		},
		models.MoodBearish: {
			"SOL taking a breather",
			"Solana bears making their mark",
			"SOL testing support levels",
			"Solana facing some headwinds",
		},
		models.MoodNeutral: {
			"SOL in accumulation mode",
			"Solana moving sideways",
			"SOL taking its time",
			"Solana in decision mode",
		},
		models.MoodVolatile: {
			"SOL on a wild ride!",
			"Solana giving traders whiplash!",
			"SOL chart going crazy!",
			"Solana bringing the drama!",
		},
		models.MoodRecovering: {
			"SOL finding its feet",
			"Solana showing resilience",
			"SOL bouncing back strong",
			"Solana recovery mode activated",
		},
	},
	"DOT": {
		models.MoodBullish: {
			"Polkadot reaching new heights!",
			"DOT breaking resistance!",
			"Polkadot showing true potential!",
			"DOT leading the charge!",
		},
		models.MoodBearish: {
			"DOT taking a dip",
			"Polkadot bears in control",
			"DOT needs some support",
			"Polkadot in correction territory",
		},
		models.MoodNeutral: {
			"DOT consolidating gains",
			"Polkadot in waiting mode",
			"DOT finding balance",
			"Polkadot steady as she goes",
		},
		models.MoodVolatile: {
			"DOT on the rollercoaster!",
			"Polkadot bringing the volatility!",
			"DOT keeping traders on their toes!",
			"Polkadot with the plot twists!",
		},
		models.MoodRecovering: {
			"DOT making a comeback",
			"Polkadot finding support",
			"DOT recovery in progress",
			"Polkadot showing strength",
		},
	},
}

// moodTemplates backs chains without a curated set; {chain} is replaced
// with the uppercase symbol.
var moodTemplates = map[models.Mood][]string{
	models.MoodBullish: {
		"{chain} is MOONING! Diamond hands activated!",
		"Bulls are running wild for {chain}! All aboard the rocket!",
		"Massive green candles lighting up {chain}'s chart!",
		"{chain} looking THICC and ready to break resistance!",
	},
	models.MoodBearish: {
		"{chain} taking a brutal beating right now",
		"Massive liquidation incoming for {chain} holders",
		"Crypto gods are NOT happy with {chain} today",
		"{chain} chart looking like a cliff dive",
	},
	models.MoodNeutral: {
		"{chain} chillin' like a villain",
		"Sideways action for {chain} - patience is key",
		"Nothing to see here, just {chain} doing its thing",
		"{chain} playing it cool in the crypto playground",
	},
	models.MoodVolatile: {
		"{chain} on a WILD rollercoaster ride!",
		"Buckle up {chain} fam, it's gonna be a BUMPY ride!",
		"Massive swings incoming for {chain} - traders' nightmare!",
		"{chain} chart looking like an EKG on caffeine!",
	},
	models.MoodRecovering: {
		"{chain} bouncing back like a BOSS!",
		"Phoenix mode activated for {chain}! Rising from the ashes",
		"Dip buyers saving {chain}'s day!",
		"{chain} showing true resilience!",
	},
}

// MemeGenerator picks a chain- and mood-appropriate phrase. The random
// source is injectable so selection is reproducible in tests.
type MemeGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewMemeGenerator(rng *rand.Rand) *MemeGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &MemeGenerator{rng: rng}
}

// Phrase returns one phrase for the chain and mood. Unknown chains fall
// back to the template library; unknown moods fall back to neutral.
func (g *MemeGenerator) Phrase(chain string, mood models.Mood) string {
	chain = strings.ToUpper(chain)

	if moods, ok := chainPhrases[chain]; ok {
		if phrases, ok := moods[mood]; ok {
			return phrases[g.pick(len(phrases))]
		}
	}

	templates, ok := moodTemplates[mood]
	if !ok {
		templates = moodTemplates[models.MoodNeutral]
	}
	return strings.ReplaceAll(templates[g.pick(len(templates))], "{chain}", chain)
}

func (g *MemeGenerator) pick(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(n)
}
