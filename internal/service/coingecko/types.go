package coingecko

import (
	"fmt"
	"strings"
	"time"

	"ChainPulse/internal/domain/models"
)

// coinMarket mirrors one element of the upstream /coins/markets payload.
// Fields the decision engine cannot work without are pointers so absence
// is distinguishable from zero.
type coinMarket struct {
	Symbol                   string   `json:"symbol"`
	CurrentPrice             *float64 `json:"current_price"`
	TotalVolume              *float64 `json:"total_volume"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	MarketCap                *float64 `json:"market_cap"`
	MarketCapRank            *int     `json:"market_cap_rank"`
	CirculatingSupply        float64  `json:"circulating_supply"`
	TotalSupply              float64  `json:"total_supply"`
	MaxSupply                float64  `json:"max_supply"`
	ATH                      float64  `json:"ath"`
	ATHChangePercentage      float64  `json:"ath_change_percentage"`
	SparklineIn7d            struct {
		Price []float64 `json:"price"`
	} `json:"sparkline_in_7d"`
}

// normalize converts a raw coin record into a canonical snapshot, failing
// when a required field is absent.
func (c *coinMarket) normalize(chain string, fetchedAt time.Time) (*models.MarketSnapshot, error) {
	switch {
	case c.CurrentPrice == nil:
		return nil, fmt.Errorf("%s: missing current_price", chain)
	case c.TotalVolume == nil:
		return nil, fmt.Errorf("%s: missing total_volume", chain)
	case c.PriceChangePercentage24h == nil:
		return nil, fmt.Errorf("%s: missing price_change_percentage_24h", chain)
	case c.MarketCap == nil:
		return nil, fmt.Errorf("%s: missing market_cap", chain)
	case c.MarketCapRank == nil:
		return nil, fmt.Errorf("%s: missing market_cap_rank", chain)
	}

	return &models.MarketSnapshot{
		Chain:             chain,
		CurrentPrice:      *c.CurrentPrice,
		Volume:            *c.TotalVolume,
		PriceChangePct24h: *c.PriceChangePercentage24h,
		MarketCap:         *c.MarketCap,
		MarketCapRank:     *c.MarketCapRank,
		ATH:               c.ATH,
		ATHChangePct:      c.ATHChangePercentage,
		CirculatingSupply: c.CirculatingSupply,
		TotalSupply:       c.TotalSupply,
		MaxSupply:         c.MaxSupply,
		Sparkline:         c.SparklineIn7d.Price,
		FetchedAt:         fetchedAt,
	}, nil
}

// matchesSymbol reports whether this record belongs to the tracked symbol.
func (c *coinMarket) matchesSymbol(symbol string) bool {
	return strings.EqualFold(c.Symbol, symbol)
}
