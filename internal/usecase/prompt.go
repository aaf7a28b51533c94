package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ChainPulse/internal/domain/models"
)

// chainContext is everything the prompt needs about one chain.
type chainContext struct {
	Symbol      string
	Mood        models.Mood
	PriceChange float64
	ATHDistance float64
	Meme        string
	Stats       *models.ChainStats
	Trend       *models.TrendResult
}

// buildPrompt assembles the narrative request from the cycle's analysis.
// Chains appear in configured order so prompts are reproducible.
func buildPrompt(chains []chainContext, corr models.CorrelationResult, triggerReason, callback string) string {
	var b strings.Builder

	b.WriteString("Write a witty Layer 1 blockchain market analysis as a single paragraph. Market data:\n")

	b.WriteString("\nChain Performance:\n")
	for _, c := range chains {
		fmt.Fprintf(&b, "- %s: %.1f%% (%s)\n", c.Symbol, c.PriceChange, c.Mood)
	}

	b.WriteString("\nHistorical Context:\n")
	for _, c := range chains {
		if c.Stats != nil {
			fmt.Fprintf(&b, "- %s: 24h Avg: $%.2f, High: $%.2f, Low: $%.2f\n",
				c.Symbol, c.Stats.AvgPrice, c.Stats.MaxPrice, c.Stats.MinPrice)
		} else {
			fmt.Fprintf(&b, "- %s: No historical data\n", c.Symbol)
		}
	}

	b.WriteString("\nKey Metrics:\n")
	fmt.Fprintf(&b, "- Price correlation: %.2f\n", corr.PriceCorrelation)
	fmt.Fprintf(&b, "- Volume correlation: %.2f\n", corr.VolumeCorrelation)
	fmt.Fprintf(&b, "- Market cap ratio: %.2f\n", corr.MarketCapRatio)

	b.WriteString("\nChain-specific context:\n")
	for _, c := range chains {
		fmt.Fprintf(&b, "- %s meme: %s\n", c.Symbol, c.Meme)
	}

	b.WriteString("\nATH Distance:\n")
	for _, c := range chains {
		fmt.Fprintf(&b, "- %s: %.1f%%\n", c.Symbol, c.ATHDistance)
	}

	b.WriteString("\nVolume Trends:\n")
	for _, c := range chains {
		if c.Trend != nil {
			fmt.Fprintf(&b, "- %s: %.1f%% over last hour (%s)\n",
				c.Symbol, c.Trend.PctChange, c.Trend.Classification)
		} else {
			fmt.Fprintf(&b, "- %s: 0.0%% over last hour (stable)\n", c.Symbol)
		}
	}

	if strings.Contains(triggerReason, "volume_trend") {
		if sym, trend, ok := parseVolumeTrendReason(triggerReason); ok {
			for _, c := range chains {
				if strings.EqualFold(c.Symbol, sym) && c.Trend != nil {
					direction := "increase"
					if c.Trend.PctChange < 0 {
						direction = "decrease"
					}
					fmt.Fprintf(&b, "\nVolume Analysis:\n%s showing %.1f%% %s in volume over last hour. This is a significant %s.\n",
						strings.ToUpper(sym), abs(c.Trend.PctChange), direction, trend)
				}
			}
		}
	}

	fmt.Fprintf(&b, "\nTrigger Type: %s\n", triggerReason)

	if callback == "" {
		callback = "None"
	}
	fmt.Fprintf(&b, "\nPast Context: %s\n", callback)

	b.WriteString("\nNote: Keep the analysis fresh and varied. Avoid repetitive phrases.")

	return b.String()
}

// parseVolumeTrendReason splits "volume_trend_<chain>_<classification>"
// into its chain and classification parts.
func parseVolumeTrendReason(reason string) (chain, trend string, ok bool) {
	parts := strings.SplitN(reason, "_", 4)
	if len(parts) != 4 || parts[0] != "volume" || parts[1] != "trend" {
		return "", "", false
	}
	return parts[2], parts[3], true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// formatPost appends hashtags and enforces the platform length cap,
// truncating the narrative rather than the tags when over.
func formatPost(narrative, hashtags string, maxLength int) string {
	post := narrative + "\n\n" + hashtags
	limit := maxLength - 20
	if utf8.RuneCountInString(post) <= limit {
		return post
	}

	keep := limit - utf8.RuneCountInString(hashtags) - 5
	if keep < 0 {
		keep = 0
	}
	runes := []rune(narrative)
	if keep > len(runes) {
		keep = len(runes)
	}
	return string(runes[:keep]) + "...\n\n" + hashtags
}
