package models

import "time"

// PricePoint is the price/volume pair captured with a posted update.
type PricePoint struct {
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}

// PostedContent is one published update with its full decision context.
type PostedContent struct {
	Timestamp   time.Time             `json:"timestamp"`
	Content     string                `json:"content"`
	Sentiment   map[string]Mood       `json:"sentiment"`
	TriggerType string                `json:"trigger_type"`
	PriceData   map[string]PricePoint `json:"price_data"`
	MemePhrases map[string]string     `json:"meme_phrases"`
}
