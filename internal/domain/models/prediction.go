package models

import "time"

// Outcome is the validation state of a prediction. It transitions once
// from pending to a terminal state and is never recomputed.
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeRight   Outcome = "right"
	OutcomeWrong   Outcome = "wrong"
)

// Prediction is one posted narrative with the prices and sentiments it
// was based on, kept so later posts can call back to it.
type Prediction struct {
	Timestamp time.Time          `json:"timestamp"`
	Narrative string             `json:"narrative"`
	Prices    map[string]float64 `json:"prices"`
	Sentiment map[string]Mood    `json:"sentiment"`
	Outcome   Outcome            `json:"outcome"`
}
