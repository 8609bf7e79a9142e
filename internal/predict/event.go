package predict

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Event is one scored prediction, published to the audit topic for
// downstream analysis of what the service actually served.
type Event struct {
	ID          string    `json:"id"`
	Airline     string    `json:"airline"`
	AirportFrom string    `json:"airport_from"`
	AirportTo   string    `json:"airport_to"`
	DayOfWeek   float64   `json:"day_of_week"`
	DepHour     float64   `json:"dep_hour"`
	Length      float64   `json:"length"`
	Status      string    `json:"status"`
	Prediction  float64   `json:"prediction"`
	ModelKind   string    `json:"model_kind"`
	ScoredAt    time.Time `json:"scored_at"`
}

// eventID produces a deterministic ID from the event's key fields.
// Identical inputs score identically, so replayed requests map to the same
// audit event and downstream consumers can deduplicate safely.
func eventID(ev Event) string {
	input := fmt.Sprintf("%s|%s|%s|%g|%g|%g|%g",
		ev.Airline, ev.AirportFrom, ev.AirportTo,
		ev.DayOfWeek, ev.DepHour, ev.Length, ev.Prediction,
	)
	hash := sha256.Sum256([]byte(input))
	return "pred-" + hex.EncodeToString(hash[:8])
}
