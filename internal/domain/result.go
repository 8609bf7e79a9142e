package domain

import "fmt"

// Flight status labels shared by the prediction response and the
// aggregation pipeline.
const (
	StatusDelayed = "DELAYED"
	StatusOnTime  = "ON TIME"
)

// DelayThresholdMinutes is the exclusive upper bound on an on-time
// prediction: a predicted delay must exceed it to classify as DELAYED.
const DelayThresholdMinutes = 15.0

// Outcome is the shaped prediction response. Likelihood and Detail are only
// populated under the continuous discipline.
type Outcome struct {
	Status     string   `json:"status"`
	Likelihood *float64 `json:"likelihood,omitempty"`
	Detail     string   `json:"detail,omitempty"`
}

// ShapeContinuous shapes a numeric delay estimate in minutes: status from the
// fixed threshold, likelihood clamped (not rescaled) to [0, 100], and a
// human-readable detail with the raw prediction.
func ShapeContinuous(minutes float64) Outcome {
	status := StatusOnTime
	if minutes > DelayThresholdMinutes {
		status = StatusDelayed
	}
	likelihood := clamp(minutes, 0, 100)
	return Outcome{
		Status:     status,
		Likelihood: &likelihood,
		Detail:     fmt.Sprintf("Predicted delay: %.2f minutes", minutes),
	}
}

// ShapeBinary shapes a discrete delayed/on-time label: 1 is DELAYED,
// anything else is ON TIME. No likelihood or detail is emitted.
func ShapeBinary(label float64) Outcome {
	status := StatusOnTime
	if int(label) == 1 {
		status = StatusDelayed
	}
	return Outcome{Status: status}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
