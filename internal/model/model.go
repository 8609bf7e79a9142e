// Package model loads and scores the persisted flight-delay model artifact.
// The artifact is opaque to the rest of the service: callers hand it aligned
// feature rows and get predictions back in the same order.
package model

import (
	"fmt"

	"github.com/aerostat/flight-delay-service/internal/domain"
)

// Kind distinguishes the two artifact generations in circulation.
type Kind string

const (
	// KindRegressor predicts a continuous delay estimate in minutes.
	KindRegressor Kind = "regressor"

	// KindClassifier predicts a binary delayed/on-time label (1/0).
	KindClassifier Kind = "classifier"
)

// ParseKind validates a kind string from an artifact manifest.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindRegressor, KindClassifier:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown model kind %q", s)
	}
}

// Predictor is the model collaborator consumed by the prediction service.
// Implementations are immutable after load and safe for concurrent use.
type Predictor interface {
	// Predict scores a batch of aligned rows, returning one prediction per
	// row in input order.
	Predict(rows []domain.FeatureRow) ([]float64, error)

	// Kind reports which response discipline the predictions follow.
	Kind() Kind

	// Encoding reports which alignment contract the artifact expects.
	Encoding() domain.EncodingMode
}

// LinearModel is a weights-plus-intercept scorer deserialized from a JSON
// artifact. In schema mode it consumes the pre-expanded vector; in pipeline
// mode it owns the categorical encoding, projecting the raw tuple onto its
// embedded column weights.
type LinearModel struct {
	name      string
	kind      Kind
	encoding  domain.EncodingMode
	intercept float64
	weights   map[string]float64
	schema    *domain.TrainingSchema
}

// Name returns the artifact's version label.
func (m *LinearModel) Name() string { return m.name }

// Kind implements Predictor.
func (m *LinearModel) Kind() Kind { return m.kind }

// Encoding implements Predictor.
func (m *LinearModel) Encoding() domain.EncodingMode { return m.encoding }

// Predict implements Predictor.
func (m *LinearModel) Predict(rows []domain.FeatureRow) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		score, err := m.score(row)
		if err != nil {
			return nil, err
		}
		if m.kind == KindClassifier {
			score = binarize(score)
		}
		out[i] = score
	}
	return out, nil
}

func (m *LinearModel) score(row domain.FeatureRow) (float64, error) {
	if m.encoding == domain.EncodingSchema {
		return m.scoreVector(row.Vector)
	}
	return m.scoreTuple(row), nil
}

// scoreVector scores a schema-expanded row. The vector must match the
// artifact's column manifest; a mismatch means the caller aligned against a
// different schema version.
func (m *LinearModel) scoreVector(vec []float64) (float64, error) {
	if len(vec) != m.schema.Len() {
		return 0, fmt.Errorf("feature vector has %d columns, model expects %d", len(vec), m.schema.Len())
	}
	score := m.intercept
	for i, col := range m.schema.Columns() {
		if w, ok := m.weights[col]; ok {
			score += w * vec[i]
		}
	}
	return score, nil
}

// scoreTuple scores a raw tuple using the artifact's internal encoding:
// numeric weights apply directly, categorical weights match on the embedded
// one-hot column names. A category with no matching weight contributes
// nothing, which is how the artifact handles codes it never saw in training.
func (m *LinearModel) scoreTuple(row domain.FeatureRow) float64 {
	score := m.intercept
	score += m.weights[domain.ColDayOfWeek] * row.DayOfWeek
	score += m.weights["DepHour"] * row.DepHour
	score += m.weights[domain.ColLength] * row.Length
	score += m.weights[domain.ColAirline+"_"+row.Airline]
	score += m.weights[domain.ColAirportFrom+"_"+row.AirportFrom]
	score += m.weights[domain.ColAirportTo+"_"+row.AirportTo]
	return score
}

// binarize maps a raw score to the 0/1 label. The decision boundary sits at
// zero, matching how the training pipeline exports classifier weights.
func binarize(score float64) float64 {
	if score > 0 {
		return 1
	}
	return 0
}
