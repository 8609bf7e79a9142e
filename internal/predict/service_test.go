package predict

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aerostat/flight-delay-service/internal/domain"
	"github.com/aerostat/flight-delay-service/internal/model"
	"github.com/aerostat/flight-delay-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPredictor returns canned predictions or a canned error.
type stubPredictor struct {
	kind  model.Kind
	preds []float64
	err   error
}

func (p *stubPredictor) Predict(rows []domain.FeatureRow) ([]float64, error) {
	if p.err != nil {
		return nil, p.err
	}
	out := make([]float64, len(rows))
	copy(out, p.preds)
	return out, nil
}

func (p *stubPredictor) Kind() model.Kind              { return p.kind }
func (p *stubPredictor) Encoding() domain.EncodingMode { return domain.EncodingPipeline }

// captureAuditor records published events.
type captureAuditor struct {
	events []Event
	err    error
}

func (a *captureAuditor) Publish(_ context.Context, ev Event) error {
	if a.err != nil {
		return a.err
	}
	a.events = append(a.events, ev)
	return nil
}

func pipelineAligner(t *testing.T) *domain.Aligner {
	t.Helper()
	a, err := domain.NewAligner(domain.EncodingPipeline, domain.AirlineVocabulary(), domain.AirportVocabulary(), nil)
	require.NoError(t, err)
	return a
}

func validInput() domain.RawInput {
	return domain.RawInput{
		"carrier": "AA", "origin": "JFK", "dest": "LAX",
		"dayOfWeek": 3.0, "depHour": 15.0, "length": 210.0,
	}
}

func newService(t *testing.T, p *stubPredictor, a Auditor) *Service {
	t.Helper()
	return New(pipelineAligner(t), p, a, observability.NewMetricsForTesting(), slog.Default())
}

func TestPredictContinuousDiscipline(t *testing.T) {
	svc := newService(t, &stubPredictor{kind: model.KindRegressor, preds: []float64{42.3}}, nil)

	out, err := svc.Predict(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDelayed, out.Status)
	require.NotNil(t, out.Likelihood)
	assert.Equal(t, 42.3, *out.Likelihood)
	assert.Equal(t, "Predicted delay: 42.30 minutes", out.Detail)
}

func TestPredictBinaryDiscipline(t *testing.T) {
	svc := newService(t, &stubPredictor{kind: model.KindClassifier, preds: []float64{1}}, nil)

	out, err := svc.Predict(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDelayed, out.Status)
	assert.Nil(t, out.Likelihood)
	assert.Empty(t, out.Detail)
}

func TestPredictModelUnavailable(t *testing.T) {
	svc := New(nil, nil, nil, observability.NewMetricsForTesting(), slog.Default())

	assert.False(t, svc.ModelLoaded())
	assert.ErrorIs(t, svc.CheckReadiness(context.Background()), domain.ErrModelUnavailable)

	_, err := svc.Predict(context.Background(), validInput())
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestPredictAlignmentRejection(t *testing.T) {
	svc := newService(t, &stubPredictor{kind: model.KindRegressor, preds: []float64{1}}, nil)

	in := validInput()
	delete(in, "length")
	_, err := svc.Predict(context.Background(), in)

	var missing *domain.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "length", missing.Field)
}

func TestPredictScoringFailure(t *testing.T) {
	svc := newService(t, &stubPredictor{kind: model.KindRegressor, err: errors.New("shape mismatch")}, nil)

	_, err := svc.Predict(context.Background(), validInput())

	var predErr *domain.PredictionError
	require.ErrorAs(t, err, &predErr)
	assert.Equal(t, "shape mismatch", err.Error(), "collaborator message passes through verbatim")
}

func TestPredictPublishesAuditEvent(t *testing.T) {
	frozen := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	defer SetClock(nil)

	auditor := &captureAuditor{}
	svc := newService(t, &stubPredictor{kind: model.KindRegressor, preds: []float64{7.5}}, auditor)

	_, err := svc.Predict(context.Background(), validInput())
	require.NoError(t, err)

	require.Len(t, auditor.events, 1)
	ev := auditor.events[0]
	assert.Equal(t, "AA", ev.Airline)
	assert.Equal(t, domain.StatusOnTime, ev.Status)
	assert.Equal(t, 7.5, ev.Prediction)
	assert.Equal(t, "regressor", ev.ModelKind)
	assert.Equal(t, frozen, ev.ScoredAt)
	assert.NotEmpty(t, ev.ID)
}

func TestAuditFailureDoesNotFailRequest(t *testing.T) {
	auditor := &captureAuditor{err: errors.New("broker down")}
	svc := newService(t, &stubPredictor{kind: model.KindRegressor, preds: []float64{1}}, auditor)

	out, err := svc.Predict(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOnTime, out.Status)
}

func TestEventIDIsDeterministic(t *testing.T) {
	auditor := &captureAuditor{}
	svc := newService(t, &stubPredictor{kind: model.KindRegressor, preds: []float64{7.5}}, auditor)

	_, err := svc.Predict(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.Predict(context.Background(), validInput())
	require.NoError(t, err)

	require.Len(t, auditor.events, 2)
	assert.Equal(t, auditor.events[0].ID, auditor.events[1].ID)
}
