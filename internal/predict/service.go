// Package predict orchestrates one prediction request: parse, align, score,
// shape, audit. It owns the mapping between the loaded artifact's contracts
// (encoding mode, response discipline) and the alignment layer.
package predict

import (
	"context"
	"log/slog"
	"time"

	"github.com/aerostat/flight-delay-service/internal/domain"
	"github.com/aerostat/flight-delay-service/internal/model"
	"github.com/aerostat/flight-delay-service/internal/observability"
)

// Auditor publishes scored predictions to the audit trail. Pass a nil
// Auditor to disable auditing.
type Auditor interface {
	Publish(ctx context.Context, ev Event) error
}

// Service is the per-request prediction orchestrator. All of its state is
// loaded once at startup and read-only afterwards, so one Service serves
// concurrent requests without locking.
type Service struct {
	aligner   *domain.Aligner
	predictor model.Predictor
	auditor   Auditor
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// New creates a Service. A nil predictor puts the service in the degraded
// model-unavailable state: it starts and answers health checks, but every
// prediction short-circuits with ErrModelUnavailable.
func New(aligner *domain.Aligner, predictor model.Predictor, auditor Auditor, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{
		aligner:   aligner,
		predictor: predictor,
		auditor:   auditor,
		metrics:   metrics,
		logger:    logger,
	}
}

// ModelLoaded reports whether a model artifact is available. Handlers check
// it before doing any request parsing.
func (s *Service) ModelLoaded() bool {
	return s.predictor != nil && s.aligner != nil
}

// CheckReadiness returns nil when the service can score requests.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ModelLoaded() {
		return domain.ErrModelUnavailable
	}
	return nil
}

// Predict runs the full request path: align the raw input, score it, shape
// the result per the artifact's discipline, and publish the audit event.
func (s *Service) Predict(ctx context.Context, in domain.RawInput) (domain.Outcome, error) {
	if !s.ModelLoaded() {
		s.metrics.PredictionsTotal.WithLabelValues("failed").Inc()
		return domain.Outcome{}, domain.ErrModelUnavailable
	}

	start := clock.Now()

	row, err := s.aligner.Align(in)
	if err != nil {
		s.metrics.AlignmentRejections.Inc()
		s.metrics.PredictionsTotal.WithLabelValues("rejected").Inc()
		return domain.Outcome{}, err
	}

	preds, err := s.predictor.Predict([]domain.FeatureRow{row})
	if err != nil {
		s.metrics.PredictionsTotal.WithLabelValues("failed").Inc()
		return domain.Outcome{}, &domain.PredictionError{Err: err}
	}
	pred := preds[0]

	var out domain.Outcome
	switch s.predictor.Kind() {
	case model.KindClassifier:
		out = domain.ShapeBinary(pred)
	default:
		out = domain.ShapeContinuous(pred)
	}

	s.metrics.ScoringDuration.Observe(time.Since(start).Seconds())
	s.metrics.PredictionsTotal.WithLabelValues(outcomeLabel(out.Status)).Inc()

	s.audit(ctx, row, out, pred)
	return out, nil
}

// audit publishes the scored prediction. Failures are logged and counted but
// never fail the request; the audit trail is best-effort.
func (s *Service) audit(ctx context.Context, row domain.FeatureRow, out domain.Outcome, pred float64) {
	if s.auditor == nil {
		return
	}

	ev := Event{
		Airline:     row.Airline,
		AirportFrom: row.AirportFrom,
		AirportTo:   row.AirportTo,
		DayOfWeek:   row.DayOfWeek,
		DepHour:     row.DepHour,
		Length:      row.Length,
		Status:      out.Status,
		Prediction:  pred,
		ModelKind:   string(s.predictor.Kind()),
		ScoredAt:    clock.Now(),
	}
	ev.ID = eventID(ev)

	if err := s.auditor.Publish(ctx, ev); err != nil {
		s.metrics.AuditErrors.Inc()
		s.logger.Warn("audit publish failed", "error", err, "event_id", ev.ID)
	}
}

func outcomeLabel(status string) string {
	if status == domain.StatusDelayed {
		return "delayed"
	}
	return "on_time"
}
