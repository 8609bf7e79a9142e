// Package audit decouples request serving from the audit topic. Scored
// predictions are queued in memory and a background loop publishes them in
// batches, so a slow or unreachable broker never blocks a request.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aerostat/flight-delay-service/internal/observability"
	"github.com/aerostat/flight-delay-service/internal/predict"
)

// ErrQueueFull is returned by Publish when the dispatch queue is at capacity.
// The event is dropped; auditing is best-effort.
var ErrQueueFull = errors.New("audit queue full")

// BatchPublisher writes a batch of audit events to the audit sink.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, evs []predict.Event) error
}

// Dispatcher buffers audit events and publishes them in batches.
// It implements predict.Auditor; Publish never blocks the caller.
type Dispatcher struct {
	publisher     BatchPublisher
	logger        *slog.Logger
	metrics       *observability.Metrics
	queue         chan predict.Event
	batchSize     int
	flushInterval time.Duration
}

// NewDispatcher creates a Dispatcher. Run must be started for queued events
// to reach the publisher.
func NewDispatcher(p BatchPublisher, queueSize, batchSize int, flushInterval time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		publisher:     p,
		logger:        logger,
		metrics:       metrics,
		queue:         make(chan predict.Event, queueSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Publish enqueues one event for background publishing. When the queue is
// full the event is dropped and ErrQueueFull returned.
func (d *Dispatcher) Publish(_ context.Context, ev predict.Event) error {
	select {
	case d.queue <- ev:
		return nil
	default:
		d.metrics.AuditDropped.Inc()
		return ErrQueueFull
	}
}

// Run executes the batch-and-flush loop until the context is cancelled, then
// makes a final attempt to publish whatever is still queued.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("audit dispatcher started",
		"batch_size", d.batchSize,
		"flush_interval", d.flushInterval,
	)

	ticker := time.NewTicker(d.flushInterval)
	defer ticker.Stop()

	batch := make([]predict.Event, 0, d.batchSize)
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("audit dispatcher stopping", "reason", ctx.Err())
			d.finalFlush(batch)
			return nil
		case ev := <-d.queue:
			batch = append(batch, ev)
			if len(batch) >= d.batchSize {
				if !d.flushWithRetry(ctx, batch) {
					d.finalFlush(nil)
					return nil
				}
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) == 0 {
				continue
			}
			if !d.flushWithRetry(ctx, batch) {
				d.finalFlush(nil)
				return nil
			}
			batch = batch[:0]
		}
	}
}

// flushWithRetry publishes one batch, retrying with exponential backoff until
// it lands or the context is cancelled. Returns false when cancelled; the
// batch is counted dropped in that case.
func (d *Dispatcher) flushWithRetry(ctx context.Context, batch []predict.Event) bool {
	// Start at 200ms, double each retry, cap at 5s. Keeps retry storms short
	// while avoiding tight loops during broker outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		err := d.publisher.PublishBatch(ctx, batch)
		if err == nil {
			d.metrics.AuditPublished.Add(float64(len(batch)))
			d.metrics.AuditBatchSize.Observe(float64(len(batch)))
			return true
		}

		d.metrics.AuditErrors.Inc()
		d.logger.Error("audit batch publish failed", "error", err, "batch_size", len(batch))

		if ctx.Err() != nil || !sleepWithContext(ctx, backoff) {
			d.metrics.AuditDropped.Add(float64(len(batch)))
			return false
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

// finalFlush drains the queue and makes one bounded publish attempt with a
// fresh context, so shutdown does not lose events already accepted.
func (d *Dispatcher) finalFlush(batch []predict.Event) {
	for {
		select {
		case ev := <-d.queue:
			batch = append(batch, ev)
		default:
			if len(batch) == 0 {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := d.publisher.PublishBatch(ctx, batch); err != nil {
				d.metrics.AuditErrors.Inc()
				d.metrics.AuditDropped.Add(float64(len(batch)))
				d.logger.Error("final audit flush failed", "error", err, "batch_size", len(batch))
				return
			}
			d.metrics.AuditPublished.Add(float64(len(batch)))
			d.metrics.AuditBatchSize.Observe(float64(len(batch)))
			return
		}
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
