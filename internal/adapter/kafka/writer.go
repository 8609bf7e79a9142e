// Package kafka publishes prediction audit events to the audit topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aerostat/flight-delay-service/internal/config"
	"github.com/aerostat/flight-delay-service/internal/predict"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces audit events to a Kafka topic.
// It implements predict.Auditor.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured audit topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAuditTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and writes one audit event.
func (w *Writer) Publish(ctx context.Context, ev predict.Event) error {
	msg, err := serializeToMessage(ev)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

// PublishBatch serializes and writes a batch of audit events in a single
// produce request. An event that fails to serialize fails the whole batch.
func (w *Writer) PublishBatch(ctx context.Context, evs []predict.Event) error {
	if len(evs) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, 0, len(evs))
	for _, ev := range evs {
		msg, err := serializeToMessage(ev)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an audit event into a Kafka message. The
// deterministic event ID is the message key, so replays land on the same
// partition and downstream consumers can deduplicate.
func serializeToMessage(ev predict.Event) (kafkago.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize audit event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(ev.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "status", Value: []byte(ev.Status)},
			{Key: "scored_at", Value: []byte(ev.ScoredAt.Format(time.RFC3339))},
		},
	}, nil
}
