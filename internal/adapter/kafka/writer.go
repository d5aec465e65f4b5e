package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/h1b-wage-explorer/internal/config"
	"github.com/couchcryptid/h1b-wage-explorer/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes query events to a Kafka topic.
// It implements dashboard.EventPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured events topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaEventsTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes one query event and writes it to the events topic.
// Events of the same kind share a key and therefore a partition.
func (w *Writer) Publish(ctx context.Context, event domain.QueryEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write query event: %w", err)
	}
	w.logger.Debug("query event published", "kind", event.Kind, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a QueryEvent into a Kafka message.
func serializeToMessage(event domain.QueryEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize query event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Kind),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(event.Kind)},
			{Key: "queried_at", Value: []byte(event.QueriedAt.Format(time.RFC3339))},
		},
	}, nil
}
