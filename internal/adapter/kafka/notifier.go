package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/calmstreak/internal/config"
	"github.com/couchcryptid/calmstreak/internal/domain"
)

// EventType is the event_type header of run notifications.
const EventType = "calm_streak_run"

// Notifier publishes run reports to a Kafka topic.
// It implements pipeline.Notifier.
type Notifier struct {
	writer  *kafkago.Writer
	timeout time.Duration
	logger  *slog.Logger
}

// NewNotifier creates a Kafka producer for the configured notification topic.
func NewNotifier(cfg *config.Config, logger *slog.Logger) *Notifier {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaNotifyTopic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Notifier{writer: w, timeout: cfg.KafkaTimeout, logger: logger}
}

// Notify publishes r, giving up after the configured timeout.
func (n *Notifier) Notify(ctx context.Context, r domain.RunReport) error {
	msg, err := serializeToMessage(r)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish run %s: %w", r.RunID, err)
	}
	n.logger.Debug("run notification published", "run_id", r.RunID, "topic", n.writer.Topic)
	return nil
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}

// serializeToMessage marshals a RunReport into a Kafka message keyed by run ID.
func serializeToMessage(r domain.RunReport) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize run report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(r.RunID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(EventType)},
			{Key: "processed_at", Value: []byte(r.CompletedAt.Format(time.RFC3339))},
		},
	}, nil
}
