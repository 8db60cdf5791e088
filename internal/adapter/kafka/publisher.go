package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"github.com/polkiloo/parceltrack/internal/domain/model"
)

const eventIDHeader = "event_id"

// Publisher delivers outbox events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event model.Event) error
	Close() error
}

// SaramaPublisher sends events to Kafka through a synchronous producer.
type SaramaPublisher struct {
	producer sarama.SyncProducer
	prefix   string
	logger   *slog.Logger
}

// NewProducerConfig returns the producer settings used for event delivery.
func NewProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Timeout = 5 * time.Second
	cfg.Producer.Retry.Max = 3
	return cfg
}

// NewSaramaPublisher wraps an existing producer.
func NewSaramaPublisher(producer sarama.SyncProducer, prefix string, logger *slog.Logger) *SaramaPublisher {
	return &SaramaPublisher{producer: producer, prefix: prefix, logger: logger}
}

// Topic maps an event topic to the Kafka topic name.
func (p *SaramaPublisher) Topic(topic string) string {
	if p.prefix == "" {
		return topic
	}
	return p.prefix + "." + topic
}

// Publish sends one event keyed by its event key so that events of the same
// aggregate land on one partition.
func (p *SaramaPublisher) Publish(ctx context.Context, event model.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.Topic(event.Topic),
		Key:   sarama.StringEncoder(event.Key),
		Value: sarama.ByteEncoder(event.Payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte(eventIDHeader), Value: []byte(event.ID.String())},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send %s: %w", msg.Topic, err)
	}

	p.logger.Debug("event published",
		slog.String("topic", msg.Topic),
		slog.String("key", event.Key),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
	)
	return nil
}

// Close releases the producer.
func (p *SaramaPublisher) Close() error {
	return p.producer.Close()
}

// LogPublisher writes events to the structured log. It is used when no
// brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher constructs LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event model.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.logger.Info("event",
		slog.String("id", event.ID.String()),
		slog.String("topic", event.Topic),
		slog.String("key", event.Key),
		slog.String("payload", string(event.Payload)),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
