package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
	"go.uber.org/fx"

	"github.com/polkiloo/parceltrack/internal/config"
	"github.com/polkiloo/parceltrack/internal/logger"
)

// Module exposes the event publisher to the fx graph.
var Module = fx.Provide(newPublisher)

var newSyncProducer = func(brokers []string, cfg *sarama.Config) (sarama.SyncProducer, error) {
	return sarama.NewSyncProducer(brokers, cfg)
}

type publisherParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newPublisher(p publisherParams) (Publisher, error) {
	log := logger.Component(p.Logger, "publisher")
	if len(p.Config.KafkaBrokers) == 0 {
		log.Info("no kafka brokers configured, events go to the log")
		return NewLogPublisher(log), nil
	}

	producer, err := newSyncProducer(p.Config.KafkaBrokers, NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	publisher := NewSaramaPublisher(producer, p.Config.KafkaTopicPrefix, log)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})
	return publisher, nil
}
