package repository

import (
	"context"
	"fmt"

	"ChainPulse/internal/domain/models"
	pkgkafka "ChainPulse/pkg/kafka"
	"ChainPulse/pkg/logger"
)

// KafkaEventPublisher emits posted updates to a Kafka topic, keyed by
// trigger type so consumers can partition on the decision class.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	l        *logger.Logger
}

func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string, l *logger.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic, l: l}
}

func (p *KafkaEventPublisher) PublishPost(ctx context.Context, content *models.PostedContent) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(content.TriggerType), content); err != nil {
		p.l.Error("kafka publish post event error",
			logger.String("topic", p.topic),
			logger.String("trigger", content.TriggerType),
			logger.Error(err))
		return fmt.Errorf("publish post event: %w", err)
	}
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.producer.Close()
}

// NoopEventPublisher drops events; used when no brokers are configured.
type NoopEventPublisher struct{}

func (NoopEventPublisher) PublishPost(context.Context, *models.PostedContent) error { return nil }
func (NoopEventPublisher) Close() error                                             { return nil }
