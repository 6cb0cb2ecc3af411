package events

import (
	"context"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

// Sender is the broker write path, satisfied by *kafka.Producer
type Sender interface {
	Publish(ctx context.Context, topic string, key string, payload []byte) error
}

// Publisher publishes encoded payloads to the broker and records the outcome
type Publisher struct {
	sender Sender
	log    *logger.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(sender Sender, log *logger.Logger) *Publisher {
	return &Publisher{
		sender: sender,
		log:    log,
	}
}

// Publish sends payload to topic and returns once the broker acknowledged it
func (p *Publisher) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	err := p.sender.Publish(ctx, topic, key, payload)
	metrics.RecordPublish(topic, err)
	if err != nil {
		p.log.Warnw("Publish failed", "topic", topic, "key", key, "error", err)
		return errors.Wrapf(err, "topic %s", topic)
	}
	return nil
}
