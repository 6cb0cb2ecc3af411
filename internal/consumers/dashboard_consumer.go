package consumers

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	kafkaadapter "github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/kafka"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/events"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

// Broadcaster fans a status update out to dashboard clients
type Broadcaster interface {
	Broadcast(ctx context.Context, update events.StatusUpdate)
}

// DashboardConsumer relays the status topic to dashboard clients
type DashboardConsumer struct {
	consumer *kafkaadapter.Consumer
	hub      Broadcaster
	log      *logger.Logger
}

func NewDashboardConsumer(consumer *kafkaadapter.Consumer, hub Broadcaster, log *logger.Logger) *DashboardConsumer {
	return &DashboardConsumer{
		consumer: consumer,
		hub:      hub,
		log:      log.With("component", "dashboard_consumer"),
	}
}

// Start consumes until ctx is cancelled and closes the reader on return
func (c *DashboardConsumer) Start(ctx context.Context) error {
	defer func() {
		if err := c.consumer.Close(); err != nil {
			c.log.Errorw("Failed to close dashboard consumer", "error", err)
		}
	}()

	err := c.consumer.Consume(ctx, c.Handle)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Handle decodes one status update and broadcasts it
func (c *DashboardConsumer) Handle(ctx context.Context, msg kafka.Message) error {
	var update events.StatusUpdate
	if err := json.Unmarshal(msg.Value, &update); err != nil {
		metrics.KafkaMessages.WithLabelValues(msg.Topic, "decode_error").Inc()
		return errors.Wrapf(errors.ErrInvalidPayloadJSON, "status update at offset %d: %v", msg.Offset, err)
	}

	metrics.KafkaMessages.WithLabelValues(msg.Topic, "relayed").Inc()
	c.hub.Broadcast(ctx, update)
	return nil
}
