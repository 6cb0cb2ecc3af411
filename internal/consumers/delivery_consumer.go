package consumers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/segmentio/kafka-go"

	kafkaadapter "github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/kafka"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/events"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

// Deliverer accepts a push envelope body and returns the HTTP status it answers with
type Deliverer interface {
	Deliver(ctx context.Context, body []byte) int
}

// DeliveryConsumer feeds Kafka records to an agent as push deliveries.
// Records are committed whatever the agent answers.
type DeliveryConsumer struct {
	consumer     *kafkaadapter.Consumer
	deliverer    Deliverer
	subscription string
	log          *logger.Logger
}

// NewDeliveryConsumer bridges consumer to deliverer. subscription is reported
// on every envelope, usually the consumer group.
func NewDeliveryConsumer(consumer *kafkaadapter.Consumer, deliverer Deliverer, subscription string, log *logger.Logger) *DeliveryConsumer {
	return &DeliveryConsumer{
		consumer:     consumer,
		deliverer:    deliverer,
		subscription: subscription,
		log:          log.With("component", "delivery_consumer", "topic", consumer.Topic()),
	}
}

// Start consumes until ctx is cancelled and closes the reader on return
func (c *DeliveryConsumer) Start(ctx context.Context) error {
	defer func() {
		if err := c.consumer.Close(); err != nil {
			c.log.Errorw("Failed to close delivery consumer", "error", err)
		}
	}()

	err := c.consumer.Consume(ctx, c.Handle)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Handle wraps one record in a push envelope and delivers it
func (c *DeliveryConsumer) Handle(ctx context.Context, msg kafka.Message) error {
	body, err := envelopeFor(msg, c.subscription)
	if err != nil {
		metrics.KafkaMessages.WithLabelValues(msg.Topic, "encode_error").Inc()
		return err
	}

	code := c.deliverer.Deliver(ctx, body)
	metrics.KafkaMessages.WithLabelValues(msg.Topic, strconv.Itoa(code)).Inc()

	if code != http.StatusOK {
		return errors.Newf("delivery rejected with status %d at offset %d", code, msg.Offset)
	}
	return nil
}

func envelopeFor(msg kafka.Message, subscription string) ([]byte, error) {
	attrs := map[string]string{"topic": msg.Topic}
	if len(msg.Key) > 0 {
		attrs["key"] = string(msg.Key)
	}
	for _, h := range msg.Headers {
		attrs[h.Key] = string(h.Value)
	}

	id := fmt.Sprintf("%s-%d-%d", msg.Topic, msg.Partition, msg.Offset)
	return events.Wrap(msg.Value, id, msg.Time, attrs, subscription)
}
