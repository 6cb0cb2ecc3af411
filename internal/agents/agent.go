package agents

import (
	"context"
	"time"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/events"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

// Agent handles one decoded delivery. A returned error is logged by the
// handler and never changes the acknowledgement.
type Agent interface {
	Name() string
	ProcessMessage(ctx context.Context, msg *Message) error
}

// Publisher sends an encoded payload to a broker topic
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, payload []byte) error
}

// Message is a decoded delivery
type Message struct {
	Payload      map[string]any
	ID           string
	PublishTime  time.Time
	Attributes   map[string]string
	Subscription string
}

// SourceTopic returns the topic the delivery was read from, if known
func (m *Message) SourceTopic() string {
	return m.Attributes["topic"]
}

func messageFromDelivery(d *events.Delivery) *Message {
	return &Message{
		Payload:      d.Payload,
		ID:           d.MessageID,
		PublishTime:  d.PublishTime,
		Attributes:   d.Attributes,
		Subscription: d.Subscription,
	}
}

// Decode converts the message payload into a route record
func Decode[T any](msg *Message) (T, error) {
	return events.DecodeInto[T](msg.Payload)
}

// Base carries the publishing plumbing every agent shares
type Base struct {
	name        string
	publisher   Publisher
	statusTopic string
	log         *logger.Logger
	now         func() time.Time
}

// NewBase creates the shared agent plumbing. Status updates go to statusTopic.
func NewBase(name string, publisher Publisher, statusTopic string) *Base {
	return &Base{
		name:        name,
		publisher:   publisher,
		statusTopic: statusTopic,
		log:         logger.Get().With("component", "agent", "agent", name),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (b *Base) Name() string { return b.name }

// Log returns the agent's logger
func (b *Base) Log() *logger.Logger { return b.log }

// Now returns the current UTC time
func (b *Base) Now() time.Time { return b.now() }

// SetClock replaces the time source
func (b *Base) SetClock(now func() time.Time) { b.now = now }

// Publish encodes payload and sends it to topic keyed by key.
// Any failure is returned wrapping errors.ErrPublishFailure.
func (b *Base) Publish(ctx context.Context, topic, key string, payload any) error {
	raw, err := events.Encode(payload)
	if err != nil {
		return errors.Newf("%w: topic %s: %v", errors.ErrPublishFailure, topic, err)
	}
	if err := b.publisher.Publish(ctx, topic, key, raw); err != nil {
		return errors.Newf("%w: topic %s: %v", errors.ErrPublishFailure, topic, err)
	}
	return nil
}

// PublishStatus stamps the agent name and time on update and sends it to the
// status topic. Failures are logged and dropped.
func (b *Base) PublishStatus(ctx context.Context, update events.StatusUpdate) {
	update.Agent = b.name
	update.Timestamp = b.now()

	metrics.StatusUpdates.WithLabelValues(b.name, string(update.Status)).Inc()

	if err := b.Publish(ctx, b.statusTopic, update.RequestID, update); err != nil {
		b.log.Warnw("Status update dropped",
			"request_id", update.RequestID,
			"status", update.Status,
			"error", err,
		)
	}
}

// Fail publishes a FAILED status carrying err's text and returns err
func (b *Base) Fail(ctx context.Context, requestID string, err error) error {
	b.PublishStatus(ctx, events.StatusUpdate{
		RequestID: requestID,
		Status:    events.StatusFailed,
		Message:   err.Error(),
	})
	return err
}
