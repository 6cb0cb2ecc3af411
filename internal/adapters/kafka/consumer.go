package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

// readRetryDelay is the pause after a failed fetch before trying again
const readRetryDelay = time.Second

// Consumer reads one topic as part of a consumer group. The group id plays
// the role of the pub/sub subscription: every agent process with the same
// group shares the topic's partitions.
type Consumer struct {
	reader *kafka.Reader
	topic  string
	log    *logger.Logger
}

type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topic    string
	MinBytes int
	MaxBytes int // defaults to 10MB
}

func NewConsumer(cfg ConsumerConfig) *Consumer {
	minBytes, maxBytes := cfg.MinBytes, cfg.MaxBytes
	if minBytes <= 0 {
		minBytes = 1
	}
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}

	c := &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.Brokers,
			GroupID:     cfg.GroupID,
			Topic:       cfg.Topic,
			MinBytes:    minBytes,
			MaxBytes:    maxBytes,
			StartOffset: kafka.FirstOffset,
		}),
		topic: cfg.Topic,
		log:   logger.Get().With("component", "kafka_consumer", "topic", cfg.Topic),
	}

	c.log.Infow("Kafka consumer created", "brokers", cfg.Brokers, "group_id", cfg.GroupID)
	return c
}

func (c *Consumer) Topic() string {
	return c.topic
}

// MessageHandler processes one record
type MessageHandler func(ctx context.Context, msg kafka.Message) error

// Consume hands each record to handler until ctx is cancelled. The offset is
// committed once handler returns, successful or not, so a failed record is
// never redelivered.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	c.log.Info("Starting consumer")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("Consumer stopped")
				return ctx.Err()
			}
			c.log.Errorw("Failed to fetch message", "error", err)
			if !sleepCtx(ctx, readRetryDelay) {
				return ctx.Err()
			}
			continue
		}

		if err := handler(ctx, msg); err != nil {
			c.log.Errorw("Failed to handle message",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.log.Warnw("Failed to commit offset", "offset", msg.Offset, "error", err)
		}
	}
}

// Close stops the reader. Safe to call more than once.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
