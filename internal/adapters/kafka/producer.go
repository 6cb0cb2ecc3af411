package kafka

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

// Producer handles Kafka message publishing
type Producer struct {
	mu      sync.Mutex
	writers map[string]*kafka.Writer
	brokers []string
	source  string
	log     *logger.Logger
}

// ProducerConfig holds producer configuration
type ProducerConfig struct {
	Brokers []string
	// Source is stamped on every message as the "source" header
	Source string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig) *Producer {
	return &Producer{
		writers: make(map[string]*kafka.Writer),
		brokers: cfg.Brokers,
		source:  cfg.Source,
		log:     logger.Get().With("component", "kafka_producer"),
	}
}

// getWriter returns or creates a writer for a topic
func (p *Producer) getWriter(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(p.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
	}

	p.writers[topic] = w
	return w
}

// Publish writes an already encoded payload and returns once the broker acknowledged it
func (p *Producer) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "topic", Value: []byte(topic)},
		},
	}
	if p.source != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "source", Value: []byte(p.source)})
	}

	if err := p.getWriter(topic).WriteMessages(ctx, msg); err != nil {
		return errors.Wrapf(err, "write to %s", topic)
	}

	p.log.Debugw("Published message", "topic", topic, "key", key, "bytes", len(payload))
	return nil
}

// Close closes all writers
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs errors.MultiError
	for topic, w := range p.writers {
		if err := w.Close(); err != nil {
			p.log.Errorw("Failed to close writer", "topic", topic, "error", err)
			errs.Add(err)
		}
	}
	return errs.ToError()
}
