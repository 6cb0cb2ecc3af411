package testsupport

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/events"
)

// Published is one message captured by RecordingPublisher
type Published struct {
	Topic   string
	Key     string
	Payload []byte
}

// Decode unmarshals the payload into a generic map
func (p Published) Decode(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(p.Payload, &out); err != nil {
		t.Fatalf("payload on %s is not a JSON object: %v", p.Topic, err)
	}
	return out
}

// RecordingPublisher captures published messages in memory.
// FailTopics makes Publish fail for the listed topics.
type RecordingPublisher struct {
	mu         sync.Mutex
	messages   []Published
	FailTopics map[string]error
}

// NewRecordingPublisher creates an empty recorder
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{FailTopics: map[string]error{}}
}

// Publish records the message unless its topic is configured to fail
func (p *RecordingPublisher) Publish(_ context.Context, topic, key string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err, ok := p.FailTopics[topic]; ok {
		return err
	}
	p.messages = append(p.messages, Published{Topic: topic, Key: key, Payload: append([]byte(nil), payload...)})
	return nil
}

// All returns every recorded message in publish order
func (p *RecordingPublisher) All() []Published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Published(nil), p.messages...)
}

// OnTopic returns the messages recorded for topic
func (p *RecordingPublisher) OnTopic(topic string) []Published {
	var out []Published
	for _, m := range p.All() {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}

// Statuses decodes the status updates recorded on statusTopic
func (p *RecordingPublisher) Statuses(t *testing.T, statusTopic string) []events.StatusUpdate {
	t.Helper()
	var out []events.StatusUpdate
	for _, m := range p.OnTopic(statusTopic) {
		var u events.StatusUpdate
		if err := json.Unmarshal(m.Payload, &u); err != nil {
			t.Fatalf("status payload is not a StatusUpdate: %v", err)
		}
		out = append(out, u)
	}
	return out
}
