package kafka

import (
	"context"
	"net"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

// TopicSpec describes a topic to create
type TopicSpec struct {
	Name              string
	Partitions        int
	ReplicationFactor int
}

// EnsureTopics creates the given topics on the cluster controller.
// Topics that already exist are left unchanged.
func EnsureTopics(ctx context.Context, brokers []string, topics []TopicSpec) error {
	if len(brokers) == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "no kafka brokers configured")
	}

	var dialer kafka.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return errors.Wrap(err, "dial kafka")
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return errors.Wrap(err, "lookup kafka controller")
	}

	ctrlConn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return errors.Wrap(err, "dial kafka controller")
	}
	defer ctrlConn.Close()

	configs := make([]kafka.TopicConfig, 0, len(topics))
	for _, t := range topics {
		partitions, replication := t.Partitions, t.ReplicationFactor
		if partitions <= 0 {
			partitions = 1
		}
		if replication <= 0 {
			replication = 1
		}
		configs = append(configs, kafka.TopicConfig{
			Topic:             t.Name,
			NumPartitions:     partitions,
			ReplicationFactor: replication,
		})
	}

	if err := ctrlConn.CreateTopics(configs...); err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return errors.Wrap(err, "create topics")
	}
	return nil
}
