// Package broker defines the interface for message brokers and provides
// implementations.
package broker

import "context"

// Broker abstracts message publishing and consumption between the trigger
// evaluator and the run agents. Local mode uses the in-memory
// implementation; distributed mode uses Redpanda/Kafka.
type Broker interface {
	// Publish sends a message to a topic with an optional key for
	// partitioning. The in-memory broker ignores the key; Redpanda/Kafka
	// uses it for partition assignment (run requests are keyed by run ID
	// so a run's messages stay ordered).
	Publish(ctx context.Context, topic string, key string, value []byte) error

	// Subscribe returns a channel for consuming messages from a topic.
	// groupID is used for consumer group coordination in Kafka and is
	// ignored by the in-memory broker.
	Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error)

	// Close shuts down the broker connection gracefully.
	Close() error
}

// Message represents a consumed message from a broker.
type Message struct {
	Topic     string
	Key       string
	Value     []byte
	Offset    int64
	Partition int32
	Timestamp int64
}
