// Package broker provides the in-memory broker used in local mode.
package broker

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// InMemoryBroker is a thread-safe in-process implementation of Broker.
// Messages published to a topic are fanned out to every subscriber of that
// topic and retained, so late subscribers replay the topic from the start,
// matching the Redpanda consumer's start-offset behavior. Used for local
// mode and tests.
type InMemoryBroker struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Message
	retained    map[string][]Message
	closed      bool
}

// NewInMemoryBroker creates a new InMemoryBroker instance.
func NewInMemoryBroker() *InMemoryBroker {
	return &InMemoryBroker{
		subscribers: make(map[string][]chan Message),
		retained:    make(map[string][]Message),
	}
}

// Publish delivers the message to all current subscribers of the topic.
// Implements the Broker interface.
func (b *InMemoryBroker) Publish(ctx context.Context, topic string, key string, value []byte) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("broker is closed")
	}

	msg := Message{
		Topic:     topic,
		Key:       key,
		Value:     value,
		Offset:    int64(len(b.retained[topic])),
		Timestamp: time.Now().UnixMilli(),
	}
	b.retained[topic] = append(b.retained[topic], msg)

	subs := make([]chan Message, len(b.subscribers[topic]))
	copy(subs, b.subscribers[topic])
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// Subscribe registers a new subscriber channel for the topic, replaying
// retained messages first. groupID is ignored; every subscriber sees every
// message. Implements the Broker interface.
func (b *InMemoryBroker) Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("broker is closed")
	}

	ch := make(chan Message, 100+len(b.retained[topic]))
	for _, msg := range b.retained[topic] {
		ch <- msg
	}
	b.subscribers[topic] = append(b.subscribers[topic], ch)

	return ch, nil
}

// Close shuts down the broker and closes all subscriber channels.
func (b *InMemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for _, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	b.subscribers = make(map[string][]chan Message)

	return nil
}
