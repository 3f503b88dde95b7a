package pubsub

import (
	"context"
	"sync"

	"github.com/feral-file/ff-storefront/internal/domain"
)

// Memory is an in-process broker, used for single instance deployments and tests
type Memory struct {
	mu     sync.RWMutex
	topics map[string]map[*memorySubscription]struct{}
}

// NewMemory creates an in-process broker
func NewMemory() *Memory {
	return &Memory{
		topics: make(map[string]map[*memorySubscription]struct{}),
	}
}

type memorySubscription struct {
	*stream
	hub *Memory
}

// Subscribe implements Subscriber
func (m *Memory) Subscribe(_ context.Context, topic string) (Subscription, error) {
	sub := &memorySubscription{stream: newStream(topic), hub: m}

	m.mu.Lock()
	defer m.mu.Unlock()

	subs, ok := m.topics[topic]
	if !ok {
		subs = make(map[*memorySubscription]struct{})
		m.topics[topic] = subs
	}
	subs[sub] = struct{}{}

	return sub, nil
}

// Publish implements Publisher
func (m *Memory) Publish(_ context.Context, topic string, bid domain.Bid) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for sub := range m.topics[topic] {
		sub.deliver(bid)
	}
	return nil
}

// Subscribers returns the number of open subscriptions on a topic
func (m *Memory) Subscribers(topic string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.topics[topic])
}

func (s *memorySubscription) Unsubscribe() error {
	s.hub.mu.Lock()
	if subs, ok := s.hub.topics[s.topic]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(s.hub.topics, s.topic)
		}
	}
	s.hub.mu.Unlock()

	s.close()
	return nil
}
