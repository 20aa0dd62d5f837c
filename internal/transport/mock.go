package transport

import (
	"context"
	"strings"
	"sync"

	"github.com/zeroclaw-io/fleetdiag/pkg/mqtt"
)

// MockClient is an in-memory mqtt.Client for tests: publishes are
// recorded and, when a matching subscription is registered, delivered
// synchronously to its handler.
type MockClient struct {
	mu            sync.Mutex
	connected     bool
	Published     []MockPublish
	subscriptions map[string]mqtt.MessageHandler
}

// MockPublish records a single Publish call for test assertions.
type MockPublish struct {
	Topic   string
	QoS     int
	Retain  bool
	Payload []byte
}

// NewMockClient creates an empty MockClient.
func NewMockClient() *MockClient {
	return &MockClient{subscriptions: map[string]mqtt.MessageHandler{}}
}

func (m *MockClient) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = true
	return nil
}

func (m *MockClient) Disconnect(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
}

func (m *MockClient) Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error {
	m.mu.Lock()
	m.Published = append(m.Published, MockPublish{Topic: topic, QoS: qos, Retain: retain, Payload: payload})
	handlers := m.matchingHandlersLocked(topic)
	m.mu.Unlock()

	for _, handler := range handlers {
		handler(ctx, topic, payload)
	}
	return nil
}

func (m *MockClient) Subscribe(ctx context.Context, topic string, qos int, handler mqtt.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions[topic] = handler
	return nil
}

func (m *MockClient) Unsubscribe(ctx context.Context, topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscriptions, topic)
	return nil
}

func (m *MockClient) AwaitConnection(ctx context.Context) error {
	return nil
}

// Deliver simulates an inbound broker message on topic, invoking
// whatever handler is currently subscribed. It is a no-op (but not an
// error) if nothing is subscribed on topic, matching how a real broker
// would simply have nothing to deliver to.
func (m *MockClient) Deliver(ctx context.Context, topic string, payload []byte) error {
	m.mu.Lock()
	handlers := m.matchingHandlersLocked(topic)
	m.mu.Unlock()

	for _, handler := range handlers {
		handler(ctx, topic, payload)
	}
	return nil
}

// matchingHandlersLocked returns every subscribed handler whose filter
// matches topic, supporting MQTT + / # wildcards and a $share/<group>/
// prefix the way a real broker's subscription matching does. Callers
// must hold m.mu.
func (m *MockClient) matchingHandlersLocked(topic string) []mqtt.MessageHandler {
	var matched []mqtt.MessageHandler
	for filter, handler := range m.subscriptions {
		if topicFilterMatches(filter, topic) {
			matched = append(matched, handler)
		}
	}
	return matched
}

func topicFilterMatches(filter, topic string) bool {
	filter = stripSharePrefix(filter)
	if filter == topic {
		return true
	}
	if !strings.Contains(filter, "+") && !strings.Contains(filter, "#") {
		return false
	}

	filterParts := strings.Split(filter, "/")
	topicParts := strings.Split(topic, "/")

	for i, part := range filterParts {
		if part == "#" {
			return true
		}
		if i >= len(topicParts) {
			return false
		}
		if part != "+" && part != topicParts[i] {
			return false
		}
	}
	return len(filterParts) == len(topicParts)
}

func stripSharePrefix(filter string) string {
	if !strings.HasPrefix(filter, "$share/") {
		return filter
	}
	parts := strings.SplitN(filter, "/", 3)
	if len(parts) == 3 {
		return parts[2]
	}
	return filter
}

func (m *MockClient) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}
