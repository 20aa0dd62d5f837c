// Package transport adapts pkg/mqtt's byte-oriented Client into the
// JSON-typed publish/subscribe surface the agent and cloud message loops
// use: publish a Go value as a JSON payload, subscribe with a typed
// decode-then-handle callback.
package transport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zeroclaw-io/fleetdiag/pkg/log"
	"github.com/zeroclaw-io/fleetdiag/pkg/metrics"
	"github.com/zeroclaw-io/fleetdiag/pkg/mqtt"
)

const (
	// QoSAtLeastOnce is used for command request/response traffic.
	QoSAtLeastOnce = 1
	// QoSBestEffort is used for acks and heartbeats.
	QoSBestEffort = 0
)

// Channel is the fleet transport surface: JSON publish/subscribe over an
// underlying mqtt.Client, with connection lifecycle passed through.
type Channel struct {
	client mqtt.Client
}

// NewChannel wraps an already-constructed mqtt.Client.
func NewChannel(client mqtt.Client) *Channel {
	return &Channel{client: client}
}

func (c *Channel) Start(ctx context.Context) error { return c.client.Start(ctx) }

func (c *Channel) Disconnect(ctx context.Context) {
	c.client.Disconnect(ctx)
	metrics.TransportConnected.Set(0)
}

func (c *Channel) AwaitConnection(ctx context.Context) error {
	if err := c.client.AwaitConnection(ctx); err != nil {
		return err
	}
	metrics.TransportConnected.Set(1)
	return nil
}

func (c *Channel) IsConnected() bool { return c.client.IsConnected() }

// Publish marshals value to JSON and publishes it to topic at qos.
func (c *Channel) Publish(ctx context.Context, topic string, qos int, retain bool, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("transport: marshal payload for %s: %w", topic, err)
	}
	return c.client.Publish(ctx, topic, qos, retain, payload)
}

// TypedHandler handles one payload already decoded into T. It returns
// nothing, so nothing it does propagates to the transport's reader loop.
type TypedHandler[T any] func(ctx context.Context, topic string, value T)

// Subscribe registers a handler that JSON-decodes every payload on topic
// into T before invoking fn. A payload that fails to decode is dropped
// with a debug log, never passed to fn and never treated as fatal.
func Subscribe[T any](ctx context.Context, c *Channel, topic string, qos int, fn TypedHandler[T]) error {
	return c.client.Subscribe(ctx, topic, qos, func(ctx context.Context, gotTopic string, payload []byte) {
		var value T
		if err := json.Unmarshal(payload, &value); err != nil {
			log.Debug("transport: dropping malformed payload", "topic", gotTopic, "error", err.Error())
			return
		}
		fn(ctx, gotTopic, value)
	})
}

// Unsubscribe removes a previously registered handler.
func (c *Channel) Unsubscribe(ctx context.Context, topic string) error {
	return c.client.Unsubscribe(ctx, topic)
}
