// Package cloud implements the cloud-side message loop: fleet-wide
// subscriptions to every device's command responses/acks, heartbeats,
// and telemetry, reconciled against a command store and broadcast to
// any real-time subscriber. Dispatch is also the entry point a test
// harness (or, out of this module's scope, an HTTP layer) uses to send
// a command without a live broker.
package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/zeroclaw-io/fleetdiag/internal/protocol"
	"github.com/zeroclaw-io/fleetdiag/internal/protocol/topics"
	"github.com/zeroclaw-io/fleetdiag/internal/store"
	"github.com/zeroclaw-io/fleetdiag/internal/transport"
	"github.com/zeroclaw-io/fleetdiag/pkg/log"
)

// telemetryHistory bounds how many readings TelemetryStore keeps per
// device; older readings roll off.
const telemetryHistory = 100

// Dispatcher is the cloud side of the fleet transport: it sends
// commands to devices, reconciles their responses, and tracks device
// liveness and telemetry.
type Dispatcher struct {
	FleetID string
	Group   string

	Channel  *transport.Channel
	Commands store.CommandStore
	Devices  *DeviceRegistry
	Events   *Broadcaster

	telemetry *TelemetryStore
}

// New wires a Dispatcher. group names the shared MQTT subscription
// group this dispatcher replica belongs to, so multiple cloud replicas
// split delivery of fleet-wide topics rather than each seeing every
// message.
func New(fleetID, group string, channel *transport.Channel, commands store.CommandStore) *Dispatcher {
	return &Dispatcher{
		FleetID:   fleetID,
		Group:     group,
		Channel:   channel,
		Commands:  commands,
		Devices:   NewDeviceRegistry(),
		Events:    NewBroadcaster(),
		telemetry: NewTelemetryStore(telemetryHistory),
	}
}

// Start subscribes to every fleet-wide topic this dispatcher reconciles
// against. It returns once subscriptions are registered; delivery
// happens asynchronously via the underlying transport.
func (d *Dispatcher) Start(ctx context.Context) error {
	responseTopic, ackTopic := topics.FleetCommandResponses(d.FleetID, d.Group)

	if err := transport.Subscribe(ctx, d.Channel, responseTopic, transport.QoSAtLeastOnce, d.handleResponse); err != nil {
		return fmt.Errorf("cloud: subscribe responses: %w", err)
	}
	if err := transport.Subscribe(ctx, d.Channel, ackTopic, transport.QoSBestEffort, d.handleAck); err != nil {
		return fmt.Errorf("cloud: subscribe acks: %w", err)
	}
	if err := transport.Subscribe(ctx, d.Channel, topics.FleetHeartbeats(d.FleetID, d.Group), transport.QoSBestEffort, d.handleHeartbeat); err != nil {
		return fmt.Errorf("cloud: subscribe heartbeats: %w", err)
	}
	if err := transport.Subscribe(ctx, d.Channel, topics.FleetTelemetry(d.FleetID, d.Group), transport.QoSBestEffort, d.handleTelemetry); err != nil {
		return fmt.Errorf("cloud: subscribe telemetry: %w", err)
	}
	return nil
}

// Dispatch stores env as pending and publishes it to the target
// device's command topic. This is the same path a REST layer would
// call; this module exposes it directly since that layer is out of
// scope.
func (d *Dispatcher) Dispatch(ctx context.Context, env protocol.CommandEnvelope) error {
	if err := d.Commands.Put(ctx, env); err != nil {
		return fmt.Errorf("cloud: store command: %w", err)
	}

	if err := d.Channel.Publish(ctx, topics.CommandRequest(d.FleetID, env.DeviceID), transport.QoSAtLeastOnce, false, env); err != nil {
		return fmt.Errorf("cloud: publish command: %w", err)
	}

	d.Events.Publish(Event{Kind: EventCommandDispatched, DeviceID: env.DeviceID, Payload: env, Timestamp: env.CreatedAt})
	return nil
}

// handleAck just marks the device seen and broadcasts an ack event; the
// command store only tracks terminal responses.
func (d *Dispatcher) handleAck(ctx context.Context, topic string, resp protocol.CommandResponse) {
	d.Devices.TouchSeen(resp.DeviceID, time.Now().UTC())
	d.Events.Publish(Event{Kind: EventCommandAck, DeviceID: resp.DeviceID, Payload: resp, Timestamp: time.Now().UTC()})
}

// handleResponse reconciles a terminal response against the pending
// command it answers, computing server-observed latency from the
// envelope's creation time, and records it in the command store.
func (d *Dispatcher) handleResponse(ctx context.Context, topic string, resp protocol.CommandResponse) {
	d.Devices.TouchSeen(resp.DeviceID, time.Now().UTC())

	if err := d.Commands.Complete(ctx, resp); err != nil {
		log.Warn("cloud: failed to record command response", "command_id", resp.ID.String(), "error", err.Error())
	}

	serverLatencyMs := int64(0)
	if env, ok, err := d.Commands.Get(ctx, resp.ID); err == nil && ok {
		serverLatencyMs = time.Since(env.CreatedAt).Milliseconds()
	}

	d.Events.Publish(Event{
		Kind:     EventCommandCompleted,
		DeviceID: resp.DeviceID,
		Payload: map[string]any{
			"response":          resp,
			"server_latency_ms": serverLatencyMs,
			"device_latency_ms": resp.LatencyMs,
		},
		Timestamp: time.Now().UTC(),
	})
}

func (d *Dispatcher) handleHeartbeat(ctx context.Context, topic string, ping protocol.Heartbeat) {
	at := ping.Timestamp
	if at.IsZero() {
		at = time.Now().UTC()
	}
	d.Devices.TouchHeartbeat(ping.DeviceID, at)
	d.Events.Publish(Event{Kind: EventHeartbeat, DeviceID: ping.DeviceID, Payload: ping, Timestamp: at})
}

// handleTelemetry stores the reading (subject to the store's rolling
// history cap) and broadcasts it. Telemetry persistence beyond this
// in-memory ring is intentionally left to an operator-configured sink;
// no database driver is wired here.
func (d *Dispatcher) handleTelemetry(ctx context.Context, topic string, reading map[string]any) {
	deviceID, _ := reading["device_id"].(string)
	if deviceID == "" {
		log.Warn("cloud: dropping telemetry reading without device_id", "topic", topic)
		return
	}
	d.Devices.TouchSeen(deviceID, time.Now().UTC())
	d.telemetry.Append(deviceID, reading)
	d.Events.Publish(Event{Kind: EventTelemetry, DeviceID: deviceID, Payload: reading, Timestamp: time.Now().UTC()})
}

// Telemetry returns the most recent readings stored for deviceID,
// oldest first.
func (d *Dispatcher) Telemetry(deviceID string) []map[string]any {
	return d.telemetry.Recent(deviceID)
}
