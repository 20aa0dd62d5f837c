// Package topics builds and parses the fleet diagnostics topic hierarchy:
//
//	fleet/{fleet_id}/{device_id|broadcast}/{category}/{action}
//
// Building reuses the generic segment-join/wildcard primitives from
// pkg/mqtt/topic; parsing is specific to this hierarchy and lives here.
package topics

import (
	"strings"

	"github.com/zeroclaw-io/fleetdiag/pkg/mqtt/topic"
)

const (
	root = "fleet"

	broadcast = "broadcast"

	categoryCommand   = "command"
	categoryTelemetry = "telemetry"
	categoryShadow    = "shadow"
	categoryHeartbeat = "heartbeat"
	categoryAlert     = "alert"
	categoryConfig    = "config"

	actionRequest  = "request"
	actionResponse = "response"
	actionAck      = "ack"

	actionObd2   = "obd2"
	actionSystem = "system"
	actionCanbus = "canbus"

	actionUpdate = "update"
	actionDelta  = "delta"

	actionPing  = "ping"
	actionRaise = "raise"
)

// CommandRequest is the topic a device subscribes on to receive commands.
func CommandRequest(fleetID, deviceID string) string {
	return topic.NewBuilder(root).Build(fleetID, deviceID, categoryCommand, actionRequest)
}

// CommandResponse is the topic a device publishes command responses on.
func CommandResponse(fleetID, deviceID string) string {
	return topic.NewBuilder(root).Build(fleetID, deviceID, categoryCommand, actionResponse)
}

// CommandAck is the topic a device publishes a processing acknowledgement on.
func CommandAck(fleetID, deviceID string) string {
	return topic.NewBuilder(root).Build(fleetID, deviceID, categoryCommand, actionAck)
}

// TelemetryObd2 is the topic a device publishes OBD-II readings on.
func TelemetryObd2(fleetID, deviceID string) string {
	return topic.NewBuilder(root).Build(fleetID, deviceID, categoryTelemetry, actionObd2)
}

// TelemetrySystem is the topic a device publishes host-level telemetry on.
func TelemetrySystem(fleetID, deviceID string) string {
	return topic.NewBuilder(root).Build(fleetID, deviceID, categoryTelemetry, actionSystem)
}

// TelemetryCanbus is the topic a device publishes raw CAN-bus samples on.
func TelemetryCanbus(fleetID, deviceID string) string {
	return topic.NewBuilder(root).Build(fleetID, deviceID, categoryTelemetry, actionCanbus)
}

// ShadowUpdate is the topic a device publishes reported-state updates on.
func ShadowUpdate(fleetID, deviceID string) string {
	return topic.NewBuilder(root).Build(fleetID, deviceID, categoryShadow, actionUpdate)
}

// ShadowDelta is the topic the cloud publishes desired/reported deltas on.
func ShadowDelta(fleetID, deviceID string) string {
	return topic.NewBuilder(root).Build(fleetID, deviceID, categoryShadow, actionDelta)
}

// Heartbeat is the topic a device publishes liveness pings on.
func Heartbeat(fleetID, deviceID string) string {
	return topic.NewBuilder(root).Build(fleetID, deviceID, categoryHeartbeat, actionPing)
}

// Alert is the topic a device publishes out-of-band alerts on.
func Alert(fleetID, deviceID string) string {
	return topic.NewBuilder(root).Build(fleetID, deviceID, categoryAlert, actionRaise)
}

// BroadcastCommand is the topic the cloud publishes fleet-wide commands on.
func BroadcastCommand(fleetID string) string {
	return topic.NewBuilder(root).Build(fleetID, broadcast, categoryCommand, actionRequest)
}

// BroadcastConfig is the topic the cloud publishes fleet-wide config updates on.
func BroadcastConfig(fleetID string) string {
	return topic.NewBuilder(root).Build(fleetID, broadcast, categoryConfig, actionUpdate)
}

// DeviceSubscribeAll returns every topic a device agent subscribes to at startup.
func DeviceSubscribeAll(fleetID, deviceID string) []string {
	return []string{
		CommandRequest(fleetID, deviceID),
		BroadcastCommand(fleetID),
		BroadcastConfig(fleetID),
		ShadowDelta(fleetID, deviceID),
	}
}

// FleetCommandResponses is the wildcard the cloud subscribes to for every
// device's command responses and acks in a fleet, using a shared
// subscription so multiple dispatcher replicas split delivery.
func FleetCommandResponses(fleetID, group string) (response, ack string) {
	b := topic.NewBuilder(root).Shared(group)
	return b.Build(fleetID, topic.Wildcard, categoryCommand, actionResponse),
		b.Build(fleetID, topic.Wildcard, categoryCommand, actionAck)
}

// FleetHeartbeats is the wildcard the cloud subscribes to for every device's
// heartbeat in a fleet.
func FleetHeartbeats(fleetID, group string) string {
	return topic.NewBuilder(root).Shared(group).Build(fleetID, topic.Wildcard, categoryHeartbeat, actionPing)
}

// FleetTelemetry is the wildcard the cloud subscribes to for every device's
// telemetry in a fleet, across all three telemetry sub-categories.
func FleetTelemetry(fleetID, group string) string {
	return topic.NewBuilder(root).Shared(group).Build(fleetID, topic.Wildcard, categoryTelemetry, topic.MultiWildcard)
}

// FleetShadowUpdates is the wildcard the cloud subscribes to for every
// device's reported-state shadow updates in a fleet.
func FleetShadowUpdates(fleetID, group string) string {
	return topic.NewBuilder(root).Shared(group).Build(fleetID, topic.Wildcard, categoryShadow, actionUpdate)
}

// Parsed is the decomposition of a concrete (non-wildcard) topic this
// package produced or would produce.
type Parsed struct {
	FleetID   string
	DeviceID  string // empty when Broadcast is true
	Broadcast bool
	Category  string
	Action    string
}

// Parse decomposes a concrete topic string into its fleet/device/category/
// action parts. It returns false if the topic doesn't match the
// fleet/{fleet}/{device|broadcast}/{category}/{action} shape this package
// defines, including any $share/{group}/ prefix a shared subscription added.
func Parse(t string) (Parsed, bool) {
	t = stripSharePrefix(t)

	parts := strings.Split(t, "/")
	if len(parts) != 5 || parts[0] != root {
		return Parsed{}, false
	}

	p := Parsed{
		FleetID:  parts[1],
		Category: parts[3],
		Action:   parts[4],
	}

	if parts[2] == broadcast {
		p.Broadcast = true
	} else {
		p.DeviceID = parts[2]
	}

	if p.FleetID == "" || p.Category == "" || p.Action == "" {
		return Parsed{}, false
	}
	if !p.Broadcast && p.DeviceID == "" {
		return Parsed{}, false
	}

	return p, true
}

func stripSharePrefix(t string) string {
	if !strings.HasPrefix(t, "$share/") {
		return t
	}
	rest := strings.TrimPrefix(t, "$share/")
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[idx+1:]
	}
	return rest
}
