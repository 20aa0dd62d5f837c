// Package shadow implements the shadow engine: applying reported updates
// and desired-sets against the shadow store, and publishing the
// resulting delta to the owning device when a desired-set changes
// anything.
package shadow

import (
	"context"

	"github.com/zeroclaw-io/fleetdiag/internal/protocol"
	"github.com/zeroclaw-io/fleetdiag/internal/protocol/topics"
	"github.com/zeroclaw-io/fleetdiag/internal/store"
	"github.com/zeroclaw-io/fleetdiag/internal/transport"
	"github.com/zeroclaw-io/fleetdiag/pkg/log"
	"github.com/zeroclaw-io/fleetdiag/pkg/metrics"
)

// Engine applies shadow updates against a store.ShadowStore and
// publishes deltas over a transport.Channel. A delta publish failure is
// logged, never returned to the caller — it must not abort the update
// that produced it.
type Engine struct {
	Store   store.ShadowStore
	Channel *transport.Channel
	FleetID string
}

// New creates a shadow Engine.
func New(shadowStore store.ShadowStore, channel *transport.Channel, fleetID string) *Engine {
	return &Engine{Store: shadowStore, Channel: channel, FleetID: fleetID}
}

// ApplyReported shallow-merges a device's reported state and touches
// the shadow's version. No delta is computed or published here — a
// reported update narrows the gap to desired but doesn't, by itself,
// change what the cloud wants the device to do.
func (e *Engine) ApplyReported(ctx context.Context, deviceID, shadowName string, reported map[string]any) (protocol.ShadowState, error) {
	return e.Store.MergeReported(ctx, deviceID, shadowName, reported)
}

// SetDesired replaces a shadow's desired state, then publishes the
// resulting delta to the device if it's non-empty.
func (e *Engine) SetDesired(ctx context.Context, deviceID, shadowName string, desired map[string]any) (protocol.ShadowState, error) {
	state, delta, err := e.Store.SetDesired(ctx, deviceID, shadowName, desired)
	if err != nil {
		return protocol.ShadowState{}, err
	}

	if len(delta.Delta) == 0 {
		return state, nil
	}

	if e.Channel != nil {
		topic := topics.ShadowDelta(e.FleetID, deviceID)
		if pubErr := e.Channel.Publish(ctx, topic, transport.QoSAtLeastOnce, false, delta); pubErr != nil {
			log.Warn("shadow: failed to publish delta", "device_id", deviceID, "shadow_name", shadowName, "error", pubErr.Error())
		} else {
			metrics.ShadowDeltasPublished.WithLabelValues(deviceID).Inc()
		}
	}

	return state, nil
}

// Get returns the current shadow state for (deviceID, shadowName).
func (e *Engine) Get(ctx context.Context, deviceID, shadowName string) (protocol.ShadowState, bool, error) {
	return e.Store.Get(ctx, deviceID, shadowName)
}
