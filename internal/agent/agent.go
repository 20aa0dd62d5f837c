// Package agent implements the device-side message loop: connect to the
// broker, subscribe to the topics this device cares about, and run every
// inbound command through the executor, acknowledging before execution
// and responding after. The loop never exits normally — a connect or
// subscribe failure backs off and retries until its context is
// cancelled.
package agent

import (
	"context"
	"time"

	"github.com/looplab/fsm"

	"github.com/zeroclaw-io/fleetdiag/internal/executor"
	"github.com/zeroclaw-io/fleetdiag/internal/protocol"
	"github.com/zeroclaw-io/fleetdiag/internal/protocol/topics"
	"github.com/zeroclaw-io/fleetdiag/internal/transport"
	"github.com/zeroclaw-io/fleetdiag/pkg/log"
)

// backoffDelay is how long Run waits after a failed connect or subscribe
// attempt before retrying.
const backoffDelay = 5 * time.Second

// Connection states the agent's fsm.FSM tracks.
const (
	StateDisconnected = "disconnected"
	StateConnecting   = "connecting"
	StateConnected    = "connected"
)

// Events that drive state transitions.
const (
	eventConnect    = "connect"
	eventConnected  = "connected"
	eventDisconnect = "disconnect"
)

// Agent runs a single device's connection lifecycle and command
// dispatch loop against a fleet transport Channel.
type Agent struct {
	DeviceID string
	FleetID  string
	Channel  *transport.Channel
	Executor *executor.Executor

	fsm *fsm.FSM
}

// New wires an Agent. ex may not be nil — every command the agent
// receives is run through it.
func New(deviceID, fleetID string, channel *transport.Channel, ex *executor.Executor) *Agent {
	a := &Agent{DeviceID: deviceID, FleetID: fleetID, Channel: channel, Executor: ex}
	a.fsm = fsm.NewFSM(
		StateDisconnected,
		fsm.Events{
			{Name: eventConnect, Src: []string{StateDisconnected}, Dst: StateConnecting},
			{Name: eventConnected, Src: []string{StateConnecting}, Dst: StateConnected},
			{Name: eventDisconnect, Src: []string{StateConnecting, StateConnected}, Dst: StateDisconnected},
		},
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				log.Debug("agent: state transition", "device_id", deviceID, "from", e.Src, "to", e.Dst)
			},
		},
	)
	return a
}

// State returns the agent's current connection state.
func (a *Agent) State() string { return a.fsm.Current() }

// Run drives the connect/subscribe/serve loop until ctx is cancelled.
// On any failure it returns to Disconnected, waits backoffDelay (or
// ctx's cancellation, whichever comes first), and tries again.
func (a *Agent) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		if err := a.fsm.Event(ctx, eventConnect); err != nil {
			log.Warn("agent: unexpected state transition", "device_id", a.DeviceID, "error", err.Error())
			return
		}

		if err := a.connectAndSubscribe(ctx); err != nil {
			log.Warn("agent: connect failed, backing off", "device_id", a.DeviceID, "error", err.Error())
			_ = a.fsm.Event(ctx, eventDisconnect)
			a.waitBackoff(ctx)
			continue
		}

		_ = a.fsm.Event(ctx, eventConnected)

		<-ctx.Done()
		_ = a.fsm.Event(ctx, eventDisconnect)
		return
	}
}

func (a *Agent) connectAndSubscribe(ctx context.Context) error {
	if err := a.Channel.Start(ctx); err != nil {
		return err
	}
	if err := a.Channel.AwaitConnection(ctx); err != nil {
		return err
	}
	return a.subscribe(ctx)
}

func (a *Agent) subscribe(ctx context.Context) error {
	if err := transport.Subscribe(ctx, a.Channel, topics.CommandRequest(a.FleetID, a.DeviceID), transport.QoSAtLeastOnce, a.handleCommand); err != nil {
		return err
	}
	if err := transport.Subscribe(ctx, a.Channel, topics.BroadcastCommand(a.FleetID), transport.QoSAtLeastOnce, a.handleCommand); err != nil {
		return err
	}
	if err := transport.Subscribe(ctx, a.Channel, topics.ShadowDelta(a.FleetID, a.DeviceID), transport.QoSAtLeastOnce, a.handleShadowDelta); err != nil {
		return err
	}
	if err := transport.Subscribe(ctx, a.Channel, topics.BroadcastConfig(a.FleetID), transport.QoSBestEffort, a.handleConfigUpdate); err != nil {
		return err
	}
	return nil
}

// handleCommand acknowledges receipt, runs the envelope through the
// executor, then publishes its terminal response. A publish failure on
// either leg is logged, not retried; the cloud side then simply has no
// response recorded for that command.
func (a *Agent) handleCommand(ctx context.Context, topic string, env protocol.CommandEnvelope) {
	ack := protocol.CommandResponse{
		ID:            env.ID,
		CorrelationID: env.CorrelationID,
		DeviceID:      a.DeviceID,
		Status:        protocol.StatusProcessing,
	}
	if err := a.Channel.Publish(ctx, topics.CommandAck(a.FleetID, a.DeviceID), transport.QoSBestEffort, false, ack); err != nil {
		log.Warn("agent: failed to publish command ack", "command_id", env.ID.String(), "error", err.Error())
	}

	resp := a.Executor.Execute(ctx, env)

	if err := a.Channel.Publish(ctx, topics.CommandResponse(a.FleetID, a.DeviceID), transport.QoSAtLeastOnce, false, resp); err != nil {
		log.Warn("agent: failed to publish command response", "command_id", env.ID.String(), "error", err.Error())
	}
}

func (a *Agent) handleShadowDelta(ctx context.Context, topic string, delta protocol.ShadowDelta) {
	log.Info("agent: received shadow delta", "device_id", a.DeviceID, "shadow_name", delta.ShadowName, "keys", len(delta.Delta))
}

func (a *Agent) handleConfigUpdate(ctx context.Context, topic string, cfg map[string]any) {
	log.Info("agent: received broadcast config update", "device_id", a.DeviceID, "keys", len(cfg))
}

func (a *Agent) waitBackoff(ctx context.Context) {
	timer := time.NewTimer(backoffDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
