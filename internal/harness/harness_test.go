// Package harness assembles the agent and cloud message loops over a
// single in-memory transport, with no live broker and no live LLM, so
// the full command/shadow round trip can be exercised end to end in a
// unit test.
package harness

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/zeroclaw-io/fleetdiag/internal/agent"
	"github.com/zeroclaw-io/fleetdiag/internal/cloud"
	"github.com/zeroclaw-io/fleetdiag/internal/executor"
	"github.com/zeroclaw-io/fleetdiag/internal/inference"
	"github.com/zeroclaw-io/fleetdiag/internal/obd"
	"github.com/zeroclaw-io/fleetdiag/internal/protocol"
	"github.com/zeroclaw-io/fleetdiag/internal/protocol/topics"
	"github.com/zeroclaw-io/fleetdiag/internal/shadow"
	"github.com/zeroclaw-io/fleetdiag/internal/shell"
	"github.com/zeroclaw-io/fleetdiag/internal/store"
	"github.com/zeroclaw-io/fleetdiag/internal/tools"
	"github.com/zeroclaw-io/fleetdiag/internal/transport"
)

const (
	fleetID  = "fleet-1"
	deviceID = "device-1"
)

// rig is one fully-wired fleet: an agent and a cloud dispatcher sharing
// a single in-memory broker, plus the shadow engine both sides would
// reach through a real deployment's shared store.
type rig struct {
	client     *transport.MockClient
	agent      *agent.Agent
	dispatcher *cloud.Dispatcher
	shadow     *shadow.Engine
}

func newRig(t *testing.T) *rig {
	t.Helper()

	bus := obd.NewMockBus(0x7E8)
	bus.SetVIN("1HGCM82633A004352")
	bus.SetPID(0x0C, []byte{0x36, 0xB0})
	bus.SetDTCs([][2]byte{{0x03, 0x00}})

	registry := tools.New()
	tools.RegisterCanTools(registry, obd.NewEngine(bus))

	chain := inference.NewChain(inference.TieredEngine{Tier: protocol.TierLocal, Engine: inference.NewRuleEngine()})
	ex := executor.New(registry, shell.NewExecutor(), chain)

	client := transport.NewMockClient()

	agentChannel := transport.NewChannel(client)
	a := agent.New(deviceID, fleetID, agentChannel, ex)

	cloudChannel := transport.NewChannel(client)
	d := cloud.New(fleetID, "cloud", cloudChannel, store.NewMemoryCommandStore())

	shadowChannel := transport.NewChannel(client)
	se := shadow.New(store.NewMemoryShadowStore(), shadowChannel, fleetID)

	return &rig{client: client, agent: a, dispatcher: d, shadow: se}
}

func (r *rig) start(ctx context.Context, t *testing.T) {
	t.Helper()
	require.NoError(t, r.dispatcher.Start(ctx))

	go r.agent.Run(ctx)
	require.Eventually(t, func() bool { return r.agent.State() == agent.StateConnected }, time.Second, 5*time.Millisecond)
}

func TestHarness_SendCommandRoundTripsToCompletion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newRig(t)
	r.start(ctx, t)

	env := protocol.NewCommandEnvelope(deviceID, "what's my VIN")
	require.NoError(t, r.dispatcher.Dispatch(ctx, env))

	require.Eventually(t, func() bool {
		resp, ok, err := r.dispatcher.Commands.GetResponse(ctx, env.ID)
		return err == nil && ok && resp.Status == protocol.StatusCompleted
	}, time.Second, 5*time.Millisecond)

	resp, ok, err := r.dispatcher.Commands.GetResponse(ctx, env.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, env.ID, resp.CorrelationID, "correlation id must survive the full agent/cloud round trip")
	require.Equal(t, "1HGCM82633A004352", resp.ResponseData["vin"])
}

func TestHarness_UnknownToolStillReturnsTerminalResponse(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newRig(t)
	r.start(ctx, t)

	id := uuid.New()
	env := protocol.CommandEnvelope{
		ID:            id,
		CorrelationID: id,
		DeviceID:      deviceID,
		ParsedIntent:  &protocol.ParsedIntent{Action: protocol.ActionTool, ToolName: "does_not_exist", Confidence: 1},
	}

	require.NoError(t, r.dispatcher.Dispatch(ctx, env))

	require.Eventually(t, func() bool {
		resp, ok, err := r.dispatcher.Commands.GetResponse(ctx, env.ID)
		return err == nil && ok && resp.Status == protocol.StatusFailed
	}, time.Second, 5*time.Millisecond)
}

func TestHarness_DeviceRegistrySeesHeartbeatFromSharedBroker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newRig(t)
	r.start(ctx, t)

	ping := protocol.Heartbeat{DeviceID: deviceID, Timestamp: time.Now().UTC()}
	payload, err := json.Marshal(ping)
	require.NoError(t, err)

	require.NoError(t, r.client.Deliver(ctx, topics.Heartbeat(fleetID, deviceID), payload))

	require.Eventually(t, func() bool {
		status, ok := r.dispatcher.Devices.Get(deviceID)
		return ok && !status.LastHeartbeat.IsZero()
	}, time.Second, 5*time.Millisecond)
}

func TestHarness_ShadowDeltaReachesSubscribedDevice(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newRig(t)
	r.start(ctx, t)

	_, err := r.shadow.ApplyReported(ctx, deviceID, "main", map[string]any{"mode": "eco"})
	require.NoError(t, err)

	_, err = r.shadow.SetDesired(ctx, deviceID, "main", map[string]any{"mode": "sport"})
	require.NoError(t, err)

	found := false
	for _, p := range r.client.Published {
		if p.Topic == topics.ShadowDelta(fleetID, deviceID) {
			found = true
		}
	}
	require.True(t, found, "expected a shadow delta publish reachable by the device's own subscription")
}
