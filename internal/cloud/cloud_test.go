package cloud

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zeroclaw-io/fleetdiag/internal/protocol"
	"github.com/zeroclaw-io/fleetdiag/internal/protocol/topics"
	"github.com/zeroclaw-io/fleetdiag/internal/store"
	"github.com/zeroclaw-io/fleetdiag/internal/transport"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *transport.MockClient) {
	t.Helper()
	client := transport.NewMockClient()
	channel := transport.NewChannel(client)
	d := New("fleet-1", "cloud", channel, store.NewMemoryCommandStore())
	require.NoError(t, d.Start(context.Background()))
	return d, client
}

func TestDispatcher_DispatchStoresAndPublishesCommand(t *testing.T) {
	d, client := newTestDispatcher(t)
	env := protocol.NewCommandEnvelope("device-1", "read dtcs")

	require.NoError(t, d.Dispatch(context.Background(), env))

	got, ok, err := d.Commands.Get(context.Background(), env.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, env.DeviceID, got.DeviceID)

	require.Len(t, client.Published, 1)
	require.Equal(t, topics.CommandRequest("fleet-1", "device-1"), client.Published[0].Topic)
}

func TestDispatcher_HandleResponseReconcilesAgainstPendingCommand(t *testing.T) {
	d, client := newTestDispatcher(t)
	env := protocol.NewCommandEnvelope("device-1", "read dtcs")
	require.NoError(t, d.Dispatch(context.Background(), env))

	events, unsubscribe := d.Events.Subscribe(4)
	defer unsubscribe()

	resp := protocol.CommandResponse{
		ID: env.ID, CorrelationID: env.ID, DeviceID: "device-1",
		Status: protocol.StatusCompleted, ResponseText: "no codes", CompletedAt: time.Now().UTC(),
	}
	deliverJSON(t, client, topics.CommandResponse("fleet-1", "device-1"), resp)

	got, ok, err := d.Commands.GetResponse(context.Background(), env.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, protocol.StatusCompleted, got.Status)

	select {
	case ev := <-events:
		require.Equal(t, EventCommandCompleted, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("expected a command_completed event")
	}
}

func TestDispatcher_HandleHeartbeatUpdatesRegistry(t *testing.T) {
	d, client := newTestDispatcher(t)
	ping := protocol.Heartbeat{DeviceID: "device-1", Timestamp: time.Now().UTC()}
	deliverJSON(t, client, topics.Heartbeat("fleet-1", "device-1"), ping)

	status, ok := d.Devices.Get("device-1")
	require.True(t, ok)
	require.False(t, status.LastHeartbeat.IsZero())
}

func TestDispatcher_HandleTelemetryStoresAndBroadcasts(t *testing.T) {
	d, client := newTestDispatcher(t)
	events, unsubscribe := d.Events.Subscribe(4)
	defer unsubscribe()

	reading := map[string]any{"device_id": "device-1", "name": "rpm", "value": 3500.0}
	deliverJSON(t, client, topics.TelemetryObd2("fleet-1", "device-1"), reading)

	require.Len(t, d.Telemetry("device-1"), 1)

	select {
	case ev := <-events:
		require.Equal(t, EventTelemetry, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("expected a telemetry event")
	}
}

func TestDispatcher_MalformedTelemetryIsDroppedNotPanicked(t *testing.T) {
	d, client := newTestDispatcher(t)
	require.NotPanics(t, func() {
		require.NoError(t, client.Deliver(context.Background(), topics.TelemetryObd2("fleet-1", "device-1"), []byte("not json")))
	})
	require.Empty(t, d.Telemetry("device-1"))
}

func deliverJSON(t *testing.T, client *transport.MockClient, topic string, value any) {
	t.Helper()
	payload, err := json.Marshal(value)
	require.NoError(t, err)
	require.NoError(t, client.Deliver(context.Background(), topic, payload))
}
