package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Value int `json:"value"`
}

func TestChannel_PublishRoundTripsJSON(t *testing.T) {
	client := NewMockClient()
	channel := NewChannel(client)

	received := make(chan samplePayload, 1)
	require.NoError(t, Subscribe[samplePayload](context.Background(), channel, "fleet/f1/d1/command/request", QoSAtLeastOnce,
		func(ctx context.Context, topic string, value samplePayload) {
			received <- value
		}))

	require.NoError(t, channel.Publish(context.Background(), "fleet/f1/d1/command/request", QoSAtLeastOnce, false, samplePayload{Value: 42}))

	select {
	case got := <-received:
		require.Equal(t, 42, got.Value)
	default:
		t.Fatal("expected handler to run synchronously on publish")
	}
}

func TestChannel_DropsMalformedPayloadWithoutPanicking(t *testing.T) {
	client := NewMockClient()
	channel := NewChannel(client)

	called := false
	require.NoError(t, Subscribe[samplePayload](context.Background(), channel, "fleet/f1/d1/command/request", QoSAtLeastOnce,
		func(ctx context.Context, topic string, value samplePayload) {
			called = true
		}))

	require.NoError(t, client.Publish(context.Background(), "fleet/f1/d1/command/request", QoSAtLeastOnce, false, []byte("not json")))
	require.False(t, called)
}

func TestChannel_ConnectionLifecycle(t *testing.T) {
	client := NewMockClient()
	channel := NewChannel(client)

	require.False(t, channel.IsConnected())
	require.NoError(t, channel.Start(context.Background()))
	require.True(t, channel.IsConnected())
	channel.Disconnect(context.Background())
	require.False(t, channel.IsConnected())
}
