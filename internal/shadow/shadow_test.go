package shadow

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeroclaw-io/fleetdiag/internal/protocol"
	"github.com/zeroclaw-io/fleetdiag/internal/protocol/topics"
	"github.com/zeroclaw-io/fleetdiag/internal/store"
	"github.com/zeroclaw-io/fleetdiag/internal/transport"
)

func TestEngine_SetDesiredPublishesDeltaWhenNonEmpty(t *testing.T) {
	client := transport.NewMockClient()
	channel := transport.NewChannel(client)
	engine := New(store.NewMemoryShadowStore(), channel, "fleet-1")
	ctx := context.Background()

	_, err := engine.ApplyReported(ctx, "device-1", "main", map[string]any{"mode": "eco"})
	require.NoError(t, err)

	_, err = engine.SetDesired(ctx, "device-1", "main", map[string]any{"mode": "sport"})
	require.NoError(t, err)

	require.Len(t, client.Published, 1)
	require.Equal(t, topics.ShadowDelta("fleet-1", "device-1"), client.Published[0].Topic)

	var delta protocol.ShadowDelta
	require.NoError(t, json.Unmarshal(client.Published[0].Payload, &delta))
	require.Equal(t, "sport", delta.Delta["mode"])
}

func TestEngine_SetDesiredSkipsPublishWhenDeltaEmpty(t *testing.T) {
	client := transport.NewMockClient()
	channel := transport.NewChannel(client)
	engine := New(store.NewMemoryShadowStore(), channel, "fleet-1")
	ctx := context.Background()

	_, err := engine.ApplyReported(ctx, "device-1", "main", map[string]any{"mode": "eco"})
	require.NoError(t, err)

	_, err = engine.SetDesired(ctx, "device-1", "main", map[string]any{"mode": "eco"})
	require.NoError(t, err)

	require.Empty(t, client.Published)
}

func TestEngine_VersionMonotonicAcrossReportedAndDesired(t *testing.T) {
	engine := New(store.NewMemoryShadowStore(), nil, "fleet-1")
	ctx := context.Background()

	s1, err := engine.ApplyReported(ctx, "device-1", "main", map[string]any{"a": 1})
	require.NoError(t, err)
	s2, err := engine.SetDesired(ctx, "device-1", "main", map[string]any{"a": 2})
	require.NoError(t, err)
	s3, err := engine.ApplyReported(ctx, "device-1", "main", map[string]any{"a": 2})
	require.NoError(t, err)

	require.Less(t, s1.Version, s2.Version)
	require.Less(t, s2.Version, s3.Version)
}
