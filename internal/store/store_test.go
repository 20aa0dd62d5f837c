package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeroclaw-io/fleetdiag/internal/protocol"
)

func TestMemoryCommandStore_PutGetRoundTrip(t *testing.T) {
	s := NewMemoryCommandStore()
	env := protocol.NewCommandEnvelope("device-1", "read dtcs")
	require.NoError(t, s.Put(context.Background(), env))

	got, ok, err := s.Get(context.Background(), env.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, env.ID, got.ID)
}

func TestMemoryCommandStore_GetMissingReturnsFalse(t *testing.T) {
	s := NewMemoryCommandStore()
	env := protocol.NewCommandEnvelope("device-1", "x")
	_, ok, err := s.Get(context.Background(), env.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryCommandStore_CompleteAndGetResponse(t *testing.T) {
	s := NewMemoryCommandStore()
	env := protocol.NewCommandEnvelope("device-1", "read dtcs")
	resp := protocol.CommandResponse{ID: env.ID, CorrelationID: env.CorrelationID, DeviceID: env.DeviceID, Status: protocol.StatusCompleted}
	require.NoError(t, s.Complete(context.Background(), resp))

	got, ok, err := s.GetResponse(context.Background(), env.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, protocol.StatusCompleted, got.Status)
}

func TestMemoryShadowStore_MergeReportedIsShallow(t *testing.T) {
	s := NewMemoryShadowStore()
	ctx := context.Background()

	state, err := s.MergeReported(ctx, "device-1", "main", map[string]any{"engine_on": true, "fuel_pct": 80.0})
	require.NoError(t, err)
	require.EqualValues(t, 1, state.Version)

	state, err = s.MergeReported(ctx, "device-1", "main", map[string]any{"fuel_pct": 75.0})
	require.NoError(t, err)
	require.EqualValues(t, 2, state.Version)
	require.Equal(t, true, state.Reported["engine_on"])
	require.Equal(t, 75.0, state.Reported["fuel_pct"])
}

func TestMemoryShadowStore_SetDesiredComputesDelta(t *testing.T) {
	s := NewMemoryShadowStore()
	ctx := context.Background()

	_, err := s.MergeReported(ctx, "device-1", "main", map[string]any{"mode": "eco"})
	require.NoError(t, err)

	_, delta, err := s.SetDesired(ctx, "device-1", "main", map[string]any{"mode": "sport", "lock_doors": true})
	require.NoError(t, err)
	require.Equal(t, "sport", delta.Delta["mode"])
	require.Equal(t, true, delta.Delta["lock_doors"])
	require.NotContains(t, delta.Delta, "engine_on")
}

func TestMemoryShadowStore_VersionStrictlyMonotonic(t *testing.T) {
	s := NewMemoryShadowStore()
	ctx := context.Background()

	var lastVersion uint64
	for i := 0; i < 5; i++ {
		state, err := s.MergeReported(ctx, "device-1", "main", map[string]any{"tick": i})
		require.NoError(t, err)
		require.Greater(t, state.Version, lastVersion)
		lastVersion = state.Version
	}
	state, _, err := s.SetDesired(ctx, "device-1", "main", map[string]any{"tick": 99})
	require.NoError(t, err)
	require.Greater(t, state.Version, lastVersion)
}
