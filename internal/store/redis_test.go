package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/zeroclaw-io/fleetdiag/internal/protocol"
)

func newTestRedisStore(t *testing.T) *RedisCommandStore {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCommandStore(client, "fleetdiag:test:")
}

func TestRedisCommandStore_PutGetRoundTrip(t *testing.T) {
	s := newTestRedisStore(t)
	env := protocol.NewCommandEnvelope("device-1", "read dtcs")

	require.NoError(t, s.Put(context.Background(), env))

	got, ok, err := s.Get(context.Background(), env.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, env.DeviceID, got.DeviceID)
	require.Equal(t, env.ID, got.CorrelationID)
}

func TestRedisCommandStore_GetMissingReturnsFalse(t *testing.T) {
	s := newTestRedisStore(t)
	env := protocol.NewCommandEnvelope("device-1", "x")
	_, ok, err := s.Get(context.Background(), env.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisCommandStore_CompleteAndGetResponse(t *testing.T) {
	s := newTestRedisStore(t)
	env := protocol.NewCommandEnvelope("device-1", "read dtcs")
	resp := protocol.CommandResponse{ID: env.ID, CorrelationID: env.CorrelationID, DeviceID: env.DeviceID, Status: protocol.StatusFailed, Error: "boom"}

	require.NoError(t, s.Complete(context.Background(), resp))

	got, ok, err := s.GetResponse(context.Background(), env.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, protocol.StatusFailed, got.Status)
	require.Equal(t, "boom", got.Error)
}
