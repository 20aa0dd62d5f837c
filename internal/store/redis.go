package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/zeroclaw-io/fleetdiag/internal/protocol"
)

// RedisCommandStore is a CommandStore backed by Redis, for deployments
// that want command/response history to survive a process restart.
// It stores command envelopes and responses only; there is no
// Redis-backed shadow store.
type RedisCommandStore struct {
	client *redis.Client
	prefix string
}

// NewRedisCommandStore wraps an existing *redis.Client. prefix namespaces
// every key this store writes (e.g. "fleetdiag:cmd:").
func NewRedisCommandStore(client *redis.Client, prefix string) *RedisCommandStore {
	return &RedisCommandStore{client: client, prefix: prefix}
}

func (s *RedisCommandStore) envKey(id uuid.UUID) string  { return s.prefix + "env:" + id.String() }
func (s *RedisCommandStore) respKey(id uuid.UUID) string { return s.prefix + "resp:" + id.String() }

func (s *RedisCommandStore) Put(ctx context.Context, env protocol.CommandEnvelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("store: marshal command envelope: %w", err)
	}
	return s.client.Set(ctx, s.envKey(env.ID), payload, 0).Err()
}

func (s *RedisCommandStore) Get(ctx context.Context, id uuid.UUID) (protocol.CommandEnvelope, bool, error) {
	raw, err := s.client.Get(ctx, s.envKey(id)).Bytes()
	if err == redis.Nil {
		return protocol.CommandEnvelope{}, false, nil
	}
	if err != nil {
		return protocol.CommandEnvelope{}, false, err
	}
	var env protocol.CommandEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return protocol.CommandEnvelope{}, false, fmt.Errorf("store: unmarshal command envelope: %w", err)
	}
	return env, true, nil
}

func (s *RedisCommandStore) Complete(ctx context.Context, resp protocol.CommandResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("store: marshal command response: %w", err)
	}
	return s.client.Set(ctx, s.respKey(resp.ID), payload, 0).Err()
}

func (s *RedisCommandStore) GetResponse(ctx context.Context, id uuid.UUID) (protocol.CommandResponse, bool, error) {
	raw, err := s.client.Get(ctx, s.respKey(id)).Bytes()
	if err == redis.Nil {
		return protocol.CommandResponse{}, false, nil
	}
	if err != nil {
		return protocol.CommandResponse{}, false, err
	}
	var resp protocol.CommandResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return protocol.CommandResponse{}, false, fmt.Errorf("store: unmarshal command response: %w", err)
	}
	return resp, true, nil
}
