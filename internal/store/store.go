// Package store implements the cloud-side command and shadow
// persistence layer: a readers-writer-guarded in-memory store used
// directly in tests and as the default runtime backend, and a
// Redis-backed store for deployments that configure one.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zeroclaw-io/fleetdiag/internal/protocol"
)

// CommandStore persists CommandEnvelopes and their terminal
// CommandResponses, keyed by command id, so the cloud message loop can
// reconcile an incoming response against the request that produced it.
type CommandStore interface {
	Put(ctx context.Context, env protocol.CommandEnvelope) error
	Get(ctx context.Context, id uuid.UUID) (protocol.CommandEnvelope, bool, error)
	Complete(ctx context.Context, resp protocol.CommandResponse) error
	GetResponse(ctx context.Context, id uuid.UUID) (protocol.CommandResponse, bool, error)
}

// ShadowStore persists device shadow state, keyed by (device_id,
// shadow_name).
type ShadowStore interface {
	Get(ctx context.Context, deviceID, shadowName string) (protocol.ShadowState, bool, error)
	MergeReported(ctx context.Context, deviceID, shadowName string, reported map[string]any) (protocol.ShadowState, error)
	SetDesired(ctx context.Context, deviceID, shadowName string, desired map[string]any) (protocol.ShadowState, protocol.ShadowDelta, error)
}

// MemoryCommandStore is an in-process CommandStore guarded by a
// readers-writer lock, matching the cloud's short, network-free
// critical section policy: no I/O happens while the write lock is held.
type MemoryCommandStore struct {
	mu        sync.RWMutex
	commands  map[uuid.UUID]protocol.CommandEnvelope
	responses map[uuid.UUID]protocol.CommandResponse
}

// NewMemoryCommandStore creates an empty MemoryCommandStore.
func NewMemoryCommandStore() *MemoryCommandStore {
	return &MemoryCommandStore{
		commands:  map[uuid.UUID]protocol.CommandEnvelope{},
		responses: map[uuid.UUID]protocol.CommandResponse{},
	}
}

func (s *MemoryCommandStore) Put(ctx context.Context, env protocol.CommandEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands[env.ID] = env
	return nil
}

func (s *MemoryCommandStore) Get(ctx context.Context, id uuid.UUID) (protocol.CommandEnvelope, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	env, ok := s.commands[id]
	return env, ok, nil
}

func (s *MemoryCommandStore) Complete(ctx context.Context, resp protocol.CommandResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[resp.ID] = resp
	return nil
}

func (s *MemoryCommandStore) GetResponse(ctx context.Context, id uuid.UUID) (protocol.CommandResponse, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp, ok := s.responses[id]
	return resp, ok, nil
}

// MemoryShadowStore is an in-process ShadowStore guarded by a single
// readers-writer lock, keyed by (device_id, shadow_name). A single lock
// is sufficient per the serialization requirement (updates to one
// shadow must be serialized) while still letting distinct shadows
// proceed concurrently via RLock on reads.
type MemoryShadowStore struct {
	mu      sync.RWMutex
	shadows map[shadowKey]protocol.ShadowState
}

type shadowKey struct {
	deviceID   string
	shadowName string
}

// NewMemoryShadowStore creates an empty MemoryShadowStore.
func NewMemoryShadowStore() *MemoryShadowStore {
	return &MemoryShadowStore{shadows: map[shadowKey]protocol.ShadowState{}}
}

func (s *MemoryShadowStore) Get(ctx context.Context, deviceID, shadowName string) (protocol.ShadowState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.shadows[shadowKey{deviceID, shadowName}]
	return state, ok, nil
}

// MergeReported shallow-merges reported into the existing shadow's
// Reported map (device overwrites matching top-level keys only),
// increments version, and touches the timestamp.
func (s *MemoryShadowStore) MergeReported(ctx context.Context, deviceID, shadowName string, reported map[string]any) (protocol.ShadowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := shadowKey{deviceID, shadowName}
	state := s.shadows[key]
	if state.Reported == nil {
		state.Reported = map[string]any{}
	}
	if state.Desired == nil {
		state.Desired = map[string]any{}
	}
	for k, v := range reported {
		state.Reported[k] = v
	}
	state.Version++
	state.LastUpdated = time.Now().UTC()
	s.shadows[key] = state
	return state, nil
}

// SetDesired fully replaces the shadow's Desired map, increments
// version, touches the timestamp, and computes the resulting delta: the
// keys in desired whose values are absent from or differ from reported.
func (s *MemoryShadowStore) SetDesired(ctx context.Context, deviceID, shadowName string, desired map[string]any) (protocol.ShadowState, protocol.ShadowDelta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := shadowKey{deviceID, shadowName}
	state := s.shadows[key]
	if state.Reported == nil {
		state.Reported = map[string]any{}
	}
	state.Desired = desired
	state.Version++
	state.LastUpdated = time.Now().UTC()
	s.shadows[key] = state

	delta := computeDelta(state.Reported, state.Desired)
	return state, protocol.ShadowDelta{
		DeviceID:   deviceID,
		ShadowName: shadowName,
		Delta:      delta,
		Version:    state.Version,
		Timestamp:  state.LastUpdated,
	}, nil
}

func computeDelta(reported, desired map[string]any) map[string]any {
	delta := map[string]any{}
	for k, desiredVal := range desired {
		reportedVal, ok := reported[k]
		if !ok || !valuesEqual(reportedVal, desiredVal) {
			delta[k] = desiredVal
		}
	}
	return delta
}

// valuesEqual does a best-effort equality check across the any-typed
// values a decoded JSON object holds (numbers, strings, bools, nested
// maps/slices compared by deep equality via reflect-free recursion for
// the common JSON shapes).
func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			if !valuesEqual(v, bv[k]) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
