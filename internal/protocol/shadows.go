package protocol

import "time"

// ShadowState is the named document tracked for a device: a reported
// (device-observed) side and a desired (cloud-requested) side, versioned
// monotonically.
type ShadowState struct {
	Reported    map[string]any `json:"reported,omitempty"`
	Desired     map[string]any `json:"desired,omitempty"`
	Version     uint64         `json:"version"`
	LastUpdated time.Time      `json:"last_updated"`
}

// NamedShadow pairs a shadow document with the name it's tracked under
// (a device may keep more than one, e.g. "config" and "firmware").
type NamedShadow struct {
	Name  string      `json:"name"`
	State ShadowState `json:"state"`
}

// ShadowUpdate is what a device publishes to report new observed state.
// The reported map is merged shallowly into the existing shadow's Reported
// side; it never touches Desired.
type ShadowUpdate struct {
	DeviceID   string         `json:"device_id"`
	ShadowName string         `json:"shadow_name"`
	Reported   map[string]any `json:"reported"`
	Version    uint64         `json:"version,omitempty"`
}

// ShadowDelta is what the cloud publishes when a desired-state write
// diverges from the shadow's current reported state: the set of keys
// present in desired that are absent from, or unequal to, reported.
type ShadowDelta struct {
	DeviceID   string         `json:"device_id"`
	ShadowName string         `json:"shadow_name"`
	Delta      map[string]any `json:"delta"`
	Version    uint64         `json:"version"`
	Timestamp  time.Time      `json:"timestamp"`
}
