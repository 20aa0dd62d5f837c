// Package protocol defines the JSON wire types exchanged over the MQTT
// transport between the fleet agent and the cloud dispatcher: command
// envelopes and responses, parsed intents, DTC codes, and device shadows.
// Every type round-trips losslessly through encoding/json; optional fields
// are omitted rather than emitted as null, and unknown fields are ignored
// on decode so the wire format can grow additively.
package protocol

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActionKind selects how a command's tool_args are interpreted.
type ActionKind string

const (
	// ActionTool dispatches to a named tool in the registry. JSON that
	// omits "action" entirely decodes to it (see UnmarshalJSON).
	ActionTool ActionKind = "tool"
	// ActionShell runs the command held in tool_name through the safe
	// shell executor.
	ActionShell ActionKind = "shell"
	// ActionReply emits tool_args.message back as a response with no
	// device-side side effect.
	ActionReply ActionKind = "reply"
)

// CommandStatus is the lifecycle state of a dispatched command.
type CommandStatus string

const (
	StatusPending    CommandStatus = "pending"
	StatusSent       CommandStatus = "sent"
	StatusProcessing CommandStatus = "processing"
	StatusCompleted  CommandStatus = "completed"
	StatusFailed     CommandStatus = "failed"
	StatusTimeout    CommandStatus = "timeout"
	StatusCancelled  CommandStatus = "cancelled"
)

// InferenceTier records which stage of the inference chain resolved a
// natural-language command.
type InferenceTier string

const (
	// TierLocal is the local substring/regex rule engine.
	TierLocal InferenceTier = "local"
	// TierOllama is the on-device LLM tier, tried before escalating off
	// the vehicle.
	TierOllama InferenceTier = "ollama"
	// TierCloudLite is the cheapest cloud LLM tier.
	TierCloudLite InferenceTier = "cloud_lite"
	// TierCloudHaiku is a mid cloud LLM tier.
	TierCloudHaiku InferenceTier = "cloud_haiku"
	// TierCloudSonnet is the escalation-only cloud LLM tier for commands
	// the cheaper tiers could not confidently resolve.
	TierCloudSonnet InferenceTier = "cloud_sonnet"
)

// ParsedIntent is the output of the inference chain: a tool to invoke (or
// shell command, or reply) plus the confidence the engine that produced it
// assigned. Decoding a ParsedIntent whose "action" field is absent defaults
// Action to ActionTool for backward compatibility with earlier envelopes.
type ParsedIntent struct {
	Action     ActionKind     `json:"action,omitempty"`
	ToolName   string         `json:"tool_name,omitempty"`
	ToolArgs   map[string]any `json:"tool_args,omitempty"`
	Confidence float64        `json:"confidence"`
}

// UnmarshalJSON defaults Action to ActionTool when the field is absent,
// matching older wire producers that predate the Shell/Reply actions.
func (p *ParsedIntent) UnmarshalJSON(data []byte) error {
	type alias ParsedIntent
	aux := struct{ *alias }{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if p.Action == "" {
		p.Action = ActionTool
	}
	return nil
}

// CommandEnvelope is the full command message published to a device's
// command/request topic. ID and CorrelationID are set equal at
// construction and must never diverge as the command travels end to end.
type CommandEnvelope struct {
	ID            uuid.UUID      `json:"id"`
	CorrelationID uuid.UUID      `json:"correlation_id"`
	DeviceID      string         `json:"device_id"`
	Text          string         `json:"text,omitempty"`
	ParsedIntent  *ParsedIntent  `json:"parsed_intent,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// NewCommandEnvelope constructs an envelope with a fresh time-ordered
// (UUIDv7) ID, setting CorrelationID equal to ID.
func NewCommandEnvelope(deviceID, text string) CommandEnvelope {
	id := newUUIDv7()
	return CommandEnvelope{
		ID:            id,
		CorrelationID: id,
		DeviceID:      deviceID,
		Text:          text,
		CreatedAt:     time.Now().UTC(),
	}
}

// CommandResponse is the message a device publishes back on its
// command/response topic once a command finishes executing (or fails).
// Exactly one of (ResponseData or ResponseText) or Error carries
// meaningful content; the rest are the zero value.
type CommandResponse struct {
	ID            uuid.UUID      `json:"id"`
	CorrelationID uuid.UUID      `json:"correlation_id"`
	DeviceID      string         `json:"device_id"`
	Status        CommandStatus  `json:"status"`
	Tier          InferenceTier  `json:"tier,omitempty"`
	ResponseData  map[string]any `json:"response_data,omitempty"`
	ResponseText  string         `json:"response_text,omitempty"`
	Error         string         `json:"error,omitempty"`
	LatencyMs     int64          `json:"latency_ms,omitempty"`
	CompletedAt   time.Time      `json:"completed_at"`
}

func newUUIDv7() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		// uuid.NewV7 only fails if the system clock/rand source is
		// broken; fall back to a random v4 rather than propagating a
		// constructor error through every call site.
		return uuid.New()
	}
	return id
}
