// Package tools implements the flat tool registry dispatched by the
// command executor: five CAN-bus tools built on the ISO-TP/OBD-II engine,
// four log tools built on the log parser bank, and query_journal, which
// runs journalctl through the safe shell executor.
package tools

import "context"

// Kind distinguishes which backing vector a registered tool lives in.
type Kind string

const (
	KindCanBus Kind = "canbus"
	KindLog    Kind = "log"
)

// Result is the outcome of a single tool execution. The registry never
// fabricates a successful Result: success always comes from the tool's
// own Execute, and the only Result the registry builds itself is the
// failure for an unknown tool name.
type Result struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// SuccessResult builds a successful Result.
func SuccessResult(data map[string]any) Result {
	return Result{Success: true, Data: data}
}

// FailureResult builds a failed Result.
func FailureResult(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

// Tool is a single named, schema-describing, executable operation.
type Tool interface {
	Name() string
	Description() string
	ParametersSchema() map[string]any
	Execute(ctx context.Context, args map[string]any) Result
}

// Info is the read-only catalog entry the inference chain's system prompt
// and a "list tools" surface both consume.
type Info struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Kind        Kind           `json:"kind"`
	Schema      map[string]any `json:"schema"`
}
