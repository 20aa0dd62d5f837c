// Package executor implements the command executor: it turns a
// CommandEnvelope into exactly one terminal CommandResponse, by
// inference fallback when no parsed intent is attached, then dispatch by
// action kind. Every error path here becomes a Failed response; nothing
// in this package panics or returns a bare Go error to its caller.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/zeroclaw-io/fleetdiag/internal/inference"
	"github.com/zeroclaw-io/fleetdiag/internal/protocol"
	"github.com/zeroclaw-io/fleetdiag/internal/shell"
	"github.com/zeroclaw-io/fleetdiag/internal/tools"
	"github.com/zeroclaw-io/fleetdiag/pkg/metrics"
)

// Executor dispatches a CommandEnvelope to the tool registry, the shell
// executor, or a direct reply, falling back to the inference chain when
// the envelope arrives without a parsed intent.
type Executor struct {
	Registry  *tools.Registry
	Shell     *shell.Executor
	Inference *inference.Chain
}

// New creates an Executor. inferenceChain may be nil if this deployment
// runs with no inference tiers configured (every envelope must then
// already carry a parsed intent).
func New(registry *tools.Registry, shellExecutor *shell.Executor, inferenceChain *inference.Chain) *Executor {
	return &Executor{Registry: registry, Shell: shellExecutor, Inference: inferenceChain}
}

// Execute runs env to completion and returns its terminal response. It
// never returns a Go error — every failure mode is folded into a Failed
// CommandResponse so a caller never needs a second failure path.
func (ex *Executor) Execute(ctx context.Context, env protocol.CommandEnvelope) protocol.CommandResponse {
	start := time.Now()

	intent, tier, err := ex.resolveIntent(ctx, env)
	if err != nil {
		return ex.fail(env, start, "", err)
	}

	var resp protocol.CommandResponse
	switch intent.Action {
	case protocol.ActionTool:
		resp = ex.runTool(ctx, env, intent)
	case protocol.ActionShell:
		resp = ex.runShell(ctx, env, intent)
	case protocol.ActionReply:
		resp = ex.runReply(env, intent)
	default:
		resp = failedResponse(env, fmt.Errorf("unknown action %q", intent.Action))
	}

	resp.Tier = tier
	resp.LatencyMs = time.Since(start).Milliseconds()
	resp.CompletedAt = time.Now().UTC()
	ex.recordMetrics(string(intent.Action), tier, resp)
	return resp
}

func (ex *Executor) recordMetrics(action string, tier protocol.InferenceTier, resp protocol.CommandResponse) {
	metrics.CommandsTotal.WithLabelValues(action, string(resp.Status)).Inc()
	metrics.CommandLatencySeconds.WithLabelValues(action).Observe(float64(resp.LatencyMs) / 1000)
	if tier != "" {
		metrics.InferenceTierHits.WithLabelValues(string(tier)).Inc()
	}
}

// resolveIntent returns env's own parsed intent if present, otherwise
// runs the inference chain. It returns an error only when neither is
// available — there is then genuinely nothing to dispatch.
func (ex *Executor) resolveIntent(ctx context.Context, env protocol.CommandEnvelope) (*protocol.ParsedIntent, protocol.InferenceTier, error) {
	if env.ParsedIntent != nil {
		return env.ParsedIntent, "", nil
	}
	if ex.Inference == nil {
		return nil, "", fmt.Errorf("no parsed intent")
	}

	var catalog []tools.Info
	if ex.Registry != nil {
		catalog = ex.Registry.List()
	}
	intent, tier, err := ex.Inference.Resolve(ctx, env.Text, catalog)
	if err != nil || intent == nil {
		return nil, "", fmt.Errorf("no parsed intent")
	}
	return intent, tier, nil
}

func (ex *Executor) runTool(ctx context.Context, env protocol.CommandEnvelope, intent *protocol.ParsedIntent) protocol.CommandResponse {
	if ex.Registry == nil {
		return failedResponse(env, fmt.Errorf("unknown tool: %s", intent.ToolName))
	}
	if _, _, ok := ex.Registry.Lookup(intent.ToolName); !ok {
		return failedResponse(env, fmt.Errorf("unknown tool: %s", intent.ToolName))
	}

	result := ex.Registry.Execute(ctx, intent.ToolName, intent.ToolArgs)
	if !result.Success {
		return failedResponse(env, fmt.Errorf("%s", result.Error))
	}
	return protocol.CommandResponse{
		ID:            env.ID,
		CorrelationID: env.CorrelationID,
		DeviceID:      env.DeviceID,
		Status:        protocol.StatusCompleted,
		ResponseData:  result.Data,
	}
}

func (ex *Executor) runShell(ctx context.Context, env protocol.CommandEnvelope, intent *protocol.ParsedIntent) protocol.CommandResponse {
	if ex.Shell == nil {
		return failedResponse(env, fmt.Errorf("shell executor not configured"))
	}
	result, err := ex.Shell.Run(ctx, intent.ToolName)
	if err != nil {
		return failedResponse(env, err)
	}
	return protocol.CommandResponse{
		ID:            env.ID,
		CorrelationID: env.CorrelationID,
		DeviceID:      env.DeviceID,
		Status:        protocol.StatusCompleted,
		ResponseData: map[string]any{
			"stdout":    result.Stdout,
			"exit_code": result.ExitCode,
			"truncated": result.Truncated,
		},
	}
}

func (ex *Executor) runReply(env protocol.CommandEnvelope, intent *protocol.ParsedIntent) protocol.CommandResponse {
	message, _ := intent.ToolArgs["message"].(string)
	return protocol.CommandResponse{
		ID:            env.ID,
		CorrelationID: env.CorrelationID,
		DeviceID:      env.DeviceID,
		Status:        protocol.StatusCompleted,
		ResponseText:  message,
	}
}

func (ex *Executor) fail(env protocol.CommandEnvelope, start time.Time, tier protocol.InferenceTier, err error) protocol.CommandResponse {
	resp := failedResponse(env, err)
	resp.Tier = tier
	resp.LatencyMs = time.Since(start).Milliseconds()
	resp.CompletedAt = time.Now().UTC()
	ex.recordMetrics("unresolved", tier, resp)
	return resp
}

func failedResponse(env protocol.CommandEnvelope, err error) protocol.CommandResponse {
	return protocol.CommandResponse{
		ID:            env.ID,
		CorrelationID: env.CorrelationID,
		DeviceID:      env.DeviceID,
		Status:        protocol.StatusFailed,
		Error:         err.Error(),
	}
}
