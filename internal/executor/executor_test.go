package executor

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/zeroclaw-io/fleetdiag/internal/inference"
	"github.com/zeroclaw-io/fleetdiag/internal/logs"
	"github.com/zeroclaw-io/fleetdiag/internal/obd"
	"github.com/zeroclaw-io/fleetdiag/internal/protocol"
	"github.com/zeroclaw-io/fleetdiag/internal/shell"
	"github.com/zeroclaw-io/fleetdiag/internal/tools"
)

func newTestExecutor() *Executor {
	bus := obd.NewMockBus(0x7E8)
	bus.SetVIN("1HGCM82633A004352")

	registry := tools.New()
	tools.RegisterCanTools(registry, obd.NewEngine(bus))
	tools.RegisterLogTools(registry, logs.MockSource{Data: []string{
		`{"timestamp":"2026-01-01T00:00:00Z","level":"info","message":"ok"}`,
	}})

	chain := inference.NewChain(inference.TieredEngine{Tier: protocol.TierLocal, Engine: inference.NewRuleEngine()})
	return New(registry, shell.NewExecutor(), chain)
}

func TestExecute_PreservesIDsAndCorrelationID(t *testing.T) {
	ex := newTestExecutor()
	env := protocol.NewCommandEnvelope("device-1", "read my VIN")
	resp := ex.Execute(context.Background(), env)

	require.Equal(t, env.ID, resp.ID)
	require.Equal(t, env.CorrelationID, resp.CorrelationID)
	require.Equal(t, env.DeviceID, resp.DeviceID)
}

func TestExecute_ToolDispatchSucceeds(t *testing.T) {
	ex := newTestExecutor()
	env := protocol.NewCommandEnvelope("device-1", "what's my VIN")
	resp := ex.Execute(context.Background(), env)

	require.Equal(t, protocol.StatusCompleted, resp.Status)
	require.Equal(t, "1HGCM82633A004352", resp.ResponseData["vin"])
}

func TestExecute_UnknownToolFails(t *testing.T) {
	ex := newTestExecutor()
	env := protocol.CommandEnvelope{
		ID: uuid.New(), CorrelationID: uuid.New(), DeviceID: "device-1",
		ParsedIntent: &protocol.ParsedIntent{Action: protocol.ActionTool, ToolName: "does_not_exist", Confidence: 1},
	}
	resp := ex.Execute(context.Background(), env)
	require.Equal(t, protocol.StatusFailed, resp.Status)
	require.Contains(t, resp.Error, "unknown tool")
}

func TestExecute_NoParsedIntentAndNoInferenceMatchFails(t *testing.T) {
	ex := newTestExecutor()
	env := protocol.NewCommandEnvelope("device-1", "what's the meaning of life")
	resp := ex.Execute(context.Background(), env)
	require.Equal(t, protocol.StatusFailed, resp.Status)
}

func TestExecute_ReplyAction(t *testing.T) {
	ex := newTestExecutor()
	env := protocol.CommandEnvelope{
		ID: uuid.New(), CorrelationID: uuid.New(), DeviceID: "device-1",
		ParsedIntent: &protocol.ParsedIntent{Action: protocol.ActionReply, ToolArgs: map[string]any{"message": "all good"}, Confidence: 1},
	}
	resp := ex.Execute(context.Background(), env)
	require.Equal(t, protocol.StatusCompleted, resp.Status)
	require.Equal(t, "all good", resp.ResponseText)
}

func TestExecute_ShellActionValidationFailureIsFailedNotPanic(t *testing.T) {
	ex := newTestExecutor()
	env := protocol.CommandEnvelope{
		ID: uuid.New(), CorrelationID: uuid.New(), DeviceID: "device-1",
		ParsedIntent: &protocol.ParsedIntent{Action: protocol.ActionShell, ToolName: "rm -rf /", Confidence: 1},
	}
	require.NotPanics(t, func() {
		resp := ex.Execute(context.Background(), env)
		require.Equal(t, protocol.StatusFailed, resp.Status)
	})
}
