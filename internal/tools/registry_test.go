package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeroclaw-io/fleetdiag/internal/logs"
	"github.com/zeroclaw-io/fleetdiag/internal/obd"
)

func newTestRegistry() *Registry {
	bus := obd.NewMockBus(0x7E8)
	bus.SetVIN("1HGCM82633A004352")
	bus.SetPID(0x0C, []byte{0x36, 0xB0})
	bus.SetDTCs([][2]byte{{0x03, 0x00}})

	r := New()
	RegisterCanTools(r, obd.NewEngine(bus))
	RegisterLogTools(r, logs.MockSource{Data: []string{
		`{"timestamp":"2026-01-01T00:00:00Z","level":"error","message":"disk full on /var"}`,
		`{"timestamp":"2026-01-01T00:00:01Z","level":"info","message":"heartbeat ok"}`,
	}})
	return r
}

func TestRegistry_ListIncludesAllNineRegisteredTools(t *testing.T) {
	r := newTestRegistry()
	require.Equal(t, 9, r.Len()) // 5 CAN tools + 4 Source-backed log tools; query_journal registered separately

	names := map[string]bool{}
	for _, info := range r.List() {
		names[info.Name] = true
	}
	for _, want := range []string{"read_dtcs", "read_vin", "read_freeze", "read_pid", "can_monitor",
		"search_logs", "analyze_errors", "log_stats", "tail_logs"} {
		require.True(t, names[want], "expected tool %q in catalog", want)
	}
}

func TestRegistry_Execute_ReadPID(t *testing.T) {
	r := newTestRegistry()
	result := r.Execute(context.Background(), "read_pid", map[string]any{"pid": 0x0C})
	require.True(t, result.Success)
	require.InDelta(t, 3500.0, result.Data["value"], 0.001)
}

func TestRegistry_Execute_UnknownToolReturnsFailureNotError(t *testing.T) {
	r := newTestRegistry()
	result := r.Execute(context.Background(), "does_not_exist", nil)
	require.False(t, result.Success)
	require.Contains(t, result.Error, "unknown tool")
}

func TestRegistry_Execute_SearchLogs(t *testing.T) {
	r := newTestRegistry()
	result := r.Execute(context.Background(), "search_logs", map[string]any{"query": "disk full"})
	require.True(t, result.Success)
	require.Equal(t, 1, result.Data["count"])
}

type fakeShellRunner struct {
	stdout   string
	exitCode int
}

func (f fakeShellRunner) Run(ctx context.Context, command string) (string, int, error) {
	return f.stdout, f.exitCode, nil
}

func TestRegistry_Execute_QueryJournal(t *testing.T) {
	r := newTestRegistry()
	RegisterQueryJournalTool(r, fakeShellRunner{stdout: "-- journal begin --", exitCode: 0})

	result := r.Execute(context.Background(), "query_journal", map[string]any{"lines": 10})
	require.True(t, result.Success)
	require.Equal(t, "-- journal begin --", result.Data["output"])
}
