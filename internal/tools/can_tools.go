package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/zeroclaw-io/fleetdiag/internal/obd"
)

// readDtcsTool implements "read_dtcs".
type readDtcsTool struct{ engine *obd.Engine }

func (t *readDtcsTool) Name() string        { return "read_dtcs" }
func (t *readDtcsTool) Description() string { return "Read stored diagnostic trouble codes from the vehicle's ECU." }
func (t *readDtcsTool) ParametersSchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
func (t *readDtcsTool) Execute(ctx context.Context, args map[string]any) Result {
	codes, err := t.engine.ReadDTCs(ctx)
	if err != nil {
		return FailureResult(err)
	}
	out := make([]map[string]any, 0, len(codes))
	for _, c := range codes {
		out = append(out, map[string]any{"code": c.Code, "category": string(c.Category)})
	}
	return SuccessResult(map[string]any{"dtcs": out})
}

// readVinTool implements "read_vin".
type readVinTool struct{ engine *obd.Engine }

func (t *readVinTool) Name() string        { return "read_vin" }
func (t *readVinTool) Description() string { return "Read the vehicle identification number (VIN)." }
func (t *readVinTool) ParametersSchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
func (t *readVinTool) Execute(ctx context.Context, args map[string]any) Result {
	vin, err := t.engine.ReadVIN(ctx)
	if err != nil {
		return FailureResult(err)
	}
	return SuccessResult(map[string]any{"vin": vin})
}

// readFreezeTool implements "read_freeze".
type readFreezeTool struct{ engine *obd.Engine }

func (t *readFreezeTool) Name() string        { return "read_freeze" }
func (t *readFreezeTool) Description() string {
	return "Read the freeze-frame snapshot captured when a DTC was set, for a given PID."
}
func (t *readFreezeTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pid": map[string]any{"type": "integer", "description": "PID byte, e.g. 12 for RPM"},
		},
		"required": []string{"pid"},
	}
}
func (t *readFreezeTool) Execute(ctx context.Context, args map[string]any) Result {
	pid, err := intArg(args, "pid")
	if err != nil {
		return FailureResult(err)
	}
	v, err := t.engine.ReadFreezeFrame(ctx, byte(pid))
	if err != nil {
		return FailureResult(err)
	}
	return SuccessResult(map[string]any{"pid": v.PID, "name": v.Name, "value": v.Value, "unit": v.Unit})
}

// readPidTool implements "read_pid".
type readPidTool struct{ engine *obd.Engine }

func (t *readPidTool) Name() string        { return "read_pid" }
func (t *readPidTool) Description() string { return "Read a live OBD-II PID value, e.g. RPM or coolant temperature." }
func (t *readPidTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pid": map[string]any{"type": "integer", "description": "PID byte, e.g. 12 for RPM"},
		},
		"required": []string{"pid"},
	}
}
func (t *readPidTool) Execute(ctx context.Context, args map[string]any) Result {
	pid, err := intArg(args, "pid")
	if err != nil {
		return FailureResult(err)
	}
	v, err := t.engine.ReadPID(ctx, byte(pid))
	if err != nil {
		return FailureResult(err)
	}
	return SuccessResult(map[string]any{"pid": v.PID, "name": v.Name, "value": v.Value, "unit": v.Unit})
}

// canMonitorTool implements "can_monitor": a bounded-duration passive sniff.
type canMonitorTool struct{ engine *obd.Engine }

func (t *canMonitorTool) Name() string        { return "can_monitor" }
func (t *canMonitorTool) Description() string { return "Passively observe raw CAN-bus traffic for a bounded duration." }
func (t *canMonitorTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"duration_seconds": map[string]any{"type": "integer", "description": "How long to observe, in seconds (default 5, max 30)"},
		},
	}
}
func (t *canMonitorTool) Execute(ctx context.Context, args map[string]any) Result {
	dur := 5 * time.Second
	if raw, err := intArg(args, "duration_seconds"); err == nil {
		if raw > 30 {
			raw = 30
		}
		if raw > 0 {
			dur = time.Duration(raw) * time.Second
		}
	}

	frames, err := t.engine.Monitor(ctx, dur)
	if err != nil {
		return FailureResult(err)
	}
	out := make([]map[string]any, 0, len(frames))
	for _, f := range frames {
		out = append(out, map[string]any{"id": f.ID, "data": f.Data})
	}
	return SuccessResult(map[string]any{"frames": out, "count": len(out)})
}

func intArg(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("tools: missing required argument %q", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("tools: argument %q must be a number", key)
	}
}

// RegisterCanTools adds the five standard CAN-bus tools, backed by engine,
// to r.
func RegisterCanTools(r *Registry, engine *obd.Engine) {
	r.RegisterCanTool(&readDtcsTool{engine: engine})
	r.RegisterCanTool(&readVinTool{engine: engine})
	r.RegisterCanTool(&readFreezeTool{engine: engine})
	r.RegisterCanTool(&readPidTool{engine: engine})
	r.RegisterCanTool(&canMonitorTool{engine: engine})
}
