package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCommandEnvelope_IDEqualsCorrelationID(t *testing.T) {
	env := NewCommandEnvelope("device-1", "read the dtcs")
	require.Equal(t, env.ID, env.CorrelationID)
	require.NotEqual(t, env.ID.String(), "")
}

func TestParsedIntent_DefaultsActionToTool(t *testing.T) {
	var p ParsedIntent
	require.NoError(t, json.Unmarshal([]byte(`{"tool_name":"read_dtcs","confidence":0.95}`), &p))
	require.Equal(t, ActionTool, p.Action)
	require.Equal(t, "read_dtcs", p.ToolName)
}

func TestParsedIntent_PreservesExplicitAction(t *testing.T) {
	var p ParsedIntent
	require.NoError(t, json.Unmarshal([]byte(`{"action":"shell","tool_args":{"command":"uptime"},"confidence":0.9}`), &p))
	require.Equal(t, ActionShell, p.Action)
}

func TestCommandResponse_RoundTrip(t *testing.T) {
	env := NewCommandEnvelope("device-1", "read vin")
	resp := CommandResponse{
		ID:            env.ID,
		CorrelationID: env.CorrelationID,
		DeviceID:      env.DeviceID,
		Status:        StatusCompleted,
		Tier:          TierLocal,
		ResponseText:  "1HGCM82633A004352",
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var round CommandResponse
	require.NoError(t, json.Unmarshal(data, &round))
	require.Equal(t, resp.ID, round.ID)
	require.Equal(t, resp.CorrelationID, round.CorrelationID)
	require.Equal(t, resp.ResponseText, round.ResponseText)
	require.Equal(t, env.ID, round.CorrelationID, "correlation id must be preserved end to end")
}
