package inference

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeroclaw-io/fleetdiag/internal/protocol"
	"github.com/zeroclaw-io/fleetdiag/internal/tools"
)

func TestRuleEngine_MatchesReadDTCs(t *testing.T) {
	e := NewRuleEngine()
	intent, err := e.Parse(context.Background(), "check for any DTC codes", nil)
	require.NoError(t, err)
	require.NotNil(t, intent)
	require.Equal(t, "read_dtcs", intent.ToolName)
	require.Equal(t, ruleConfidenceHigh, intent.Confidence)
}

func TestRuleEngine_MatchesReadPidWithHexPID(t *testing.T) {
	e := NewRuleEngine()
	intent, err := e.Parse(context.Background(), "read pid 0x0C right now", nil)
	require.NoError(t, err)
	require.NotNil(t, intent)
	require.Equal(t, "read_pid", intent.ToolName)
	require.Equal(t, 12, intent.ToolArgs["pid"])
}

func TestRuleEngine_MatchesSearchLogsWithExplicitQuery(t *testing.T) {
	e := NewRuleEngine()
	intent, err := e.Parse(context.Background(), "search logs for disk full", nil)
	require.NoError(t, err)
	require.NotNil(t, intent)
	require.Equal(t, "search_logs", intent.ToolName)
	require.Equal(t, "disk full", intent.ToolArgs["query"])
	require.Equal(t, ruleConfidenceHigh, intent.Confidence)
}

func TestRuleEngine_SearchLogsWithoutQueryDefaultsAndLowersConfidence(t *testing.T) {
	e := NewRuleEngine()
	intent, err := e.Parse(context.Background(), "search logs please", nil)
	require.NoError(t, err)
	require.NotNil(t, intent)
	require.Equal(t, "error", intent.ToolArgs["query"])
	require.Equal(t, ruleConfidenceDefault, intent.Confidence)
}

func TestRuleEngine_NoMatchReturnsNil(t *testing.T) {
	e := NewRuleEngine()
	intent, err := e.Parse(context.Background(), "what's the weather like today", nil)
	require.NoError(t, err)
	require.Nil(t, intent)
}

type fakeEngine struct {
	intent *protocol.ParsedIntent
	err    error
}

func (f fakeEngine) Parse(ctx context.Context, text string, catalog []tools.Info) (*protocol.ParsedIntent, error) {
	return f.intent, f.err
}

func TestChain_FirstNonNilWins(t *testing.T) {
	chain := NewChain(
		TieredEngine{Tier: protocol.TierLocal, Engine: fakeEngine{intent: nil}},
		TieredEngine{Tier: protocol.TierCloudHaiku, Engine: fakeEngine{intent: &protocol.ParsedIntent{ToolName: "read_vin", Confidence: 0.9}}},
		TieredEngine{Tier: protocol.TierCloudSonnet, Engine: fakeEngine{intent: &protocol.ParsedIntent{ToolName: "should_not_win"}}},
	)
	intent, tier, err := chain.Resolve(context.Background(), "what's my VIN", nil)
	require.NoError(t, err)
	require.Equal(t, protocol.TierCloudHaiku, tier)
	require.Equal(t, "read_vin", intent.ToolName)
}

func TestChain_AllDeclineReturnsNil(t *testing.T) {
	chain := NewChain(
		TieredEngine{Tier: protocol.TierLocal, Engine: fakeEngine{intent: nil}},
		TieredEngine{Tier: protocol.TierCloudHaiku, Engine: fakeEngine{intent: nil}},
	)
	intent, tier, err := chain.Resolve(context.Background(), "huh", nil)
	require.NoError(t, err)
	require.Nil(t, intent)
	require.Equal(t, protocol.InferenceTier(""), tier)
}

func TestValidateToolOnlyIntent_RejectsLowConfidence(t *testing.T) {
	catalog := []tools.Info{{Name: "read_vin"}}
	intent := validateToolOnlyIntent(llmIntent{ToolName: "read_vin", Confidence: 0.1}, catalog)
	require.Nil(t, intent)
}

func TestValidateToolOnlyIntent_RejectsUnknownTool(t *testing.T) {
	catalog := []tools.Info{{Name: "read_vin"}}
	intent := validateToolOnlyIntent(llmIntent{ToolName: "not_a_tool", Confidence: 0.9}, catalog)
	require.Nil(t, intent)
}

func TestStripCodeFence_RemovesJSONFence(t *testing.T) {
	require.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	require.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	require.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}
