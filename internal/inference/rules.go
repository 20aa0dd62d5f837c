package inference

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/zeroclaw-io/fleetdiag/internal/protocol"
	"github.com/zeroclaw-io/fleetdiag/internal/tools"
)

// confidence tiers for rule-engine matches. A match with every argument
// explicit gets the high constant; a match that had to default a missing
// secondary argument (e.g. no explicit search query) gets the reduced one.
const (
	ruleConfidenceHigh    = 0.9
	ruleConfidenceDefault = 0.75
)

var (
	hexPidRe     = regexp.MustCompile(`(?i)\b0x([0-9a-f]{1,2})\b`)
	decimalPidRe = regexp.MustCompile(`\bpid\s+(\d{1,3})\b`)
	durationRe   = regexp.MustCompile(`(?i)\b(\d+)\s*(?:s|sec|secs|seconds)\b`)
	searchRe     = regexp.MustCompile(`(?i)(?:search logs for|grep logs)\s+(.+)$`)
	unitRe       = regexp.MustCompile(`(?i)(?:journal for|journalctl|service logs for)\s+([a-z0-9@_.\-]+)`)
	lineCountRe  = regexp.MustCompile(`\b(\d{1,5})\s*lines?\b`)
)

// RuleEngine matches free text against a static substring/pattern table,
// case-insensitively. It never calls out to anything and never fails.
type RuleEngine struct{}

// NewRuleEngine creates a RuleEngine.
func NewRuleEngine() *RuleEngine { return &RuleEngine{} }

func (e *RuleEngine) Parse(ctx context.Context, text string, catalog []tools.Info) (*protocol.ParsedIntent, error) {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "dtc") || strings.Contains(lower, "trouble code") || strings.Contains(lower, "fault code"):
		return toolIntent("read_dtcs", nil, ruleConfidenceHigh), nil

	case strings.Contains(lower, "vin") || strings.Contains(lower, "vehicle identification"):
		return toolIntent("read_vin", nil, ruleConfidenceHigh), nil

	case strings.Contains(lower, "freeze frame") || strings.Contains(lower, "freeze-frame"):
		if pid, ok := extractPID(lower); ok {
			return toolIntent("read_freeze", map[string]any{"pid": pid}, ruleConfidenceHigh), nil
		}
		return toolIntent("read_freeze", nil, ruleConfidenceDefault), nil

	case strings.Contains(lower, "rpm"):
		return toolIntent("read_pid", map[string]any{"pid": 0x0C}, ruleConfidenceHigh), nil
	case strings.Contains(lower, "coolant") || strings.Contains(lower, "engine temp"):
		return toolIntent("read_pid", map[string]any{"pid": 0x05}, ruleConfidenceHigh), nil
	case strings.Contains(lower, "vehicle speed") || strings.Contains(lower, "road speed"):
		return toolIntent("read_pid", map[string]any{"pid": 0x0D}, ruleConfidenceHigh), nil
	case strings.Contains(lower, "pid"):
		if pid, ok := extractPID(lower); ok {
			return toolIntent("read_pid", map[string]any{"pid": pid}, ruleConfidenceHigh), nil
		}

	case strings.Contains(lower, "monitor") && (strings.Contains(lower, "can") || strings.Contains(lower, "bus")):
		dur, ok := extractDuration(lower)
		if !ok {
			dur = 5
			return toolIntent("can_monitor", map[string]any{"duration_seconds": dur}, ruleConfidenceDefault), nil
		}
		return toolIntent("can_monitor", map[string]any{"duration_seconds": dur}, ruleConfidenceHigh), nil

	case strings.Contains(lower, "search log") || strings.Contains(lower, "grep log"):
		if q, ok := extractQuery(text); ok {
			return toolIntent("search_logs", map[string]any{"query": q}, ruleConfidenceHigh), nil
		}
		return toolIntent("search_logs", map[string]any{"query": "error"}, ruleConfidenceDefault), nil

	case strings.Contains(lower, "analyze") && strings.Contains(lower, "error"):
		return toolIntent("analyze_errors", nil, ruleConfidenceHigh), nil

	case strings.Contains(lower, "log stat") || strings.Contains(lower, "log summary"):
		return toolIntent("log_stats", nil, ruleConfidenceHigh), nil

	case strings.Contains(lower, "tail log") || strings.Contains(lower, "recent log"):
		if n, ok := extractLineCount(lower); ok {
			return toolIntent("tail_logs", map[string]any{"lines": n}, ruleConfidenceHigh), nil
		}
		return toolIntent("tail_logs", map[string]any{"lines": 20}, ruleConfidenceDefault), nil

	case strings.Contains(lower, "journal"):
		if unit, ok := extractUnit(text); ok {
			return toolIntent("query_journal", map[string]any{"unit": unit}, ruleConfidenceHigh), nil
		}
		return toolIntent("query_journal", nil, ruleConfidenceDefault), nil
	}

	return nil, nil
}

func toolIntent(name string, args map[string]any, confidence float64) *protocol.ParsedIntent {
	return &protocol.ParsedIntent{
		Action:     protocol.ActionTool,
		ToolName:   name,
		ToolArgs:   args,
		Confidence: confidence,
	}
}

func extractPID(lower string) (int, bool) {
	if m := hexPidRe.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.ParseInt(m[1], 16, 32); err == nil {
			return int(n), true
		}
	}
	if m := decimalPidRe.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	return 0, false
}

func extractDuration(lower string) (int, bool) {
	m := durationRe.FindStringSubmatch(lower)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func extractQuery(text string) (string, bool) {
	m := searchRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	q := strings.TrimSpace(m[1])
	if q == "" {
		return "", false
	}
	return q, true
}

func extractUnit(text string) (string, bool) {
	m := unitRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// extractLineCount parses a bounded [1, 10000] line count.
func extractLineCount(lower string) (int, bool) {
	m := lineCountRe.FindStringSubmatch(lower)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > 10000 {
		return 0, false
	}
	return n, true
}
