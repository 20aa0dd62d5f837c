package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/zeroclaw-io/fleetdiag/internal/logs"
)

// ShellRunner is the narrow capability query_journal needs from the safe
// shell executor, kept as a small interface here so this package doesn't
// have to import the executor package directly.
type ShellRunner interface {
	Run(ctx context.Context, command string) (stdout string, exitCode int, err error)
}

func decodeEntries(ctx context.Context, src logs.Source) ([]logs.Entry, error) {
	lines, err := src.Lines(ctx)
	if err != nil {
		return nil, err
	}
	format := logs.DetectFormat(lines)
	return logs.ParseLines(lines, format), nil
}

// searchLogsTool implements "search_logs".
type searchLogsTool struct{ src logs.Source }

func (t *searchLogsTool) Name() string        { return "search_logs" }
func (t *searchLogsTool) Description() string { return "Search the device's logs for lines containing a substring." }
func (t *searchLogsTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "Substring to search for, case-insensitive"},
			"limit": map[string]any{"type": "integer", "description": "Maximum number of matches to return (default 50)"},
		},
		"required": []string{"query"},
	}
}
func (t *searchLogsTool) Execute(ctx context.Context, args map[string]any) Result {
	query, _ := args["query"].(string)
	if query == "" {
		return FailureResult(fmt.Errorf("tools: search_logs requires a non-empty query"))
	}
	limit := 50
	if n, err := intArg(args, "limit"); err == nil && n > 0 {
		limit = n
	}

	entries, err := decodeEntries(ctx, t.src)
	if err != nil {
		return FailureResult(err)
	}

	needle := strings.ToLower(query)
	matches := make([]map[string]any, 0, limit)
	for _, e := range entries {
		if !strings.Contains(strings.ToLower(e.Message), needle) {
			continue
		}
		matches = append(matches, entryToMap(e))
		if len(matches) >= limit {
			break
		}
	}
	return SuccessResult(map[string]any{"matches": matches, "count": len(matches)})
}

// analyzeErrorsTool implements "analyze_errors".
type analyzeErrorsTool struct{ src logs.Source }

func (t *analyzeErrorsTool) Name() string        { return "analyze_errors" }
func (t *analyzeErrorsTool) Description() string {
	return "Summarize error- and critical-severity log entries from the device's logs."
}
func (t *analyzeErrorsTool) ParametersSchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
func (t *analyzeErrorsTool) Execute(ctx context.Context, args map[string]any) Result {
	entries, err := decodeEntries(ctx, t.src)
	if err != nil {
		return FailureResult(err)
	}

	var errs []map[string]any
	for _, e := range entries {
		if e.Severity == logs.SeverityError || e.Severity == logs.SeverityCritical {
			errs = append(errs, entryToMap(e))
		}
	}
	return SuccessResult(map[string]any{"errors": errs, "count": len(errs)})
}

// logStatsTool implements "log_stats".
type logStatsTool struct{ src logs.Source }

func (t *logStatsTool) Name() string        { return "log_stats" }
func (t *logStatsTool) Description() string { return "Report a severity-level breakdown of the device's logs." }
func (t *logStatsTool) ParametersSchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
func (t *logStatsTool) Execute(ctx context.Context, args map[string]any) Result {
	entries, err := decodeEntries(ctx, t.src)
	if err != nil {
		return FailureResult(err)
	}

	counts := map[string]int{}
	for _, e := range entries {
		counts[string(e.Severity)]++
	}
	return SuccessResult(map[string]any{"total": len(entries), "by_severity": counts})
}

// tailLogsTool implements "tail_logs".
type tailLogsTool struct{ src logs.Source }

func (t *tailLogsTool) Name() string        { return "tail_logs" }
func (t *tailLogsTool) Description() string { return "Return the most recent N entries from the device's logs." }
func (t *tailLogsTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"lines": map[string]any{"type": "integer", "description": "Number of most recent entries to return (default 20)"},
		},
	}
}
func (t *tailLogsTool) Execute(ctx context.Context, args map[string]any) Result {
	n := 20
	if v, err := intArg(args, "lines"); err == nil && v > 0 {
		n = v
	}

	entries, err := decodeEntries(ctx, t.src)
	if err != nil {
		return FailureResult(err)
	}
	if n > len(entries) {
		n = len(entries)
	}
	tail := entries[len(entries)-n:]

	out := make([]map[string]any, 0, len(tail))
	for _, e := range tail {
		out = append(out, entryToMap(e))
	}
	return SuccessResult(map[string]any{"entries": out})
}

// queryJournalTool implements "query_journal": the one log tool that shells
// out, via the safe shell executor, to "journalctl" instead of reading a
// Source directly.
type queryJournalTool struct{ runner ShellRunner }

func (t *queryJournalTool) Name() string        { return "query_journal" }
func (t *queryJournalTool) Description() string {
	return "Run a bounded journalctl query against the device's systemd journal."
}
func (t *queryJournalTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"unit":  map[string]any{"type": "string", "description": "Optional systemd unit name to filter on"},
			"lines": map[string]any{"type": "integer", "description": "Number of lines to request (default 50)"},
		},
	}
}
func (t *queryJournalTool) Execute(ctx context.Context, args map[string]any) Result {
	n := 50
	if v, err := intArg(args, "lines"); err == nil && v > 0 {
		n = v
	}

	cmd := fmt.Sprintf("journalctl -n %d --no-pager", n)
	if unit, ok := args["unit"].(string); ok && unit != "" {
		cmd = fmt.Sprintf("journalctl -u %s -n %d --no-pager", unit, n)
	}

	stdout, exitCode, err := t.runner.Run(ctx, cmd)
	if err != nil {
		return FailureResult(err)
	}
	return SuccessResult(map[string]any{"output": stdout, "exit_code": exitCode})
}

func entryToMap(e logs.Entry) map[string]any {
	return map[string]any{
		"line_number": e.LineNumber,
		"timestamp":   e.Timestamp,
		"severity":    string(e.Severity),
		"source":      e.Source,
		"message":     e.Message,
	}
}

// RegisterLogTools adds the four Source-backed log tools to r. query_journal
// is registered separately via RegisterQueryJournalTool since it needs a
// ShellRunner instead of a logs.Source.
func RegisterLogTools(r *Registry, src logs.Source) {
	r.RegisterLogTool(&searchLogsTool{src: src})
	r.RegisterLogTool(&analyzeErrorsTool{src: src})
	r.RegisterLogTool(&logStatsTool{src: src})
	r.RegisterLogTool(&tailLogsTool{src: src})
}

// RegisterQueryJournalTool adds "query_journal" to r, backed by runner.
func RegisterQueryJournalTool(r *Registry, runner ShellRunner) {
	r.RegisterLogTool(&queryJournalTool{runner: runner})
}
