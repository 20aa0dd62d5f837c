package logs

import (
	"encoding/json"
	"strings"
	"time"
)

type jsonLine struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	Source    string `json:"source"`
}

func parseJSONLine(line string, lineNumber int) (Entry, bool) {
	var jl jsonLine
	if err := json.Unmarshal([]byte(line), &jl); err != nil {
		return Entry{}, false
	}
	if jl.Message == "" {
		return Entry{}, false
	}

	level := jl.Level
	if level == "" {
		level = jl.Severity
	}

	ts, _ := time.Parse(time.RFC3339Nano, jl.Timestamp)

	return Entry{
		LineNumber: lineNumber,
		Timestamp:  ts,
		Severity:   normalizeLevelWord(level),
		Source:     jl.Source,
		Message:    jl.Message,
	}, true
}

func normalizeLevelWord(level string) Severity {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return SeverityDebug
	case "notice":
		return SeverityNotice
	case "warn", "warning":
		return SeverityWarning
	case "error", "err":
		return SeverityError
	case "fatal", "critical", "crit", "panic":
		return SeverityCritical
	default:
		return SeverityInfo
	}
}

func looksLikeJSON(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return false
	}
	return json.Valid([]byte(trimmed))
}
