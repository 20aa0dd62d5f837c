package logs

import (
	"strconv"
	"strings"
	"time"
)

// parseJournald parses journalctl's export format (-o export): records are
// separated by a blank line, each record a sequence of KEY=VALUE lines.
// An entry with no MESSAGE field is silently skipped rather than emitted
// with an empty message.
func parseJournald(lines []string) []Entry {
	var entries []Entry
	fields := map[string]string{}
	lineNumber := 0
	startLine := 0

	flush := func() {
		if msg, ok := fields["MESSAGE"]; ok {
			entries = append(entries, journaldEntry(fields, msg, startLine))
		}
		fields = map[string]string{}
	}

	for i, line := range lines {
		lineNumber = i + 1
		if strings.TrimSpace(line) == "" {
			flush()
			startLine = lineNumber
			continue
		}
		if len(fields) == 0 {
			startLine = lineNumber
		}
		if idx := strings.Index(line, "="); idx > 0 {
			fields[line[:idx]] = line[idx+1:]
		}
	}
	flush()

	return entries
}

func journaldEntry(fields map[string]string, message string, lineNumber int) Entry {
	severity := SeverityInfo
	if p, err := strconv.Atoi(fields["PRIORITY"]); err == nil {
		severity = severityFromSyslogSeverity(p & 0x07)
	}

	var ts time.Time
	if raw, ok := fields["__REALTIME_TIMESTAMP"]; ok {
		if micros, err := strconv.ParseInt(raw, 10, 64); err == nil {
			ts = time.UnixMicro(micros).UTC()
		}
	}

	source := fields["_HOSTNAME"]
	if ident := fields["SYSLOG_IDENTIFIER"]; ident != "" {
		if source != "" {
			source = source + "/" + ident
		} else {
			source = ident
		}
	}

	return Entry{
		LineNumber: lineNumber,
		Timestamp:  ts,
		Severity:   severity,
		Source:     source,
		Message:    message,
	}
}

// looksLikeJournald scans up to the first 10 lines for the KEY=VALUE
// shape journald's export format uses, with no leading syslog PRI marker.
func looksLikeJournald(lines []string) bool {
	checked := 0
	hits := 0
	for _, line := range lines {
		if checked >= 10 {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		checked++
		if strings.HasPrefix(trimmed, "<") {
			continue
		}
		if idx := strings.Index(trimmed, "="); idx > 0 && !strings.ContainsAny(trimmed[:idx], " \t") {
			hits++
		}
	}
	return checked > 0 && hits == checked
}
