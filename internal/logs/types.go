// Package logs implements the log parser bank: format auto-detection and
// parsers for journald, syslog (RFC 3164 and RFC 5424), JSON-lines, and
// plaintext log sources.
package logs

import "time"

// Format identifies which parser a batch of log lines should use.
type Format string

const (
	FormatJournald  Format = "journald"
	FormatSyslog3164 Format = "syslog_3164"
	FormatSyslog5424 Format = "syslog_5424"
	FormatJSONLines Format = "json_lines"
	FormatPlaintext Format = "plaintext"
)

// Severity is the normalized log level across every source format.
type Severity string

const (
	SeverityDebug    Severity = "debug"
	SeverityInfo     Severity = "info"
	SeverityNotice   Severity = "notice"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Entry is a single parsed log line, normalized across formats.
type Entry struct {
	LineNumber int
	Timestamp  time.Time
	Severity   Severity
	Source     string
	Message    string
}
