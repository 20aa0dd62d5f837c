package logs

import (
	"fmt"
	"regexp"
	"time"
)

// severityFromSyslogSeverity maps the 3-bit syslog severity (the low 3
// bits of PRI) to our normalized Severity, per RFC 5424 §6.2.1.
func severityFromSyslogSeverity(sev int) Severity {
	switch sev {
	case 0, 1, 2:
		return SeverityCritical
	case 3:
		return SeverityError
	case 4:
		return SeverityWarning
	case 5:
		return SeverityNotice
	case 6:
		return SeverityInfo
	case 7:
		return SeverityDebug
	default:
		return SeverityInfo
	}
}

var (
	// RFC 3164: "<PRI>Mon  2 15:04:05 hostname tag[pid]: message"
	re3164 = regexp.MustCompile(`^<(\d{1,3})>([A-Z][a-z]{2}\s+\d{1,2}\s\d{2}:\d{2}:\d{2})\s+(\S+)\s+(?:([\w.\-/]+?)(?:\[\d+\])?:\s*)?(.*)$`)

	// RFC 5424: "<PRI>VERSION TIMESTAMP HOSTNAME APP-NAME PROCID MSGID [SD] message"
	re5424 = regexp.MustCompile(`^<(\d{1,3})>(\d+)\s+(\S+)\s+(\S+)\s+(\S+)\s+(\S+)\s+(\S+)\s+(.*)$`)
)

func parse3164(line string, lineNumber int) (Entry, bool) {
	m := re3164.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, false
	}

	pri := 0
	fmt.Sscanf(m[1], "%d", &pri)
	severity := severityFromSyslogSeverity(pri & 0x07)

	hostname := m[3]
	tag := m[4]
	source := hostname
	if tag != "" {
		source = hostname + "/" + tag
	}

	ts, _ := time.Parse("Jan _2 15:04:05", m[2])

	return Entry{
		LineNumber: lineNumber,
		Timestamp:  ts,
		Severity:   severity,
		Source:     source,
		Message:    m[5],
	}, true
}

func parse5424(line string, lineNumber int) (Entry, bool) {
	m := re5424.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, false
	}

	pri := 0
	fmt.Sscanf(m[1], "%d", &pri)
	severity := severityFromSyslogSeverity(pri & 0x07)

	ts, err := time.Parse(time.RFC3339Nano, m[3])
	if err != nil {
		ts, err = time.Parse(time.RFC3339, m[3])
		if err != nil {
			return Entry{}, false
		}
	}

	hostname := m[4]
	appName := m[5]
	source := hostname
	if appName != "" && appName != "-" {
		source = hostname + "/" + appName
	}

	return Entry{
		LineNumber: lineNumber,
		Timestamp:  ts,
		Severity:   severity,
		Source:     source,
		Message:    m[8],
	}, true
}
