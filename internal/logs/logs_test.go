package logs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectFormat_Journald(t *testing.T) {
	lines := []string{
		"MESSAGE=unit started",
		"PRIORITY=6",
		"_HOSTNAME=device-1",
		"",
		"MESSAGE=unit failed",
		"PRIORITY=3",
		"_HOSTNAME=device-1",
	}
	require.Equal(t, FormatJournald, DetectFormat(lines))
}

func TestDetectFormat_JSONLines(t *testing.T) {
	lines := []string{
		`{"timestamp":"2026-01-01T00:00:00Z","level":"info","message":"booted"}`,
		`{"timestamp":"2026-01-01T00:00:01Z","level":"error","message":"oops"}`,
	}
	require.Equal(t, FormatJSONLines, DetectFormat(lines))
}

func TestDetectFormat_Syslog5424(t *testing.T) {
	lines := []string{
		`<34>1 2026-01-01T00:00:00.000Z device-1 sshd 1234 ID47 - failed password`,
	}
	require.Equal(t, FormatSyslog5424, DetectFormat(lines))
}

func TestDetectFormat_Syslog3164(t *testing.T) {
	lines := []string{
		`<34>Jan  1 00:00:00 device-1 sshd[1234]: failed password`,
	}
	require.Equal(t, FormatSyslog3164, DetectFormat(lines))
}

func TestDetectFormat_Plaintext(t *testing.T) {
	lines := []string{"nothing special here", "just some text"}
	require.Equal(t, FormatPlaintext, DetectFormat(lines))
}

func TestParseJournald_SkipsEntriesWithoutMessage(t *testing.T) {
	lines := []string{
		"PRIORITY=6",
		"_HOSTNAME=device-1",
		"",
		"MESSAGE=has a message",
		"PRIORITY=4",
	}
	entries := ParseLines(lines, FormatJournald)
	require.Len(t, entries, 1)
	require.Equal(t, "has a message", entries[0].Message)
	require.Equal(t, SeverityWarning, entries[0].Severity)
}

func TestParse3164_ExtractsSourceAndSeverity(t *testing.T) {
	e, ok := parse3164(`<27>Jan  1 00:00:00 device-1 agent[42]: cpu spike detected`, 1)
	require.True(t, ok)
	require.Equal(t, "device-1/agent", e.Source)
	require.Equal(t, SeverityError, e.Severity) // PRI 27 & 0x07 == 3 (Error)
}

func TestPlaintextSeverity_PrecedenceOrder(t *testing.T) {
	e := parsePlaintext("critical error: disk full", 1)
	require.Equal(t, SeverityCritical, e.Severity)
}
