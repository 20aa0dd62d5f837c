package logs

import "strings"

// DetectFormat guesses the format of a batch of log lines. It first scans
// up to the first 10 non-blank lines for journald's export-format
// signature; failing that, it takes a majority vote over the first 5
// non-empty lines between "looks like JSON" and "looks like syslog"
// (has a leading "<PRI>" marker); and if syslog wins, it disambiguates
// RFC 5424 from RFC 3164 by attempting to parse the first candidate line
// as RFC 5424 (whose VERSION+RFC3339 timestamp shape 3164 can't produce).
// Anything left over is plaintext.
func DetectFormat(lines []string) Format {
	sample := nonEmptyLines(lines, 10)
	if len(sample) > 0 && looksLikeJournald(sample) {
		return FormatJournald
	}

	vote := nonEmptyLines(lines, 5)
	if len(vote) == 0 {
		return FormatPlaintext
	}

	jsonVotes, syslogVotes := 0, 0
	for _, line := range vote {
		switch {
		case looksLikeJSON(line):
			jsonVotes++
		case strings.HasPrefix(strings.TrimSpace(line), "<"):
			syslogVotes++
		}
	}

	if jsonVotes > syslogVotes && jsonVotes > 0 {
		return FormatJSONLines
	}
	if syslogVotes > 0 {
		if _, ok := parse5424(vote[0], 1); ok {
			return FormatSyslog5424
		}
		return FormatSyslog3164
	}

	return FormatPlaintext
}

func nonEmptyLines(lines []string, limit int) []string {
	var out []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
		if len(out) >= limit {
			break
		}
	}
	return out
}
