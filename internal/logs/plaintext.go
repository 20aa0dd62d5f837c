package logs

import "regexp"

// Plaintext severity is inferred from the first matching keyword, checked
// in strict precedence order so a line mentioning both "error" and "info"
// is still classified Error. Anything matching nothing defaults to Info.
var plaintextSeverityPatterns = []struct {
	severity Severity
	re       *regexp.Regexp
}{
	{SeverityCritical, regexp.MustCompile(`(?i)\b(critical|fatal|panic|emergency)\b`)},
	{SeverityError, regexp.MustCompile(`(?i)\b(error|err|fail(ed|ure)?|exception)\b`)},
	{SeverityWarning, regexp.MustCompile(`(?i)\b(warn(ing)?)\b`)},
	{SeverityNotice, regexp.MustCompile(`(?i)\b(notice)\b`)},
	{SeverityInfo, regexp.MustCompile(`(?i)\b(info(rmation)?)\b`)},
	{SeverityDebug, regexp.MustCompile(`(?i)\b(debug|trace)\b`)},
}

func parsePlaintext(line string, lineNumber int) Entry {
	severity := SeverityInfo
	for _, p := range plaintextSeverityPatterns {
		if p.re.MatchString(line) {
			severity = p.severity
			break
		}
	}
	return Entry{
		LineNumber: lineNumber,
		Severity:   severity,
		Message:    line,
	}
}
