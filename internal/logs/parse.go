package logs

// ParseLine parses a single line under the given format. journald is a
// multi-line format and isn't supported by this entry point — use
// ParseLines for a journald batch.
func ParseLine(line string, lineNumber int, format Format) (Entry, bool) {
	switch format {
	case FormatSyslog3164:
		return parse3164(line, lineNumber)
	case FormatSyslog5424:
		return parse5424(line, lineNumber)
	case FormatJSONLines:
		return parseJSONLine(line, lineNumber)
	case FormatPlaintext:
		return parsePlaintext(line, lineNumber), true
	default:
		return Entry{}, false
	}
}

// ParseLines parses a full batch of lines under format, handling
// journald's multi-line blank-separated record shape as a special case
// since it can't be parsed line by line.
func ParseLines(lines []string, format Format) []Entry {
	if format == FormatJournald {
		return parseJournald(lines)
	}

	entries := make([]Entry, 0, len(lines))
	for i, line := range lines {
		if entry, ok := ParseLine(line, i+1, format); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}
