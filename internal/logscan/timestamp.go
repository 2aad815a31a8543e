package logscan

import (
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// timestampPattern matches ISO-8601-style timestamps with a comma-delimited
// fractional second and a timezone offset, as emitted by dmesg --time-format=iso
// and journalctl -o short-iso-precise (e.g. "2025-06-14T09:13:02,481721+00:00").
var timestampPattern = regexp.MustCompile(`(\d{4}-\d+-\d+T\d+:\d+:\d+,\d+[+-]\d+:\d+)`)

// ExtractTimestamp returns the timestamp embedded in the line containing
// matchStart, or "" if the line has none. Scanning is bounded by the adjacent
// newlines, so cost is proportional to the line length rather than the
// content length.
func ExtractTimestamp(content string, matchStart int) string {
	if matchStart < 0 || matchStart > len(content) {
		return ""
	}

	lineStart := strings.LastIndexByte(content[:matchStart], '\n') + 1
	lineEnd := len(content)
	if i := strings.IndexByte(content[matchStart:], '\n'); i >= 0 {
		lineEnd = matchStart + i
	}

	m := timestampPattern.FindStringSubmatch(content[lineStart:lineEnd])
	if m == nil {
		return ""
	}
	return m[1]
}

// parseLogTime parses an extracted timestamp, normalizing the comma
// fractional-second separator to a period first.
func parseLogTime(ts string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, strings.Replace(ts, ",", ".", 1))
}

// withinInterval reports whether newTS falls within interval of any timestamp
// already recorded for an event. An unparsable new timestamp is logged and
// treated as not-within, so it still gets recorded; unparsable existing
// timestamps are skipped.
func withinInterval(newTS string, existing []string, interval time.Duration) bool {
	newTime, err := parseLogTime(newTS)
	if err != nil {
		slog.Warn("failed to parse timestamp from log line", "timestamp", newTS, "error", err)
		return false
	}

	for _, ts := range existing {
		existingTime, err := parseLogTime(ts)
		if err != nil {
			continue
		}
		diff := newTime.Sub(existingTime)
		if diff < 0 {
			diff = -diff
		}
		if diff < interval {
			return true
		}
	}
	return false
}
