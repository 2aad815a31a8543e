// Package logscan implements the regex-based log analysis engine shared by
// the dmesg, journal and other text-log analyzers. It applies an ordered rule
// list to raw log content, groups repeat matches into single events with an
// occurrence count, collapses timestamps that fall within a configurable
// interval of one another, and prunes oversized timestamp lists down to their
// first and last entries.
package logscan

import (
	"strings"
	"time"

	"github.com/setevik/nodescan/internal/event"
)

// Options controls grouping and timestamp handling during analysis.
type Options struct {
	// Group merges matches with identical match keys into a single event.
	Group bool
	// NumTimestamps bounds each event's timestamp list: after analysis a
	// list longer than 2*NumTimestamps keeps only its first and last
	// NumTimestamps entries.
	NumTimestamps int
	// CollapseInterval is the window within which a repeat timestamp is
	// considered redundant and not separately recorded.
	CollapseInterval time.Duration
}

// DefaultOptions returns the standard analysis options: grouped, 3 head/tail
// timestamps, 60 second collapse window.
func DefaultOptions() Options {
	return Options{
		Group:            true,
		NumTimestamps:    3,
		CollapseInterval: 60 * time.Second,
	}
}

// MatchContent is the captured text of a rule match: either a single string
// or an ordered list of capture-group values.
type MatchContent struct {
	values []string
	list   bool
}

// matchContentString wraps a single matched string.
func matchContentString(s string) MatchContent {
	return MatchContent{values: []string{s}}
}

// matchContentList filters empty values and collapses a singleton list to a
// bare string.
func matchContentList(values []string) MatchContent {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 1 {
		return matchContentString(kept[0])
	}
	return MatchContent{values: kept, list: true}
}

// keySeparator joins list values into a match key. The unit separator cannot
// appear in capture groups split from log text, so joined keys are stable and
// unambiguous across value boundaries.
const keySeparator = "\x1f"

// Key returns the canonical grouping key for this content.
func (c MatchContent) Key() string {
	if !c.list {
		return c.values[0]
	}
	return "[" + strings.Join(c.values, keySeparator) + "]"
}

// Value returns the content for serialization: a string for single captures,
// a []string for multi-group captures.
func (c MatchContent) Value() any {
	if !c.list {
		return c.values[0]
	}
	return c.values
}

// MatchEvent is one logical occurrence record produced by Analyze. Under
// grouped analysis it aggregates every raw match sharing a match key.
type MatchEvent struct {
	Category    event.Category
	Severity    event.Severity
	Description string
	Source      string
	Content     MatchContent
	Count       int

	// Timestamps is populated under grouped analysis; Timestamp holds the
	// single extracted value for ungrouped events.
	Timestamps []string
	Timestamp  string
}

// Event converts the match to a generic diagnostic event for task results.
func (m *MatchEvent) Event(task string) *event.Event {
	ev := event.New(m.Category, m.Severity, m.Description)
	ev.Task = task
	ev.Data["match_content"] = m.Content.Value()
	ev.Data["source"] = m.Source
	ev.Data["count"] = m.Count
	if len(m.Timestamps) > 0 {
		ev.Data["timestamps"] = m.Timestamps
	}
	if m.Timestamp != "" {
		ev.Data["timestamp"] = m.Timestamp
	}
	return ev
}

// Analyze applies every rule to content in order and returns the resulting
// events in creation order. Matches within a rule are found left to right,
// non-overlapping. Rules are applied independently, but under grouped
// analysis a later rule's match that canonicalizes to an existing key merges
// into the earlier event, keeping the earlier rule's classification.
func Analyze(content, source string, rules []Rule, opts Options) []*MatchEvent {
	grouped := make(map[string]*MatchEvent)
	var events []*MatchEvent

	for _, rule := range rules {
		for _, loc := range rule.Pattern.FindAllStringSubmatchIndex(content, -1) {
			ts := ExtractTimestamp(content, loc[0])
			mc := extractContent(content, loc, rule.Pattern.NumSubexp())

			if !opts.Group {
				ev := newMatchEvent(rule, mc, source)
				ev.Timestamp = ts
				events = append(events, ev)
				continue
			}

			key := mc.Key()
			if existing, ok := grouped[key]; ok {
				existing.Count++
				if ts != "" && !withinInterval(ts, existing.Timestamps, opts.CollapseInterval) {
					existing.Timestamps = append(existing.Timestamps, ts)
				}
				continue
			}

			ev := newMatchEvent(rule, mc, source)
			if ts != "" {
				ev.Timestamps = []string{ts}
			}
			grouped[key] = ev
			events = append(events, ev)
		}
	}

	pruneTimestamps(events, opts.NumTimestamps)
	return events
}

func newMatchEvent(rule Rule, mc MatchContent, source string) *MatchEvent {
	return &MatchEvent{
		Category:    rule.Category,
		Severity:    rule.Severity,
		Description: rule.Message,
		Source:      source,
		Content:     mc,
		Count:       1,
	}
}

// extractContent builds MatchContent from a FindAllStringSubmatchIndex entry.
// Patterns with capture groups yield the group values; otherwise the whole
// matched substring is taken, split into lines when it spans several.
func extractContent(content string, loc []int, numGroups int) MatchContent {
	if numGroups > 0 {
		values := make([]string, 0, numGroups)
		for g := 1; g <= numGroups; g++ {
			start, end := loc[2*g], loc[2*g+1]
			if start < 0 {
				continue
			}
			values = append(values, content[start:end])
		}
		return matchContentList(values)
	}

	whole := content[loc[0]:loc[1]]
	if strings.Contains(whole, "\n") {
		return matchContentList(strings.Split(strings.TrimSpace(whole), "\n"))
	}
	return matchContentString(whole)
}

// pruneTimestamps bounds each event's timestamp list to its first and last
// n entries, preserving the originally recorded order.
func pruneTimestamps(events []*MatchEvent, n int) {
	for _, ev := range events {
		if len(ev.Timestamps) <= 2*n {
			continue
		}
		pruned := make([]string, 0, 2*n)
		pruned = append(pruned, ev.Timestamps[:n]...)
		pruned = append(pruned, ev.Timestamps[len(ev.Timestamps)-n:]...)
		ev.Timestamps = pruned
	}
}
