package journal

import (
	"fmt"
	"strings"

	"github.com/setevik/nodescan/internal/config"
	"github.com/setevik/nodescan/internal/event"
	"github.com/setevik/nodescan/internal/logscan"
	"github.com/setevik/nodescan/internal/result"
)

const analyzerTask = "JournalAnalyzer"

// timestampLayout renders entry times the way the analysis engine's
// timestamp extractor expects them (comma fraction, explicit offset).
const timestampLayout = "2006-01-02T15:04:05,000000-07:00"

// Analyzer flags journal entries at or above a syslog priority and scans
// entry text against the composed rule set.
type Analyzer struct {
	rules         []logscan.Rule
	opts          logscan.Options
	priorityLevel int
}

// NewAnalyzer composes the plugin's custom rules ahead of BaseRules.
func NewAnalyzer(jc config.JournalConfig, opts logscan.Options) (*Analyzer, error) {
	custom, err := jc.CustomRules()
	if err != nil {
		return nil, fmt.Errorf("journal custom rules: %w", err)
	}
	rules, err := logscan.ComposeRules(custom, BaseRules)
	if err != nil {
		return nil, fmt.Errorf("journal custom rules: %w", err)
	}
	return &Analyzer{
		rules:         rules,
		opts:          opts,
		priorityLevel: jc.PriorityLevel,
	}, nil
}

// Analyze inspects the collected entries two ways: every entry at or below
// the configured priority number becomes a grouped priority event, and the
// rendered entry text runs through the regex engine.
func (a *Analyzer) Analyze(entries []Entry) *result.Result {
	res := result.New(analyzerTask)

	res.Events = append(res.Events, a.priorityEvents(entries)...)

	content := renderEntries(entries)
	for _, m := range logscan.Analyze(content, "journal", a.rules, a.opts) {
		res.Events = append(res.Events, m.Event(analyzerTask))
	}

	res.Status = result.StatusFromEvents(res.Events)
	if len(res.Events) == 0 {
		res.Message = "no errors found in journal"
	} else {
		res.Message = fmt.Sprintf("%d issue(s) found in journal", len(res.Events))
	}
	return res.Finish()
}

// priorityGroup aggregates repeat entries sharing a message and priority.
type priorityGroup struct {
	entry Entry
	count int
	first string
	last  string
}

// priorityEvents groups flagged entries by message and priority, one event
// per group, in first-seen order.
func (a *Analyzer) priorityEvents(entries []Entry) []*event.Event {
	groups := make(map[string]*priorityGroup)
	var order []string

	for _, entry := range entries {
		if entry.Priority > a.priorityLevel {
			continue
		}

		key := fmt.Sprintf("%d\x1f%s", entry.Priority, entry.Message)
		ts := ""
		if t := entry.Time(); !t.IsZero() {
			ts = t.UTC().Format(timestampLayout)
		}

		if g, ok := groups[key]; ok {
			g.count++
			if ts != "" {
				g.last = ts
			}
			continue
		}
		groups[key] = &priorityGroup{entry: entry, count: 1, first: ts, last: ts}
		order = append(order, key)
	}

	events := make([]*event.Event, 0, len(order))
	for _, key := range order {
		g := groups[key]
		ev := event.New(event.CatOS, prioritySeverity(g.entry.Priority),
			fmt.Sprintf("journal entry with priority level %d", g.entry.Priority))
		ev.Task = analyzerTask
		ev.Data["source"] = "journal"
		ev.Data["message"] = g.entry.Message
		ev.Data["count"] = g.count
		if g.entry.SyslogIdentifier != "" {
			ev.Data["identifier"] = g.entry.SyslogIdentifier
		}
		if g.entry.SystemdUnit != "" {
			ev.Data["unit"] = g.entry.SystemdUnit
		}
		if g.first != "" {
			ev.Data["first_occurrence"] = g.first
			ev.Data["last_occurrence"] = g.last
		}
		events = append(events, ev)
	}
	return events
}

// prioritySeverity maps syslog priority numbers (0=emerg .. 7=debug) to
// event severities. emerg..err are errors, warning maps to warning, the
// rest are informational.
func prioritySeverity(priority int) event.Severity {
	switch {
	case priority <= 3:
		return event.SevError
	case priority == 4:
		return event.SevWarning
	default:
		return event.SevInfo
	}
}

// renderEntries flattens entries to one line each so the regex engine can
// extract per-line timestamps.
func renderEntries(entries []Entry) string {
	var b strings.Builder
	for _, entry := range entries {
		if t := entry.Time(); !t.IsZero() {
			b.WriteString(t.UTC().Format(timestampLayout))
			b.WriteByte(' ')
		}
		if entry.SyslogIdentifier != "" {
			b.WriteString(entry.SyslogIdentifier)
			b.WriteString(": ")
		}
		b.WriteString(entry.Message)
		b.WriteByte('\n')
	}
	return b.String()
}
