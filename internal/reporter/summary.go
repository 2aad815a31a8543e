package reporter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/setevik/nodescan/internal/event"
)

// FormatSummary renders a report as human-readable text for stdout.
func FormatSummary(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== %s run %s ===\n", r.InstanceID, r.RunID)
	fmt.Fprintf(&b, "Status: %s  (%s, %s)\n\n",
		r.Status,
		r.StartTime.Local().Format("2006-01-02 15:04:05"),
		r.EndTime.Sub(r.StartTime).Round(time.Millisecond))

	for _, res := range r.Results {
		fmt.Fprintf(&b, "%-18s %-18s %d event(s)", res.Task, res.Status, len(res.Events))
		if res.Message != "" {
			fmt.Fprintf(&b, "  %s", res.Message)
		}
		b.WriteString("\n")
	}

	bySeverity := make(map[string]int)
	byCategory := make(map[string]int)
	for _, res := range r.Results {
		for _, ev := range res.Events {
			bySeverity[ev.Severity.String()]++
			byCategory[ev.Category.String()]++
		}
	}

	if len(bySeverity) > 0 {
		fmt.Fprintf(&b, "\nBy severity: %s\n", formatSeverityBreakdown(bySeverity))
		fmt.Fprintf(&b, "By category: %s\n", formatBreakdown(byCategory))
	}

	return b.String()
}

// formatSeverityBreakdown orders severities worst-first.
func formatSeverityBreakdown(m map[string]int) string {
	order := []event.Severity{event.SevCritical, event.SevError, event.SevWarning, event.SevInfo}
	var parts []string
	for _, sev := range order {
		if count, ok := m[sev.String()]; ok {
			parts = append(parts, fmt.Sprintf("%s ×%d", sev, count))
		}
	}
	return strings.Join(parts, ", ")
}

// formatBreakdown turns a map[string]int into "FOO ×2, BAR ×1" sorted by
// count descending, ties broken alphabetically.
func formatBreakdown(m map[string]int) string {
	type entry struct {
		name  string
		count int
	}

	entries := make([]entry, 0, len(m))
	for name, count := range m {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s ×%d", e.name, e.count)
	}
	return strings.Join(parts, ", ")
}
