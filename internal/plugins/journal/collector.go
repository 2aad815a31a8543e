package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"time"
)

// Entry represents a decoded journal log entry.
type Entry struct {
	Message           string
	Priority          int    // syslog priority (0=emerg ... 7=debug)
	SyslogIdentifier  string // e.g. "kernel", "systemd", process name
	SystemdUnit       string // e.g. "docker.service"
	Transport         string // e.g. "kernel", "journal", "syslog"
	RealtimeTimestamp string // microseconds since epoch as string

	// All raw fields from the JSON object.
	Fields map[string]string
}

// Time converts the entry's realtime timestamp to a time.Time, or the zero
// value when absent or malformed.
func (e Entry) Time() time.Time {
	if e.RealtimeTimestamp == "" {
		return time.Time{}
	}
	usec, err := strconv.ParseInt(e.RealtimeTimestamp, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(usec/1_000_000, (usec%1_000_000)*1000)
}

// Collect runs journalctl -o json one-shot over the given span and returns
// the decoded entries in journal order.
func Collect(ctx context.Context, since time.Duration) ([]Entry, error) {
	args := []string{
		"-o", "json",
		"--no-pager",
	}
	if since > 0 {
		args = append(args, "--since", fmt.Sprintf("-%ds", int(since.Seconds())))
	}

	cmd := exec.CommandContext(ctx, "journalctl", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting journalctl: %w", err)
	}

	var entries []Entry
	scanner := bufio.NewScanner(stdout)
	// Journal entries can be large; increase buffer to 1MB.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		entry, err := parseJournalJSON(scanner.Bytes())
		if err != nil {
			slog.Debug("skipping unparseable journal line", "error", err)
			continue
		}
		entries = append(entries, entry)
	}

	scanErr := scanner.Err()
	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("journalctl: %w", err)
	}
	if scanErr != nil {
		return nil, fmt.Errorf("reading journalctl output: %w", scanErr)
	}

	return entries, nil
}

// parseJournalJSON parses a single JSON line from journalctl -o json.
func parseJournalJSON(data []byte) (Entry, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Entry{}, err
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case float64:
			fields[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case []interface{}:
			// journalctl may emit arrays for multi-value fields; take first.
			if len(val) > 0 {
				fields[k] = fmt.Sprintf("%v", val[0])
			}
		default:
			fields[k] = fmt.Sprintf("%v", v)
		}
	}

	priority, _ := strconv.Atoi(fields["PRIORITY"])

	return Entry{
		Message:           fields["MESSAGE"],
		Priority:          priority,
		SyslogIdentifier:  fields["SYSLOG_IDENTIFIER"],
		SystemdUnit:       fields["_SYSTEMD_UNIT"],
		Transport:         fields["_TRANSPORT"],
		RealtimeTimestamp: fields["__REALTIME_TIMESTAMP"],
		Fields:            fields,
	}, nil
}
