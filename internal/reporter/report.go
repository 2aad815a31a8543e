// Package reporter writes scan run reports as JSON files and renders
// human-readable run summaries.
package reporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/setevik/nodescan/internal/result"
)

// Report is the full record of one scan run.
type Report struct {
	RunID      string           `json:"run_id"`
	InstanceID string           `json:"instance_id"`
	StartTime  time.Time        `json:"start_time"`
	EndTime    time.Time        `json:"end_time"`
	Status     result.Status    `json:"status"`
	Results    []*result.Result `json:"results"`
}

// NewReport assembles a report from the run's task results. The overall
// status is the worst status across all tasks.
func NewReport(runID, instanceID string, start, end time.Time, results []*result.Result) *Report {
	return &Report{
		RunID:      runID,
		InstanceID: instanceID,
		StartTime:  start,
		EndTime:    end,
		Status:     OverallStatus(results),
		Results:    results,
	}
}

// OverallStatus returns the worst status across the given results.
func OverallStatus(results []*result.Result) result.Status {
	status := result.StatusNotRan
	for _, res := range results {
		if res.Status > status {
			status = res.Status
		}
	}
	return status
}

// EventCount returns the total number of events across all results.
func (r *Report) EventCount() int {
	total := 0
	for _, res := range r.Results {
		total += len(res.Events)
	}
	return total
}

// Write serializes the report as indented JSON into dir and returns the
// file path. The directory is created if needed.
func (r *Report) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("nodescan-run-%s.json", r.RunID))
	if err := os.WriteFile(path, append(data, '\n'), 0o640); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
