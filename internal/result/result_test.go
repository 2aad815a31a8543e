package result

import (
	"testing"

	"github.com/setevik/nodescan/internal/event"
)

func TestStatusFromEvents(t *testing.T) {
	tests := []struct {
		name       string
		severities []event.Severity
		want       Status
	}{
		{"no events", nil, StatusOK},
		{"only info", []event.Severity{event.SevInfo}, StatusOK},
		{"warning present", []event.Severity{event.SevInfo, event.SevWarning}, StatusWarning},
		{"error wins over warning", []event.Severity{event.SevWarning, event.SevError}, StatusError},
		{"critical counts as error", []event.Severity{event.SevCritical}, StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var events []*event.Event
			for _, sev := range tt.severities {
				events = append(events, event.New(event.CatOS, sev, "x"))
			}
			if got := StatusFromEvents(events); got != tt.want {
				t.Errorf("StatusFromEvents = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResultLifecycle(t *testing.T) {
	r := New("DmesgAnalyzer")
	if r.Status != StatusNotRan {
		t.Errorf("initial status = %s, want NOT_RAN", r.Status)
	}

	r.Status = StatusOK
	r.Finish()
	if r.EndTime.Before(r.StartTime) {
		t.Error("end time before start time")
	}
	if r.Duration() < 0 {
		t.Error("negative duration")
	}
}

func TestStatusNames(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusNotRan, "NOT_RAN"},
		{StatusOK, "OK"},
		{StatusWarning, "WARNING"},
		{StatusError, "ERROR"},
		{StatusExecutionFailure, "EXECUTION_FAILURE"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
