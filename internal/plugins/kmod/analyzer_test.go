package kmod

import (
	"testing"

	"github.com/setevik/nodescan/internal/config"
	"github.com/setevik/nodescan/internal/event"
	"github.com/setevik/nodescan/internal/result"
)

var testData = Data{
	KernelVersion: "6.8.0-45-generic",
	Modules:       []string{"amdgpu", "nvme", "ext4", "xfs"},
}

func TestAnalyzeNoExpectations(t *testing.T) {
	a := NewAnalyzer(config.KmodConfig{})

	res := a.Analyze(testData)
	if res.Status != result.StatusNotRan {
		t.Errorf("status = %s, want NOT_RAN", res.Status)
	}
	if len(res.Events) != 0 {
		t.Errorf("got %d events, want 0", len(res.Events))
	}
}

func TestAnalyzeExpectedModules(t *testing.T) {
	tests := []struct {
		name       string
		modules    []string
		wantStatus result.Status
		wantEvents int
	}{
		{"all loaded", []string{"amdgpu", "nvme"}, result.StatusOK, 0},
		{"one missing", []string{"amdgpu", "mlx5_core"}, result.StatusError, 1},
		{"all missing", []string{"mlx5_core", "rdma_cm"}, result.StatusError, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(config.KmodConfig{ExpectedModules: tt.modules})
			res := a.Analyze(testData)

			if res.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", res.Status, tt.wantStatus)
			}
			if len(res.Events) != tt.wantEvents {
				t.Errorf("got %d events, want %d", len(res.Events), tt.wantEvents)
			}
		})
	}
}

func TestAnalyzeExpectedKernel(t *testing.T) {
	tests := []struct {
		name       string
		expected   []string
		regexMatch bool
		wantStatus result.Status
	}{
		{"exact match", []string{"6.8.0-45-generic"}, false, result.StatusOK},
		{"exact mismatch", []string{"6.5.0-10-generic"}, false, result.StatusError},
		{"regex match", []string{`6\.8\..*`}, true, result.StatusOK},
		{"regex mismatch", []string{`5\.15\..*`}, true, result.StatusError},
		{"any of several", []string{"5.15.0-100-generic", "6.8.0-45-generic"}, false, result.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(config.KmodConfig{
				ExpectedKernel: tt.expected,
				RegexMatch:     tt.regexMatch,
			})
			res := a.Analyze(testData)

			if res.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", res.Status, tt.wantStatus)
			}
		})
	}
}

func TestAnalyzeKernelMismatchEvent(t *testing.T) {
	a := NewAnalyzer(config.KmodConfig{ExpectedKernel: []string{"6.5.0"}})
	res := a.Analyze(testData)

	if len(res.Events) != 1 {
		t.Fatalf("got %d events, want 1", len(res.Events))
	}
	ev := res.Events[0]
	if ev.Severity != event.SevCritical {
		t.Errorf("severity = %s, want CRITICAL", ev.Severity)
	}
	if ev.Data["actual"] != "6.8.0-45-generic" {
		t.Errorf("actual = %v", ev.Data["actual"])
	}
}

func TestAnalyzeInvalidExpectationRegex(t *testing.T) {
	a := NewAnalyzer(config.KmodConfig{
		ExpectedKernel: []string{`(unclosed`},
		RegexMatch:     true,
	})
	res := a.Analyze(testData)

	if res.Status != result.StatusError {
		t.Errorf("status = %s, want ERROR", res.Status)
	}
	// One event for the bad regex, one for the resulting mismatch.
	if len(res.Events) != 2 {
		t.Fatalf("got %d events, want 2", len(res.Events))
	}
	if res.Events[0].Category != event.CatRuntime {
		t.Errorf("first event category = %s, want RUNTIME", res.Events[0].Category)
	}
}
