package kmod

import (
	"fmt"
	"regexp"

	"github.com/setevik/nodescan/internal/config"
	"github.com/setevik/nodescan/internal/event"
	"github.com/setevik/nodescan/internal/result"
)

const analyzerTask = "KmodAnalyzer"

// Analyzer checks collected kernel module state against expectations.
type Analyzer struct {
	cfg config.KmodConfig
}

// NewAnalyzer creates the analyzer with the configured expectations.
func NewAnalyzer(cfg config.KmodConfig) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze verifies that every expected module is loaded and that the running
// kernel matches one of the expected versions. With no expectations
// configured the result is NOT_RAN.
func (a *Analyzer) Analyze(data Data) *result.Result {
	res := result.New(analyzerTask)

	if len(a.cfg.ExpectedModules) == 0 && len(a.cfg.ExpectedKernel) == 0 {
		res.Status = result.StatusNotRan
		res.Message = "no kernel expectations configured"
		return res.Finish()
	}

	loaded := make(map[string]bool, len(data.Modules))
	for _, mod := range data.Modules {
		loaded[mod] = true
	}

	for _, mod := range a.cfg.ExpectedModules {
		if loaded[mod] {
			continue
		}
		ev := event.New(event.CatOS, event.SevError, "expected kernel module not loaded")
		ev.Task = analyzerTask
		ev.Data["module"] = mod
		res.Events = append(res.Events, ev)
	}

	if len(a.cfg.ExpectedKernel) > 0 && !a.kernelMatches(data.KernelVersion, res) {
		ev := event.New(event.CatOS, event.SevCritical, "kernel version mismatch")
		ev.Task = analyzerTask
		ev.Data["expected"] = a.cfg.ExpectedKernel
		ev.Data["actual"] = data.KernelVersion
		res.Events = append(res.Events, ev)
	}

	res.Status = result.StatusFromEvents(res.Events)
	if len(res.Events) == 0 {
		res.Message = "kernel modules match expected state"
	} else {
		res.Message = fmt.Sprintf("%d kernel expectation(s) not met", len(res.Events))
	}
	return res.Finish()
}

// kernelMatches reports whether the running kernel satisfies any expected
// entry, compared literally or as a regular expression per config. An
// invalid expectation regex is itself reported as a RUNTIME event.
func (a *Analyzer) kernelMatches(version string, res *result.Result) bool {
	for _, expected := range a.cfg.ExpectedKernel {
		if !a.cfg.RegexMatch {
			if version == expected {
				return true
			}
			continue
		}

		re, err := regexp.Compile(expected)
		if err != nil {
			ev := event.New(event.CatRuntime, event.SevError, "kernel expectation regex is invalid")
			ev.Task = analyzerTask
			ev.Data["regex"] = expected
			res.Events = append(res.Events, ev)
			continue
		}
		if re.MatchString(version) {
			return true
		}
	}
	return false
}
