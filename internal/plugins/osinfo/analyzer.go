package osinfo

import (
	"fmt"

	"github.com/setevik/nodescan/internal/config"
	"github.com/setevik/nodescan/internal/event"
	"github.com/setevik/nodescan/internal/result"
)

const analyzerTask = "OSInfoAnalyzer"

// Analyzer checks collected OS information against expectations.
type Analyzer struct {
	cfg config.OSInfoConfig
}

// NewAnalyzer creates the analyzer with the configured expectations.
func NewAnalyzer(cfg config.OSInfoConfig) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze verifies the OS name and version and warns when the node rebooted
// more recently than the configured minimum uptime.
func (a *Analyzer) Analyze(data Data) *result.Result {
	res := result.New(analyzerTask)

	if a.cfg.ExpectedName == "" && len(a.cfg.ExpectedVersions) == 0 && a.cfg.MinUptime.Duration == 0 {
		res.Status = result.StatusNotRan
		res.Message = "no OS expectations configured"
		return res.Finish()
	}

	if a.cfg.ExpectedName != "" && data.Name != a.cfg.ExpectedName {
		ev := event.New(event.CatOS, event.SevError, "OS name mismatch")
		ev.Task = analyzerTask
		ev.Data["expected"] = a.cfg.ExpectedName
		ev.Data["actual"] = data.Name
		res.Events = append(res.Events, ev)
	}

	if len(a.cfg.ExpectedVersions) > 0 && !contains(a.cfg.ExpectedVersions, data.VersionID) {
		ev := event.New(event.CatOS, event.SevError, "OS version mismatch")
		ev.Task = analyzerTask
		ev.Data["expected"] = a.cfg.ExpectedVersions
		ev.Data["actual"] = data.VersionID
		res.Events = append(res.Events, ev)
	}

	if min := a.cfg.MinUptime.Duration; min > 0 && data.Uptime < min {
		ev := event.New(event.CatOS, event.SevWarning, "node rebooted recently")
		ev.Task = analyzerTask
		ev.Data["uptime"] = data.Uptime.String()
		ev.Data["min_uptime"] = min.String()
		res.Events = append(res.Events, ev)
	}

	res.Status = result.StatusFromEvents(res.Events)
	if len(res.Events) == 0 {
		res.Message = fmt.Sprintf("OS matches expected state (%s)", data.PrettyName)
	} else {
		res.Message = fmt.Sprintf("%d OS expectation(s) not met", len(res.Events))
	}
	return res.Finish()
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
