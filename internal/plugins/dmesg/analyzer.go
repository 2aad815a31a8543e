package dmesg

import (
	"fmt"

	"github.com/setevik/nodescan/internal/config"
	"github.com/setevik/nodescan/internal/logscan"
	"github.com/setevik/nodescan/internal/result"
)

const analyzerTask = "DmesgAnalyzer"

// Analyzer scans kernel log content against the composed rule set.
type Analyzer struct {
	rules []logscan.Rule
	opts  logscan.Options
}

// NewAnalyzer composes the plugin's custom rules ahead of BaseRules. Invalid
// custom rules fail here, before any collection happens.
func NewAnalyzer(pc config.LogPluginConfig, opts logscan.Options) (*Analyzer, error) {
	custom, err := pc.CustomRules()
	if err != nil {
		return nil, fmt.Errorf("dmesg custom rules: %w", err)
	}
	rules, err := logscan.ComposeRules(custom, BaseRules)
	if err != nil {
		return nil, fmt.Errorf("dmesg custom rules: %w", err)
	}
	return &Analyzer{rules: rules, opts: opts}, nil
}

// Analyze scans the given dmesg output and returns a result whose status
// reflects the worst event severity found.
func (a *Analyzer) Analyze(content string) *result.Result {
	res := result.New(analyzerTask)

	matches := logscan.Analyze(content, "dmesg", a.rules, a.opts)
	for _, m := range matches {
		res.Events = append(res.Events, m.Event(analyzerTask))
	}

	res.Status = result.StatusFromEvents(res.Events)
	if len(res.Events) == 0 {
		res.Message = "no errors found in dmesg"
	} else {
		res.Message = fmt.Sprintf("%d error signature(s) found in dmesg", len(res.Events))
	}
	return res.Finish()
}
