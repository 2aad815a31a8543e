// Package dmesg collects the kernel ring buffer and scans it for known
// error signatures.
package dmesg

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/setevik/nodescan/internal/config"
	"github.com/setevik/nodescan/internal/format"
	"github.com/setevik/nodescan/internal/plugins"
	"github.com/setevik/nodescan/internal/result"
)

const pluginName = "dmesg"

func init() {
	plugins.Register(pluginName, func(cfg *config.Config) (plugins.Plugin, error) {
		analyzer, err := NewAnalyzer(cfg.Plugins.Dmesg, cfg.Analysis.Options())
		if err != nil {
			return nil, err
		}
		return &Plugin{analyzer: analyzer}, nil
	})
}

// Plugin pairs the dmesg collector with the kernel-log analyzer.
type Plugin struct {
	analyzer *Analyzer
}

func (p *Plugin) Name() string { return pluginName }

// Run collects the kernel ring buffer and analyzes it.
func (p *Plugin) Run(ctx context.Context) *result.Result {
	content, err := Collect(ctx)
	if err != nil {
		return result.New("DmesgCollector").Fail(err)
	}
	slog.Debug("dmesg collected", "size", format.Bytes(int64(len(content))))
	return p.analyzer.Analyze(content)
}

// Collect runs dmesg and returns its output. ISO timestamps are requested so
// the analyzer can collapse repeat events by time; older dmesg builds without
// --time-format fall back to the default format.
func Collect(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "dmesg", "--time-format=iso").Output()
	if err == nil {
		return string(out), nil
	}

	slog.Debug("dmesg --time-format=iso failed, retrying without", "error", err)
	out, err = exec.CommandContext(ctx, "dmesg").Output()
	if err != nil {
		return "", fmt.Errorf("running dmesg: %w", err)
	}
	return string(out), nil
}
