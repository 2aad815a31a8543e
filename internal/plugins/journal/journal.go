// Package journal collects a bounded span of the systemd journal and flags
// high-priority entries and known error signatures.
package journal

import (
	"context"
	"log/slog"
	"time"

	"github.com/setevik/nodescan/internal/config"
	"github.com/setevik/nodescan/internal/plugins"
	"github.com/setevik/nodescan/internal/result"
)

const pluginName = "journal"

func init() {
	plugins.Register(pluginName, func(cfg *config.Config) (plugins.Plugin, error) {
		analyzer, err := NewAnalyzer(cfg.Plugins.Journal, cfg.Analysis.Options())
		if err != nil {
			return nil, err
		}
		return &Plugin{
			analyzer: analyzer,
			since:    cfg.Plugins.Journal.Since.Duration,
		}, nil
	})
}

// Plugin pairs the journalctl collector with the journal analyzer.
type Plugin struct {
	analyzer *Analyzer
	since    time.Duration
}

func (p *Plugin) Name() string { return pluginName }

// Run collects journal entries for the configured span and analyzes them.
func (p *Plugin) Run(ctx context.Context) *result.Result {
	entries, err := Collect(ctx, p.since)
	if err != nil {
		return result.New("JournalCollector").Fail(err)
	}
	slog.Debug("journal collected", "entries", len(entries))
	return p.analyzer.Analyze(entries)
}
