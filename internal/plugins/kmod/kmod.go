// Package kmod collects the loaded kernel modules and running kernel
// version and checks them against configured expectations.
package kmod

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/setevik/nodescan/internal/config"
	"github.com/setevik/nodescan/internal/plugins"
	"github.com/setevik/nodescan/internal/result"
)

const pluginName = "kmod"

func init() {
	plugins.Register(pluginName, func(cfg *config.Config) (plugins.Plugin, error) {
		return &Plugin{analyzer: NewAnalyzer(cfg.Plugins.Kmod)}, nil
	})
}

// Data is the collected kernel module state.
type Data struct {
	KernelVersion string   `json:"kernel_version"`
	Modules       []string `json:"modules"`
}

// Plugin pairs the /proc collector with the expectation analyzer.
type Plugin struct {
	analyzer *Analyzer
}

func (p *Plugin) Name() string { return pluginName }

// Run collects kernel module state and analyzes it.
func (p *Plugin) Run(ctx context.Context) *result.Result {
	data, err := Collect(ctx)
	if err != nil {
		return result.New("KmodCollector").Fail(err)
	}
	return p.analyzer.Analyze(data)
}

const (
	procModules   = "/proc/modules"
	procOSRelease = "/proc/sys/kernel/osrelease"
)

// Collect reads the loaded module list and kernel release from procfs.
func Collect(_ context.Context) (Data, error) {
	release, err := os.ReadFile(procOSRelease)
	if err != nil {
		return Data{}, fmt.Errorf("reading kernel release: %w", err)
	}

	f, err := os.Open(procModules)
	if err != nil {
		return Data{}, fmt.Errorf("opening %s: %w", procModules, err)
	}
	defer f.Close()

	var modules []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		// Each line is "name size refcount deps state address".
		fields := strings.Fields(scanner.Text())
		if len(fields) > 0 {
			modules = append(modules, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return Data{}, fmt.Errorf("reading %s: %w", procModules, err)
	}

	return Data{
		KernelVersion: strings.TrimSpace(string(release)),
		Modules:       modules,
	}, nil
}
