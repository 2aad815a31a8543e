// Package osinfo collects OS release and uptime information and checks it
// against configured expectations.
package osinfo

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/setevik/nodescan/internal/config"
	"github.com/setevik/nodescan/internal/plugins"
	"github.com/setevik/nodescan/internal/result"
)

const pluginName = "osinfo"

func init() {
	plugins.Register(pluginName, func(cfg *config.Config) (plugins.Plugin, error) {
		return &Plugin{analyzer: NewAnalyzer(cfg.Plugins.OSInfo)}, nil
	})
}

// Data is the collected OS state.
type Data struct {
	Name       string        `json:"name"`
	VersionID  string        `json:"version_id"`
	PrettyName string        `json:"pretty_name"`
	Uptime     time.Duration `json:"uptime"`
}

// Plugin pairs the os-release/uptime collector with the expectation analyzer.
type Plugin struct {
	analyzer *Analyzer
}

func (p *Plugin) Name() string { return pluginName }

// Run collects OS information and analyzes it.
func (p *Plugin) Run(ctx context.Context) *result.Result {
	data, err := Collect(ctx)
	if err != nil {
		return result.New("OSInfoCollector").Fail(err)
	}
	return p.analyzer.Analyze(data)
}

const (
	osReleasePath = "/etc/os-release"
	procUptime    = "/proc/uptime"
)

// Collect reads /etc/os-release and /proc/uptime.
func Collect(_ context.Context) (Data, error) {
	f, err := os.Open(osReleasePath)
	if err != nil {
		return Data{}, fmt.Errorf("opening %s: %w", osReleasePath, err)
	}
	defer f.Close()

	data := Data{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"`)
		switch key {
		case "NAME":
			data.Name = value
		case "VERSION_ID":
			data.VersionID = value
		case "PRETTY_NAME":
			data.PrettyName = value
		}
	}
	if err := scanner.Err(); err != nil {
		return Data{}, fmt.Errorf("reading %s: %w", osReleasePath, err)
	}

	uptime, err := readUptime()
	if err != nil {
		return Data{}, err
	}
	data.Uptime = uptime

	return data, nil
}

// readUptime parses the first field of /proc/uptime (seconds since boot).
func readUptime() (time.Duration, error) {
	raw, err := os.ReadFile(procUptime)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", procUptime, err)
	}
	fields := strings.Fields(string(raw))
	if len(fields) == 0 {
		return 0, fmt.Errorf("unexpected %s content %q", procUptime, raw)
	}
	seconds, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("parsing uptime %q: %w", fields[0], err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
