// Package config handles TOML configuration loading with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/setevik/nodescan/internal/logscan"
)

// Config is the top-level configuration for nodescan.
type Config struct {
	Instance InstanceConfig `toml:"instance"`
	Log      LogConfig      `toml:"log"`
	DB       DBConfig       `toml:"db"`
	Run      RunConfig      `toml:"run"`
	Analysis AnalysisConfig `toml:"analysis"`
	Plugins  PluginsConfig  `toml:"plugins"`
}

// InstanceConfig identifies the node being scanned.
type InstanceConfig struct {
	ID string `toml:"id"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// DBConfig controls the event-history database.
type DBConfig struct {
	Path      string   `toml:"path"`
	Retention Duration `toml:"retention"`
}

// RunConfig controls which plugins a run executes and where reports go.
type RunConfig struct {
	Plugins   []string `toml:"plugins"`
	ReportDir string   `toml:"report_dir"`
}

// AnalysisConfig tunes the log-analysis engine.
type AnalysisConfig struct {
	NumTimestamps    int      `toml:"num_timestamps"`
	CollapseInterval Duration `toml:"collapse_interval"`
}

// Options converts the analysis settings to engine options.
func (a AnalysisConfig) Options() logscan.Options {
	opts := logscan.DefaultOptions()
	if a.NumTimestamps > 0 {
		opts.NumTimestamps = a.NumTimestamps
	}
	if a.CollapseInterval.Duration > 0 {
		opts.CollapseInterval = a.CollapseInterval.Duration
	}
	return opts
}

// PluginsConfig carries per-plugin settings.
type PluginsConfig struct {
	Dmesg   LogPluginConfig `toml:"dmesg"`
	Journal JournalConfig   `toml:"journal"`
	Kmod    KmodConfig      `toml:"kmod"`
	OSInfo  OSInfoConfig    `toml:"osinfo"`
}

// LogPluginConfig is shared by plugins that feed text logs through the
// analysis engine: custom rules may be given inline or in a YAML rule file.
type LogPluginConfig struct {
	Rules     []logscan.RuleSpec `toml:"rules"`
	RulesFile string             `toml:"rules_file"`
}

// CustomRules returns the plugin's effective custom rule specs: inline rules
// first, then any loaded from the rule file.
func (c LogPluginConfig) CustomRules() ([]logscan.RuleSpec, error) {
	specs := make([]logscan.RuleSpec, 0, len(c.Rules))
	specs = append(specs, c.Rules...)

	if c.RulesFile != "" {
		fromFile, err := LoadRuleFile(c.RulesFile)
		if err != nil {
			return nil, err
		}
		specs = append(specs, fromFile...)
	}
	return specs, nil
}

// JournalConfig controls the journal plugin.
type JournalConfig struct {
	LogPluginConfig
	// Since bounds the journal span collected (e.g. "24h").
	Since Duration `toml:"since"`
	// PriorityLevel is the highest syslog priority number still flagged
	// (0=emerg .. 7=debug); entries at or below it become events.
	PriorityLevel int `toml:"priority_level"`
}

// KmodConfig controls the kernel-module plugin.
type KmodConfig struct {
	ExpectedModules []string `toml:"expected_modules"`
	ExpectedKernel  []string `toml:"expected_kernel"`
	// RegexMatch interprets expected_kernel entries as regular expressions.
	RegexMatch bool `toml:"regex_match"`
}

// OSInfoConfig controls the OS-info plugin.
type OSInfoConfig struct {
	ExpectedName     string   `toml:"expected_name"`
	ExpectedVersions []string `toml:"expected_versions"`
	// MinUptime warns when the node rebooted more recently than this.
	MinUptime Duration `toml:"min_uptime"`
}

// Duration wraps time.Duration for TOML string parsing (e.g. "5m", "1h").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	return &Config{
		Instance: InstanceConfig{
			ID: hostname,
		},
		Log: LogConfig{
			Level: "info",
		},
		DB: DBConfig{
			Retention: Duration{30 * 24 * time.Hour},
		},
		Run: RunConfig{
			Plugins: []string{"dmesg", "journal", "kmod", "osinfo"},
		},
		Plugins: PluginsConfig{
			Journal: JournalConfig{
				Since:         Duration{24 * time.Hour},
				PriorityLevel: 3, // emerg..err
			},
		},
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "nodescan", "config.toml")
}

// Load reads configuration from the given path, falling back to defaults
// for any unset fields. If the file does not exist, returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// DBPath returns the configured database path, or the default under the
// user's data directory.
func (c *Config) DBPath() string {
	if c.DB.Path != "" {
		return c.DB.Path
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "nodescan", "events.db")
}

// PluginEnabled reports whether the named plugin is in the run list.
func (c *Config) PluginEnabled(name string) bool {
	for _, p := range c.Run.Plugins {
		if p == name {
			return true
		}
	}
	return false
}
