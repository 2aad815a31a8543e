package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/setevik/nodescan/internal/logscan"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Instance.ID == "" {
		t.Error("default instance ID should not be empty")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("default log level = %q, want %q", cfg.Log.Level, "info")
	}
	if len(cfg.Run.Plugins) != 4 {
		t.Errorf("default plugin count = %d, want 4", len(cfg.Run.Plugins))
	}
	if cfg.Plugins.Journal.PriorityLevel != 3 {
		t.Errorf("default journal priority level = %d, want 3", cfg.Plugins.Journal.PriorityLevel)
	}
	if cfg.Plugins.Journal.Since.Duration != 24*time.Hour {
		t.Errorf("default journal span = %v, want 24h", cfg.Plugins.Journal.Since.Duration)
	}
	if cfg.DB.Retention.Duration != 30*24*time.Hour {
		t.Errorf("default retention = %v, want 720h", cfg.DB.Retention.Duration)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("loading nonexistent config should return defaults, got error: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want default %q", cfg.Log.Level, "info")
	}
}

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[instance]
id = "gpu-node-07"

[log]
level = "debug"

[run]
plugins = ["dmesg", "kmod"]

[analysis]
num_timestamps = 5
collapse_interval = "2m"

[plugins.journal]
since = "48h"
priority_level = 4

[[plugins.dmesg.rules]]
regex = "my-error.*"
message = "Custom error"
category = "SW_DRIVER"
severity = "CRITICAL"

[plugins.kmod]
expected_modules = ["amdgpu"]
expected_kernel = ["6\\.8\\..*"]
regex_match = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Instance.ID != "gpu-node-07" {
		t.Errorf("instance.id = %q, want %q", cfg.Instance.ID, "gpu-node-07")
	}
	if !cfg.PluginEnabled("dmesg") || cfg.PluginEnabled("journal") {
		t.Errorf("run.plugins = %v, want only dmesg and kmod enabled", cfg.Run.Plugins)
	}

	opts := cfg.Analysis.Options()
	if opts.NumTimestamps != 5 {
		t.Errorf("num_timestamps = %d, want 5", opts.NumTimestamps)
	}
	if opts.CollapseInterval != 2*time.Minute {
		t.Errorf("collapse_interval = %v, want 2m", opts.CollapseInterval)
	}
	if !opts.Group {
		t.Error("analysis options should default to grouped")
	}

	if cfg.Plugins.Journal.Since.Duration != 48*time.Hour {
		t.Errorf("journal.since = %v, want 48h", cfg.Plugins.Journal.Since.Duration)
	}
	if cfg.Plugins.Journal.PriorityLevel != 4 {
		t.Errorf("journal.priority_level = %d, want 4", cfg.Plugins.Journal.PriorityLevel)
	}

	rules := cfg.Plugins.Dmesg.Rules
	if len(rules) != 1 {
		t.Fatalf("dmesg rules count = %d, want 1", len(rules))
	}
	if rules[0].Regex != "my-error.*" || rules[0].Severity != "CRITICAL" {
		t.Errorf("dmesg rule = %+v", rules[0])
	}

	if !cfg.Plugins.Kmod.RegexMatch {
		t.Error("kmod.regex_match should be true")
	}
	if len(cfg.Plugins.Kmod.ExpectedModules) != 1 {
		t.Errorf("kmod.expected_modules = %v", cfg.Plugins.Kmod.ExpectedModules)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := os.WriteFile(path, []byte("not valid [[[ toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid TOML, got nil")
	}
}

func TestAnalysisOptionsDefaults(t *testing.T) {
	opts := (AnalysisConfig{}).Options()
	if opts.NumTimestamps != 3 {
		t.Errorf("num timestamps = %d, want 3", opts.NumTimestamps)
	}
	if opts.CollapseInterval != 60*time.Second {
		t.Errorf("collapse interval = %v, want 60s", opts.CollapseInterval)
	}
}

func TestLoadRuleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")

	content := `
rules:
  - regex: "xgmi link down"
    message: "XGMI link down"
    category: IO
    severity: CRITICAL
  - regex: "fan \\d+ stalled"
    message: "Fan stall"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	specs, err := LoadRuleFile(path)
	if err != nil {
		t.Fatalf("loading rule file: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("rule count = %d, want 2", len(specs))
	}
	if specs[0].Category != "IO" || specs[0].Severity != "CRITICAL" {
		t.Errorf("first rule = %+v", specs[0])
	}
	if specs[1].Category != "" {
		t.Errorf("second rule category = %q, want empty (engine default applies)", specs[1].Category)
	}
}

func TestLoadRuleFileRejectsIncompleteRules(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"missing regex", "rules:\n  - message: \"no pattern\"\n"},
		{"missing message", "rules:\n  - regex: \"abc\"\n"},
		{"not yaml", "rules: [unterminated\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "rules.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadRuleFile(path); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestCustomRulesMergesFileAndInline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := "rules:\n  - regex: \"from file\"\n    message: \"File rule\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	pc := LogPluginConfig{
		Rules:     []logscan.RuleSpec{{Regex: "inline", Message: "Inline rule"}},
		RulesFile: path,
	}

	specs, err := pc.CustomRules()
	if err != nil {
		t.Fatalf("custom rules: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("spec count = %d, want 2", len(specs))
	}
	if specs[0].Message != "Inline rule" || specs[1].Message != "File rule" {
		t.Errorf("spec order = [%s, %s], want inline first", specs[0].Message, specs[1].Message)
	}
}
