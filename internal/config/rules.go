package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/setevik/nodescan/internal/logscan"
)

// RuleFile is the on-disk shape of a standalone YAML rule list.
type RuleFile struct {
	Rules []logscan.RuleSpec `yaml:"rules"`
}

// LoadRuleFile reads custom rule specs from a YAML file. The specs are not
// compiled here; validation happens when the analyzer composes its rule set.
func LoadRuleFile(path string) ([]logscan.RuleSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file: %w", err)
	}

	var rf RuleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing rule file %s: %w", path, err)
	}

	for i, spec := range rf.Rules {
		if spec.Regex == "" {
			return nil, fmt.Errorf("rule file %s: rule %d has no regex", path, i)
		}
		if spec.Message == "" {
			return nil, fmt.Errorf("rule file %s: rule %d has no message", path, i)
		}
	}

	return rf.Rules, nil
}
