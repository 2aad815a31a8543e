package logscan

import (
	"regexp"

	"github.com/setevik/nodescan/internal/event"
)

// Rule associates a compiled pattern with the message, category and severity
// of the events it produces. Rules are immutable once constructed; analyzers
// hold ordered lists of them.
type Rule struct {
	Pattern  *regexp.Regexp
	Message  string
	Category event.Category
	Severity event.Severity
}

// NewRule compiles expr and returns a Rule. It panics on an invalid
// expression, so it is intended for package-level base rule tables where a
// bad pattern is a programming error.
func NewRule(expr, message string, category event.Category, sev event.Severity) Rule {
	return Rule{
		Pattern:  regexp.MustCompile(expr),
		Message:  message,
		Category: category,
		Severity: sev,
	}
}

// RuleSpec is the raw, uncompiled form of a Rule as it appears in config
// files. Category and Severity are optional and default to UNKNOWN and ERROR.
type RuleSpec struct {
	Regex    string `toml:"regex" yaml:"regex" json:"regex"`
	Message  string `toml:"message" yaml:"message" json:"message"`
	Category string `toml:"category,omitempty" yaml:"category,omitempty" json:"category,omitempty"`
	Severity string `toml:"severity,omitempty" yaml:"severity,omitempty" json:"severity,omitempty"`
}

// Compile converts the spec to a Rule. An invalid regex or an unrecognized
// category/severity name yields a *event.ValidationError.
func (s RuleSpec) Compile() (Rule, error) {
	re, err := regexp.Compile(s.Regex)
	if err != nil {
		return Rule{}, &event.ValidationError{Field: "regex", Value: s.Regex, Msg: err.Error()}
	}

	rule := Rule{
		Pattern:  re,
		Message:  s.Message,
		Category: event.CatUnknown,
		Severity: event.SevError,
	}

	if s.Category != "" {
		cat, err := event.ParseCategory(s.Category)
		if err != nil {
			return Rule{}, err
		}
		rule.Category = cat
	}
	if s.Severity != "" {
		sev, err := event.ParseSeverity(s.Severity)
		if err != nil {
			return Rule{}, err
		}
		rule.Severity = sev
	}

	return rule, nil
}

// ComposeRules compiles the caller-supplied custom rule specs and places them
// ahead of the base rules, so custom rules win first-creation of grouped
// events. With no custom specs it returns a copy of base. Compilation stops
// at the first invalid spec.
func ComposeRules(custom []RuleSpec, base []Rule) ([]Rule, error) {
	if len(custom) == 0 {
		out := make([]Rule, len(base))
		copy(out, base)
		return out, nil
	}

	rules := make([]Rule, 0, len(custom)+len(base))
	for _, spec := range custom {
		rule, err := spec.Compile()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return append(rules, base...), nil
}

// MergeRules is the already-compiled counterpart of ComposeRules: custom
// rules first, then base, in a fresh slice.
func MergeRules(custom, base []Rule) []Rule {
	rules := make([]Rule, 0, len(custom)+len(base))
	rules = append(rules, custom...)
	return append(rules, base...)
}
