package event

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity indicates the urgency of an event. Severities are ordered:
// INFO < WARNING < ERROR < CRITICAL.
type Severity int

const (
	SevInfo Severity = iota + 1
	SevWarning
	SevError
	SevCritical
)

var severityNames = map[Severity]string{
	SevInfo:     "INFO",
	SevWarning:  "WARNING",
	SevError:    "ERROR",
	SevCritical: "CRITICAL",
}

// String returns the severity name (e.g. "ERROR").
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// ParseSeverity converts a severity name to a Severity. Matching is
// case-insensitive. Unknown names return a ValidationError.
func ParseSeverity(name string) (Severity, error) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	for sev, sevName := range severityNames {
		if sevName == normalized {
			return sev, nil
		}
	}
	return 0, &ValidationError{
		Field: "severity",
		Value: name,
		Msg:   "must be one of INFO, WARNING, ERROR, CRITICAL",
	}
}

// MarshalJSON serializes the severity as its name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	sev, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}
