// Package event defines the core data model for nodescan diagnostic events.
package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event represents a single diagnostic finding reported by an analyzer.
type Event struct {
	ID          string         `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	Category    Category       `json:"category"`
	Severity    Severity       `json:"severity"`
	Description string         `json:"description"`
	Task        string         `json:"task,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// New creates an Event with a generated UUID and the current UTC time.
func New(category Category, sev Severity, description string) *Event {
	return &Event{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		Category:    category,
		Severity:    sev,
		Description: description,
		Data:        make(map[string]any),
	}
}

// ValidationError reports a rule or enum value that failed validation at
// construction time, before any analysis runs.
type ValidationError struct {
	Field string
	Value string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Msg)
}
