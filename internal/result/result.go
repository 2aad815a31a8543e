// Package result defines the outcome model for plugin tasks.
package result

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/setevik/nodescan/internal/event"
)

// Status is the overall outcome of a collector or analyzer task.
type Status int

const (
	StatusNotRan Status = iota
	StatusOK
	StatusWarning
	StatusError
	// StatusExecutionFailure means the task itself failed to run (command
	// missing, unreadable file), as opposed to finding problems on the node.
	StatusExecutionFailure
)

var statusNames = map[Status]string{
	StatusNotRan:           "NOT_RAN",
	StatusOK:               "OK",
	StatusWarning:          "WARNING",
	StatusError:            "ERROR",
	StatusExecutionFailure: "EXECUTION_FAILURE",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalJSON serializes the status as its name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Result holds the outcome of one plugin task together with the events it
// produced.
type Result struct {
	Task      string         `json:"task"`
	Status    Status         `json:"status"`
	Message   string         `json:"message,omitempty"`
	Events    []*event.Event `json:"events,omitempty"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`
}

// New returns a Result for the named task with the clock started.
func New(task string) *Result {
	return &Result{
		Task:      task,
		StartTime: time.Now().UTC(),
	}
}

// Finish stamps the end time and returns the result for chaining.
func (r *Result) Finish() *Result {
	r.EndTime = time.Now().UTC()
	return r
}

// Duration returns the task's elapsed time.
func (r *Result) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Fail marks the result as an execution failure with the given error.
func (r *Result) Fail(err error) *Result {
	r.Status = StatusExecutionFailure
	r.Message = err.Error()
	return r.Finish()
}

// StatusFromEvents derives the overall status from a set of events: any
// event at or above ERROR severity means ERROR, otherwise any WARNING means
// WARNING, otherwise OK.
func StatusFromEvents(events []*event.Event) Status {
	status := StatusOK
	for _, ev := range events {
		switch {
		case ev.Severity >= event.SevError:
			return StatusError
		case ev.Severity == event.SevWarning:
			status = StatusWarning
		}
	}
	return status
}
