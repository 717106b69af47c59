package models

import (
	"strconv"
	"strings"
)

// LogRow is one normalized result row of a log query, keyed by field name
type LogRow map[string]string

// Get returns the value of a field and whether the row carries it
func (r LogRow) Get(field string) (string, bool) {
	v, ok := r[field]
	return v, ok
}

// TaskOutcome is a task completion record parsed from the engine log.
// A nil field means the log line did not carry that marker.
type TaskOutcome struct {
	ID      *string `json:"id,omitempty"`
	Name    *string `json:"name,omitempty"`
	Status  *string `json:"status,omitempty"`
	Exit    *string `json:"exit,omitempty"`
	Error   *string `json:"error,omitempty"`
	WorkDir *string `json:"workDir,omitempty"`
}

// Field names used by task completion rows
const (
	TaskFieldID      = "id"
	TaskFieldName    = "name"
	TaskFieldStatus  = "status"
	TaskFieldExit    = "exit"
	TaskFieldError   = "error"
	TaskFieldWorkDir = "workDir"
)

// TaskOutcomeFromRow maps a log row onto a TaskOutcome, leaving missing fields nil
func TaskOutcomeFromRow(row LogRow) TaskOutcome {
	field := func(name string) *string {
		if v, ok := row.Get(name); ok {
			return &v
		}
		return nil
	}

	return TaskOutcome{
		ID:      field(TaskFieldID),
		Name:    field(TaskFieldName),
		Status:  field(TaskFieldStatus),
		Exit:    field(TaskFieldExit),
		Error:   field(TaskFieldError),
		WorkDir: field(TaskFieldWorkDir),
	}
}

// ExitCode coerces the exit field to an integer.
// Returns false if the field is absent or not numeric (e.g. "-" for tasks that never ran).
func (t TaskOutcome) ExitCode() (int, bool) {
	if t.Exit == nil {
		return 0, false
	}
	code, err := strconv.Atoi(strings.TrimSpace(*t.Exit))
	if err != nil {
		return 0, false
	}
	return code, true
}

// TaskSummary is the task outcome list of one workflow run
type TaskSummary struct {
	ID      string        `json:"id"`
	Outputs []TaskOutcome `json:"outputs"`
}
