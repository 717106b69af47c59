package spec

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"batch-run-inspector/core/models"

	"gopkg.in/yaml.v3"
)

// ParseMode selects where task completion fields are extracted
type ParseMode string

const (
	// ParseServer extracts fields with the backend's parse command
	ParseServer ParseMode = "server"
	// ParseLocal fetches raw messages and extracts fields in-process
	ParseLocal ParseMode = "local"
)

// MessageField is the raw log line field of a result row
const MessageField = "@message"

// taskFieldNames are the completion fields a TaskOutcome carries
var taskFieldNames = []string{
	models.TaskFieldID,
	models.TaskFieldName,
	models.TaskFieldStatus,
	models.TaskFieldExit,
	models.TaskFieldError,
	models.TaskFieldWorkDir,
}

var taskFields = func() map[string]bool {
	m := make(map[string]bool, len(taskFieldNames))
	for _, name := range taskFieldNames {
		m[name] = true
	}
	return m
}()

// Profile describes how a workflow engine announces task completions and
// child job submissions in its log stream
type Profile struct {
	Engine          string          `yaml:"engine"`
	TaskCompletion  TaskCompletion  `yaml:"task_completion"`
	ChildSubmission ChildSubmission `yaml:"child_submission"`
}

// TaskCompletion is the completion marker and the fields carried by a completion line
type TaskCompletion struct {
	Marker string        `yaml:"marker"`
	Parse  ParseMode     `yaml:"parse,omitempty"`
	Fields []FieldMarker `yaml:"fields"`
}

// ChildSubmission is the announcement logged when the engine submits a child job
type ChildSubmission struct {
	Marker  string      `yaml:"marker"`
	IDField FieldMarker `yaml:"id_field"`
}

// FieldMarker locates a value between a literal prefix and the next terminator
type FieldMarker struct {
	Name       string `yaml:"name"`
	Prefix     string `yaml:"prefix"`
	Terminator string `yaml:"terminator"`
}

// NextflowProfile returns the profile matching Nextflow's AWS Batch executor logs
func NextflowProfile() *Profile {
	return &Profile{
		Engine: "nextflow",
		TaskCompletion: TaskCompletion{
			Marker: "TaskPollingMonitor - Task completed",
			Parse:  ParseServer,
			Fields: []FieldMarker{
				{Name: "id", Prefix: "id: ", Terminator: ";"},
				{Name: "name", Prefix: "name: ", Terminator: ";"},
				{Name: "status", Prefix: "status: ", Terminator: ";"},
				{Name: "exit", Prefix: "exit: ", Terminator: ";"},
				{Name: "error", Prefix: "error: ", Terminator: ";"},
				{Name: "workDir", Prefix: "workDir: ", Terminator: "]"},
			},
		},
		ChildSubmission: ChildSubmission{
			Marker:  "[AWS BATCH] submitted",
			IDField: FieldMarker{Name: "jobId", Prefix: "job=", Terminator: ";"},
		},
	}
}

// ParseProfile parses a YAML engine profile
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if p.TaskCompletion.Parse == "" {
		p.TaskCompletion.Parse = ParseServer
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadProfile reads the profile at path, or returns the Nextflow profile if path is empty
func LoadProfile(path string) (*Profile, error) {
	if path == "" {
		return NextflowProfile(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read engine profile: %w", err)
	}
	return ParseProfile(data)
}

// Validate checks that every marker the queries depend on is set
func (p *Profile) Validate() error {
	var errs []error

	if p.TaskCompletion.Marker == "" {
		errs = append(errs, errors.New("task_completion.marker is required"))
	}
	if len(p.TaskCompletion.Fields) == 0 {
		errs = append(errs, errors.New("task_completion.fields must not be empty"))
	}
	switch p.TaskCompletion.Parse {
	case ParseServer, ParseLocal:
	default:
		errs = append(errs, fmt.Errorf("task_completion.parse: unknown mode %q", p.TaskCompletion.Parse))
	}

	seen := map[string]bool{}
	for i, f := range p.TaskCompletion.Fields {
		if err := f.validate(); err != nil {
			errs = append(errs, fmt.Errorf("task_completion.fields[%d]: %w", i, err))
		}
		if f.Name != "" && !taskFields[f.Name] {
			errs = append(errs, fmt.Errorf("task_completion.fields[%d]: unknown field %q, want one of %s",
				i, f.Name, strings.Join(taskFieldNames, ", ")))
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Errorf("task_completion.fields[%d]: duplicate field %q", i, f.Name))
		}
		seen[f.Name] = true
	}

	if p.ChildSubmission.Marker == "" {
		errs = append(errs, errors.New("child_submission.marker is required"))
	}
	if err := p.ChildSubmission.IDField.validate(); err != nil {
		errs = append(errs, fmt.Errorf("child_submission.id_field: %w", err))
	}

	return errors.Join(errs...)
}

func (f FieldMarker) validate() error {
	if f.Name == "" {
		return errors.New("name is required")
	}
	if f.Prefix == "" {
		return errors.New("prefix is required")
	}
	if f.Terminator == "" {
		return errors.New("terminator is required")
	}
	if strings.ContainsAny(f.Prefix+f.Terminator, "'*") {
		return errors.New("prefix and terminator must not contain ' or *")
	}
	return nil
}

// Pattern returns the glob the backend's parse command matches, e.g. 'name: *;'
func (f FieldMarker) Pattern() string {
	return "'" + f.Prefix + "*" + f.Terminator + "'"
}

// Extract returns the text between the first prefix occurrence and the next terminator.
// Returns false if either is missing from the line.
func (f FieldMarker) Extract(line string) (string, bool) {
	_, rest, ok := strings.Cut(line, f.Prefix)
	if !ok {
		return "", false
	}
	value, _, ok := strings.Cut(rest, f.Terminator)
	if !ok {
		return "", false
	}
	return value, true
}

// ExtractFields applies every task completion marker to a raw log line.
// Markers missing from the line are left out of the result.
func (t TaskCompletion) ExtractFields(line string) map[string]string {
	fields := make(map[string]string, len(t.Fields))
	for _, f := range t.Fields {
		if v, ok := f.Extract(line); ok {
			fields[f.Name] = v
		}
	}
	return fields
}

// FieldNames returns the completion field names in display order
func (t TaskCompletion) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}
