// Package script replays YAML scripts of view operations and edits against a
// session.
package script

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Script is a named list of steps, optionally bound to a sheet.
type Script struct {
	Name  string `yaml:"name" json:"name"`
	Sheet string `yaml:"sheet,omitempty" json:"sheet,omitempty"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// Step is one operation. Which fields matter depends on the action.
type Step struct {
	Action    string `yaml:"action" json:"action"`
	Column    string `yaml:"column,omitempty" json:"column,omitempty"`
	To        string `yaml:"to,omitempty" json:"to,omitempty"`
	After     string `yaml:"after,omitempty" json:"after,omitempty"`
	Direction string `yaml:"direction,omitempty" json:"direction,omitempty"`
	Query     string `yaml:"query,omitempty" json:"query,omitempty"`
	Expr      string `yaml:"expr,omitempty" json:"expr,omitempty"`
	From      string `yaml:"from,omitempty" json:"from,omitempty"`
	Row       int    `yaml:"row,omitempty" json:"row,omitempty"`
	Value     string `yaml:"value,omitempty" json:"value,omitempty"`
	OnFailure string `yaml:"on_failure,omitempty" json:"onFailure,omitempty"`
}

// String renders the step as a short description for logs and errors.
func (s Step) String() string {
	var b strings.Builder
	b.WriteString(s.Action)
	if s.Column != "" {
		fmt.Fprintf(&b, " %q", s.Column)
	}
	return b.String()
}

// continues reports whether a failure of the step should not stop the script.
func (s Step) continues() bool {
	return s.OnFailure == "continue" || s.OnFailure == "skip"
}

// StepResult records the outcome of one step.
type StepResult struct {
	Step  int    `json:"step"`
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("script file not found: %s — check that the path is correct", path)
		}
		return nil, fmt.Errorf("could not read script file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses a script from YAML bytes.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid script YAML: %w", err)
	}

	if err := validate(&s); err != nil {
		return nil, err
	}

	return &s, nil
}

func validate(s *Script) error {
	if s.Name == "" {
		return fmt.Errorf("script is missing a 'name' field")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("script %q has no steps defined", s.Name)
	}

	for i, step := range s.Steps {
		if step.Action == "" {
			return fmt.Errorf("step %d is missing an 'action' field", i+1)
		}
		if _, ok := builtins[step.Action]; !ok {
			return fmt.Errorf("step %d has unknown action %q — known actions: %s",
				i+1, step.Action, strings.Join(names(builtins), ", "))
		}
		switch step.OnFailure {
		case "", "stop", "continue", "skip":
		default:
			return fmt.Errorf("step %d has invalid on_failure %q — use stop or continue", i+1, step.OnFailure)
		}
	}

	return nil
}
