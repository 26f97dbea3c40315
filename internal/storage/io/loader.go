package io

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/slok/taskmgr/internal/command"
	"github.com/slok/taskmgr/internal/phase"
	"github.com/slok/taskmgr/internal/workflow"
)

// WorkflowYAMLRepository loads workflows from YAML files.
type WorkflowYAMLRepository struct {
	fs fs.FS
}

// NewWorkflowYAMLRepository creates a new YAML workflow repository.
func NewWorkflowYAMLRepository(filesystem fs.FS) *WorkflowYAMLRepository {
	return &WorkflowYAMLRepository{fs: filesystem}
}

// GetWorkflow loads a workflow from a YAML file and returns it with its phases
// already ordered.
func (r *WorkflowYAMLRepository) GetWorkflow(ctx context.Context, path string) (workflow.Workflow, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return workflow.Workflow{}, fmt.Errorf("reading workflow file: %w", err)
	}

	if ctx.Err() != nil {
		return workflow.Workflow{}, ctx.Err()
	}

	var wf Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return workflow.Workflow{}, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := wf.validate(); err != nil {
		return workflow.Workflow{}, fmt.Errorf("invalid workflow: %w", err)
	}

	return wf.toModel()
}

// Workflow represents the YAML structure of a workflow.
type Workflow struct {
	Name   string  `yaml:"name"`
	Phases []Phase `yaml:"phases"`
}

// Phase represents the YAML structure of a workflow phase.
type Phase struct {
	Description string `yaml:"description"`
	// Checked defaults to true.
	Checked *bool  `yaml:"checked,omitempty"`
	Steps   []Step `yaml:"steps"`
}

// Step represents the YAML structure of a phase step.
type Step struct {
	ID          string            `yaml:"id"`
	Description string            `yaml:"description"`
	Command     string            `yaml:"command"`
	Args        []string          `yaml:"args"`
	Env         map[string]string `yaml:"env"`
	Order       int               `yaml:"order"`
	// After places the step right after the step with this ID.
	After string `yaml:"after"`
}

func (w Workflow) validate() error {
	if w.Name == "" {
		return fmt.Errorf("name is required")
	}

	if len(w.Phases) == 0 {
		return fmt.Errorf("at least one phase is required")
	}

	for i, p := range w.Phases {
		if p.Description == "" {
			return fmt.Errorf("phase %d: description is required", i)
		}

		for j, s := range p.Steps {
			if s.ID == "" {
				return fmt.Errorf("phase %q step %d: id is required", p.Description, j)
			}
			if s.Command == "" {
				return fmt.Errorf("phase %q step %q: command is required", p.Description, s.ID)
			}
			if s.Order < 0 {
				return fmt.Errorf("phase %q step %q: order must be positive, got: %d", p.Description, s.ID, s.Order)
			}
			if s.After == s.ID {
				return fmt.Errorf("phase %q step %q: can't be after itself", p.Description, s.ID)
			}
		}
	}

	return nil
}

func (w Workflow) toModel() (workflow.Workflow, error) {
	wf := workflow.Workflow{Name: w.Name}

	for _, p := range w.Phases {
		ph := phase.New(p.Description)
		if p.Checked != nil {
			ph.Checked = *p.Checked
		}

		for _, s := range p.Steps {
			err := ph.AddStep(&phase.Step{
				Identifier:  s.ID,
				Description: s.Description,
				Order:       s.Order,
				Payload:     command.Command{Command: s.Command, Args: s.Args, Env: s.Env},
			})
			if err != nil {
				return workflow.Workflow{}, fmt.Errorf("phase %q: %w", p.Description, err)
			}
		}

		for _, s := range p.Steps {
			if s.After == "" {
				continue
			}
			if err := ph.MoveAfter(s.ID, s.After); err != nil {
				return workflow.Workflow{}, fmt.Errorf("phase %q step %q after %q: %w", p.Description, s.ID, s.After, err)
			}
		}

		wf.Phases = append(wf.Phases, ph)
	}

	return wf, nil
}
