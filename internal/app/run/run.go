package run

import (
	"context"
	"fmt"

	"github.com/slok/taskmgr/internal/command"
	"github.com/slok/taskmgr/internal/log"
	"github.com/slok/taskmgr/internal/model"
	"github.com/slok/taskmgr/internal/phase"
	"github.com/slok/taskmgr/internal/storage"
	"github.com/slok/taskmgr/internal/workflow"
)

// WorkflowRunner runs a workflow until it ends.
type WorkflowRunner interface {
	Run(ctx context.Context, project *model.Project, wf workflow.Workflow) (*workflow.Result, error)
}

// ServiceConfig is the configuration for the run service.
type ServiceConfig struct {
	Repository storage.Repository
	Runner     WorkflowRunner
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Runner == nil {
		return fmt.Errorf("workflow runner is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Run"})
	return nil
}

// Service runs a single command of a project as a task.
type Service struct {
	repo   storage.Repository
	runner WorkflowRunner
	logger log.Logger
}

// NewService creates a new run service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		runner: cfg.Runner,
		logger: cfg.Logger,
	}, nil
}

// Request represents the run request parameters.
type Request struct {
	NameOrID string
	Command  command.Command
}

// Run adds the command task to the manager, starts it and waits until it
// ends. Cancelling ctx stops the task.
func (s *Service) Run(ctx context.Context, req Request) (*workflow.Result, error) {
	if req.Command.Command == "" {
		return nil, fmt.Errorf("command is required: %w", model.ErrNotValid)
	}

	p, err := storage.GetProjectByNameOrID(ctx, s.repo, req.NameOrID)
	if err != nil {
		return nil, err
	}

	desc := req.Command.Description()
	ph := phase.New(desc)
	if err := ph.AddStep(&phase.Step{Identifier: "command", Payload: req.Command}); err != nil {
		return nil, fmt.Errorf("could not create command step: %w", err)
	}

	s.logger.Infof("Running %q on project %s", desc, p.Name)

	return s.runner.Run(ctx, p, workflow.Workflow{Name: desc, Phases: []*phase.Phase{ph}})
}
