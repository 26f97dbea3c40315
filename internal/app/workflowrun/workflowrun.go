package workflowrun

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/slok/taskmgr/internal/conventions"
	"github.com/slok/taskmgr/internal/log"
	"github.com/slok/taskmgr/internal/model"
	"github.com/slok/taskmgr/internal/storage"
	"github.com/slok/taskmgr/internal/workflow"
)

// WorkflowRepository loads workflow definitions.
type WorkflowRepository interface {
	GetWorkflow(ctx context.Context, path string) (workflow.Workflow, error)
}

// WorkflowRunner runs a workflow until it ends.
type WorkflowRunner interface {
	Run(ctx context.Context, project *model.Project, wf workflow.Workflow) (*workflow.Result, error)
}

// ServiceConfig is the configuration for the workflow run service.
type ServiceConfig struct {
	Repository         storage.Repository
	WorkflowRepository WorkflowRepository
	Runner             WorkflowRunner
	Logger             log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.WorkflowRepository == nil {
		return fmt.Errorf("workflow repository is required")
	}
	if c.Runner == nil {
		return fmt.Errorf("workflow runner is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.WorkflowRun"})
	return nil
}

// Service runs the workflow definitions of projects.
type Service struct {
	repo   storage.Repository
	wfRepo WorkflowRepository
	runner WorkflowRunner
	logger log.Logger
}

// NewService creates a new workflow run service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		wfRepo: cfg.WorkflowRepository,
		runner: cfg.Runner,
		logger: cfg.Logger,
	}, nil
}

// Request represents the workflow run request parameters.
type Request struct {
	NameOrID string
	// Path is the workflow definition file, relative paths are resolved from
	// the project directory. Defaults to the project taskmgr.yaml.
	Path string
}

// Run loads the workflow definition and runs it on the project.
func (s *Service) Run(ctx context.Context, req Request) (*workflow.Result, error) {
	p, err := storage.GetProjectByNameOrID(ctx, s.repo, req.NameOrID)
	if err != nil {
		return nil, err
	}

	path := req.Path
	switch {
	case path == "":
		path = conventions.ProjectWorkflowPath(p.Path)
	case !filepath.IsAbs(path):
		path = filepath.Join(p.Path, path)
	}

	// Definitions are read from a filesystem rooted at /.
	wf, err := s.wfRepo.GetWorkflow(ctx, strings.TrimPrefix(filepath.ToSlash(path), "/"))
	if err != nil {
		return nil, fmt.Errorf("could not load workflow %s: %w", path, err)
	}

	s.logger.Infof("Running workflow %q on project %s", wf.Name, p.Name)

	return s.runner.Run(ctx, p, wf)
}
