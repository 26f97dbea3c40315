package commandlist

import (
	"context"
	"fmt"

	"github.com/slok/taskmgr/internal/command"
	"github.com/slok/taskmgr/internal/log"
	"github.com/slok/taskmgr/internal/model"
	"github.com/slok/taskmgr/internal/storage"
)

const noCommandsMessage = "Did not find any tasks"

// ServiceConfig is the configuration for the command list service.
type ServiceConfig struct {
	Repository storage.Repository
	Sources    []command.Source
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one command source is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.CommandList"})
	return nil
}

// Service builds the command catalog of a project.
type Service struct {
	repo    storage.Repository
	sources []command.Source
	logger  log.Logger
}

// NewService creates a new command list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:    cfg.Repository,
		sources: cfg.Sources,
		logger:  cfg.Logger,
	}, nil
}

// Request represents the command list request parameters.
type Request struct {
	NameOrID string
	// Refresh ignores the commands cached by the sources.
	Refresh bool
}

// Result is the command catalog of a project.
type Result struct {
	Project    *model.Project
	Categories []command.Category
}

// Run returns one category per source. A source that fails or has nothing to
// run gets a category with the reason instead of failing the catalog.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	p, err := storage.GetProjectByNameOrID(ctx, s.repo, req.NameOrID)
	if err != nil {
		return nil, err
	}

	res := &Result{Project: p}
	for _, src := range s.sources {
		cat := command.Category{Title: src.Title()}

		cmds, err := src.GetCommands(ctx, p, !req.Refresh)
		switch {
		case err != nil:
			s.logger.Warningf("Could not load %s commands of %s: %s", cat.Title, p.Name, err)
			cat.Error = fmt.Sprintf("Failed to load tasks for this project (%s). Did you install the npm modules?", err)
		case len(cmds) == 0:
			cat.Error = noCommandsMessage
		default:
			cat.Commands = cmds
		}

		res.Categories = append(res.Categories, cat)
	}

	return res, nil
}
