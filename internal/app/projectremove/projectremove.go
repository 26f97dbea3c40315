package projectremove

import (
	"context"
	"fmt"

	"github.com/slok/taskmgr/internal/log"
	"github.com/slok/taskmgr/internal/model"
	"github.com/slok/taskmgr/internal/storage"
)

// ServiceConfig is the configuration for the project remove service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.ProjectRemove"})
	return nil
}

// Service removes a project.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new project remove service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the project remove request parameters.
type Request struct {
	// NameOrID is the project name or ID to remove.
	NameOrID string
}

// Run unregisters a project by name or ID. The project directory is not touched.
func (s *Service) Run(ctx context.Context, req Request) (*model.Project, error) {
	s.logger.Debugf("removing project: %s", req.NameOrID)

	p, err := storage.GetProjectByNameOrID(ctx, s.repo, req.NameOrID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteProject(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("could not delete project from repository: %w", err)
	}

	s.logger.Infof("removed project: %s (ID: %s)", p.Name, p.ID)
	return p, nil
}
