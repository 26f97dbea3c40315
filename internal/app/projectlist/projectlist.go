package projectlist

import (
	"context"
	"fmt"
	"strings"

	"github.com/slok/taskmgr/internal/log"
	"github.com/slok/taskmgr/internal/model"
	"github.com/slok/taskmgr/internal/storage"
)

// ServiceConfig is the configuration for the project list service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.ProjectList"})
	return nil
}

// Service lists projects.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new project list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the project list request parameters.
type Request struct {
	// NameFilter keeps only the projects whose name contains it.
	NameFilter string
}

// Run lists the registered projects, newest first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Project, error) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list projects: %w", err)
	}

	if req.NameFilter == "" {
		return projects, nil
	}

	filtered := make([]model.Project, 0, len(projects))
	for _, p := range projects {
		if strings.Contains(p.Name, req.NameFilter) {
			filtered = append(filtered, p)
		}
	}
	s.logger.Debugf("Filtered %d of %d projects", len(filtered), len(projects))

	return filtered, nil
}
