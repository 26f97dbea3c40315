package favorite

import (
	"context"
	"fmt"
	"strings"

	"github.com/slok/taskmgr/internal/log"
	"github.com/slok/taskmgr/internal/model"
	"github.com/slok/taskmgr/internal/storage"
)

// ServiceConfig is the configuration for the favorite service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Favorite"})
	return nil
}

// Service manages the favorite commands of a project.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new favorite service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the favorite request parameters.
type Request struct {
	NameOrID string
	// Command is the command description (e.g. `npm run build`).
	Command string
	// Remove unmarks the command instead of marking it.
	Remove bool
}

// Run marks or unmarks a command as favorite of a project.
func (s *Service) Run(ctx context.Context, req Request) (*model.Project, error) {
	cmd := strings.Join(strings.Fields(req.Command), " ")
	if cmd == "" {
		return nil, fmt.Errorf("command is required: %w", model.ErrNotValid)
	}

	p, err := storage.GetProjectByNameOrID(ctx, s.repo, req.NameOrID)
	if err != nil {
		return nil, err
	}

	// Looked up projects can be shared, the update works on a copy.
	updated := *p
	switch {
	case req.Remove && !p.IsFavorite(cmd):
		return nil, fmt.Errorf("%q is not a favorite of %s: %w", cmd, p.Name, model.ErrNotFound)
	case req.Remove:
		updated.FavoriteCommands = make([]string, 0, len(p.FavoriteCommands))
		for _, f := range p.FavoriteCommands {
			if f != cmd {
				updated.FavoriteCommands = append(updated.FavoriteCommands, f)
			}
		}
	case p.IsFavorite(cmd):
		return nil, fmt.Errorf("%q is already a favorite of %s: %w", cmd, p.Name, model.ErrAlreadyExists)
	default:
		updated.FavoriteCommands = append(append([]string{}, p.FavoriteCommands...), cmd)
	}

	if err := s.repo.UpdateProject(ctx, updated); err != nil {
		return nil, fmt.Errorf("could not update project: %w", err)
	}

	s.logger.Infof("Updated favorites of project %s: %q (removed: %t)", p.Name, cmd, req.Remove)
	return &updated, nil
}
