package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/slok/taskmgr/internal/log"
	"github.com/slok/taskmgr/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository.
type Repository struct {
	projects map[string]model.Project
	mu       sync.RWMutex
	logger   log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		projects: make(map[string]model.Project),
		logger:   cfg.Logger,
	}, nil
}

// CreateProject creates a new project in the repository.
func (r *Repository) CreateProject(ctx context.Context, p model.Project) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[p.ID]; ok {
		return fmt.Errorf("project with id %s: %w", p.ID, model.ErrAlreadyExists)
	}

	for _, existing := range r.projects {
		if existing.Name == p.Name {
			return fmt.Errorf("project with name %s: %w", p.Name, model.ErrAlreadyExists)
		}
	}

	r.projects[p.ID] = copyProject(p)
	r.logger.Debugf("Created project in repository: %s", p.ID)

	return nil
}

// GetProject retrieves a project by ID.
func (r *Repository) GetProject(ctx context.Context, id string) (*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, model.ErrNotFound)
	}

	pc := copyProject(p)
	return &pc, nil
}

// GetProjectByName retrieves a project by name.
func (r *Repository) GetProjectByName(ctx context.Context, name string) (*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.projects {
		if p.Name == name {
			pc := copyProject(p)
			return &pc, nil
		}
	}

	return nil, fmt.Errorf("project with name %s: %w", name, model.ErrNotFound)
}

// ListProjects returns all projects, newest first.
func (r *Repository) ListProjects(ctx context.Context) ([]model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	projects := make([]model.Project, 0, len(r.projects))
	for _, p := range r.projects {
		projects = append(projects, copyProject(p))
	}

	sort.SliceStable(projects, func(i, j int) bool {
		if projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].Name < projects[j].Name
		}
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})

	return projects, nil
}

// UpdateProject updates an existing project.
func (r *Repository) UpdateProject(ctx context.Context, p model.Project) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[p.ID]; !ok {
		return fmt.Errorf("project %s: %w", p.ID, model.ErrNotFound)
	}

	for _, existing := range r.projects {
		if existing.ID != p.ID && existing.Name == p.Name {
			return fmt.Errorf("project with name %s: %w", p.Name, model.ErrAlreadyExists)
		}
	}

	r.projects[p.ID] = copyProject(p)
	r.logger.Debugf("Updated project in repository: %s", p.ID)

	return nil
}

// DeleteProject deletes a project.
func (r *Repository) DeleteProject(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[id]; !ok {
		return fmt.Errorf("project %s: %w", id, model.ErrNotFound)
	}

	delete(r.projects, id)
	r.logger.Debugf("Deleted project from repository: %s", id)

	return nil
}

// copyProject returns a copy of the persisted data, the runtime metadata is not stored.
func copyProject(p model.Project) model.Project {
	c := p
	c.Meta = nil
	if p.FavoriteCommands != nil {
		c.FavoriteCommands = make([]string, len(p.FavoriteCommands))
		copy(c.FavoriteCommands, p.FavoriteCommands)
	}
	return c
}
