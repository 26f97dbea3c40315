package cache

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/slok/taskmgr/internal/log"
	"github.com/slok/taskmgr/internal/model"
	"github.com/slok/taskmgr/internal/storage"
)

// RepositoryConfig is the configuration for the cache repository.
type RepositoryConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.CacheRepository"})
	return nil
}

// Repository wraps a repository so every lookup of the same project returns a
// stable *model.Project sharing the runtime metadata (e.g. task history).
//
// Returned projects are shared and must not be mutated. When the stored
// project changes a new value is cached that keeps the previous metadata.
type Repository struct {
	storage.Repository

	mu       sync.Mutex
	projects map[string]*model.Project
	logger   log.Logger
}

var _ storage.Repository = &Repository{}

// NewRepository creates a new cache repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		Repository: cfg.Repository,
		projects:   map[string]*model.Project{},
		logger:     cfg.Logger,
	}, nil
}

func (r *Repository) GetProject(ctx context.Context, id string) (*model.Project, error) {
	p, err := r.Repository.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.cached(p), nil
}

func (r *Repository) GetProjectByName(ctx context.Context, name string) (*model.Project, error) {
	p, err := r.Repository.GetProjectByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return r.cached(p), nil
}

func (r *Repository) DeleteProject(ctx context.Context, id string) error {
	if err := r.Repository.DeleteProject(ctx, id); err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.projects, id)
	r.mu.Unlock()

	return nil
}

func (r *Repository) cached(p *model.Project) *model.Project {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.projects[p.ID]
	if ok && sameProject(current, p) {
		return current
	}

	fresh := *p
	fresh.FavoriteCommands = slices.Clone(p.FavoriteCommands)
	fresh.Meta = &model.Meta{}
	if ok {
		fresh.Meta = current.Metadata()
		r.logger.Debugf("Project %s changed, refreshing cache", p.ID)
	}
	r.projects[p.ID] = &fresh

	return &fresh
}

func sameProject(a, b *model.Project) bool {
	return a.Name == b.Name &&
		a.Path == b.Path &&
		a.CreatedAt.Equal(b.CreatedAt) &&
		slices.Equal(a.FavoriteCommands, b.FavoriteCommands)
}
