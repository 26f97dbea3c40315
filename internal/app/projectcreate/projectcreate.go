package projectcreate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/taskmgr/internal/log"
	"github.com/slok/taskmgr/internal/model"
	"github.com/slok/taskmgr/internal/storage"
)

// ServiceConfig is the configuration for the project create service.
type ServiceConfig struct {
	Repository  storage.Repository
	IDGenerator func() string
	Now         func() time.Time
	Logger      log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.IDGenerator == nil {
		c.IDGenerator = func() string { return ulid.Make().String() }
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.ProjectCreate"})
	return nil
}

// Service registers projects.
type Service struct {
	repo   storage.Repository
	newID  func() string
	now    func() time.Time
	logger log.Logger
}

// NewService creates a new project create service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		newID:  cfg.IDGenerator,
		now:    cfg.Now,
		logger: cfg.Logger,
	}, nil
}

// Request represents the project create request parameters.
type Request struct {
	// Name of the project, defaults to the directory name.
	Name string
	// Path is the project directory, relative paths are resolved from the working directory.
	Path string
	// Favorites are the favorite commands, nil uses the defaults.
	Favorites []string
}

// Run registers a project directory.
func (s *Service) Run(ctx context.Context, req Request) (*model.Project, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("path is required: %w", model.ErrNotValid)
	}

	path, err := filepath.Abs(req.Path)
	if err != nil {
		return nil, fmt.Errorf("could not resolve project path: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("could not stat project path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project path %q is not a directory: %w", path, model.ErrNotValid)
	}

	name := req.Name
	if name == "" {
		name = filepath.Base(path)
	}

	favorites := req.Favorites
	if favorites == nil {
		favorites = append([]string{}, model.DefaultFavoriteCommands...)
	}

	p := model.Project{
		ID:               s.newID(),
		Name:             name,
		Path:             path,
		FavoriteCommands: favorites,
		CreatedAt:        s.now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	_, err = s.repo.GetProjectByName(ctx, name)
	if err == nil {
		return nil, fmt.Errorf("project with name %q already exists: %w", name, model.ErrAlreadyExists)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("could not check name uniqueness: %w", err)
	}

	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("could not save project: %w", err)
	}

	s.logger.Infof("Created project: %s (%s)", p.Name, p.ID)

	return &p, nil
}
