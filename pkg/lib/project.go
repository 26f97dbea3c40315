package lib

import (
	"context"
	"fmt"

	"github.com/slok/taskmgr/internal/app/commandlist"
	"github.com/slok/taskmgr/internal/app/favorite"
	"github.com/slok/taskmgr/internal/app/projectcreate"
	"github.com/slok/taskmgr/internal/app/projectlist"
	"github.com/slok/taskmgr/internal/app/projectremove"
	"github.com/slok/taskmgr/internal/storage"
)

// CreateProject registers a project directory.
func (c *Client) CreateProject(ctx context.Context, opts CreateProjectOpts) (*Project, error) {
	svc, err := projectcreate.NewService(projectcreate.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	p, err := svc.Run(ctx, projectcreate.Request{
		Name:      opts.Name,
		Path:      opts.Path,
		Favorites: opts.FavoriteCommands,
	})
	if err != nil {
		return nil, mapError(err)
	}

	res := fromInternalProject(*p)
	return &res, nil
}

// GetProject returns a project by name or ID.
func (c *Client) GetProject(ctx context.Context, nameOrID string) (*Project, error) {
	p, err := storage.GetProjectByNameOrID(ctx, c.repo, nameOrID)
	if err != nil {
		return nil, mapError(err)
	}

	res := fromInternalProject(*p)
	return &res, nil
}

// ListProjects returns the registered projects, newest first.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	svc, err := projectlist.NewService(projectlist.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	ps, err := svc.Run(ctx, projectlist.Request{})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalProjectList(ps), nil
}

// RemoveProject unregisters a project, its directory is not touched.
func (c *Client) RemoveProject(ctx context.Context, nameOrID string) error {
	svc, err := projectremove.NewService(projectremove.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	_, err = svc.Run(ctx, projectremove.Request{NameOrID: nameOrID})
	return mapError(err)
}

// AddFavorite marks a command description (e.g. `npm run build`) as favorite.
func (c *Client) AddFavorite(ctx context.Context, nameOrID, cmd string) (*Project, error) {
	return c.favorite(ctx, favorite.Request{NameOrID: nameOrID, Command: cmd})
}

// RemoveFavorite unmarks a favorite command description.
func (c *Client) RemoveFavorite(ctx context.Context, nameOrID, cmd string) (*Project, error) {
	return c.favorite(ctx, favorite.Request{NameOrID: nameOrID, Command: cmd, Remove: true})
}

func (c *Client) favorite(ctx context.Context, req favorite.Request) (*Project, error) {
	svc, err := favorite.NewService(favorite.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	p, err := svc.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	res := fromInternalProject(*p)
	return &res, nil
}

// ListCommands returns the runnable commands of a project grouped by source.
// Pass refresh to skip the commands discovered on previous calls.
func (c *Client) ListCommands(ctx context.Context, nameOrID string, refresh bool) ([]CommandCategory, error) {
	svc, err := commandlist.NewService(commandlist.ServiceConfig{
		Repository: c.repo,
		Sources:    c.sources,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, commandlist.Request{NameOrID: nameOrID, Refresh: refresh})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalCategories(res.Categories), nil
}
