package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/slok/taskmgr/internal/model"
)

// Repository is the interface for project persistence.
//
//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name Repository --structname MockRepository
type Repository interface {
	CreateProject(ctx context.Context, p model.Project) error
	GetProject(ctx context.Context, id string) (*model.Project, error)
	GetProjectByName(ctx context.Context, name string) (*model.Project, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
	UpdateProject(ctx context.Context, p model.Project) error
	DeleteProject(ctx context.Context, id string) error
}

// GetProjectByNameOrID looks up a project by name first, then by ID if it
// looks like a ULID.
func GetProjectByNameOrID(ctx context.Context, repo Repository, nameOrID string) (*model.Project, error) {
	p, err := repo.GetProjectByName(ctx, nameOrID)
	if errors.Is(err, model.ErrNotFound) && looksLikeULID(nameOrID) {
		p, err = repo.GetProject(ctx, nameOrID)
	}
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("project not found: %s: %w", nameOrID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get project: %w", err)
	}

	return p, nil
}

func looksLikeULID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
