package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/taskmgr/internal/log"
	"github.com/slok/taskmgr/internal/model"
	"github.com/slok/taskmgr/internal/storage/sqlite"
)

func projectFixture(id, name string) model.Project {
	return model.Project{
		ID:               id,
		Name:             name,
		Path:             "/home/user/src/" + name,
		FavoriteCommands: []string{"npm start", "gulp watch"},
		CreatedAt:        time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC),
	}
}

func newRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Logger: log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestNewRepositoryInvalidConfig(t *testing.T) {
	_, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{})
	assert.Error(t, err)
}

func TestRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	p := projectFixture("id-1", "web")
	require.NoError(t, repo.CreateProject(ctx, p))

	got, err := repo.GetProject(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, p, *got)

	gotByName, err := repo.GetProjectByName(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, "id-1", gotByName.ID)

	p.Path = "/srv/web"
	p.FavoriteCommands = []string{"npm run build"}
	require.NoError(t, repo.UpdateProject(ctx, p))

	got, err = repo.GetProject(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "/srv/web", got.Path)
	assert.Equal(t, []string{"npm run build"}, got.FavoriteCommands)

	require.NoError(t, repo.DeleteProject(ctx, "id-1"))
	_, err = repo.GetProject(ctx, "id-1")
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestRepositoryErrors(t *testing.T) {
	tests := map[string]struct {
		actions func(ctx context.Context, repo *sqlite.Repository) error
		expErr  error
	}{
		"Creating duplicate ID should fail.": {
			actions: func(ctx context.Context, repo *sqlite.Repository) error {
				_ = repo.CreateProject(ctx, projectFixture("id-1", "web"))
				return repo.CreateProject(ctx, projectFixture("id-1", "api"))
			},
			expErr: model.ErrAlreadyExists,
		},
		"Creating duplicate name should fail.": {
			actions: func(ctx context.Context, repo *sqlite.Repository) error {
				_ = repo.CreateProject(ctx, projectFixture("id-1", "web"))
				return repo.CreateProject(ctx, projectFixture("id-2", "web"))
			},
			expErr: model.ErrAlreadyExists,
		},
		"Creating an invalid project should fail.": {
			actions: func(ctx context.Context, repo *sqlite.Repository) error {
				return repo.CreateProject(ctx, model.Project{ID: "id-1"})
			},
			expErr: model.ErrNotValid,
		},
		"Getting a missing project should fail.": {
			actions: func(ctx context.Context, repo *sqlite.Repository) error {
				_, err := repo.GetProject(ctx, "missing")
				return err
			},
			expErr: model.ErrNotFound,
		},
		"Getting a missing project by name should fail.": {
			actions: func(ctx context.Context, repo *sqlite.Repository) error {
				_, err := repo.GetProjectByName(ctx, "missing")
				return err
			},
			expErr: model.ErrNotFound,
		},
		"Updating a missing project should fail.": {
			actions: func(ctx context.Context, repo *sqlite.Repository) error {
				return repo.UpdateProject(ctx, projectFixture("id-1", "web"))
			},
			expErr: model.ErrNotFound,
		},
		"Updating a project with the name of other should fail.": {
			actions: func(ctx context.Context, repo *sqlite.Repository) error {
				_ = repo.CreateProject(ctx, projectFixture("id-1", "web"))
				_ = repo.CreateProject(ctx, projectFixture("id-2", "api"))
				return repo.UpdateProject(ctx, projectFixture("id-2", "web"))
			},
			expErr: model.ErrAlreadyExists,
		},
		"Deleting a missing project should fail.": {
			actions: func(ctx context.Context, repo *sqlite.Repository) error {
				return repo.DeleteProject(ctx, "missing")
			},
			expErr: model.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			err := test.actions(context.Background(), repo)
			assert.ErrorIs(t, err, test.expErr)
		})
	}
}

func TestRepositoryListProjects(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	projects, err := repo.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)

	old := projectFixture("id-1", "old")
	recent := projectFixture("id-2", "recent")
	recent.CreatedAt = old.CreatedAt.Add(time.Hour)
	recent.FavoriteCommands = []string{}
	require.NoError(t, repo.CreateProject(ctx, old))
	require.NoError(t, repo.CreateProject(ctx, recent))

	projects, err = repo.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, recent, projects[0])
	assert.Equal(t, old, projects[1])
}

func TestRepositoryPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "data", "taskmgr.db")

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{DBPath: dbPath})
	require.NoError(t, err)
	require.NoError(t, repo.CreateProject(ctx, projectFixture("id-1", "web")))
	require.NoError(t, repo.Close())

	repo, err = sqlite.NewRepository(ctx, sqlite.RepositoryConfig{DBPath: dbPath})
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.GetProjectByName(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, []string{"npm start", "gulp watch"}, got.FavoriteCommands)
}
