package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/taskmgr/internal/model"
	"github.com/slok/taskmgr/internal/storage/cache"
	"github.com/slok/taskmgr/internal/storage/memory"
)

func newTestRepository(t *testing.T) *cache.Repository {
	t.Helper()

	mem, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)
	repo, err := cache.NewRepository(cache.RepositoryConfig{Repository: mem})
	require.NoError(t, err)

	err = repo.CreateProject(context.TODO(), model.Project{
		ID:               "id1",
		Name:             "web",
		Path:             "/src/web",
		FavoriteCommands: []string{"npm start"},
		CreatedAt:        time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	return repo
}

func TestNewRepository(t *testing.T) {
	_, err := cache.NewRepository(cache.RepositoryConfig{})
	assert.Error(t, err)
}

func TestRepositoryLookupsShareTheProject(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	repo := newTestRepository(t)

	byID, err := repo.GetProject(context.TODO(), "id1")
	require.NoError(err)
	byName, err := repo.GetProjectByName(context.TODO(), "web")
	require.NoError(err)

	assert.Same(byID, byName)
	assert.NotNil(byID.Meta)
}

func TestRepositoryUpdateKeepsMetadata(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	repo := newTestRepository(t)

	before, err := repo.GetProject(context.TODO(), "id1")
	require.NoError(err)
	before.Metadata().LoadOrStore("k", func() any { return "v" })

	updated := *before
	updated.FavoriteCommands = []string{"npm start", "npm test"}
	require.NoError(repo.UpdateProject(context.TODO(), updated))

	after, err := repo.GetProject(context.TODO(), "id1")
	require.NoError(err)

	assert.NotSame(before, after)
	assert.Equal([]string{"npm start"}, before.FavoriteCommands)
	assert.Equal([]string{"npm start", "npm test"}, after.FavoriteCommands)
	assert.Same(before.Meta, after.Meta)
	v, ok := after.Meta.Load("k")
	assert.True(ok)
	assert.Equal("v", v)
}

func TestRepositoryDeleteForgetsTheProject(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	repo := newTestRepository(t)

	before, err := repo.GetProject(context.TODO(), "id1")
	require.NoError(err)
	require.NoError(repo.DeleteProject(context.TODO(), "id1"))

	_, err = repo.GetProject(context.TODO(), "id1")
	assert.ErrorIs(err, model.ErrNotFound)

	p := *before
	p.Meta = nil
	require.NoError(repo.CreateProject(context.TODO(), p))
	after, err := repo.GetProject(context.TODO(), "id1")
	require.NoError(err)
	assert.NotSame(before.Meta, after.Meta)
}
