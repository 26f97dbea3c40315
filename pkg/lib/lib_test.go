package lib_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/taskmgr/pkg/lib"
)

// newTestClient creates a client with a temp SQLite DB for test isolation.
func newTestClient(t *testing.T) *lib.Client {
	t.Helper()

	client, err := lib.New(context.Background(), lib.Config{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

func newTestProject(t *testing.T, client *lib.Client, name string) *lib.Project {
	t.Helper()

	p, err := client.CreateProject(context.Background(), lib.CreateProjectOpts{Name: name, Path: t.TempDir()})
	require.NoError(t, err)
	return p
}

func logMessages(t lib.Task) string {
	var b strings.Builder
	for _, l := range t.Logs {
		b.WriteString(l.Message)
		b.WriteString("\n")
	}
	return b.String()
}

func TestNew(t *testing.T) {
	tests := map[string]struct {
		cfg    lib.Config
		expErr bool
	}{
		"A memory storage should work.": {
			cfg: lib.Config{Storage: lib.StorageMemory},
		},
		"An unknown storage should fail.": {
			cfg:    lib.Config{Storage: "redis"},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			client, err := lib.New(context.Background(), test.cfg)
			if test.expErr {
				assert.ErrorIs(t, err, lib.ErrNotValid)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, client.Close())
		})
	}
}

func TestCreateProject(t *testing.T) {
	dir := t.TempDir()

	tests := map[string]struct {
		opts         lib.CreateProjectOpts
		expName      string
		expFavorites []string
		expIs        error
	}{
		"Creating a project should use the directory name and default favorites.": {
			opts:         lib.CreateProjectOpts{Path: dir},
			expName:      filepath.Base(dir),
			expFavorites: []string{"gulp watch", "au run --watch", "npm start", "dotnet restore", "gulp prepare-release"},
		},
		"Creating a project with favorites should use them.": {
			opts:         lib.CreateProjectOpts{Name: "web", Path: dir, FavoriteCommands: []string{"npm test"}},
			expName:      "web",
			expFavorites: []string{"npm test"},
		},
		"Creating a project without path should fail.": {
			opts:  lib.CreateProjectOpts{Name: "web"},
			expIs: lib.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			client := newTestClient(t)
			p, err := client.CreateProject(context.Background(), test.opts)
			if test.expIs != nil {
				assert.ErrorIs(err, test.expIs)
				return
			}
			require.NoError(err)
			assert.NotEmpty(p.ID)
			assert.Equal(test.expName, p.Name)
			assert.Equal(dir, p.Path)
			assert.Equal(test.expFavorites, p.FavoriteCommands)
		})
	}
}

func TestProjectLifecycle(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	client := newTestClient(t)
	p := newTestProject(t, client, "web")

	_, err := client.CreateProject(ctx, lib.CreateProjectOpts{Name: "web", Path: p.Path})
	assert.ErrorIs(err, lib.ErrAlreadyExists)

	got, err := client.GetProject(ctx, p.ID)
	require.NoError(err)
	assert.Equal(p.Name, got.Name)

	ps, err := client.ListProjects(ctx)
	require.NoError(err)
	require.Len(ps, 1)

	updated, err := client.AddFavorite(ctx, "web", "npm run build")
	require.NoError(err)
	assert.Contains(updated.FavoriteCommands, "npm run build")
	_, err = client.AddFavorite(ctx, "web", "npm run build")
	assert.ErrorIs(err, lib.ErrAlreadyExists)

	updated, err = client.RemoveFavorite(ctx, "web", "npm run build")
	require.NoError(err)
	assert.NotContains(updated.FavoriteCommands, "npm run build")

	require.NoError(client.RemoveProject(ctx, "web"))
	_, err = client.GetProject(ctx, "web")
	assert.ErrorIs(err, lib.ErrNotFound)
	assert.ErrorIs(client.RemoveProject(ctx, "web"), lib.ErrNotFound)
}

func TestListCommands(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	client := newTestClient(t)
	p := newTestProject(t, client, "web")

	cats, err := client.ListCommands(context.Background(), "web", false)
	require.NoError(err)
	require.Len(cats, 1)
	assert.Equal("Did not find any tasks", cats[0].Error)

	require.NoError(os.WriteFile(filepath.Join(p.Path, "package.json"), []byte(`{"scripts": {"build": "tsc"}}`), 0o644))
	require.NoError(os.WriteFile(filepath.Join(p.Path, "yarn.lock"), []byte(""), 0o644))

	cats, err = client.ListCommands(context.Background(), "web", true)
	require.NoError(err)
	require.Len(cats, 1)
	assert.Equal("NPM", cats[0].Title)
	assert.Equal([]lib.Command{
		{Command: "yarn", Args: []string{"install"}},
		{Command: "yarn", Args: []string{"run", "build"}},
	}, cats[0].Commands)
}

func TestRunCommand(t *testing.T) {
	tests := map[string]struct {
		cmd       lib.Command
		expStatus lib.TaskStatus
		expLogs   []string
		expIs     error
	}{
		"A successful command should finish with its output logged.": {
			cmd:       lib.Command{Command: "sh", Args: []string{"-c", "echo $WHO is here"}, Env: map[string]string{"WHO": "taskmgr"}},
			expStatus: lib.TaskStatusFinished,
			expLogs:   []string{"taskmgr is here", "finished"},
		},
		"A failing command should finish with the error logged.": {
			cmd:       lib.Command{Command: "sh", Args: []string{"-c", "echo oops >&2; exit 3"}},
			expStatus: lib.TaskStatusFinished,
			expLogs:   []string{"oops", "exit status 3"},
			expIs:     lib.ErrFailed,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			client := newTestClient(t)
			newTestProject(t, client, "web")

			task, err := client.RunCommand(context.Background(), "web", test.cmd)
			if test.expIs != nil {
				assert.ErrorIs(err, test.expIs)
			} else {
				assert.NoError(err)
			}

			require.NotNil(task)
			assert.Equal(test.expStatus, task.Status)
			assert.Equal("web", task.ProjectName)
			assert.NotNil(task.End)
			for _, l := range test.expLogs {
				assert.Contains(logMessages(*task), l)
			}
		})
	}
}

func TestRunCommandMissingProject(t *testing.T) {
	client := newTestClient(t)
	_, err := client.RunCommand(context.Background(), "missing", lib.Command{Command: "true"})
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestStartAndStopCommand(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	client := newTestClient(t)
	newTestProject(t, client, "web")

	var mu sync.Mutex
	var events []lib.TaskEvent
	unsubscribe := client.Subscribe(lib.TopicTaskFinished, func(e lib.TaskEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})
	defer unsubscribe()

	task, err := client.StartCommand(ctx, "web", lib.Command{Command: "sleep", Args: []string{"30"}})
	require.NoError(err)
	assert.Equal(lib.TaskStatusRunning, task.Status)
	assert.Equal("Task manager (1 running)", client.Summary().Text)

	require.NoError(client.StopTask(ctx, task.ID))
	assert.ErrorIs(client.StopTask(ctx, task.ID), lib.ErrNotFound)

	assert.Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Empty(client.Tasks())

	mu.Lock()
	assert.Equal(lib.TaskStatusStopped, events[0].Task.Status)
	mu.Unlock()

	history, err := client.TaskHistory(ctx, "web")
	require.NoError(err)
	require.Len(history, 1)
	assert.Equal(task.ID, history[0].ID)
	assert.Equal(lib.TaskStatusStopped, history[0].Status)
}

func TestRunCommandCancel(t *testing.T) {
	assert := assert.New(t)

	client := newTestClient(t)
	newTestProject(t, client, "web")

	ctx, cancel := context.WithCancel(context.Background())
	client.Subscribe(lib.TopicTaskStarted, func(lib.TaskEvent) { cancel() })

	task, err := client.RunCommand(ctx, "web", lib.Command{Command: "sleep", Args: []string{"30"}})
	assert.True(errors.Is(err, context.Canceled))
	if assert.NotNil(task) {
		assert.Equal(lib.TaskStatusStopped, task.Status)
	}
}

func TestRunWorkflow(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	client := newTestClient(t)
	p := newTestProject(t, client, "web")

	wf := `name: release
phases:
  - description: Build
    steps:
      - id: build
        command: sh
        args: [-c, "echo building > out.txt"]
      - id: check
        command: grep
        args: [building, out.txt]
  - description: Publish
    checked: false
    steps:
      - id: publish
        command: "false"
`
	require.NoError(os.WriteFile(filepath.Join(p.Path, "taskmgr.yaml"), []byte(wf), 0o644))

	res, err := client.RunWorkflow(context.Background(), "web", "")
	require.NoError(err)
	require.Len(res.Tasks, 2)
	assert.Empty(res.Failed)
	for _, task := range res.Tasks {
		assert.Equal(lib.TaskStatusFinished, task.Status)
	}

	history, err := client.TaskHistory(context.Background(), "web")
	require.NoError(err)
	assert.Len(history, 2)
}
