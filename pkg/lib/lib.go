package lib

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"k8s.io/client-go/util/homedir"

	"github.com/slok/taskmgr/internal/command"
	"github.com/slok/taskmgr/internal/command/npm"
	"github.com/slok/taskmgr/internal/conventions"
	"github.com/slok/taskmgr/internal/event"
	"github.com/slok/taskmgr/internal/log"
	"github.com/slok/taskmgr/internal/storage"
	"github.com/slok/taskmgr/internal/storage/cache"
	"github.com/slok/taskmgr/internal/storage/memory"
	"github.com/slok/taskmgr/internal/storage/sqlite"
	"github.com/slok/taskmgr/internal/task"
	"github.com/slok/taskmgr/internal/workflow"
)

// StorageType identifies where the projects are stored.
type StorageType string

const (
	// StorageSQLite stores the projects on a SQLite database file.
	StorageSQLite StorageType = "sqlite"
	// StorageMemory keeps the projects in memory, they are lost on Close.
	// Use this for testing.
	StorageMemory StorageType = "memory"
)

// Config configures the SDK client.
//
// All fields are optional. An empty Config{} uses ~/.taskmgr/taskmgr.db.
type Config struct {
	// Storage selects the project storage.
	// Default: [StorageSQLite].
	Storage StorageType

	// DBPath is the SQLite database path.
	// Default: ~/.taskmgr/taskmgr.db.
	DBPath string

	// Output receives a copy of the raw output of every command, it's
	// optional as the output is also kept on the task logs.
	Output io.Writer

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.Storage == "" {
		c.Storage = StorageSQLite
	}

	if c.DBPath == "" {
		c.DBPath = conventions.DBPath(filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir))
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client is the main SDK entry point.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use.
type Client struct {
	repo      storage.Repository
	bus       *event.Bus
	manager   *task.Manager
	cmdRunner *command.Runner
	wfRunner  *workflow.Runner
	sources   []command.Source
	logger    log.Logger
	closeFn   func() error
}

// New creates a new SDK client.
//
// The caller must call [Client.Close] when done.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Client{logger: cfg.Logger}

	var repo storage.Repository
	switch cfg.Storage {
	case StorageSQLite:
		r, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{DBPath: cfg.DBPath, Logger: cfg.Logger})
		if err != nil {
			return nil, fmt.Errorf("could not create repository: %w", err)
		}
		repo, c.closeFn = r, r.Close
	case StorageMemory:
		r, err := memory.NewRepository(memory.RepositoryConfig{Logger: cfg.Logger})
		if err != nil {
			return nil, fmt.Errorf("could not create repository: %w", err)
		}
		repo = r
	default:
		return nil, fmt.Errorf("unsupported storage type: %s: %w", cfg.Storage, ErrNotValid)
	}

	// Lookups must return the same project so the task history is kept.
	cacheRepo, err := cache.NewRepository(cache.RepositoryConfig{Repository: repo, Logger: cfg.Logger})
	if err != nil {
		return nil, c.closeOnErr(fmt.Errorf("could not create cache repository: %w", err))
	}
	c.repo = cacheRepo

	c.bus, err = event.NewBus(event.BusConfig{Logger: cfg.Logger})
	if err != nil {
		return nil, c.closeOnErr(fmt.Errorf("could not create event bus: %w", err))
	}

	c.manager, err = task.NewManager(task.ManagerConfig{Publisher: c.bus, Logger: cfg.Logger})
	if err != nil {
		return nil, c.closeOnErr(fmt.Errorf("could not create task manager: %w", err))
	}

	c.cmdRunner, err = command.NewRunner(command.RunnerConfig{LogSink: c.manager, Output: cfg.Output, Logger: cfg.Logger})
	if err != nil {
		return nil, c.closeOnErr(fmt.Errorf("could not create command runner: %w", err))
	}

	c.wfRunner, err = workflow.NewRunner(workflow.RunnerConfig{
		Manager:     c.manager,
		TaskFactory: c.cmdRunner,
		Subscriber:  c.bus,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return nil, c.closeOnErr(fmt.Errorf("could not create workflow runner: %w", err))
	}

	npmSource, err := npm.NewSource(npm.SourceConfig{Logger: cfg.Logger})
	if err != nil {
		return nil, c.closeOnErr(fmt.Errorf("could not create npm source: %w", err))
	}
	c.sources = []command.Source{npmSource}

	return c, nil
}

// Close releases resources held by the client, including the database connection.
// Running tasks are not stopped. After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

func (c *Client) closeOnErr(err error) error {
	if cerr := c.Close(); cerr != nil {
		c.logger.Warningf("Could not close client: %s", cerr)
	}
	return err
}
