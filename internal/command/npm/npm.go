package npm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/slok/taskmgr/internal/command"
	"github.com/slok/taskmgr/internal/log"
	"github.com/slok/taskmgr/internal/model"
)

const packageJSONFile = "package.json"

// SourceConfig is the configuration for the npm command source.
type SourceConfig struct {
	Logger log.Logger
}

func (c *SourceConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "npm.Source"})
	return nil
}

// Source discovers the scripts of a project package.json.
type Source struct {
	cache  map[string][]command.Command
	mu     sync.Mutex
	logger log.Logger
}

// NewSource creates a new npm command source.
func NewSource(cfg SourceConfig) (*Source, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Source{
		cache:  map[string][]command.Command{},
		logger: cfg.Logger,
	}, nil
}

// Title returns the category title.
func (s *Source) Title() string { return "NPM" }

type packageJSON struct {
	Name    string            `json:"name"`
	Scripts map[string]string `json:"scripts"`
}

// GetCommands returns the install command plus one run command per script of
// the project package.json, using the package manager of the lock file.
// Projects without package.json don't have commands.
func (s *Source) GetCommands(ctx context.Context, project *model.Project, useCache bool) ([]command.Command, error) {
	if useCache {
		s.mu.Lock()
		cmds, ok := s.cache[project.ID]
		s.mu.Unlock()
		if ok {
			return cmds, nil
		}
	}

	data, err := os.ReadFile(filepath.Join(project.Path, packageJSONFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debugf("No %s in project %s", packageJSONFile, project.Name)
			return []command.Command{}, nil
		}
		return nil, fmt.Errorf("could not read %s: %w", packageJSONFile, err)
	}

	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", packageJSONFile, err)
	}

	pm := detectPackageManager(project.Path)

	scripts := make([]string, 0, len(pkg.Scripts))
	for name := range pkg.Scripts {
		scripts = append(scripts, name)
	}
	sort.Strings(scripts)

	cmds := make([]command.Command, 0, len(scripts)+1)
	cmds = append(cmds, command.Command{Command: pm, Args: []string{"install"}})
	for _, name := range scripts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if name == "start" && pm == "npm" {
			cmds = append(cmds, command.Command{Command: pm, Args: []string{"start"}})
			continue
		}
		cmds = append(cmds, command.Command{Command: pm, Args: []string{"run", name}})
	}

	s.mu.Lock()
	s.cache[project.ID] = cmds
	s.mu.Unlock()

	s.logger.Debugf("Loaded %d npm commands for project %s", len(cmds), project.Name)

	return cmds, nil
}

func detectPackageManager(dir string) string {
	lockFiles := []struct {
		file    string
		manager string
	}{
		{"pnpm-lock.yaml", "pnpm"},
		{"yarn.lock", "yarn"},
		{"bun.lockb", "bun"},
		{"package-lock.json", "npm"},
	}

	for _, lf := range lockFiles {
		if _, err := os.Stat(filepath.Join(dir, lf.file)); err == nil {
			return lf.manager
		}
	}

	return "npm"
}
