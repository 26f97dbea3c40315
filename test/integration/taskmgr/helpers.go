package taskmgr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/slok/taskmgr/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "taskmgr"
	}

	// go test changes the CWD to the test package directory.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("TASKMGR_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("taskmgr binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "TASKMGR_INTEGRATION"
		envBinary     = "TASKMGR_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{
		Binary: os.Getenv(envBinary),
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// RunCmd runs a taskmgr command against a specific db path without logs.
func RunCmd(ctx context.Context, config Config, dbPath string, args ...string) (stdout, stderr []byte, err error) {
	allArgs := append([]string{"--db-path", dbPath}, args...)
	return testutils.RunTaskmgr(ctx, nil, config.Binary, allArgs, true)
}

// RunProjectAdd registers a project directory.
func RunProjectAdd(ctx context.Context, config Config, dbPath, name, path string) (stdout, stderr []byte, err error) {
	return RunCmd(ctx, config, dbPath, "project", "add", path, "--name", name, "--format", "json")
}

// RunProjectList lists projects in JSON format.
func RunProjectList(ctx context.Context, config Config, dbPath string) (stdout, stderr []byte, err error) {
	return RunCmd(ctx, config, dbPath, "project", "list", "--format", "json")
}

// RunProjectRm removes a project.
func RunProjectRm(ctx context.Context, config Config, dbPath, nameOrID string) (stdout, stderr []byte, err error) {
	return RunCmd(ctx, config, dbPath, "project", "rm", nameOrID)
}

// RunCommands lists the commands of a project in JSON format.
func RunCommands(ctx context.Context, config Config, dbPath, nameOrID string) (stdout, stderr []byte, err error) {
	return RunCmd(ctx, config, dbPath, "commands", nameOrID, "--format", "json")
}

// RunRun runs a command on a project, the command is passed after `--`.
func RunRun(ctx context.Context, config Config, dbPath, nameOrID string, command []string, env ...string) (stdout, stderr []byte, err error) {
	args := []string{"run", nameOrID}
	for _, e := range env {
		args = append(args, "--env", e)
	}
	args = append(args, "--")
	args = append(args, command...)
	return RunCmd(ctx, config, dbPath, args...)
}

// RunWorkflow runs a workflow file of a project, an empty file uses the default one.
func RunWorkflow(ctx context.Context, config Config, dbPath, nameOrID, file string) (stdout, stderr []byte, err error) {
	args := []string{"workflow", "run", nameOrID}
	if file != "" {
		args = append(args, file)
	}
	return RunCmd(ctx, config, dbPath, args...)
}
