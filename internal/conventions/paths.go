package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default taskmgr data directory name (relative to home).
	DefaultDataDir = ".taskmgr"
	// DBFile is the SQLite database filename inside the data directory.
	DBFile = "taskmgr.db"
	// WorkflowFile is the default workflow definition filename inside a project.
	WorkflowFile = "taskmgr.yaml"
	// EnvPrefix is the prefix of the environment variables that configure the CLI flags.
	EnvPrefix = "TASKMGR"
)

// DBPath returns the database path inside the data directory.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// ProjectWorkflowPath returns the default workflow definition path of a project.
func ProjectWorkflowPath(projectPath string) string {
	return filepath.Join(projectPath, WorkflowFile)
}
