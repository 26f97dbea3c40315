package command

import (
	"context"
	"strings"

	"github.com/slok/taskmgr/internal/model"
)

// Command is a runnable process of a project.
type Command struct {
	Command string
	Args    []string
	// Env are the variables set on top of the current process environment.
	Env map[string]string
}

// Description returns the command line, it's also the key used for favorites.
func (c Command) Description() string {
	return strings.TrimSpace(c.Command + " " + strings.Join(c.Args, " "))
}

// Source knows how to discover the commands of a project.
//
//go:generate mockery --case underscore --output commandmock --outpkg commandmock --name Source --structname MockSource
type Source interface {
	// Title is the category name of the commands of this source.
	Title() string
	// GetCommands returns the commands of the project, cached results can be
	// returned when useCache is true.
	GetCommands(ctx context.Context, project *model.Project, useCache bool) ([]Command, error)
}

// Category groups the commands discovered by a source.
type Category struct {
	Title    string
	Commands []Command
	// Error is the user facing reason why the category has no commands.
	Error string
}
