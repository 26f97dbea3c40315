package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/taskmgr/internal/app/commandlist"
	"github.com/slok/taskmgr/internal/command"
	"github.com/slok/taskmgr/internal/command/npm"
)

type CommandListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	nameOrID string
	format   string
}

// NewCommandListCommand returns the commands command.
func NewCommandListCommand(rootCmd *RootCommand, app *kingpin.Application) *CommandListCommand {
	c := &CommandListCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("commands", "List the runnable commands of a project.")
	c.Cmd.Arg("project", "Project name or ID.").Required().StringVar(&c.nameOrID)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c CommandListCommand) Name() string { return c.Cmd.FullCommand() }

func (c CommandListCommand) Run(ctx context.Context) error {
	repo, err := c.rootCmd.repository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	npmSource, err := npm.NewSource(npm.SourceConfig{Logger: c.rootCmd.Logger})
	if err != nil {
		return fmt.Errorf("could not create npm source: %w", err)
	}

	svc, err := commandlist.NewService(commandlist.ServiceConfig{
		Repository: repo,
		Sources:    []command.Source{npmSource},
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, commandlist.Request{NameOrID: c.nameOrID, Refresh: true})
	if err != nil {
		return fmt.Errorf("could not list commands: %w", err)
	}

	return c.rootCmd.printer(c.format).PrintCommands(*res.Project, res.Categories)
}
