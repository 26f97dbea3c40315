package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/taskmgr/internal/app/favorite"
)

// NewFavoriteCommand returns the favorite parent command.
func NewFavoriteCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("favorite", "Manage the favorite commands of a project.")
}

type FavoriteCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
	remove  bool

	nameOrID string
	command  []string
}

// NewFavoriteAddCommand returns the favorite add command.
func NewFavoriteAddCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *FavoriteCommand {
	return newFavoriteCommand(rootCmd, parent.Command("add", "Mark a command as favorite."), false)
}

// NewFavoriteRmCommand returns the favorite rm command.
func NewFavoriteRmCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *FavoriteCommand {
	return newFavoriteCommand(rootCmd, parent.Command("rm", "Unmark a favorite command."), true)
}

func newFavoriteCommand(rootCmd *RootCommand, cmd *kingpin.CmdClause, remove bool) *FavoriteCommand {
	c := &FavoriteCommand{Cmd: cmd, rootCmd: rootCmd, remove: remove}

	c.Cmd.Arg("project", "Project name or ID.").Required().StringVar(&c.nameOrID)
	c.Cmd.Arg("command", "Command line (e.g. npm run build).").Required().StringsVar(&c.command)

	return c
}

func (c FavoriteCommand) Name() string { return c.Cmd.FullCommand() }

func (c FavoriteCommand) Run(ctx context.Context) error {
	repo, err := c.rootCmd.repository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := favorite.NewService(favorite.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	p, err := svc.Run(ctx, favorite.Request{
		NameOrID: c.nameOrID,
		Command:  strings.Join(c.command, " "),
		Remove:   c.remove,
	})
	if err != nil {
		return fmt.Errorf("could not update favorites: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Favorites of %s: %s\n", p.Name, strings.Join(p.FavoriteCommands, ", "))
	return nil
}
