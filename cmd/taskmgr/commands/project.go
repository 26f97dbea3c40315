package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/taskmgr/internal/app/projectcreate"
	"github.com/slok/taskmgr/internal/app/projectlist"
	"github.com/slok/taskmgr/internal/app/projectremove"
)

// NewProjectCommand returns the project parent command.
func NewProjectCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("project", "Manage projects.")
}

type ProjectAddCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	path      string
	name      string
	favorites []string
	format    string
}

// NewProjectAddCommand returns the project add command.
func NewProjectAddCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *ProjectAddCommand {
	c := &ProjectAddCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("add", "Register a project directory.")
	c.Cmd.Arg("path", "Project directory.").Default(".").StringVar(&c.path)
	c.Cmd.Flag("name", "Project name (defaults to the directory name).").StringVar(&c.name)
	c.Cmd.Flag("favorite", "Favorite command, replaces the default ones. Can be repeated.").Short('f').StringsVar(&c.favorites)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c ProjectAddCommand) Name() string { return c.Cmd.FullCommand() }

func (c ProjectAddCommand) Run(ctx context.Context) error {
	repo, err := c.rootCmd.repository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := projectcreate.NewService(projectcreate.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	var favorites []string
	if len(c.favorites) > 0 {
		favorites = c.favorites
	}

	p, err := svc.Run(ctx, projectcreate.Request{
		Name:      c.name,
		Path:      c.path,
		Favorites: favorites,
	})
	if err != nil {
		return fmt.Errorf("could not add project: %w", err)
	}

	return c.rootCmd.printer(c.format).PrintProject(*p)
}

type ProjectListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	nameFilter string
	format     string
}

// NewProjectListCommand returns the project list command.
func NewProjectListCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *ProjectListCommand {
	c := &ProjectListCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("list", "List the registered projects.").Alias("ls")
	c.Cmd.Flag("name", "Filter by name.").StringVar(&c.nameFilter)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c ProjectListCommand) Name() string { return c.Cmd.FullCommand() }

func (c ProjectListCommand) Run(ctx context.Context) error {
	repo, err := c.rootCmd.repository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := projectlist.NewService(projectlist.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	projects, err := svc.Run(ctx, projectlist.Request{NameFilter: c.nameFilter})
	if err != nil {
		return fmt.Errorf("could not list projects: %w", err)
	}

	return c.rootCmd.printer(c.format).PrintProjectList(projects)
}

type ProjectRmCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	nameOrID string
}

// NewProjectRmCommand returns the project rm command.
func NewProjectRmCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *ProjectRmCommand {
	c := &ProjectRmCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("rm", "Unregister a project, its directory is not touched.")
	c.Cmd.Arg("project", "Project name or ID.").Required().StringVar(&c.nameOrID)

	return c
}

func (c ProjectRmCommand) Name() string { return c.Cmd.FullCommand() }

func (c ProjectRmCommand) Run(ctx context.Context) error {
	repo, err := c.rootCmd.repository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := projectremove.NewService(projectremove.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	p, err := svc.Run(ctx, projectremove.Request{NameOrID: c.nameOrID})
	if err != nil {
		return fmt.Errorf("could not remove project: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Removed project %s (%s)\n", p.Name, p.ID)
	return nil
}
