package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/taskmgr/internal/app/workflowrun"
	"github.com/slok/taskmgr/internal/storage/io"
)

// NewWorkflowCommand returns the workflow parent command.
func NewWorkflowCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("workflow", "Manage project workflows.")
}

type WorkflowRunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	nameOrID string
	file     string
	format   string
}

// NewWorkflowRunCommand returns the workflow run command.
func NewWorkflowRunCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *WorkflowRunCommand {
	c := &WorkflowRunCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("run", "Run the phases of a workflow definition one step after the other.")
	c.Cmd.Arg("project", "Project name or ID.").Required().StringVar(&c.nameOrID)
	c.Cmd.Arg("file", "Workflow definition, relative to the project directory (defaults to taskmgr.yaml).").StringVar(&c.file)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c WorkflowRunCommand) Name() string { return c.Cmd.FullCommand() }

func (c WorkflowRunCommand) Run(ctx context.Context) error {
	repo, err := c.rootCmd.repository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	engine, err := newTaskEngine(c.rootCmd.Logger, c.rootCmd.Stdout)
	if err != nil {
		return err
	}

	svc, err := workflowrun.NewService(workflowrun.ServiceConfig{
		Repository:         repo,
		WorkflowRepository: io.NewWorkflowYAMLRepository(os.DirFS("/")),
		Runner:             engine.runner,
		Logger:             c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, workflowrun.Request{NameOrID: c.nameOrID, Path: c.file})
	if res != nil {
		if perr := printResult(c.rootCmd, c.format, res); perr != nil {
			return perr
		}
	}
	if err != nil {
		return fmt.Errorf("could not run workflow: %w", err)
	}

	return nil
}
