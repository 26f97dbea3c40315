package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/taskmgr/internal/app/run"
	"github.com/slok/taskmgr/internal/command"
	"github.com/slok/taskmgr/internal/task"
	utilsenv "github.com/slok/taskmgr/internal/utils/env"
	"github.com/slok/taskmgr/internal/workflow"
)

type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	nameOrID string
	command  []string
	envSpecs []string
	format   string
}

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Run a command on a project directory as a task (use -- to pass flags to the command).")
	c.Cmd.Arg("project", "Project name or ID.").Required().StringVar(&c.nameOrID)
	c.Cmd.Arg("command", "Command and its arguments.").Required().StringsVar(&c.command)
	c.Cmd.Flag("env", "Environment variables (KEY=VALUE or KEY from current environment). Can be repeated.").Short('e').StringsVar(&c.envSpecs)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
	cmdEnv, err := utilsenv.ParseSpecs(c.envSpecs)
	if err != nil {
		return fmt.Errorf("invalid --env value: %w", err)
	}

	repo, err := c.rootCmd.repository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	engine, err := newTaskEngine(c.rootCmd.Logger, c.rootCmd.Stdout)
	if err != nil {
		return err
	}

	svc, err := run.NewService(run.ServiceConfig{
		Repository: repo,
		Runner:     engine.runner,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, run.Request{
		NameOrID: c.nameOrID,
		Command: command.Command{
			Command: c.command[0],
			Args:    c.command[1:],
			Env:     cmdEnv,
		},
	})
	if res != nil {
		if perr := printResult(c.rootCmd, c.format, res); perr != nil {
			return perr
		}
	}
	if err != nil {
		return fmt.Errorf("could not run command: %w", err)
	}

	return nil
}

func printResult(rootCmd *RootCommand, format string, res *workflow.Result) error {
	snapshots := make([]task.Snapshot, 0, len(res.Tasks))
	for _, t := range res.Tasks {
		snapshots = append(snapshots, t.Snapshot())
	}

	if err := rootCmd.printer(format).PrintTasks(snapshots, time.Now()); err != nil {
		return fmt.Errorf("could not print tasks: %w", err)
	}

	return nil
}
