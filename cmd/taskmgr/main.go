package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/slok/taskmgr/cmd/taskmgr/commands"
	"github.com/slok/taskmgr/internal/log"
	loglogrus "github.com/slok/taskmgr/internal/log/logrus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("taskmgr", "Project command and task runner.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Setup commands (registers flags).
	projectCmd := commands.NewProjectCommand(app)
	projectAddCmd := commands.NewProjectAddCommand(rootCmd, projectCmd)
	projectListCmd := commands.NewProjectListCommand(rootCmd, projectCmd)
	projectRmCmd := commands.NewProjectRmCommand(rootCmd, projectCmd)

	commandListCmd := commands.NewCommandListCommand(rootCmd, app)

	favoriteCmd := commands.NewFavoriteCommand(app)
	favoriteAddCmd := commands.NewFavoriteAddCommand(rootCmd, favoriteCmd)
	favoriteRmCmd := commands.NewFavoriteRmCommand(rootCmd, favoriteCmd)

	runCmd := commands.NewRunCommand(rootCmd, app)

	workflowCmd := commands.NewWorkflowCommand(app)
	workflowRunCmd := commands.NewWorkflowRunCommand(rootCmd, workflowCmd)

	cmds := map[string]commands.Command{
		projectAddCmd.Name():  projectAddCmd,
		projectListCmd.Name(): projectListCmd,
		projectRmCmd.Name():   projectRmCmd,
		commandListCmd.Name(): commandListCmd,
		favoriteAddCmd.Name(): favoriteAddCmd,
		favoriteRmCmd.Name():  favoriteRmCmd,
		runCmd.Name():         runCmd,
		workflowRunCmd.Name(): workflowRunCmd,
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Listings print tables or JSON on stdout, logs would only add noise.
	printerCommands := map[string]bool{
		projectListCmd.Name(): true,
		commandListCmd.Name(): true,
	}
	if printerCommands[cmdName] && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	// Set logger.
	rootCmd.Logger = getLogger(*rootCmd)

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command. Cancelling it stops the running tasks.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // Stdout is for the task output and printers.
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled")

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
