package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/slok/taskmgr/internal/command"
	"github.com/slok/taskmgr/internal/event"
	"github.com/slok/taskmgr/internal/log"
	"github.com/slok/taskmgr/internal/task"
	"github.com/slok/taskmgr/internal/workflow"
)

// taskEngine is the in process task orchestration used by the commands that run tasks.
type taskEngine struct {
	bus     *event.Bus
	manager *task.Manager
	runner  *workflow.Runner
}

func newTaskEngine(logger log.Logger, output io.Writer) (*taskEngine, error) {
	bus, err := event.NewBus(event.BusConfig{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("could not create event bus: %w", err)
	}

	manager, err := task.NewManager(task.ManagerConfig{Publisher: bus, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("could not create task manager: %w", err)
	}

	cmdRunner, err := command.NewRunner(command.RunnerConfig{
		LogSink: manager,
		Output:  output,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create command runner: %w", err)
	}

	wfRunner, err := workflow.NewRunner(workflow.RunnerConfig{
		Manager:     manager,
		TaskFactory: cmdRunner,
		Subscriber:  bus,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create workflow runner: %w", err)
	}

	e := &taskEngine{bus: bus, manager: manager, runner: wfRunner}
	e.logLifecycle(logger)

	return e, nil
}

func (e *taskEngine) logLifecycle(logger log.Logger) {
	e.bus.Subscribe(task.TopicTaskStarted, func(_ context.Context, payload any) {
		if ev, ok := payload.(task.Event); ok {
			logger.Infof("Started %q (%s)", ev.Task.Title, e.manager.Summary().Text())
		}
	})
	e.bus.Subscribe(task.TopicTaskFinished, func(_ context.Context, payload any) {
		ev, ok := payload.(task.Event)
		if !ok {
			return
		}
		s := ev.Task.Snapshot()
		if ev.Error {
			logger.Warningf("Failed %q after %s", s.Title, s.Elapsed(time.Now()).Round(time.Millisecond))
			return
		}
		logger.Infof("Finished %q (%s) after %s", s.Title, s.Status, s.Elapsed(time.Now()).Round(time.Millisecond))
	})
}
