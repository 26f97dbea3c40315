package lib

import (
	"context"
	"fmt"
	"os"

	"github.com/slok/taskmgr/internal/app/run"
	"github.com/slok/taskmgr/internal/app/workflowrun"
	"github.com/slok/taskmgr/internal/storage"
	"github.com/slok/taskmgr/internal/storage/io"
	"github.com/slok/taskmgr/internal/task"
	"github.com/slok/taskmgr/internal/workflow"
)

// StartCommand runs a command on the project directory as a task and returns
// as soon as it's running.
func (c *Client) StartCommand(ctx context.Context, nameOrID string, cmd Command) (*Task, error) {
	p, err := storage.GetProjectByNameOrID(ctx, c.repo, nameOrID)
	if err != nil {
		return nil, mapError(err)
	}

	t, err := c.cmdRunner.Task(p, toInternalCommand(cmd))
	if err != nil {
		return nil, mapError(err)
	}

	if _, err := c.manager.AddTask(ctx, p, t); err != nil {
		return nil, mapError(err)
	}

	if _, err := c.manager.StartTask(ctx, t); err != nil {
		return nil, mapError(err)
	}

	res := fromInternalTask(t)
	return &res, nil
}

// RunCommand runs a command on the project directory as a task and waits until
// it ends. Cancelling ctx stops the task. When the command fails or is stopped
// the task is returned together with the error.
func (c *Client) RunCommand(ctx context.Context, nameOrID string, cmd Command) (*Task, error) {
	svc, err := run.NewService(run.ServiceConfig{
		Repository: c.repo,
		Runner:     c.wfRunner,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, run.Request{NameOrID: nameOrID, Command: toInternalCommand(cmd)})
	if res == nil || len(res.Tasks) == 0 {
		return nil, mapError(err)
	}

	t := fromInternalTask(res.Tasks[0])
	return &t, mapError(err)
}

// RunWorkflow runs a YAML workflow definition on a project and waits until it
// ends. Relative paths are resolved from the project directory, an empty path
// uses the project taskmgr.yaml. Cancelling ctx stops the pending steps.
func (c *Client) RunWorkflow(ctx context.Context, nameOrID, path string) (*WorkflowResult, error) {
	svc, err := workflowrun.NewService(workflowrun.ServiceConfig{
		Repository:         c.repo,
		WorkflowRepository: io.NewWorkflowYAMLRepository(os.DirFS("/")),
		Runner:             c.wfRunner,
		Logger:             c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, workflowrun.Request{NameOrID: nameOrID, Path: path})
	if res == nil {
		return nil, mapError(err)
	}

	return fromWorkflowResult(res), mapError(err)
}

// StopTask stops a queued or running task.
func (c *Client) StopTask(ctx context.Context, id string) error {
	t := c.liveTask(id)
	if t == nil {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	return mapError(c.manager.StopTask(ctx, t))
}

// Tasks returns the queued and running tasks.
func (c *Client) Tasks() []Task {
	return fromInternalTasks(c.manager.Tasks())
}

// TaskHistory returns every task that was registered for the project since the
// client was created, in registration order.
func (c *Client) TaskHistory(ctx context.Context, nameOrID string) ([]Task, error) {
	p, err := storage.GetProjectByNameOrID(ctx, c.repo, nameOrID)
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalTasks(task.History(p)), nil
}

// Summary returns the count of the live tasks.
func (c *Client) Summary() Summary {
	s := c.manager.Summary()
	return Summary{Running: s.Running, Queued: s.Queued, Text: s.Text()}
}

func (c *Client) liveTask(id string) *task.Task {
	for _, t := range c.manager.Tasks() {
		if t.ID() == id {
			return t
		}
	}
	return nil
}

func fromWorkflowResult(r *workflow.Result) *WorkflowResult {
	res := &WorkflowResult{
		Tasks:    fromInternalTasks(r.Tasks),
		Duration: r.Duration,
	}
	if r.Failed != nil {
		res.Failed = r.Failed.ID()
	}
	return res
}

