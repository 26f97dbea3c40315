package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/slok/taskmgr/internal/command"
	"github.com/slok/taskmgr/internal/event"
	"github.com/slok/taskmgr/internal/log"
	"github.com/slok/taskmgr/internal/model"
	"github.com/slok/taskmgr/internal/phase"
	"github.com/slok/taskmgr/internal/task"
)

var (
	// ErrStepFailed is returned when a workflow step task fails.
	ErrStepFailed = errors.New("workflow step failed")
	// ErrStopped is returned when a workflow step task was stopped by the user.
	ErrStopped = errors.New("workflow stopped")
)

// Workflow is a named sequence of phases, each step payload is a command.Command.
type Workflow struct {
	Name   string
	Phases []*phase.Phase
}

// Result is the outcome of a workflow run.
type Result struct {
	// Tasks are the step tasks in execution order.
	Tasks []*task.Task
	// Failed is the task that broke the chain, if any.
	Failed   *task.Task
	Duration time.Duration
}

// TaskManager is the task manager used to run the steps.
type TaskManager interface {
	AddTask(ctx context.Context, project *model.Project, t *task.Task) (*task.Task, error)
	StartTask(ctx context.Context, t *task.Task) (<-chan struct{}, error)
	StopTask(ctx context.Context, t *task.Task) error
}

// TaskFactory creates the task of a step command.
type TaskFactory interface {
	Task(project *model.Project, cmd command.Command) (*task.Task, error)
}

// Subscriber subscribes to the task lifecycle events.
type Subscriber interface {
	Subscribe(topic event.Topic, h event.Handler) *event.Subscription
}

// RunnerConfig is the configuration for the workflow runner.
type RunnerConfig struct {
	Manager     TaskManager
	TaskFactory TaskFactory
	Subscriber  Subscriber
	Logger      log.Logger
}

func (c *RunnerConfig) defaults() error {
	if c.Manager == nil {
		return fmt.Errorf("manager is required")
	}
	if c.TaskFactory == nil {
		return fmt.Errorf("task factory is required")
	}
	if c.Subscriber == nil {
		return fmt.Errorf("subscriber is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "workflow.Runner"})
	return nil
}

// Runner runs workflows as chains of dependent tasks.
type Runner struct {
	manager    TaskManager
	factory    TaskFactory
	subscriber Subscriber
	logger     log.Logger
}

// NewRunner creates a new workflow runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Runner{
		manager:    cfg.Manager,
		factory:    cfg.TaskFactory,
		subscriber: cfg.Subscriber,
		logger:     cfg.Logger,
	}, nil
}

// Run runs the sorted steps of every checked phase one after the other and
// waits until the chain ends. A failing or stopped step stops the steps that
// didn't start yet. Cancelling ctx stops every pending step.
func (r *Runner) Run(ctx context.Context, project *model.Project, wf Workflow) (*Result, error) {
	logger := r.logger.WithValues(log.Kv{"workflow": wf.Name, "project": project.Name})

	// Stops of queued steps don't publish events, the chain reports them itself.
	stopped := make(chan *task.Task, r.countSteps(wf))
	chain, err := r.buildChain(project, wf, stopped)
	if err != nil {
		return nil, err
	}

	res := &Result{Tasks: chain}
	if len(chain) == 0 {
		logger.Warningf("Workflow without steps to run")
		return res, nil
	}

	index := make(map[*task.Task]int, len(chain))
	for i, t := range chain {
		index[t] = i
	}

	// Each chain task finishes at most once so the handler never blocks.
	finished := make(chan task.Event, len(chain))
	sub := r.subscriber.Subscribe(task.TopicTaskFinished, func(_ context.Context, payload any) {
		ev, ok := payload.(task.Event)
		if !ok {
			return
		}
		if _, ok := index[ev.Task]; ok {
			finished <- ev
		}
	})
	defer sub.Dispose()

	for _, t := range chain {
		if _, err := r.manager.AddTask(ctx, project, t); err != nil {
			r.stopPending(ctx, chain, 0)
			return nil, fmt.Errorf("could not add task %q: %w", t.Title, err)
		}
	}

	start := time.Now()
	if _, err := r.manager.StartTask(ctx, chain[0]); err != nil {
		r.stopPending(ctx, chain, 0)
		return nil, fmt.Errorf("could not start workflow: %w", err)
	}
	logger.Infof("Workflow started with %d steps", len(chain))

	// current is the step the chain is waiting for.
	current := 0
	stoppedQueued := map[int]bool{}
	stopStep := func(i int) (*Result, error) {
		res.Failed = chain[i]
		res.Duration = time.Since(start)
		r.stopPending(ctx, chain, i+1)
		return res, fmt.Errorf("step %q: %w", chain[i].Title, ErrStopped)
	}

	for {
		select {
		case <-ctx.Done():
			r.stopPending(context.WithoutCancel(ctx), chain, 0)
			res.Duration = time.Since(start)
			return res, ctx.Err()

		case t := <-stopped:
			i := index[t]
			// Started steps end with their finished event.
			if i < current || t.Start() != nil {
				continue
			}
			if i == current {
				return stopStep(i)
			}
			stoppedQueued[i] = true

		case ev := <-finished:
			i := index[ev.Task]
			switch {
			case ev.Error || ev.Task.Status() == task.StatusStopped:
				res.Failed = ev.Task
				res.Duration = time.Since(start)
				r.stopPending(ctx, chain, i+1)
				if ev.Task.Status() == task.StatusStopped {
					return res, fmt.Errorf("step %q: %w", ev.Task.Title, ErrStopped)
				}
				return res, fmt.Errorf("step %q: %w", ev.Task.Title, ErrStepFailed)

			case i == len(chain)-1:
				res.Duration = time.Since(start)
				logger.Infof("Workflow finished in %s", res.Duration)
				return res, nil

			case stoppedQueued[i+1] || chain[i+1].Status() == task.StatusStopped:
				return stopStep(i + 1)
			}

			current = i + 1
			logger.Debugf("Step %d/%d finished: %s", i+1, len(chain), ev.Task.Title)
		}
	}
}

func (r *Runner) countSteps(wf Workflow) int {
	n := 0
	for _, ph := range wf.Phases {
		if ph.Checked {
			n += ph.Len()
		}
	}
	return n
}

func (r *Runner) buildChain(project *model.Project, wf Workflow, stopped chan<- *task.Task) ([]*task.Task, error) {
	var chain []*task.Task
	var prev *task.Task
	for _, ph := range wf.Phases {
		if !ph.Checked {
			r.logger.Debugf("Skipping unchecked phase %q", ph.Description)
			continue
		}

		for _, step := range ph.Sort() {
			cmd, ok := step.Payload.(command.Command)
			if !ok {
				return nil, fmt.Errorf("step %q of phase %q doesn't have a command: %w", step.Identifier, ph.Description, model.ErrNotValid)
			}

			t, err := r.factory.Task(project, cmd)
			if err != nil {
				return nil, fmt.Errorf("could not create task for step %q: %w", step.Identifier, err)
			}
			if step.Description != "" {
				t.Title = step.Description
			}
			t.DependsOn = prev
			notifyStops(t, stopped)

			chain = append(chain, t)
			prev = t
		}
	}

	return chain, nil
}

// notifyStops sends the task to stopped once its stop is acknowledged.
func notifyStops(t *task.Task, stopped chan<- *task.Task) {
	if !t.Stoppable || t.Stop == nil {
		return
	}

	stop := t.Stop
	var once sync.Once
	t.Stop = func(ctx context.Context) error {
		if err := stop(ctx); err != nil {
			return err
		}
		once.Do(func() { stopped <- t })
		return nil
	}
}

// stopPending stops the queued or running chain tasks starting at the index.
func (r *Runner) stopPending(ctx context.Context, chain []*task.Task, from int) {
	for _, t := range chain[from:] {
		switch t.Status() {
		case task.StatusNew, task.StatusFinished, task.StatusStopped:
			continue
		}
		if !t.Stoppable {
			continue
		}

		if err := r.manager.StopTask(ctx, t); err != nil && !errors.Is(err, task.ErrAlreadyFinished) {
			r.logger.Warningf("Could not stop task %s: %s", t.ID(), err)
		}
	}
}
