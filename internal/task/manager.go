package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/taskmgr/internal/log"
	"github.com/slok/taskmgr/internal/model"
)

// ManagerConfig is the configuration for the task manager.
type ManagerConfig struct {
	Publisher Publisher
	Logger    log.Logger
	// Now returns the current time, defaults to time.Now.
	Now func() time.Time
	// IDGenerator returns a new unique task ID, defaults to ULIDs.
	IDGenerator func() string
}

func (c *ManagerConfig) defaults() error {
	if c.Publisher == nil {
		return fmt.Errorf("publisher is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "task.Manager"})
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.IDGenerator == nil {
		c.IDGenerator = func() string { return ulid.Make().String() }
	}
	return nil
}

// Manager tracks tasks through their lifecycle:
//
//	queued -> running -> finished
//	queued|running -> stopped by user
//
// It starts dependent tasks when the task they depend on finishes successfully
// and publishes TaskAdded, TaskStarted and TaskFinished events.
type Manager struct {
	tasks     []*Task
	mu        sync.Mutex
	publisher Publisher
	formatter LogFormatter
	now       func() time.Time
	newID     func() string
	logger    log.Logger
}

// NewManager creates a new task manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Manager{
		publisher: cfg.Publisher,
		formatter: LogFormatter{Now: cfg.Now},
		now:       cfg.Now,
		newID:     cfg.IDGenerator,
		logger:    cfg.Logger,
	}, nil
}

// AddTask registers the task for the project. The task gets an ID, is queued and
// tracked by the manager, and appended to the project task history.
func (m *Manager) AddTask(ctx context.Context, project *model.Project, t *Task) (*Task, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	if project == nil {
		return nil, fmt.Errorf("project is required: %w", model.ErrNotValid)
	}

	t.mu.Lock()
	if t.id != "" {
		id := t.id
		t.mu.Unlock()
		return nil, fmt.Errorf("task %s: %w", id, ErrAlreadyRegistered)
	}
	t.id = m.newID()
	t.status = StatusQueued
	t.Project = project
	id := t.id
	t.mu.Unlock()

	m.mu.Lock()
	m.tasks = append(m.tasks, t)
	m.mu.Unlock()

	appendHistory(project, t)

	m.logger.Debugf("Task %s added for project %s: %s", id, project.Name, t.Title)
	m.publisher.Publish(ctx, TopicTaskAdded, Event{Project: project, Task: t})

	return t, nil
}

// StartTask starts a queued task. The executor runs in the background, the
// returned channel is closed once the executor has settled, the task has been
// updated, the finished event published and the dependent tasks started.
//
// The executor receives a context that keeps the values of ctx but not its
// cancellation, tasks are only cancelled with StopTask.
func (m *Manager) StartTask(ctx context.Context, t *Task) (<-chan struct{}, error) {
	t.mu.Lock()
	if t.id == "" {
		t.mu.Unlock()
		return nil, ErrNotRegistered
	}
	if t.status != StatusQueued || t.stopping {
		if t.status == StatusQueued {
			t.startRefused = true
		}
		id, status := t.id, t.status
		t.mu.Unlock()
		return nil, fmt.Errorf("task %s is %q: %w", id, status, ErrNotQueued)
	}
	start := m.now()
	t.start = &start
	t.status = StatusRunning
	id := t.id
	t.mu.Unlock()

	m.logger.Debugf("Task %s started", id)
	m.publisher.Publish(ctx, TopicTaskStarted, Event{Project: t.Project, Task: t})

	execCtx := context.WithoutCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		err := m.execute(execCtx, t)
		m.settle(execCtx, t, err)
	}()

	return done, nil
}

func (m *Manager) execute(ctx context.Context, t *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()

	return t.Execute(ctx)
}

func (m *Manager) settle(ctx context.Context, t *Task, execErr error) {
	t.mu.Lock()
	end := m.now()
	if t.end == nil {
		t.end = &end
	}
	t.finished = true
	stopped := t.stopping || t.status == StatusStopped
	if stopped {
		t.status = StatusStopped
	} else {
		t.status = StatusFinished
	}
	id := t.id
	t.mu.Unlock()

	switch {
	case execErr != nil:
		m.AddTaskLog(t, execErr.Error(), LogLevelDefault)
	case stopped:
		m.AddTaskLog(t, string(StatusStopped), LogLevelDefault)
	default:
		m.AddTaskLog(t, "finished", LogLevelDefault)
	}

	m.publisher.Publish(ctx, TopicTaskFinished, Event{Project: t.Project, Task: t, Error: execErr != nil})
	m.removeLive(t)

	switch {
	case execErr != nil:
		m.logger.Warningf("Task %s failed: %s", id, execErr)
		return
	case stopped:
		m.logger.Debugf("Task %s ended after being stopped", id)
		return
	}

	m.logger.Debugf("Task %s finished", id)

	for _, dep := range m.dependentsOf(t) {
		if _, err := m.StartTask(ctx, dep); err != nil {
			m.logger.Warningf("Could not start task %s depending on %s: %s", dep.ID(), id, err)
		}
	}
}

// StopTask asks a stoppable task to stop and waits for its acknowledgement.
// A queued task will never run, a running task gets its end time set now
// although its executor may still be settling.
func (m *Manager) StopTask(ctx context.Context, t *Task) error {
	if !t.Stoppable || t.Stop == nil {
		return ErrNotStoppable
	}

	t.mu.Lock()
	if t.id == "" {
		t.mu.Unlock()
		return ErrNotRegistered
	}
	if t.status == StatusFinished || t.status == StatusStopped {
		id := t.id
		t.mu.Unlock()
		return fmt.Errorf("task %s: %w", id, ErrAlreadyFinished)
	}
	t.stopping = true
	t.mu.Unlock()

	if err := t.Stop(ctx); err != nil {
		return m.stopFailed(ctx, t, err)
	}

	t.mu.Lock()
	t.status = StatusStopped
	t.finished = true
	if t.start != nil && t.end == nil {
		end := m.now()
		t.end = &end
	}
	id := t.id
	t.mu.Unlock()

	m.removeLive(t)
	m.logger.Infof("Task %s stopped by user", id)

	return nil
}

// stopFailed rolls back a stop that was not acknowledged. A task that settled
// meanwhile already ended as stopped, so the stop is reported as done. A start
// refused while the stop was in flight is replayed.
func (m *Manager) stopFailed(ctx context.Context, t *Task, stopErr error) error {
	t.mu.Lock()
	if t.finished {
		id := t.id
		t.mu.Unlock()
		m.logger.Warningf("Task %s ended while stopping, ignoring stop error: %s", id, stopErr)
		return nil
	}
	t.stopping = false
	replay := t.startRefused
	t.startRefused = false
	id := t.id
	t.mu.Unlock()

	if replay {
		if _, err := m.StartTask(ctx, t); err != nil {
			m.logger.Warningf("Could not start task %s after a failed stop: %s", id, err)
		}
	}

	return fmt.Errorf("could not stop task: %w", stopErr)
}

// AddTaskLog formats the message and appends the resulting entries to the task logs.
func (m *Manager) AddTaskLog(t *Task, message string, level LogLevel) {
	entries := m.formatter.Format(message, level)
	if len(entries) == 0 {
		return
	}

	t.appendLogs(entries)
}

// Tasks returns the tasks that have not reached a terminal state, in registration order.
func (m *Manager) Tasks() []*Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]*Task, len(m.tasks))
	copy(tasks, m.tasks)
	return tasks
}

// Summary returns the count of tracked tasks by status.
func (m *Manager) Summary() Summary {
	var s Summary
	for _, t := range m.Tasks() {
		switch t.Status() {
		case StatusRunning:
			s.Running++
		case StatusQueued:
			s.Queued++
		}
	}
	return s
}

func (m *Manager) removeLive(t *Task) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, lt := range m.tasks {
		if lt == t {
			m.tasks = append(m.tasks[:i:i], m.tasks[i+1:]...)
			return
		}
	}
}

func (m *Manager) dependentsOf(t *Task) []*Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deps []*Task
	for _, lt := range m.tasks {
		if lt.DependsOn == t {
			deps = append(deps, lt)
		}
	}
	return deps
}
