package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/slok/taskmgr/internal/model"
)

// Status represents the state of a task.
type Status string

const (
	// StatusNew is the status of a task that has not been registered on a manager.
	StatusNew Status = ""
	// StatusQueued is the status of a registered task waiting to be started.
	StatusQueued Status = "queued"
	// StatusRunning is the status of a task whose executor is running.
	StatusRunning Status = "running"
	// StatusFinished is the terminal status of a task that has run, it doesn't
	// matter if the executor failed or not, the failure is reported on the
	// finished event.
	StatusFinished Status = "finished"
	// StatusStopped is the terminal status of a task stopped by the user.
	StatusStopped Status = "stopped by user"
)

var (
	// ErrInvalidTask is returned when a task misses its title or its executor.
	ErrInvalidTask = errors.New("task execute function and title are required")
	// ErrNotStoppable is returned when stopping a task that can't be stopped.
	ErrNotStoppable = errors.New("this task cannot be cancelled")
	// ErrNotRegistered is returned when using a task that has not been added to the manager.
	ErrNotRegistered = errors.New("task is not registered")
	// ErrAlreadyRegistered is returned when adding a task that has already been added.
	ErrAlreadyRegistered = errors.New("task is already registered")
	// ErrNotQueued is returned when starting a task that is not queued.
	ErrNotQueued = errors.New("task is not queued")
	// ErrAlreadyFinished is returned when stopping a task that already reached a terminal state.
	ErrAlreadyFinished = errors.New("task already finished")
)

// ExecuteFunc is the work of a task.
type ExecuteFunc func(ctx context.Context) error

// StopFunc asks the work of a task to stop and returns once acknowledged.
type StopFunc func(ctx context.Context) error

// Task is a unit of asynchronous work tracked by the Manager.
//
// The exported fields are set by the creator before registering the task and
// must not be changed after. The lifecycle state is owned by the Manager and
// exposed through methods.
type Task struct {
	Project    *model.Project
	Title      string
	Estimation string
	Execute    ExecuteFunc
	Stoppable  bool
	Stop       StopFunc
	// DependsOn makes the task start automatically when this other task
	// finishes successfully.
	DependsOn *Task

	mu           sync.Mutex
	id           string
	status       Status
	start        *time.Time
	end          *time.Time
	finished     bool
	stopping     bool
	startRefused bool // A start arrived while a stop was in flight.
	logs         []LogEntry
}

// New returns a new valid task.
func New(project *model.Project, title string, execute ExecuteFunc) (*Task, error) {
	t := &Task{
		Project: project,
		Title:   title,
		Execute: execute,
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return t, nil
}

// Validate validates the task.
func (t *Task) Validate() error {
	if t == nil || t.Title == "" || t.Execute == nil {
		return ErrInvalidTask
	}

	if t.Stoppable && t.Stop == nil {
		return fmt.Errorf("stoppable task requires a stop function: %w", ErrInvalidTask)
	}

	return nil
}

// ID returns the task ID, empty until the task is registered.
func (t *Task) ID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.id
}

// Status returns the task status.
func (t *Task) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Start returns when the task started, nil if it didn't.
func (t *Task) Start() *time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return copyTime(t.start)
}

// End returns when the task ended, nil if it didn't.
func (t *Task) End() *time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return copyTime(t.end)
}

// Finished returns true once the task reached a terminal state.
func (t *Task) Finished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finished
}

// Logs returns a copy of the task log entries.
func (t *Task) Logs() []LogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	logs := make([]LogEntry, len(t.logs))
	copy(logs, t.logs)
	return logs
}

// Snapshot is a point in time copy of a task state.
type Snapshot struct {
	ID          string
	ProjectName string
	Title       string
	Estimation  string
	Status      Status
	Start       *time.Time
	End         *time.Time
	Finished    bool
	Logs        []LogEntry
}

// Snapshot returns a consistent copy of the task state.
func (t *Task) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		ID:         t.id,
		Title:      t.Title,
		Estimation: t.Estimation,
		Status:     t.status,
		Start:      copyTime(t.start),
		End:        copyTime(t.end),
		Finished:   t.finished,
		Logs:       make([]LogEntry, len(t.logs)),
	}
	copy(s.Logs, t.logs)

	if t.Project != nil {
		s.ProjectName = t.Project.Name
	}

	return s
}

// Elapsed returns how long the task has been running. Running tasks are measured
// against now, not started tasks return 0.
func (s Snapshot) Elapsed(now time.Time) time.Duration {
	if s.Start == nil {
		return 0
	}

	if s.End != nil {
		return s.End.Sub(*s.Start)
	}

	return now.Sub(*s.Start)
}

func (t *Task) appendLogs(entries []LogEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logs = append(t.logs, entries...)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
