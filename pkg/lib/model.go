package lib

import (
	"time"

	"github.com/slok/taskmgr/internal/command"
	"github.com/slok/taskmgr/internal/model"
	"github.com/slok/taskmgr/internal/task"
)

// Project is a registered project directory.
type Project struct {
	// ID is the unique identifier (ULID) assigned at creation.
	ID   string
	Name string
	// Path is the absolute project directory, commands run on it.
	Path string
	// FavoriteCommands are command descriptions (e.g. `npm start`).
	FavoriteCommands []string
	CreatedAt        time.Time
}

// CreateProjectOpts are the options to register a project.
type CreateProjectOpts struct {
	// Name defaults to the directory name.
	Name string
	Path string
	// FavoriteCommands nil uses the default favorites.
	FavoriteCommands []string
}

// Command is a process that can be run on a project.
type Command struct {
	Command string
	Args    []string
	// Env are set on top of the current process environment.
	Env map[string]string
}

// Description returns the command line, it's the key used for favorites.
func (c Command) Description() string { return toInternalCommand(c).Description() }

// CommandCategory groups the commands discovered by a source.
type CommandCategory struct {
	Title    string
	Commands []Command
	// Error is the reason why the category has no commands.
	Error string
}

// TaskStatus is the lifecycle state of a task.
//
//	new -> queued -> running -> finished
//	          \          \
//	           `----------`--> stopped by user
type TaskStatus string

const (
	TaskStatusNew      TaskStatus = TaskStatus(task.StatusNew)
	TaskStatusQueued   TaskStatus = TaskStatus(task.StatusQueued)
	TaskStatusRunning  TaskStatus = TaskStatus(task.StatusRunning)
	TaskStatusFinished TaskStatus = TaskStatus(task.StatusFinished)
	TaskStatusStopped  TaskStatus = TaskStatus(task.StatusStopped)
)

// TaskLog is a timestamped line of a task log.
type TaskLog struct {
	Message string
	// Level is empty, info, warn or error.
	Level string
}

// Task is a read-only snapshot of a task state at the time of the API call.
type Task struct {
	ID          string
	ProjectName string
	Title       string
	Status      TaskStatus
	Start       *time.Time
	End         *time.Time
	Logs        []TaskLog
}

// Elapsed returns how long the task has been running.
func (t Task) Elapsed(now time.Time) time.Duration {
	return task.Snapshot{Start: t.Start, End: t.End}.Elapsed(now)
}

// Summary counts the live tasks.
type Summary struct {
	Running int
	Queued  int
	// Text is a short human readable description (e.g. `Task manager (1 running)`).
	Text string
}

// WorkflowResult is the outcome of a workflow run.
type WorkflowResult struct {
	// Tasks are the step tasks in execution order.
	Tasks []Task
	// Failed is the ID of the task that broke the chain, empty if none.
	Failed   string
	Duration time.Duration
}

func fromInternalProject(p model.Project) Project {
	return Project{
		ID:               p.ID,
		Name:             p.Name,
		Path:             p.Path,
		FavoriteCommands: append([]string{}, p.FavoriteCommands...),
		CreatedAt:        p.CreatedAt,
	}
}

func fromInternalProjectList(ps []model.Project) []Project {
	res := make([]Project, 0, len(ps))
	for _, p := range ps {
		res = append(res, fromInternalProject(p))
	}
	return res
}

func toInternalCommand(c Command) command.Command {
	return command.Command{Command: c.Command, Args: c.Args, Env: c.Env}
}

func fromInternalCategories(cats []command.Category) []CommandCategory {
	res := make([]CommandCategory, 0, len(cats))
	for _, c := range cats {
		cat := CommandCategory{Title: c.Title, Error: c.Error}
		for _, cmd := range c.Commands {
			cat.Commands = append(cat.Commands, Command{Command: cmd.Command, Args: cmd.Args, Env: cmd.Env})
		}
		res = append(res, cat)
	}
	return res
}

func fromInternalTask(t *task.Task) Task {
	s := t.Snapshot()
	res := Task{
		ID:          s.ID,
		ProjectName: s.ProjectName,
		Title:       s.Title,
		Status:      TaskStatus(s.Status),
		Start:       s.Start,
		End:         s.End,
		Logs:        make([]TaskLog, 0, len(s.Logs)),
	}
	for _, l := range s.Logs {
		res.Logs = append(res.Logs, TaskLog{Message: l.Message, Level: string(l.Level)})
	}
	return res
}

func fromInternalTasks(ts []*task.Task) []Task {
	res := make([]Task, 0, len(ts))
	for _, t := range ts {
		res = append(res, fromInternalTask(t))
	}
	return res
}
