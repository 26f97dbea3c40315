package printer

import (
	"time"

	"github.com/slok/taskmgr/internal/command"
	"github.com/slok/taskmgr/internal/model"
	"github.com/slok/taskmgr/internal/task"
)

// Printer knows how to print projects, commands and tasks in different formats.
type Printer interface {
	PrintProjectList(projects []model.Project) error
	PrintProject(project model.Project) error
	PrintCommands(project model.Project, categories []command.Category) error
	PrintTasks(tasks []task.Snapshot, now time.Time) error
	PrintMessage(msg string) error
}
