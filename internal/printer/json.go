package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/taskmgr/internal/command"
	"github.com/slok/taskmgr/internal/model"
	"github.com/slok/taskmgr/internal/task"
)

// JSONPrinter prints information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

type projectOutput struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Path             string    `json:"path"`
	FavoriteCommands []string  `json:"favorite_commands"`
	CreatedAt        time.Time `json:"created_at"`
}

type categoryOutput struct {
	Title    string          `json:"title"`
	Commands []commandOutput `json:"commands"`
	Error    string          `json:"error,omitempty"`
}

type commandOutput struct {
	Command     string   `json:"command"`
	Args        []string `json:"args"`
	Description string   `json:"description"`
	Favorite    bool     `json:"favorite"`
}

type taskOutput struct {
	ID             string     `json:"id"`
	Project        string     `json:"project"`
	Title          string     `json:"title"`
	Status         string     `json:"status"`
	Start          *time.Time `json:"start"`
	End            *time.Time `json:"end"`
	ElapsedSeconds float64    `json:"elapsed_seconds"`
	Logs           []string   `json:"logs"`
}

type messageOutput struct {
	Message string `json:"message"`
}

// PrintProjectList prints projects in JSON format.
func (j *JSONPrinter) PrintProjectList(projects []model.Project) error {
	items := make([]projectOutput, len(projects))
	for i, p := range projects {
		items[i] = toProjectOutput(p)
	}

	return j.encode(items)
}

// PrintProject prints a project in JSON format.
func (j *JSONPrinter) PrintProject(p model.Project) error {
	return j.encode(toProjectOutput(p))
}

// PrintCommands prints the command categories of a project in JSON format.
func (j *JSONPrinter) PrintCommands(project model.Project, categories []command.Category) error {
	items := make([]categoryOutput, len(categories))
	for i, c := range categories {
		cmds := make([]commandOutput, len(c.Commands))
		for k, cmd := range c.Commands {
			args := cmd.Args
			if args == nil {
				args = []string{}
			}
			cmds[k] = commandOutput{
				Command:     cmd.Command,
				Args:        args,
				Description: cmd.Description(),
				Favorite:    project.IsFavorite(cmd.Description()),
			}
		}
		items[i] = categoryOutput{Title: c.Title, Commands: cmds, Error: c.Error}
	}

	return j.encode(items)
}

// PrintTasks prints tasks in JSON format.
func (j *JSONPrinter) PrintTasks(tasks []task.Snapshot, now time.Time) error {
	items := make([]taskOutput, len(tasks))
	for i, s := range tasks {
		logs := make([]string, len(s.Logs))
		for k, l := range s.Logs {
			logs[k] = l.Message
		}

		items[i] = taskOutput{
			ID:             s.ID,
			Project:        s.ProjectName,
			Title:          s.Title,
			Status:         statusText(s.Status),
			Start:          utcTime(s.Start),
			End:            utcTime(s.End),
			ElapsedSeconds: s.Elapsed(now).Seconds(),
			Logs:           logs,
		}
	}

	return j.encode(items)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func toProjectOutput(p model.Project) projectOutput {
	favs := p.FavoriteCommands
	if favs == nil {
		favs = []string{}
	}

	return projectOutput{
		ID:               p.ID,
		Name:             p.Name,
		Path:             p.Path,
		FavoriteCommands: favs,
		CreatedAt:        p.CreatedAt.UTC(),
	}
}

func utcTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
