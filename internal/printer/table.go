package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/slok/taskmgr/internal/command"
	"github.com/slok/taskmgr/internal/model"
	"github.com/slok/taskmgr/internal/task"
)

// TablePrinter prints information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintProjectList prints projects in a table format.
func (t *TablePrinter) PrintProjectList(projects []model.Project) error {
	if len(projects) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "NAME\tPATH\tFAVORITES\tCREATED")
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.Name, p.Path, len(p.FavoriteCommands), TimeAgo(p.CreatedAt))
	}

	return nil
}

// PrintProject prints detailed project information.
func (t *TablePrinter) PrintProject(p model.Project) error {
	fmt.Fprintf(t.writer, "Name:       %s\n", p.Name)
	fmt.Fprintf(t.writer, "ID:         %s\n", p.ID)
	fmt.Fprintf(t.writer, "Path:       %s\n", p.Path)
	fmt.Fprintf(t.writer, "Created:    %s\n", FormatTimestamp(p.CreatedAt))
	fmt.Fprintf(t.writer, "Favorites:  %s\n", strings.Join(p.FavoriteCommands, ", "))

	return nil
}

// PrintCommands prints the command categories of a project, favorites are marked with a star.
func (t *TablePrinter) PrintCommands(project model.Project, categories []command.Category) error {
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "CATEGORY\tCOMMAND\tFAVORITE")
	for _, c := range categories {
		if c.Error != "" {
			fmt.Fprintf(tw, "%s\t%s\t\n", c.Title, c.Error)
			continue
		}

		for _, cmd := range c.Commands {
			fav := ""
			if project.IsFavorite(cmd.Description()) {
				fav = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Title, cmd.Description(), fav)
		}
	}

	return nil
}

// PrintTasks prints tasks in a table format.
func (t *TablePrinter) PrintTasks(tasks []task.Snapshot, now time.Time) error {
	if len(tasks) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tPROJECT\tTITLE\tSTATUS\tELAPSED")
	for _, s := range tasks {
		elapsed := "-"
		if s.Start != nil {
			elapsed = FormatElapsed(s.Elapsed(now))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.ProjectName, s.Title, statusText(s.Status), elapsed)
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func statusText(s task.Status) string {
	if s == task.StatusNew {
		return "new"
	}
	return string(s)
}
