package task

import (
	"sync"

	"github.com/slok/taskmgr/internal/model"
)

const historyMetaKey = "taskmanager"

type history struct {
	mu    sync.Mutex
	tasks []*Task
}

func projectHistory(p *model.Project) *history {
	return p.Metadata().LoadOrStore(historyMetaKey, func() any { return &history{} }).(*history)
}

func appendHistory(p *model.Project, t *Task) {
	h := projectHistory(p)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tasks = append(h.tasks, t)
}

// History returns every task that has been registered for the project, in
// registration order. Tasks are never removed from the history.
func History(p *model.Project) []*Task {
	if p == nil {
		return nil
	}

	h := projectHistory(p)
	h.mu.Lock()
	defer h.mu.Unlock()

	tasks := make([]*Task, len(h.tasks))
	copy(tasks, h.tasks)
	return tasks
}
