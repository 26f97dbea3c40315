package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/taskmgr/internal/task"
)

func TestSummaryText(t *testing.T) {
	tests := map[string]struct {
		summary task.Summary
		expText string
		expBusy bool
	}{
		"Without tasks it should only show the title.": {
			summary: task.Summary{},
			expText: "Task manager",
		},
		"With running tasks it should show them.": {
			summary: task.Summary{Running: 2},
			expText: "Task manager (2 running)",
			expBusy: true,
		},
		"With queued tasks it should show them.": {
			summary: task.Summary{Queued: 3},
			expText: "Task manager (3 queued)",
			expBusy: true,
		},
		"With running and queued tasks it should show both.": {
			summary: task.Summary{Running: 1, Queued: 4},
			expText: "Task manager (1 running, 4 queued)",
			expBusy: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expText, test.summary.Text())
			assert.Equal(t, test.expBusy, test.summary.Busy())
		})
	}
}
