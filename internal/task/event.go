package task

import (
	"context"

	"github.com/slok/taskmgr/internal/event"
	"github.com/slok/taskmgr/internal/model"
)

const (
	// TopicTaskAdded is published when a task is registered.
	TopicTaskAdded event.Topic = "TaskAdded"
	// TopicTaskStarted is published when a task starts running.
	TopicTaskStarted event.Topic = "TaskStarted"
	// TopicTaskFinished is published when the executor of a task settles.
	TopicTaskFinished event.Topic = "TaskFinished"
)

// Event is the payload of the task lifecycle topics.
type Event struct {
	Project *model.Project
	Task    *Task
	// Error is only meaningful on TopicTaskFinished, true when the executor failed.
	Error bool
}

// Publisher publishes task lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, topic event.Topic, payload any)
}
