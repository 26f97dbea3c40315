package lib

import (
	"context"

	"github.com/slok/taskmgr/internal/event"
	"github.com/slok/taskmgr/internal/task"
)

// Topic is a task lifecycle event topic.
type Topic string

const (
	// TopicTaskAdded is published when a task is registered.
	TopicTaskAdded = Topic(task.TopicTaskAdded)
	// TopicTaskStarted is published when a task starts running.
	TopicTaskStarted = Topic(task.TopicTaskStarted)
	// TopicTaskFinished is published when a task ends, including stopped running tasks.
	TopicTaskFinished = Topic(task.TopicTaskFinished)
)

// TaskEvent is a task lifecycle event.
type TaskEvent struct {
	Topic Topic
	Task  Task
	// Failed is true on TopicTaskFinished when the command failed.
	Failed bool
}

// Subscribe registers fn for the events of the topic and returns the function
// that unsubscribes it.
func (c *Client) Subscribe(topic Topic, fn func(TaskEvent)) (unsubscribe func()) {
	sub := c.bus.Subscribe(event.Topic(topic), func(_ context.Context, payload any) {
		ev, ok := payload.(task.Event)
		if !ok {
			return
		}
		fn(TaskEvent{Topic: topic, Task: fromInternalTask(ev.Task), Failed: ev.Error})
	})

	return sub.Dispose
}
