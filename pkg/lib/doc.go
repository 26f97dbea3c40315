// Package lib provides a Go SDK to embed the taskmgr engine in applications.
//
// The SDK registers projects, discovers their commands and runs them as
// tracked tasks without shelling out to the taskmgr CLI binary.
//
// # Quick Start
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Register a project directory.
//	p, err := client.CreateProject(ctx, lib.CreateProjectOpts{Path: "/src/web"})
//
//	// Run a command and wait until it ends.
//	t, err := client.RunCommand(ctx, p.Name, lib.Command{Command: "npm", Args: []string{"test"}})
//	for _, l := range t.Logs {
//	    fmt.Println(l.Message)
//	}
//
// # Tasks
//
// [Client.StartCommand] returns as soon as the task is running. Use
// [Client.Tasks] to list the live tasks, [Client.StopTask] to stop one and
// [Client.TaskHistory] to get every task that ran on a project since the
// client was created. Task history is not persisted.
//
// # Events
//
// Subscribe to the task lifecycle with [Client.Subscribe]:
//
//	unsubscribe := client.Subscribe(lib.TopicTaskFinished, func(e lib.TaskEvent) {
//	    fmt.Printf("%s: %s (failed: %t)\n", e.Task.Title, e.Task.Status, e.Failed)
//	})
//	defer unsubscribe()
//
// Handlers run synchronously on the goroutine that changed the task, they must
// not block.
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: Resource does not exist.
//   - [ErrAlreadyExists]: Resource with the same name already exists.
//   - [ErrNotValid]: Invalid input or operation.
//   - [ErrNotStoppable]: The task can't be stopped.
//
// # Thread Safety
//
// A [Client] is safe for concurrent use from multiple goroutines.
package lib
