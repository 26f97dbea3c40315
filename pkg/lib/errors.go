package lib

import (
	"errors"

	"github.com/slok/taskmgr/internal/model"
	"github.com/slok/taskmgr/internal/task"
	"github.com/slok/taskmgr/internal/workflow"
)

var (
	// ErrNotFound is returned when a project or task does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a project name or favorite is already registered.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned on invalid input or operation.
	ErrNotValid = errors.New("not valid")
	// ErrNotStoppable is returned when stopping a task that can't be stopped.
	ErrNotStoppable = errors.New("not stoppable")
	// ErrFailed is returned when a command or workflow step fails.
	ErrFailed = errors.New("failed")
	// ErrStopped is returned when a command or workflow step is stopped.
	ErrStopped = errors.New("stopped")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrNotFound), errors.Is(err, task.ErrNotRegistered):
		return joinErrors(err, ErrNotFound)
	case errors.Is(err, model.ErrAlreadyExists):
		return joinErrors(err, ErrAlreadyExists)
	case errors.Is(err, task.ErrNotStoppable):
		return joinErrors(err, ErrNotStoppable)
	case errors.Is(err, workflow.ErrStepFailed):
		return joinErrors(err, ErrFailed)
	case errors.Is(err, workflow.ErrStopped):
		return joinErrors(err, ErrStopped)
	case errors.Is(err, model.ErrNotValid), errors.Is(err, task.ErrInvalidTask), errors.Is(err, task.ErrAlreadyFinished):
		return joinErrors(err, ErrNotValid)
	default:
		return err
	}
}

func joinErrors(original, sentinel error) error {
	return &mappedError{original: original, sentinel: sentinel}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
