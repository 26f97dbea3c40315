package task

import "fmt"

// Summary is the count of the tracked tasks by status.
type Summary struct {
	Running int
	Queued  int
}

// Busy returns true when there is running or queued work.
func (s Summary) Busy() bool {
	return s.Running > 0 || s.Queued > 0
}

// Text returns a short human readable description of the summary.
func (s Summary) Text() string {
	const text = "Task manager"

	switch {
	case s.Running > 0 && s.Queued > 0:
		return fmt.Sprintf("%s (%d running, %d queued)", text, s.Running, s.Queued)
	case s.Running > 0:
		return fmt.Sprintf("%s (%d running)", text, s.Running)
	case s.Queued > 0:
		return fmt.Sprintf("%s (%d queued)", text, s.Queued)
	}

	return text
}
