package task

import (
	"regexp"
	"strings"
	"time"
)

// LogLevel is the level of a task log entry.
type LogLevel string

const (
	// LogLevelDefault is the level used when none is specified, it's not rendered.
	LogLevelDefault LogLevel = ""
	LogLevelInfo    LogLevel = "info"
	LogLevelWarn    LogLevel = "warn"
	LogLevelError   LogLevel = "error"
)

// LogEntry is a single line of a task log.
type LogEntry struct {
	Message string
	Level   LogLevel
}

const logTimeLayout = "15:04:05"

var (
	lineSplitRegexp  = regexp.MustCompile(`\r\n|\n|\r`)
	timePrefixRegexp = regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\]`)
)

// LogFormatter converts raw output chunks into timestamped log entries.
type LogFormatter struct {
	// Now returns the current time, defaults to time.Now.
	Now func() time.Time
}

// Format splits raw into lines and returns one entry per non blank line.
// Lines that already start with a `[HH:MM:SS]` token are kept as they are,
// the rest are prefixed with the current local time and, if not default, the level.
func (f LogFormatter) Format(raw string, level LogLevel) []LogEntry {
	if raw == "" {
		return nil
	}

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}

	var entries []LogEntry
	for _, line := range lineSplitRegexp.Split(raw, -1) {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if !timePrefixRegexp.MatchString(line) {
			prefix := "[" + now().Local().Format(logTimeLayout) + "] "
			if level != LogLevelDefault {
				prefix += "[" + string(level) + "] "
			}
			line = prefix + line
		}

		entries = append(entries, LogEntry{Message: line, Level: level})
	}

	return entries
}
