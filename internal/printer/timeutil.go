package printer

import (
	"fmt"
	"strings"
	"time"
)

// TimeAgo returns a human-readable relative time string in UTC.
// Examples: "5 seconds ago (UTC)", "2 minutes ago (UTC)", "3 hours ago (UTC)".
func TimeAgo(t time.Time) string {
	diff := time.Now().UTC().Sub(t.UTC())

	switch {
	case diff < 0:
		return "in the future (UTC)"
	case diff < time.Minute:
		return plural(int(diff.Seconds()), "second") + " ago (UTC)"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute") + " ago (UTC)"
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour") + " ago (UTC)"
	}

	return plural(int(diff.Hours()/24), "day") + " ago (UTC)"
}

// FormatTimestamp returns a formatted timestamp string in UTC.
// Format: "2006-01-02 15:04:05 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// FormatElapsed returns the duration in hours, minutes and seconds omitting the
// zero parts. Examples: "1 hour", "2 minutes", "1 hour, 2 minutes, 5 seconds",
// "1 hour, 5 seconds".
func FormatElapsed(d time.Duration) string {
	if d < time.Second {
		return "0 seconds"
	}

	total := int(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if seconds > 0 {
		parts = append(parts, plural(seconds, "second"))
	}

	return strings.Join(parts, ", ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
