package report

import (
	"fmt"
	"strings"

	"timetracker/internal/timelog"
)

// Text renders r as a plain table, the form used for piping and the
// clipboard.
func Text(r Report) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Time Report (total: %.1f h)\n", Round(r.TotalHours, 1)))
	if !r.GeneratedAt.IsZero() {
		sb.WriteString("Generated at " + r.GeneratedAt.Format(timelog.TimeFormat) + "\n")
	}
	if r.Empty() {
		sb.WriteString("No sessions recorded.\n")
		return sb.String()
	}

	width := len("Task")
	for _, t := range r.Tasks {
		width = max(width, len(t.Task))
	}

	sb.WriteString(fmt.Sprintf("%-*s  %8s  %10s  %8s  %s\n", width, "Task", "Time", "Percentage", "Sessions", "Status"))
	for _, t := range r.Tasks {
		sb.WriteString(fmt.Sprintf("%-*s  %8s  %10s  %8d  %s\n",
			width, t.Task, FormatHours(t.Hours), FormatPercent(t.Percent), t.Sessions, t.Status))
	}
	return sb.String()
}

// FormatHours renders hours with one decimal, e.g. "1.5h".
func FormatHours(h float64) string {
	return fmt.Sprintf("%.1fh", Round(h, 1))
}

// FormatPercent renders a percentage with two decimals, e.g. "75.00%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", Round(p, 2))
}
