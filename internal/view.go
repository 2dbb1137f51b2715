package internal

import (
	"fmt"
	"strings"

	"timetracker/internal/report"

	"github.com/charmbracelet/lipgloss"
)

const chartWidth = 30

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("69"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)
)

func (m *Model) mainView() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Width(m.Width).Render("Time Tracker"))
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("st <task>: start task | pa, end, stop: stop task | re or Enter: refresh"))
	sb.WriteString("\n\n")

	sb.WriteString(m.currentTaskView())
	sb.WriteString("\n")
	sb.WriteString(inputStyle.Render("> " + m.Input + "█"))
	sb.WriteString("\n")

	switch {
	case m.Err != nil:
		sb.WriteString(errorStyle.Render("Error: " + m.Err.Error()))
	case m.Warning != "":
		sb.WriteString(warningStyle.Render(m.Warning))
	case m.Message != "":
		sb.WriteString(m.Message)
	}
	sb.WriteString("\n\n")

	boxes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.reportView(),
		"  ",
		m.chartView(),
	)
	sb.WriteString(boxes)
	sb.WriteString("\n\n")
	sb.WriteString(helpStyle.Render("Enter: run command | Esc/Ctrl+C: quit"))

	return sb.String()
}

func (m *Model) currentTaskView() string {
	if !m.Status.Running {
		return "Current task: " + inactiveStyle.Render("none")
	}
	return fmt.Sprintf("Current task: %s (since %.1f h)", runningStyle.Render(m.Status.Task), m.Status.ElapsedHours)
}

func (m *Model) reportView() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("Time Report (total: %.1f h)", report.Round(m.Report.TotalHours, 1))))
	sb.WriteString("\n\n")

	if m.Report.Empty() {
		sb.WriteString(inactiveStyle.Render("No sessions yet. Type 'st <task>' to start one."))
		return boxStyle.Render(sb.String())
	}

	width := len("Task")
	for _, t := range m.Report.Tasks {
		width = max(width, lipgloss.Width(t.Task))
	}

	sb.WriteString(fmt.Sprintf("%-*s  %7s  %8s  %4s  %s\n", width, "Task", "Time", "Share", "Sess", "Status"))
	for _, t := range m.Report.Tasks {
		status := inactiveStyle.Render(t.Status)
		if t.Status == report.StatusRunning {
			status = runningStyle.Render(t.Status)
		}
		sb.WriteString(fmt.Sprintf("%-*s  %7s  %8s  %4d  %s\n",
			width, t.Task, report.FormatHours(t.Hours), report.FormatPercent(t.Percent), t.Sessions, status))
	}
	return boxStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

func (m *Model) chartView() string {
	if m.Report.Empty() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("Time (h)"))
	sb.WriteString("\n\n")

	width := 0
	for _, t := range m.Report.Tasks {
		width = max(width, lipgloss.Width(t.Task))
	}
	peak := m.Report.MaxHours()
	for _, t := range m.Report.Tasks {
		n := 0
		if peak > 0 {
			n = int(t.Hours / peak * chartWidth)
		}
		sb.WriteString(fmt.Sprintf("%-*s %s %s\n", width, t.Task, barStyle.Render(strings.Repeat("█", n)), report.FormatHours(t.Hours)))
	}
	return boxStyle.Render(strings.TrimRight(sb.String(), "\n"))
}
