package internal

import (
	"timetracker/internal/command"
	"timetracker/internal/report"
	"timetracker/internal/tracker"

	tea "github.com/charmbracelet/bubbletea"
)

type MsgTick struct{}

type Model struct {
	Input   string
	Status  tracker.Status
	Report  report.Report
	Message string
	Warning string
	Err     error
	Width   int

	tracker *tracker.Tracker
	interp  *command.Interpreter
}

func NewModel(t *tracker.Tracker) (*Model, error) {
	m := &Model{
		tracker: t,
		interp:  command.NewInterpreter(t),
		Width:   80,
	}
	if err := m.refresh(); err != nil {
		return nil, err
	}
	return m, nil
}

// refresh reloads the log and recomputes status and report as of now.
func (m *Model) refresh() error {
	records, err := m.tracker.Records()
	if err != nil {
		return err
	}
	now := m.tracker.Now()
	m.Status = tracker.StatusOf(records, now)
	m.Report = report.Aggregate(records, now)
	return nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MsgTick:
		// A tick only reports its own failure; an error from the last
		// command stays on screen until the next one runs.
		if err := m.refresh(); err != nil {
			m.Err = err
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		return m, nil
	}
	return m, nil
}

func (m *Model) View() string {
	return m.mainView()
}

// Run executes one command line and refreshes the report.
func (m *Model) Run(input string) {
	m.Message = ""
	m.Warning = ""
	m.Err = nil
	out, err := m.interp.Execute(input)
	if err != nil {
		m.Err = err
		return
	}
	m.Message = out.Message
	m.Warning = out.Warning
	m.Err = m.refresh()
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		m.Run(m.Input)
		m.Input = ""
	case tea.KeyBackspace:
		runes := []rune(m.Input)
		if len(runes) > 0 {
			m.Input = string(runes[:len(runes)-1])
		}
	case tea.KeySpace:
		m.Input += " "
	case tea.KeyRunes:
		m.Input += string(msg.Runes)
	}
	return m, nil
}
