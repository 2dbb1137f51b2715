package internal

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"timetracker/internal/timelog"
	"timetracker/internal/tracker"

	tea "github.com/charmbracelet/bubbletea"
)

func newModel(t *testing.T) (*Model, *time.Time) {
	t.Helper()
	store := timelog.NewFileStore(filepath.Join(t.TempDir(), "log.csv"))
	now, _ := time.ParseInLocation(timelog.TimeFormat, "2024-01-01 09:00:00", time.Local)
	m, err := NewModel(tracker.New(store, tracker.WithClock(func() time.Time { return now })))
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m, &now
}

func typeInput(m *Model, s string) {
	for _, r := range s {
		if r == ' ' {
			m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestModel_StartAndTick(t *testing.T) {
	m, now := newModel(t)

	typeInput(m, "st writing")
	if m.Err != nil {
		t.Fatalf("Err = %v", m.Err)
	}
	if m.Input != "" {
		t.Errorf("input not cleared: %q", m.Input)
	}
	if !m.Status.Running || m.Status.Task != "writing" {
		t.Fatalf("Status = %+v", m.Status)
	}

	*now = now.Add(90 * time.Minute)
	m.Update(MsgTick{})
	if m.Status.ElapsedHours != 1.5 {
		t.Errorf("ElapsedHours = %v, want 1.5", m.Status.ElapsedHours)
	}

	view := m.View()
	for _, want := range []string{"Current task:", "writing", "since 1.5 h", "running"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_WarningForStopWhileIdle(t *testing.T) {
	m, _ := newModel(t)
	typeInput(m, "pa")
	if m.Warning == "" {
		t.Fatal("expected a warning")
	}
	if !strings.Contains(m.View(), "No task currently running.") {
		t.Error("warning not shown")
	}
}

func TestModel_Backspace(t *testing.T) {
	m, _ := newModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("stx")})
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if m.Input != "st" {
		t.Errorf("Input = %q, want st", m.Input)
	}
}

func TestModel_Quit(t *testing.T) {
	m, _ := newModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

// readOnlyStore loads an empty log and refuses writes.
type readOnlyStore struct{}

var errReadOnly = errors.New("log is read-only")

func (readOnlyStore) Load() ([]timelog.Record, error) { return nil, nil }
func (readOnlyStore) Append(timelog.Record) error { return errReadOnly }
func (readOnlyStore) Rewrite([]timelog.Record) error { return errReadOnly }

func TestModel_CommandErrorSurvivesTick(t *testing.T) {
	m, err := NewModel(tracker.New(readOnlyStore{}))
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	typeInput(m, "st writing")
	if !errors.Is(m.Err, errReadOnly) {
		t.Fatalf("Err = %v, want %v", m.Err, errReadOnly)
	}

	m.Update(MsgTick{})
	if !errors.Is(m.Err, errReadOnly) {
		t.Errorf("tick cleared the command error: Err = %v", m.Err)
	}

	typeInput(m, "re")
	if m.Err != nil {
		t.Errorf("next command should clear the error, Err = %v", m.Err)
	}
}
