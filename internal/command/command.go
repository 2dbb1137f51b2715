// Package command maps the short textual grammar typed into the dashboard
// onto tracker operations.
//
//	""  | re            refresh
//	pa  | end  | stop   stop the running task
//	st <task>           start <task>, stopping any running task first
package command

import (
	"errors"
	"fmt"
	"strings"

	"timetracker/internal/timelog"
	"timetracker/internal/tracker"
)

// ErrUnsupportedCommand is returned by Parse for input outside the grammar.
var ErrUnsupportedCommand = fmt.Errorf("%w: command not supported", tracker.ErrInvalidInput)

type Kind int

const (
	Refresh Kind = iota
	Stop
	Start
)

func (k Kind) String() string {
	switch k {
	case Refresh:
		return "refresh"
	case Stop:
		return "stop"
	case Start:
		return "start"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Command struct {
	Kind Kind
	Task string
}

// Parse reads one command. Verbs are case-insensitive; the task name keeps
// its case.
func Parse(input string) (Command, error) {
	input = strings.TrimSpace(input)
	verb, rest, _ := strings.Cut(input, " ")

	switch strings.ToLower(verb) {
	case "", "re":
		if rest == "" {
			return Command{Kind: Refresh}, nil
		}
	case "pa", "end", "stop":
		if rest == "" {
			return Command{Kind: Stop}, nil
		}
	case "st":
		// input is trimmed, so a present remainder is never blank.
		if task := strings.TrimSpace(rest); task != "" {
			return Command{Kind: Start, Task: task}, nil
		}
	}
	return Command{}, ErrUnsupportedCommand
}

// Tracker is the subset of *tracker.Tracker the interpreter drives.
type Tracker interface {
	Start(task string) (tracker.StartResult, error)
	Stop() (timelog.Record, error)
}

// Outcome is what happened for one command. Warning is set for user
// mistakes that left the log unchanged.
type Outcome struct {
	Command Command
	Message string
	Warning string
}

type Interpreter struct {
	tracker Tracker
}

func NewInterpreter(t Tracker) *Interpreter {
	return &Interpreter{tracker: t}
}

// Execute parses and runs input. Only store failures are returned as
// errors; everything the user can fix comes back as Outcome.Warning.
func (in *Interpreter) Execute(input string) (Outcome, error) {
	cmd, err := Parse(input)
	if err != nil {
		return Outcome{Warning: fmt.Sprintf("Command not supported: %q", strings.TrimSpace(input))}, nil
	}
	out := Outcome{Command: cmd}

	switch cmd.Kind {
	case Refresh:
	case Stop:
		rec, err := in.tracker.Stop()
		if errors.Is(err, tracker.ErrNoActiveSession) {
			out.Warning = "No task currently running."
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out.Message = fmt.Sprintf("Stopped working on %s at %s.", rec.Task, rec.End.Format(timelog.TimeFormat))
	case Start:
		res, err := in.tracker.Start(cmd.Task)
		if errors.Is(err, tracker.ErrInvalidInput) {
			out.Warning = err.Error()
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out.Message = StartMessage(res)
	}
	return out, nil
}

// StartMessage describes a start, including the task it switched away from.
func StartMessage(res tracker.StartResult) string {
	msg := fmt.Sprintf("Started working on %s at %s.", res.Started.Task, res.Started.Start.Format(timelog.TimeFormat))
	if res.Switched != nil {
		msg = fmt.Sprintf("Stopped working on %s. %s", res.Switched.Task, msg)
	}
	return msg
}
