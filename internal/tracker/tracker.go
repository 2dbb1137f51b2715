// Package tracker implements the start/stop state machine on top of a
// session log. State is never held in memory; it is derived from the log on
// every call.
package tracker

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"timetracker/internal/timelog"
)

var (
	// ErrInvalidInput is returned for user mistakes such as an empty task
	// name. The log is left untouched.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoActiveSession is returned by Stop when no task is running.
	ErrNoActiveSession = errors.New("no task currently running")
)

// Store is the persistence the tracker needs. timelog.FileStore implements it.
type Store interface {
	Load() ([]timelog.Record, error)
	Append(timelog.Record) error
	Rewrite([]timelog.Record) error
}

// Status is the derived state of the log: idle, or running a task.
type Status struct {
	Running      bool
	Task         string
	Start        time.Time
	ElapsedHours float64
}

// StartResult describes what Start did. Switched is set when a running
// task had to be stopped first.
type StartResult struct {
	Started  timelog.Record
	Switched *timelog.Record
}

type Tracker struct {
	store Store
	now   func() time.Time
	log   *slog.Logger
}

type Option func(*Tracker)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		t.log = l
	}
}

func New(store Store, opts ...Option) *Tracker {
	t := &Tracker{
		store: store,
		now:   time.Now,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Now is the tracker's clock truncated to whole seconds, the precision of
// the log file.
func (t *Tracker) Now() time.Time {
	return t.now().Round(0).Truncate(time.Second)
}

// StatusOf derives the current state from records as of now.
func StatusOf(records []timelog.Record, now time.Time) Status {
	open, ok := timelog.OpenSession(records)
	if !ok {
		return Status{}
	}
	return Status{
		Running:      true,
		Task:         open.Task,
		Start:        open.Start,
		ElapsedHours: RoundHours(open.Duration(now)),
	}
}

// RoundHours converts d to hours rounded to one decimal place.
func RoundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*10) / 10
}

func (t *Tracker) Current() (Status, error) {
	records, err := t.store.Load()
	if err != nil {
		return Status{}, err
	}
	return StatusOf(records, t.Now()), nil
}

// Start begins a session for task. A running task is stopped first, so the
// log never holds two open sessions.
func (t *Tracker) Start(task string) (StartResult, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return StartResult{}, fmt.Errorf("%w: task name is empty", ErrInvalidInput)
	}

	var res StartResult
	prev, err := t.Stop()
	switch {
	case err == nil:
		res.Switched = &prev
		t.log.Info("task switch", "from", prev.Task, "to", task)
	case errors.Is(err, ErrNoActiveSession):
	default:
		return StartResult{}, err
	}

	rec := timelog.Record{Task: task, Start: t.Now()}
	if err := t.store.Append(rec); err != nil {
		return res, err
	}
	res.Started = rec
	t.log.Debug("task started", "task", task, "start", rec.Start.Format(timelog.TimeFormat))
	return res, nil
}

// Stop closes the running session and returns it.
func (t *Tracker) Stop() (timelog.Record, error) {
	records, err := t.store.Load()
	if err != nil {
		return timelog.Record{}, err
	}
	if _, ok := timelog.OpenSession(records); !ok {
		return timelog.Record{}, ErrNoActiveSession
	}

	last := len(records) - 1
	now := t.Now()
	if now.Before(records[last].Start) {
		// The host clock went backwards since the session started.
		now = records[last].Start
	}
	records[last] = records[last].Closed(now)
	if err := t.store.Rewrite(records); err != nil {
		return timelog.Record{}, err
	}
	t.log.Debug("task stopped", "task", records[last].Task, "end", now.Format(timelog.TimeFormat))
	return records[last], nil
}

// CarryOver continues a session left running in prev, the log of an
// earlier period, in the tracker's own log. The session is closed in prev at
// boundary and reopened here from boundary, so each period's log accounts
// for its own time and only one session stays open. It does nothing unless
// the tracker's log is empty and prev ends with an open session.
func (t *Tracker) CarryOver(prev Store, boundary time.Time) (*timelog.Record, error) {
	records, err := t.store.Load()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		return nil, nil
	}

	old, err := prev.Load()
	if err != nil {
		return nil, err
	}
	open, ok := timelog.OpenSession(old)
	if !ok {
		return nil, nil
	}

	end := boundary.Truncate(time.Second)
	if end.Before(open.Start) {
		end = open.Start
	}
	if now := t.Now(); end.After(now) {
		end = now
	}
	old[len(old)-1] = open.Closed(end)
	if err := prev.Rewrite(old); err != nil {
		return nil, err
	}

	rec := timelog.Record{Task: open.Task, Start: end}
	if err := t.store.Append(rec); err != nil {
		return nil, err
	}
	t.log.Info("task carried into new log", "task", rec.Task, "start", rec.Start.Format(timelog.TimeFormat))
	return &rec, nil
}

// Records exposes the underlying log for reporting.
func (t *Tracker) Records() ([]timelog.Record, error) {
	return t.store.Load()
}
