package report

import (
	"math"
	"time"

	"timetracker/internal/timelog"
)

const (
	StatusRunning = "running"
	StatusPaused  = "paused"
)

// TaskTotal is one row of the report.
type TaskTotal struct {
	Task     string
	Hours    float64
	Sessions int
	Status   string
	Percent  float64
}

// Report is the reduction of a log into per-task totals.
type Report struct {
	Tasks       []TaskTotal
	TotalHours  float64
	Running     string
	GeneratedAt time.Time
}

// Aggregate sums every record into per-task hours and session counts. Open
// sessions count up to now. Tasks keep the order in which they first appear
// in the log.
func Aggregate(records []timelog.Record, now time.Time) Report {
	r := Report{Tasks: []TaskTotal{}, GeneratedAt: now}
	if open, ok := timelog.OpenSession(records); ok {
		r.Running = open.Task
	}

	index := make(map[string]int)
	for _, rec := range records {
		hours := rec.Duration(now).Seconds() / 3600

		i, ok := index[rec.Task]
		if !ok {
			i = len(r.Tasks)
			index[rec.Task] = i
			status := StatusPaused
			if rec.Task == r.Running {
				status = StatusRunning
			}
			r.Tasks = append(r.Tasks, TaskTotal{Task: rec.Task, Status: status})
		}
		r.Tasks[i].Hours += hours
		r.Tasks[i].Sessions++
		r.TotalHours += hours
	}

	for i := range r.Tasks {
		r.Tasks[i].Percent = r.percentage(r.Tasks[i].Hours)
	}
	return r
}

func (r Report) percentage(hours float64) float64 {
	if r.TotalHours <= 0 {
		return 0
	}
	return 100 * hours / r.TotalHours
}

// Percentage returns the share of total time spent on task, or 0 for an
// unknown task or an empty report.
func (r Report) Percentage(task string) float64 {
	for _, t := range r.Tasks {
		if t.Task == task {
			return t.Percent
		}
	}
	return 0
}

// Task looks up the row for task.
func (r Report) Task(task string) (TaskTotal, bool) {
	for _, t := range r.Tasks {
		if t.Task == task {
			return t, true
		}
	}
	return TaskTotal{}, false
}

func (r Report) Empty() bool {
	return len(r.Tasks) == 0
}

// MaxHours is the largest per-task total, used to scale charts.
func (r Report) MaxHours() float64 {
	m := 0.0
	for _, t := range r.Tasks {
		m = math.Max(m, t.Hours)
	}
	return m
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
