package timelog

import "time"

// TimeFormat is the layout of every timestamp in the log file.
const TimeFormat = "2006-01-02 15:04:05"

// Header is the first line of every log file.
var Header = []string{"task_name", "start_time", "end_time"}

// Record represents one session worked on a task. A nil End means the
// session is still open.
type Record struct {
	Task  string
	Start time.Time
	End   *time.Time
}

func (r Record) Open() bool {
	return r.End == nil
}

// Duration is the length of the session, measured against now while the
// session is open.
func (r Record) Duration(now time.Time) time.Duration {
	end := now
	if r.End != nil {
		end = *r.End
	}
	d := end.Sub(r.Start)
	if d < 0 {
		return 0
	}
	return d
}

// Closed returns a copy of r ending at end.
func (r Record) Closed(end time.Time) Record {
	r.End = &end
	return r
}

// OpenSession returns the running session, if any. Only the last record can
// be open; an open record anywhere else was left there by hand and does not
// make a task current.
func OpenSession(records []Record) (Record, bool) {
	if len(records) == 0 {
		return Record{}, false
	}
	last := records[len(records)-1]
	if !last.Open() {
		return Record{}, false
	}
	return last, true
}
