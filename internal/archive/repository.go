// Package archive keeps every session from every rotated log in one SQLite
// database so history can be reported across periods.
package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"timetracker/internal/timelog"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

// LogSummary describes one archived log file.
type LogSummary struct {
	Name     string
	Sessions int
	First    time.Time
	Last     time.Time
}

func NewRepository(path string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	repo := &Repository{db: db}
	if err := repo.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}

	return repo, nil
}

func (r *Repository) init() error {
	if err := r.migrateLegacy(); err != nil {
		return err
	}

	sessionsQuery := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		log_name TEXT NOT NULL,
		seq INTEGER NOT NULL,
		task_name TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT,
		UNIQUE (log_name, seq)
	)
	`
	if _, err := r.db.Exec(sessionsQuery); err != nil {
		return err
	}

	_, err := r.db.Exec("CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at)")
	return err
}

// migrateLegacy moves aside a sessions table keyed by start time, which
// merged sessions that started in the same second. Its rows are rebuilt from
// the log files on the next import.
func (r *Repository) migrateLegacy() error {
	rows, err := r.db.Query("SELECT name FROM pragma_table_info('sessions')")
	if err != nil {
		return err
	}
	defer rows.Close()

	found, hasSeq := false, false
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		found = true
		if name == "seq" {
			hasSeq = true
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	if !found || hasSeq {
		return nil
	}
	if _, err := r.db.Exec("DROP INDEX IF EXISTS idx_sessions_started"); err != nil {
		return err
	}
	_, err = r.db.Exec("ALTER TABLE sessions RENAME TO sessions_legacy")
	return err
}

// Sync mirrors the log named logName into the archive. A session is
// identified by its position in the log, so a session archived while open
// picks up its end time on the next sync, and sessions sharing a start
// second stay distinct. Rows past the end of the log are dropped.
func (r *Repository) Sync(logName string, records []timelog.Record) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO sessions (log_name, seq, task_name, started_at, ended_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (log_name, seq) DO UPDATE SET
			task_name = excluded.task_name,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, rec := range records {
		var ended any
		if rec.End != nil {
			ended = rec.End.Format(timelog.TimeFormat)
		}
		if _, err := stmt.Exec(logName, i, rec.Task, rec.Start.Format(timelog.TimeFormat), ended); err != nil {
			return 0, fmt.Errorf("archive %s: %w", logName, err)
		}
	}
	if _, err := tx.Exec("DELETE FROM sessions WHERE log_name = ? AND seq >= ?", logName, len(records)); err != nil {
		return 0, fmt.Errorf("archive %s: %w", logName, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Records returns archived sessions that started at or after since, oldest
// first. A zero since returns everything.
func (r *Repository) Records(since time.Time) ([]timelog.Record, error) {
	from := ""
	if !since.IsZero() {
		from = since.Format(timelog.TimeFormat)
	}
	rows, err := r.db.Query(
		"SELECT task_name, started_at, ended_at FROM sessions WHERE started_at >= ? ORDER BY started_at, log_name, seq",
		from,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []timelog.Record
	for rows.Next() {
		var rec timelog.Record
		var startedAt string
		var endedAt sql.NullString
		if err := rows.Scan(&rec.Task, &startedAt, &endedAt); err != nil {
			return nil, err
		}
		rec.Start, err = time.ParseInLocation(timelog.TimeFormat, startedAt, time.Local)
		if err != nil {
			return nil, fmt.Errorf("archived start time %q: %w", startedAt, err)
		}
		if endedAt.Valid {
			end, err := time.ParseInLocation(timelog.TimeFormat, endedAt.String, time.Local)
			if err != nil {
				return nil, fmt.Errorf("archived end time %q: %w", endedAt.String, err)
			}
			rec.End = &end
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Logs lists every archived log with its session count, oldest first.
func (r *Repository) Logs() ([]LogSummary, error) {
	rows, err := r.db.Query(
		`SELECT log_name, COUNT(*), MIN(started_at), MAX(started_at)
		 FROM sessions
		 GROUP BY log_name
		 ORDER BY MIN(started_at)`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []LogSummary
	for rows.Next() {
		var l LogSummary
		var first, last string
		if err := rows.Scan(&l.Name, &l.Sessions, &first, &last); err != nil {
			return nil, err
		}
		l.First, _ = time.ParseInLocation(timelog.TimeFormat, first, time.Local)
		l.Last, _ = time.ParseInLocation(timelog.TimeFormat, last, time.Local)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *Repository) Close() error {
	return r.db.Close()
}
