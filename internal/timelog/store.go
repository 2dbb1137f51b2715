package timelog

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MalformedRecordError reports a log line that cannot be turned into a
// Record. Corrupt lines are never skipped since that would silently change
// historical totals.
type MalformedRecordError struct {
	Path   string
	Line   int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s:%d: malformed record: %s", e.Path, e.Line, e.Reason)
}

// FileStore is an append-only CSV log at a fixed path. It knows nothing
// about rotation; callers pick the path.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load reads every record in append order. A missing or empty file is an
// empty log.
func (s *FileStore) Load() ([]Record, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	return s.decode(f)
}

// utf8BOM is written at the start of CSV files by some spreadsheet tools.
const utf8BOM = "\ufeff"

func (s *FileStore) decode(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)
	if lead, err := br.Peek(len(utf8BOM)); err == nil && string(lead) == utf8BOM {
		br.Discard(len(utf8BOM))
	}
	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1

	records := []Record{}
	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &MalformedRecordError{Path: s.path, Line: pe.StartLine, Reason: pe.Err.Error()}
			}
			return nil, fmt.Errorf("read log: %w", err)
		}
		line, _ := reader.FieldPos(0)

		if first {
			first = false
			if isHeader(row) {
				continue
			}
		}

		rec, reason := parseRow(row)
		if reason != "" {
			return nil, &MalformedRecordError{Path: s.path, Line: line, Reason: reason}
		}
		records = append(records, rec)
	}
	return records, nil
}

func isHeader(row []string) bool {
	if len(row) != len(Header) {
		return false
	}
	for i := range row {
		if row[i] != Header[i] {
			return false
		}
	}
	return true
}

func parseRow(row []string) (Record, string) {
	if len(row) != 3 {
		return Record{}, fmt.Sprintf("expected 3 fields, got %d", len(row))
	}
	if strings.TrimSpace(row[0]) == "" {
		return Record{}, "empty task name"
	}
	start, err := time.ParseInLocation(TimeFormat, row[1], time.Local)
	if err != nil {
		return Record{}, fmt.Sprintf("start time %q does not match %s", row[1], TimeFormat)
	}
	rec := Record{Task: row[0], Start: start}
	if row[2] == "" {
		return rec, ""
	}
	end, err := time.ParseInLocation(TimeFormat, row[2], time.Local)
	if err != nil {
		return Record{}, fmt.Sprintf("end time %q does not match %s", row[2], TimeFormat)
	}
	if end.Before(start) {
		return Record{}, fmt.Sprintf("end time %s is before start time %s", row[2], row[1])
	}
	rec.End = &end
	return rec, ""
}

func encodeRow(r Record) []string {
	end := ""
	if r.End != nil {
		end = r.End.Format(TimeFormat)
	}
	return []string{r.Task, r.Start.Format(TimeFormat), end}
}

func encode(header bool, records ...Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if header {
		if err := w.Write(Header); err != nil {
			return nil, err
		}
	}
	for _, r := range records {
		if err := w.Write(encodeRow(r)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Append adds one record to the end of the log without touching earlier
// lines. The file and its header are created on first use.
func (s *FileStore) Append(r Record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat log: %w", err)
	}

	data, err := encode(info.Size() == 0, r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	// Hand-edited files may lack a trailing newline.
	if info.Size() > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, info.Size()-1); err != nil {
			return fmt.Errorf("read log: %w", err)
		}
		if last[0] != '\n' {
			data = append([]byte{'\n'}, data...)
		}
	}

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync log: %w", err)
	}
	return f.Close()
}

// Rewrite replaces the log with records. The new content is written to a
// temporary file next to the log and renamed over it.
func (s *FileStore) Rewrite(records []Record) error {
	data, err := encode(true, records...)
	if err != nil {
		return fmt.Errorf("encode log: %w", err)
	}
	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("rewrite log: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
