package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"timetracker/internal/config"
	"timetracker/internal/timelog"
)

// run executes the CLI against a fresh data dir and returns stdout and
// stderr.
func run(t *testing.T, dataDir string, args ...string) (string, string, error) {
	t.Helper()
	copyFlag = false
	sinceFlag = ""
	verboseFlag = false

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	full := append([]string{
		"--config", filepath.Join(dataDir, "missing-config.yaml"),
		"--data-dir", dataDir,
	}, args...)
	rootCmd.SetArgs(full)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestStartStopReport(t *testing.T) {
	dir := t.TempDir()

	out, _, err := run(t, dir, "start", "write", "docs")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !strings.Contains(out, "Started working on write docs") {
		t.Errorf("start output = %q", out)
	}

	out, _, err = run(t, dir, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Current task: write docs (since 0.0 h)") {
		t.Errorf("status output = %q", out)
	}

	out, _, err = run(t, dir, "start", "review")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !strings.Contains(out, "Stopped working on write docs") {
		t.Errorf("switch not reported: %q", out)
	}

	if _, _, err := run(t, dir, "stop"); err != nil {
		t.Fatalf("stop: %v", err)
	}

	out, _, err = run(t, dir, "report")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	for _, want := range []string{"write docs", "review", "paused"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestUserMistakesAreWarnings(t *testing.T) {
	dir := t.TempDir()

	_, errOut, err := run(t, dir, "stop")
	if err != nil {
		t.Fatalf("stop while idle should not fail: %v", err)
	}
	if !strings.Contains(errOut, "No task currently running.") {
		t.Errorf("stderr = %q", errOut)
	}

	_, errOut, err = run(t, dir, "start", "   ")
	if err != nil {
		t.Fatalf("blank start should not fail: %v", err)
	}
	if !strings.Contains(errOut, "task name is empty") {
		t.Errorf("stderr = %q", errOut)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "*.csv"))
	if len(matches) != 0 {
		t.Errorf("user mistakes created log files: %v", matches)
	}
}

func TestMalformedLogFails(t *testing.T) {
	dir := t.TempDir()
	out, _, err := run(t, dir, "path")
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	path := strings.TrimSpace(out)
	if err := os.WriteFile(path, []byte("task_name,start_time,end_time\nbroken\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, _, err := run(t, dir, "report"); err == nil || !strings.Contains(err.Error(), "malformed record") {
		t.Fatalf("report err = %v, want malformed record", err)
	}
	if _, _, err := run(t, dir, "start", "x"); err == nil {
		t.Fatal("start on a malformed log should fail")
	}
}

func TestPathUsesWeeklyRotation(t *testing.T) {
	dir := t.TempDir()
	out, _, err := run(t, dir, "path")
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	path := strings.TrimSpace(out)
	if filepath.Dir(path) != dir {
		t.Errorf("path %q not in data dir %q", path, dir)
	}
	if ok, _ := filepath.Match("time_log_*_*.csv", filepath.Base(path)); !ok {
		t.Errorf("unexpected file name %q", filepath.Base(path))
	}
}

func TestConfigFileRotationNone(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := config.Save(cfgPath, &config.Config{DataDir: dir, Rotation: config.RotationNone, FileName: "all.csv"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"--config", cfgPath, "--data-dir", "", "path"})
	dataDirFlag = ""
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("path: %v", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != filepath.Join(dir, "all.csv") {
		t.Errorf("path = %q", got)
	}
}

func TestArchiveAndHistory(t *testing.T) {
	dir := t.TempDir()
	older := "task_name,start_time,end_time\nplanning,2024-01-01 09:00:00,2024-01-01 11:00:00\n"
	if err := os.WriteFile(filepath.Join(dir, "time_log_01_2024.csv"), []byte(older), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	newer := "task_name,start_time,end_time\nplanning,2024-01-08 09:00:00,2024-01-08 10:00:00\ncoding,2024-01-08 10:00:00,2024-01-08 13:00:00\n"
	if err := os.WriteFile(filepath.Join(dir, "time_log_02_2024.csv"), []byte(newer), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	out, _, err := run(t, dir, "archive")
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !strings.Contains(out, "time_log_01_2024.csv") || !strings.Contains(out, "time_log_02_2024.csv") {
		t.Errorf("archive output = %q", out)
	}

	out, _, err = run(t, dir, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	for _, want := range []string{"total: 6.0 h", "planning", "3.0h", "50.00%", "coding"} {
		if !strings.Contains(out, want) {
			t.Errorf("history missing %q:\n%s", want, out)
		}
	}

	out, _, err = run(t, dir, "history", "--since", "2024-01-08")
	if err != nil {
		t.Fatalf("history --since: %v", err)
	}
	if !strings.Contains(out, "total: 4.0 h") {
		t.Errorf("history --since output:\n%s", out)
	}
}

func TestStopAfterWeekRollover(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() { now = time.Now })

	at := func(s string) func() time.Time {
		ts, err := time.ParseInLocation(timelog.TimeFormat, s, time.Local)
		if err != nil {
			t.Fatal(err)
		}
		return func() time.Time { return ts }
	}

	now = at("2024-01-07 22:00:00")
	if _, _, err := run(t, dir, "start", "x"); err != nil {
		t.Fatalf("start: %v", err)
	}

	now = at("2024-01-08 09:00:00")
	out, errOut, err := run(t, dir, "stop")
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !strings.Contains(out, "Stopped working on x at 2024-01-08 09:00:00") {
		t.Errorf("stop output = %q, stderr = %q", out, errOut)
	}

	old, err := timelog.NewFileStore(filepath.Join(dir, "time_log_01_2024.csv")).Load()
	if err != nil {
		t.Fatalf("Load week 1: %v", err)
	}
	if len(old) != 1 || old[0].Open() || old[0].End.Format(timelog.TimeFormat) != "2024-01-08 00:00:00" {
		t.Errorf("week 1 log = %+v", old)
	}

	out, _, err = run(t, dir, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Current task: none") {
		t.Errorf("status output = %q", out)
	}

	out, _, err = run(t, dir, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	for _, want := range []string{"total: 11.0 h", "paused"} {
		if !strings.Contains(out, want) {
			t.Errorf("history missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "running") {
		t.Errorf("history still counts a running task:\n%s", out)
	}
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "missing-config.yaml")

	out, _, err := run(t, dir, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote "+cfgPath) {
		t.Errorf("output = %q", out)
	}
	written, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if written.DataDir != dir || written.Rotation != config.RotationWeek {
		t.Errorf("written config = %+v", written)
	}

	before, _ := os.ReadFile(cfgPath)
	_, errOut, err := run(t, dir, "config", "init")
	if err != nil {
		t.Fatalf("second config init should not fail: %v", err)
	}
	if !strings.Contains(errOut, "already exists") {
		t.Errorf("stderr = %q", errOut)
	}
	after, _ := os.ReadFile(cfgPath)
	if !bytes.Equal(before, after) {
		t.Error("existing config was overwritten")
	}

	out, _, err = run(t, dir, "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, "rotation: week") {
		t.Errorf("config output = %q", out)
	}
}
