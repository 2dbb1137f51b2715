package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	RotationWeek = "week"
	RotationNone = "none"

	defaultFileName = "time_log.csv"
	defaultArchive  = "archive.db"
)

type Config struct {
	DataDir  string `yaml:"data_dir"`
	Rotation string `yaml:"rotation"`
	// FileName is the log file used when rotation is "none".
	FileName  string `yaml:"file_name,omitempty"`
	ArchiveDB string `yaml:"archive_db,omitempty"`
	LogLevel  string `yaml:"log_level,omitempty"`
}

// Default returns the configuration used when no file exists: weekly logs
// under ~/.timetracker.
func Default() *Config {
	dir := ".timetracker"
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".timetracker")
	}
	return &Config{
		DataDir:  dir,
		Rotation: RotationWeek,
		FileName: defaultFileName,
		LogLevel: "info",
	}
}

// DefaultPath returns the config file location inside the user config dir.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "timetracker", "config.yaml")
}

// Load reads the YAML file at path over the defaults. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save marshals cfg to YAML and writes it to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) Validate() error {
	switch c.Rotation {
	case RotationWeek, RotationNone:
	default:
		return fmt.Errorf("rotation must be %q or %q, got %q", RotationWeek, RotationNone, c.Rotation)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("data_dir is empty")
	}
	if c.Rotation == RotationNone && strings.TrimSpace(c.FileName) == "" {
		return errors.New("file_name is required when rotation is none")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// LogPath returns the log file for the period containing now.
func (c *Config) LogPath(now time.Time) string {
	if c.Rotation == RotationNone {
		return filepath.Join(c.DataDir, c.FileName)
	}
	return filepath.Join(c.DataDir, WeeklyFileName(now))
}

// WeeklyFileName names the log for the ISO week containing t, e.g.
// time_log_01_2024.csv.
func WeeklyFileName(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("time_log_%02d_%d.csv", week, year)
}

// PeriodStart returns the first instant of the log period containing now:
// Monday 00:00 local time for weekly rotation, the zero time otherwise.
func (c *Config) PeriodStart(now time.Time) time.Time {
	if c.Rotation == RotationNone {
		return time.Time{}
	}
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	back := (int(midnight.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -back)
}

// maxLookback bounds how many earlier periods PreviousLogPath checks.
const maxLookback = 53

// PreviousLogPath returns the most recent existing log from a period before
// the one containing now. It reports false with rotation "none" or when no
// earlier log exists within a year.
func (c *Config) PreviousLogPath(now time.Time) (string, bool) {
	if c.Rotation == RotationNone {
		return "", false
	}
	start := c.PeriodStart(now)
	for i := 1; i <= maxLookback; i++ {
		p := c.LogPath(start.AddDate(0, 0, -7*i))
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// LogPattern matches every log file LogPath can produce.
func (c *Config) LogPattern() string {
	if c.Rotation == RotationNone {
		return filepath.Join(c.DataDir, c.FileName)
	}
	return filepath.Join(c.DataDir, "time_log_*.csv")
}

func (c *Config) ArchivePath() string {
	if c.ArchiveDB != "" {
		return c.ArchiveDB
	}
	return filepath.Join(c.DataDir, defaultArchive)
}

func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
