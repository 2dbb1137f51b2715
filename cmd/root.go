package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"timetracker/internal/config"
	"timetracker/internal/timelog"
	"timetracker/internal/tracker"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	configFlag  string
	dataDirFlag string
	verboseFlag bool

	cfg      *config.Config
	logger   *slog.Logger
	logLevel slog.Level

	// now is the clock every command reads.
	now = time.Now
)

var rootCmd = &cobra.Command{
	Use:   "timetracker",
	Short: "Track time spent on tasks in a plain CSV log",
	Long: `timetracker records start/stop events for named tasks in an append-only
CSV log and reports how your time was split between them.

Run without a subcommand to open the interactive dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return runDashboard()
		}
		return runReport(cmd.OutOrStdout(), false)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", config.DefaultPath(), "config file")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "directory holding the log files (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "debug logging on stderr")
}

func setup() error {
	c, err := config.Load(configFlag)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dataDirFlag != "" {
		c.DataDir = dataDirFlag
	}
	cfg = c

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if verboseFlag {
		level = slog.LevelDebug
	}
	logLevel = level
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// openTracker builds a tracker over the log for the current period. A task
// still running in an earlier period's log is carried into this one.
func openTracker() (*tracker.Tracker, string, error) {
	t := now()
	path := cfg.LogPath(t)
	logger.Debug("using log", "path", path)
	tr := tracker.New(timelog.NewFileStore(path), tracker.WithClock(now), tracker.WithLogger(logger))

	if prev, ok := cfg.PreviousLogPath(t); ok {
		if _, err := tr.CarryOver(timelog.NewFileStore(prev), cfg.PeriodStart(t)); err != nil {
			return nil, "", fmt.Errorf("carry over from %s: %w", prev, err)
		}
	}
	return tr, path, nil
}

// warn reports a user mistake. These never change the exit status.
func warn(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), "timetracker: "+format+"\n", args...)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
