package cmd

import (
	"fmt"
	"time"

	"timetracker/internal/archive"
	"timetracker/internal/report"
	"timetracker/internal/timelog"

	"github.com/spf13/cobra"
)

var sinceFlag string

func init() {
	historyCmd.Flags().StringVar(&sinceFlag, "since", "", "only include sessions started on or after this date (YYYY-MM-DD)")
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(historyCmd)
}

// syncArchive opens the archive and imports every log in the data dir.
func syncArchive() (*archive.Repository, []archive.Imported, error) {
	repo, err := archive.NewRepository(cfg.ArchivePath())
	if err != nil {
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}
	imported, err := repo.ImportGlob(cfg.LogPattern())
	if err != nil {
		repo.Close()
		return nil, nil, err
	}
	for _, im := range imported {
		logger.Debug("archived log", "path", im.Path, "sessions", im.Sessions)
	}
	return repo, imported, nil
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Copy every log file into the SQLite archive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, imported, err := syncArchive()
		if err != nil {
			return err
		}
		defer repo.Close()

		if len(imported) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No log files found in %s\n", cfg.DataDir)
			return nil
		}

		logs, err := repo.Logs()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-10s %-10s %s\n", "LOG", "FROM", "TO", "SESSIONS")
		for _, l := range logs {
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-10s %-10s %d\n",
				l.Name, l.First.Format("2006-01-02"), l.Last.Format("2006-01-02"), l.Sessions)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nArchive: %s\n", cfg.ArchivePath())
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Report time per task across all archived logs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var since time.Time
		if sinceFlag != "" {
			t, err := time.ParseInLocation("2006-01-02", sinceFlag, time.Local)
			if err != nil {
				warn(cmd, "--since must look like 2024-01-31, got %q", sinceFlag)
				return nil
			}
			since = t
		}

		repo, _, err := syncArchive()
		if err != nil {
			return err
		}
		defer repo.Close()

		records, err := repo.Records(since)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), report.Text(report.Aggregate(records, now().Truncate(time.Second))))
		if !since.IsZero() {
			fmt.Fprintf(cmd.OutOrStdout(), "Since %s\n", since.Format(timelog.TimeFormat))
		}
		return nil
	},
}
