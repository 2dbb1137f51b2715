package cmd

import (
	"fmt"
	"io"

	"timetracker/internal/report"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

var copyFlag bool

func init() {
	reportCmd.Flags().BoolVar(&copyFlag, "copy", false, "also copy the report to the clipboard")
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(pathCmd)
}

var reportCmd = &cobra.Command{
	Use:     "report",
	Aliases: []string{"re"},
	Short:   "Show time per task for the current log",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd.OutOrStdout(), copyFlag)
	},
}

func runReport(w io.Writer, copyToClipboard bool) error {
	tr, _, err := openTracker()
	if err != nil {
		return err
	}
	records, err := tr.Records()
	if err != nil {
		return err
	}
	text := report.Text(report.Aggregate(records, tr.Now()))
	fmt.Fprint(w, text)

	if copyToClipboard {
		if err := clipboard.WriteAll(text); err != nil {
			// The report was printed; a missing clipboard is not fatal.
			logger.Warn("could not copy report to clipboard", "error", err)
			return nil
		}
		fmt.Fprintln(w, "Copied to clipboard.")
	}
	return nil
}

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path of the current log file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, path, err := openTracker()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}
