package cmd

import (
	"errors"
	"fmt"
	"strings"

	"timetracker/internal/command"
	"timetracker/internal/tracker"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
}

var startCmd = &cobra.Command{
	Use:   "start <task>",
	Short: "Start working on a task, stopping the running one first",
	Long: `Start a new session for <task>. Words are joined with single spaces, so
quoting is optional. If another task is running it is stopped first.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tr, _, err := openTracker()
		if err != nil {
			return err
		}
		res, err := tr.Start(strings.Join(args, " "))
		if errors.Is(err, tracker.ErrInvalidInput) {
			warn(cmd, "%v", err)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), command.StartMessage(res))
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:     "stop",
	Aliases: []string{"pa", "end"},
	Short:   "Stop the running task",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tr, _, err := openTracker()
		if err != nil {
			return err
		}
		out, err := command.NewInterpreter(tr).Execute("stop")
		if err != nil {
			return err
		}
		if out.Warning != "" {
			warn(cmd, "%s", out.Warning)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.Message)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running task and how long it has been running",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tr, _, err := openTracker()
		if err != nil {
			return err
		}
		st, err := tr.Current()
		if err != nil {
			return err
		}
		if !st.Running {
			fmt.Fprintln(cmd.OutOrStdout(), "Current task: none")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Current task: %s (since %.1f h)\n", st.Task, st.ElapsedHours)
		return nil
	},
}
