package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"timetracker/internal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

func runDashboard() error {
	// The alternate screen owns the terminal; keep log lines off it.
	logFile := filepath.Join(cfg.DataDir, "dashboard.log")
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open dashboard log: %w", err)
	}
	defer f.Close()
	logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: logLevel}))

	tr, _, err := openTracker()
	if err != nil {
		return err
	}
	m, err := internal.NewModel(tr)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case <-ticker.C:
				p.Send(internal.MsgTick{})
			case <-done:
				return
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
