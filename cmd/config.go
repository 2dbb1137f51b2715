package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"timetracker/internal/config"

	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "config:   %s\ndata dir: %s\nrotation: %s\narchive:  %s\n",
			configFlag, cfg.DataDir, cfg.Rotation, cfg.ArchivePath())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the current settings to the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := os.Stat(configFlag)
		if err == nil {
			warn(cmd, "%s already exists, leaving it unchanged", configFlag)
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err := config.Save(configFlag, cfg); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		logger.Debug("config written", "path", configFlag)
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configFlag)
		return nil
	},
}
