package cli

import (
	"fmt"

	"github.com/mgpai22/sourceplan/internal/config"
	"github.com/mgpai22/sourceplan/internal/logging"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the sourceplan configuration file",
	// init must work even when the current file does not load
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented sample configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		target := configPath
		if target == "" {
			defaultPath, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			target = defaultPath
		}

		if err := config.CreateSample(target, force); err != nil {
			return err
		}
		logger.Debugw("Wrote sample configuration", "path", target)
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets redacted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loaded, path, exists, err := config.Load(configPath)
		if err != nil {
			return err
		}

		rendered, err := loaded.Redacted().TOML()
		if err != nil {
			return err
		}

		source := path
		if !exists {
			source = path + " (not found, using defaults)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", source, rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}
