package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mgpai22/sourceplan/internal/config"
	"github.com/mgpai22/sourceplan/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sourceplan",
	Short: "Plan visual sources for subtitle segments",
	Long: `Sourceplan reads a SubRip transcript, lets you classify each timed
segment as illustration, photo, or real-world reference, and exports the
result as a zip archive with one folder per segment.

Classification, reference links, and images can be suggested by AI
providers when API keys are configured.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, path, exists, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = logging.NewLoggerWithOptions(logging.Options{
			Verbose: verbose,
			Level:   cfg.Logging.Level,
			Format:  cfg.Logging.Format,
		})
		logger.Debugw("Loaded configuration", "path", path, "exists", exists)
		return nil
	},
}

func Execute() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file (default ~/.config/sourceplan/config.toml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("encoding", "e", "", "Transcript character encoding (e.g., euc-kr, utf-16le)")
}
