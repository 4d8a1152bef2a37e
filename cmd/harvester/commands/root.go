package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"review-harvester/internal/config"
	"review-harvester/internal/logging"
)

var configPath *string

var rootCmd = &cobra.Command{
	Use:   "harvester",
	Short: "harvester scrapes marketplace product reviews and exports them as CSV.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(*configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := logging.InitializeLogging(cfg); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		loaded = cfg
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.CloseLogging()
	},
	SilenceUsage: true,
}

// loaded is set by the root pre-run hook before any subcommand runs
var loaded *config.Config

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "configs/config.yaml", "Path to the YAML configuration file.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
