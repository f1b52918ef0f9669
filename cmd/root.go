package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/intelligrit/emotion-atlas/internal/config"
	"github.com/intelligrit/emotion-atlas/internal/logging"
)

var (
	dataDir     string
	verbose     bool
	configPath  string
	reset       bool
	metricsAddr string
	cfg         *config.Config
	log         *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "emotion-atlas",
	Short: "Build a graph of the emotions visitors attach to tourist attractions",
	Long: `emotion-atlas walks the most populous cities of each continent, reads the
reviews of their attractions and records which adjectives and emotions
visitors use for each one. Runs are resumable: interrupt with Ctrl-C and run
again to continue where it stopped.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if !cmd.Flags().Changed("data-dir") {
			dataDir = cfg.Data.Dir
		}

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		log, err = logging.New(level, cfg.Log.JSON)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if reset {
			return resetState()
		}
		return runPipeline(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "data", "Directory for checkpoints and caches")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&reset, "reset", false, "Delete all checkpoints and caches, then exit")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running (e.g. localhost:9090)")
}

func Execute() error {
	return rootCmd.Execute()
}
