package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Shared state initialized by the root command before any subcommand runs.
var (
	cfg    *Config
	logger *slog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "drosera",
		Short: "Markov chain password wordlist generator",
		Long: `Drosera builds character-level Markov models from text corpora and uses
them to generate, score, and filter password-like candidate strings for
wordlist creation.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "./config.json", "Path to the configuration file")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		var err error
		cfg, err = LoadConfig(path)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))
		return nil
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newTrainCmd(),
		newGenerateCmd(),
		newScoreCmd(),
		newStatsCmd(),
		newRunsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("drosera %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		},
	}
}
