package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	config "work-tracker.com/work-tracker/internal/configs"
	"work-tracker.com/work-tracker/internal/logging"
)

var (
	userFlag   string
	serverFlag string

	// dotenvErr is reported once a logger exists.
	dotenvErr error
)

var rootCmd = &cobra.Command{
	Use:           "work-tracker",
	Short:         "Work time tracker",
	Long:          "Tracks attendance, tasks, meetings and rest, and syncs snapshots to a central server",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		dotenvErr = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "username to track (defaults to SYNC_USER)")
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "sync server base URL (defaults to SYNC_URL)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if userFlag != "" {
		cfg.SyncUser = userFlag
	}
	if serverFlag != "" {
		cfg.SyncURL = serverFlag
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	reportDotenv(logger, dotenvErr)
	return cfg, logger, nil
}

func reportDotenv(logger *logrus.Logger, err error) {
	if err != nil {
		logger.WithError(err).Debug(".env file not loaded, using environment variables")
	}
}
