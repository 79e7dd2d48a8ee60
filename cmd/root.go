package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nekoden/nekoden/nekoden"
	"github.com/nekoden/nekoden/nekoden/logger"
)

var (
	configPath string
	cfg        *nekoden.Config
	version    = "dev"
)

var rootCmd = &cobra.Command{
	Use:           "nekoden",
	Short:         "Shared cat state coordinator and reward ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := nekoden.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		slog.SetDefault(slog.New(logger.NewHandler("nekoden", cfg.Log.Level)))
		return nil
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "path to config")
}

// Execute runs the CLI. The bare command starts the server.
func Execute(v string) error {
	version = v
	rootCmd.Version = v
	if err := rootCmd.Execute(); err != nil {
		logger.LogError("Command failed", err)
		return err
	}
	return nil
}
