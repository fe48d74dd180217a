package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/SscSPs/koperasi_backend/internal/platform/config"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "koperasictl",
		Short:         "Administrative tasks for the koperasi backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadEnv reads the same configuration the server uses and a text logger for terminal output.
func loadEnv() (*config.Config, *slog.Logger, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("PGSQL_URL is required")
	}
	return cfg, logger, nil
}
