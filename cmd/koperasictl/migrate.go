package main

import (
	"fmt"

	"github.com/SscSPs/koperasi_backend/pkg/database"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert database migrations",
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "migrations directory (defaults to MIGRATIONS_PATH)")

	run := func(direction database.MigrationDirection) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadEnv()
			if err != nil {
				return err
			}
			if path == "" {
				path = cfg.MigrationsPath
			}
			changed, err := database.RunMigrations(cfg.DatabaseURL, path, direction, logger)
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintln(cmd.OutOrStdout(), "No migrations to apply")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied (%s)\n", direction)
			return nil
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE:  run(database.MigrateUp),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert every applied migration",
		Long:  "Revert every applied migration. All workflow and account data is dropped.",
		Args:  cobra.NoArgs,
		RunE:  run(database.MigrateDown),
	})
	return cmd
}
