package main

import (
	"fmt"
	"os"

	"github.com/SscSPs/koperasi_backend/internal/adapters/database/pgsql"
	"github.com/SscSPs/koperasi_backend/internal/core/services"
	"github.com/SscSPs/koperasi_backend/internal/dto"
	"github.com/SscSPs/koperasi_backend/pkg/database"
	"github.com/spf13/cobra"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(userCreateCmd())
	return cmd
}

func userCreateCmd() *cobra.Command {
	var req dto.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user with the given roles",
		Long: `Create a user with the given roles.

The password is read from --password or, when empty, from KOPERASI_PASSWORD.

Examples:
  koperasictl user create --email ketua@koperasi.id --name "Ketua" --role KETUA --role EMPLOYEE
  KOPERASI_PASSWORD=... koperasictl user create --email dsp@koperasi.id --name "DSP" --role DIVISI_SIMPAN_PINJAM`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Password == "" {
				req.Password = os.Getenv("KOPERASI_PASSWORD")
			}

			cfg, _, err := loadEnv()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
			if err != nil {
				return err
			}
			defer database.ClosePgxPool(pool)

			repos := pgsql.NewRepositoryProvider(pool)
			user, err := services.NewAuthService(cfg, repos.UserRepo).CreateUser(ctx, req, "")
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", user.UserID, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "login email")
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password")
	cmd.Flags().StringSliceVar(&req.Roles, "role", nil, "role to grant, repeatable")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
