package system

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/iequus/iequus_backend/config"
	"github.com/iequus/iequus_backend/internal/schema"
	"github.com/iequus/iequus_backend/pkg/authorize"
	"github.com/iequus/iequus_backend/pkg/database"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			// application db
			fmt.Println("Running Migrations For Application DB.")
			conn, err := database.Open(database.FromCentralConfig(cfg.Database))
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer conn.Close()

			if err := database.Migrate(ctx, conn, cfg.Database.Migrations.SafeMode, schema.Tables...); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			// casbin db
			if cfg.CasbinDatabase.Host == "" {
				fmt.Println("No casbin database configured, skipping policy seeding.")
				fmt.Println("Migrations executed successfully.")
				return nil
			}
			fmt.Println("Running Migrations For Casbin DB.")

			casbinDBDSN := database.NewDSN(cfg.CasbinDatabase)
			enforcer, cleanup, err := authorize.NewEnforcer(cfg.Authorization.CasbinModelPath, casbinDBDSN)
			if err != nil {
				return fmt.Errorf("failed to create enforcer: %w", err)
			}
			defer cleanup(context.Background())

			auth, err := authorize.NewAuthorization(enforcer)
			if err != nil {
				return fmt.Errorf("failed to create authorization: %w", err)
			}

			slog.Info("Seeding Casbin policies...")
			if err := authorize.SeedDefaultPolicies(ctx, auth); err != nil {
				return fmt.Errorf("failed to seed policies: %w", err)
			}

			fmt.Println("Migrations executed successfully.")
			return nil
		},
	}

	return cmd
}
