package cli

import (
	"fmt"

	"github.com/astro-web3/recipebox/internal/config"
	"github.com/astro-web3/recipebox/internal/infra/store"
	"github.com/astro-web3/recipebox/internal/seed"
	"github.com/astro-web3/recipebox/pkg/logger"
	"github.com/spf13/cobra"
)

func openMigrated(opts *rootOptions) (*config.Config, *store.DB, error) {
	cfg := config.MustLoad(config.RoleMigrate, opts.configPaths...)
	logger.InitLogger(cfg.Observability.LogLevel, cfg.Observability.Format, cfg.Observability.LogSource)

	db, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return cfg, db, nil
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := openMigrated(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", cfg.Database.Driver)
			return nil
		},
	}
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo user and sample recipes in an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := openMigrated(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			seeded, err := seed.Run(cmd.Context(), db, seed.Options{
				Email:    cfg.Seed.Email,
				Password: cfg.Seed.Password,
				Name:     cfg.Seed.Name,
			})
			if err != nil {
				return err
			}

			if seeded {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "seeded demo user %s\n", cfg.Seed.Email)
			} else {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "database already has users, nothing to seed")
			}
			return nil
		},
	}
}
