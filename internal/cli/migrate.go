package cli

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	postgresstorage "github.com/partyup/partyup/internal/storage/postgres"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the PostgreSQL schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return errors.New("postgres.url must be configured to run migrations")
			}

			store, err := postgresstorage.New(cmd.Context(), postgresstorage.Config{
				URL:      cfg.Postgres.URL,
				MaxConns: cfg.Postgres.MaxConns,
				MinConns: cfg.Postgres.MinConns,
			})
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}

			logger.Info("migrations applied")
			return nil
		},
	}
}
