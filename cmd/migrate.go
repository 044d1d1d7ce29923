package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/kodekulture/tokenlink/internal/config"
	"github.com/kodekulture/tokenlink/repository/postgres"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Run all pending database migrations against the PostgreSQL database in POSTGRES_URL.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			url := config.Load().PostgresURL
			if url == "" {
				return errors.New("POSTGRES_URL is required")
			}
			cmd.Println("Running migrations...")
			if err := postgres.Migrate(url); err != nil {
				return err
			}
			cmd.Println("Migrations completed successfully")
			return nil
		},
	}
}
