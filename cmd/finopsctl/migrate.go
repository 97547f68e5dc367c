package main

import (
	"github.com/spf13/cobra"

	"github.com/finleaf/finops/internal/db"
	"github.com/finleaf/finops/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the database schema up to date",
	Long: `Connects to the database and applies the schema. With MIGRATIONS=1 the
SQL files in ./migrations are applied via golang-migrate; otherwise the
schema is auto-migrated from the model definitions.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("migrate")
	if _, err := db.ConnectAndMigrate(); err != nil {
		return err
	}
	log.Info().Msg("migrations completed")
	return nil
}
