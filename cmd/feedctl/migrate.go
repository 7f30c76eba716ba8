package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/anjaswicak/test-fullstack/internal/database"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update all tables",
	}
	return dbCommand(cmd, databaseFlags(), func(_ *cobra.Command, db *gorm.DB) error {
		if err := database.Migrate(db); err != nil {
			return err
		}
		slog.Info("migration complete")
		return nil
	})
}
