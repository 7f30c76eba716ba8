package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/anjaswicak/test-fullstack/internal/database"
)

func newSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace all data with the demo users, posts and follows",
		Long: `Deletes every user, post and follow, then inserts:

  author   / authorpass    three posts
  follower / followerpass  follows author`,
	}
	return dbCommand(cmd, databaseFlags(), func(cmd *cobra.Command, db *gorm.DB) error {
		if err := database.Migrate(db); err != nil {
			return err
		}
		if err := database.Seed(cmd.Context(), db); err != nil {
			return err
		}
		slog.Info("seed complete")
		return nil
	})
}
