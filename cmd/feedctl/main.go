// Command feedctl runs database maintenance tasks for the feed API.
package main

import (
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/anjaswicak/test-fullstack/internal/config"
	"github.com/anjaswicak/test-fullstack/internal/database"
	"github.com/anjaswicak/test-fullstack/internal/logging"
)

const databaseURLFlag = "database-url"

// databaseFlags returns a fresh flag set for one subcommand.
func databaseFlags() map[string]cobraflags.Flag {
	return map[string]cobraflags.Flag{
		databaseURLFlag: &cobraflags.StringFlag{
			Name:  databaseURLFlag,
			Value: "",
			Usage: "Postgres connection string; defaults to DATABASE_URL or the DB_* variables",
		},
	}
}

func main() {
	logging.Setup()
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "feedctl",
		Short:         "Database maintenance for the feed API",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newSeedCommand())
	rootCmd.AddCommand(newFixSequencesCommand())
	return rootCmd
}

// openDB connects using the environment, with --database-url taking priority.
func openDB(flags map[string]cobraflags.Flag) (*gorm.DB, error) {
	config.LoadDotenv()
	cfg := config.Load()
	if url := flags[databaseURLFlag].GetString(); url != "" {
		cfg.DatabaseURL = url
	}
	return database.Connect(cfg)
}

// dbCommand builds a subcommand that receives an open database.
func dbCommand(cmd *cobra.Command, flags map[string]cobraflags.Flag, run func(cmd *cobra.Command, db *gorm.DB) error) *cobra.Command {
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		db, err := openDB(flags)
		if err != nil {
			return err
		}
		defer database.Close(db)
		return run(cmd, db)
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}
