package main

import (
	"strings"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/anjaswicak/test-fullstack/internal/database"
)

const tablesFlag = "tables"

func newFixSequencesCommand() *cobra.Command {
	flags := databaseFlags()
	flags[tablesFlag] = &cobraflags.StringFlag{
		Name:  tablesFlag,
		Value: strings.Join(database.SerialTables, ","),
		Usage: "Comma separated tables whose id sequence should be realigned",
	}

	cmd := &cobra.Command{
		Use:   "fix-sequences",
		Short: "Move id sequences past the highest existing id",
	}
	return dbCommand(cmd, flags, func(cmd *cobra.Command, db *gorm.DB) error {
		return database.FixSequences(cmd.Context(), db, splitTables(flags[tablesFlag].GetString())...)
	})
}

func splitTables(s string) []string {
	var tables []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tables = append(tables, t)
		}
	}
	return tables
}
