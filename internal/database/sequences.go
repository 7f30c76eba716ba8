package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// SerialTables are the tables whose ids come from a serial sequence.
var SerialTables = []string{"users", "posts"}

// FixSequences moves each table's id sequence to MAX(id) so the next insert
// does not collide with rows that were inserted with explicit ids.
func FixSequences(ctx context.Context, db *gorm.DB, tables ...string) error {
	if len(tables) == 0 {
		tables = SerialTables
	}
	for _, table := range tables {
		query := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence(%s, 'id'), COALESCE(MAX(id), 1), MAX(id) IS NOT NULL) FROM %s",
			pq.QuoteLiteral(table), pq.QuoteIdentifier(table),
		)
		if err := db.WithContext(ctx).Exec(query).Error; err != nil {
			return errors.Wrapf(err, "fix sequence for %s", table)
		}
		slog.Info("sequence fixed", "table", table)
	}
	return nil
}
