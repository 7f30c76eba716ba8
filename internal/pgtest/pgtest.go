// Package pgtest starts one throwaway Postgres container per test binary and
// hands out migrated gorm handles backed by it.
package pgtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"

	"github.com/anjaswicak/test-fullstack/internal/database"
)

const image = "postgres:16-alpine"

var (
	once      sync.Once
	container *postgres.PostgresContainer
	dsn       string
	startErr  error
)

func start() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, startErr = postgres.Run(ctx, image,
		postgres.WithDatabase("feed_test"),
		postgres.WithUsername("feed"),
		postgres.WithPassword("feed"),
		postgres.BasicWaitStrategies(),
	)
	if startErr != nil {
		return
	}
	dsn, startErr = container.ConnectionString(ctx, "sslmode=disable")
}

// DB returns a migrated database with every table emptied. The test is
// skipped when no container runtime is available.
func DB(t *testing.T) *gorm.DB {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	once.Do(start)
	if startErr != nil {
		t.Fatalf("start postgres container: %v", startErr)
	}

	db, err := database.Open(dsn, 10*time.Second)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	if err := db.Exec("TRUNCATE users, posts, follows, refresh_tokens, system_logs RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("truncate test database: %v", err)
	}
	return db
}

// Terminate stops the shared container. Call it from TestMain after m.Run.
func Terminate() {
	if container == nil {
		return
	}
	_ = testcontainers.TerminateContainer(container)
}
