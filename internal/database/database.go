package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/anjaswicak/test-fullstack/internal/config"
	"github.com/anjaswicak/test-fullstack/internal/models"
)

// Connect opens the pool described by cfg and verifies it answers.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	return Open(cfg.DSN(), cfg.DBConnectTimeout)
}

// Open builds a gorm handle on top of a pgx-backed database/sql pool. Both URL
// and key=value DSNs are accepted.
func Open(dsn string, connectTimeout time.Duration) (*gorm.DB, error) {
	pgCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "database.Open: parse dsn")
	}
	if connectTimeout > 0 {
		pgCfg.ConnectTimeout = connectTimeout
	}

	sqlDB := stdlib.OpenDB(*pgCfg)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "database.Open: gorm")
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout+2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "database.Open: ping")
	}

	slog.Info("database connected", "host", pgCfg.Host, "database", pgCfg.Database)
	return db, nil
}

// Migrate creates or updates every table the API uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Follow{},
		&models.RefreshToken{},
		&models.SystemLog{},
	)
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
