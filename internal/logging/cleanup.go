package logging

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/anjaswicak/test-fullstack/internal/models"
)

const cleanupInterval = 24 * time.Hour

// StartCleanup runs Cleanup once a day until ctx is cancelled.
func StartCleanup(ctx context.Context, db *gorm.DB, retention time.Duration) {
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				logs, refresh, err := Cleanup(ctx, db, retention, time.Now())
				if err != nil {
					slog.Error("cleanup failed", "error", err)
				} else if logs > 0 || refresh > 0 {
					slog.Info("cleanup completed", "system_logs", logs, "refresh_tokens", refresh)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Cleanup deletes system_logs older than retention and refresh_tokens that
// expired more than retention ago.
func Cleanup(ctx context.Context, db *gorm.DB, retention time.Duration, now time.Time) (int64, int64, error) {
	cutoff := now.Add(-retention)

	logs := db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if logs.Error != nil {
		return 0, 0, logs.Error
	}
	refresh := db.WithContext(ctx).Where("expires_at < ?", cutoff).Delete(&models.RefreshToken{})
	if refresh.Error != nil {
		return logs.RowsAffected, 0, refresh.Error
	}
	return logs.RowsAffected, refresh.RowsAffected, nil
}
