package logging

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/vms003/vatsal-medical/internal/models"
)

// StartCleanup deletes system_logs older than retentionDays once right away
// and then daily until done is closed. A non-positive retention keeps logs
// forever.
func StartCleanup(db *gorm.DB, retentionDays int, done chan struct{}) {
	if retentionDays <= 0 {
		return
	}
	go func() {
		purgeOldLogs(db, retentionDays)

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				purgeOldLogs(db, retentionDays)
			case <-done:
				return
			}
		}
	}()
}

func retentionCutoff(now time.Time, retentionDays int) time.Time {
	return now.AddDate(0, 0, -retentionDays)
}

func purgeOldLogs(db *gorm.DB, retentionDays int) {
	cutoff := retentionCutoff(time.Now(), retentionDays)
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "error", result.Error)
	} else if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}
}
