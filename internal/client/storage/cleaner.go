package storage

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartExpiredCleaner deletes expired kv_entries rows every interval until ctx is done.
func StartExpiredCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				res, err := db.ExecContext(ctx, `
                    DELETE FROM kv_entries
                     WHERE expires_at > 0
                       AND expires_at <= $1
                `, time.Now().Unix())
				if err != nil {
					log.Error("failed to clean expired entries", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Debug("cleaned expired entries", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
