package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/atinyakov/TodoKeeper/internal/metrics"
	"go.uber.org/zap"
)

// StartPoolStatsReporter publishes connection pool statistics every interval
// until ctx is cancelled. It logs a warning whenever callers had to wait for
// a free connection since the previous tick.
func StartPoolStatsReporter(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	m *metrics.Metrics,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		var lastWait int64
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := db.Stats()
				m.ObserveDBStats(stats)
				if waited := stats.WaitCount - lastWait; waited > 0 {
					log.Warn("database pool saturated",
						zap.Int64("waited", waited),
						zap.Duration("wait_duration", stats.WaitDuration),
						zap.Int("in_use", stats.InUse),
						zap.Int("max_open", stats.MaxOpenConnections),
					)
				}
				lastWait = stats.WaitCount
			}
		}
	}()
}
