package embedding

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/banking/sanctions-screening/internal/pkg/logger"
	"github.com/banking/sanctions-screening/internal/sanctions"
)

// WarmOnRefresh returns a reference list hook that embeds every name of a new
// snapshot in the background, bounded by timeout.
func (c *Cache) WarmOnRefresh(timeout time.Duration) sanctions.RefreshHook {
	return func(ctx context.Context, snap *sanctions.Snapshot) {
		keys := snap.AllNormalizedNames()
		go func() {
			wctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			warmed, err := c.Warm(wctx, keys)
			fields := []zap.Field{
				logger.IntField("warmed", warmed),
				logger.IntField("names", len(keys)),
				logger.DurationField("duration", time.Since(start)),
			}
			if err != nil {
				c.log.Warn("embedding cache warm-up incomplete", append(fields, logger.ErrorField(err))...)
				return
			}
			c.log.Info("embedding cache warmed", fields...)
		}()
	}
}
