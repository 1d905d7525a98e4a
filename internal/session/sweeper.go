package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper removes expired entries.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int64, error)
}

// DefaultSweepInterval replaces a non-positive interval passed to RunSweeper.
const DefaultSweepInterval = 5 * time.Minute

// RunSweeper sweeps once immediately and then every interval until ctx is
// done.
func RunSweeper(ctx context.Context, s Sweeper, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		log.Warn("non-positive sweep interval, using default",
			zap.Duration("interval", interval), zap.Duration("default", DefaultSweepInterval))
		interval = DefaultSweepInterval
	}

	sweep := func() {
		n, err := s.Sweep(ctx, time.Now())
		if err != nil {
			log.Error("session sweep failed", zap.Error(err))
			return
		}
		if n > 0 {
			log.Info("expired sessions removed", zap.Int64("count", n))
		}
	}

	sweep()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sweep()
		case <-ctx.Done():
			return
		}
	}
}
