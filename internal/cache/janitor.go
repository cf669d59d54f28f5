package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ridehub.org/transit/internal/logging"
)

// janitor periodically purges expired rows from a persistent store.
type janitor struct {
	shutdownChan chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

func newJanitor() *janitor {
	return &janitor{shutdownChan: make(chan struct{})}
}

// start runs purge every interval until stop is called. A non-positive
// interval disables purging.
func (j *janitor) start(interval time.Duration, logger *slog.Logger, purge func(ctx context.Context) (int64, error)) {
	if interval <= 0 {
		return
	}

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval)
				removed, err := purge(ctx)
				cancel()
				if err != nil {
					logging.LogError(logger, "Failed to purge expired cache entries", err)
					continue
				}
				if removed > 0 {
					logger.Debug("purged expired cache entries", slog.Int64("removed", removed))
				}
			case <-j.shutdownChan:
				return
			}
		}
	}()
}

// stop ends the purge loop and waits for it. Safe to call more than once.
func (j *janitor) stop() {
	j.shutdownOnce.Do(func() {
		close(j.shutdownChan)
		j.wg.Wait()
	})
}
