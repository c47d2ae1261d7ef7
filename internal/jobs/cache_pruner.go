package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/refdata/internal/metrics"
)

// Pruner is implemented by cache.FileCache.
type Pruner interface {
	Prune(ctx context.Context, olderThan time.Duration) (int, error)
}

// CachePruner periodically removes cache entries older than the retention
// window.
type CachePruner struct {
	logger    *zap.Logger
	cache     Pruner
	interval  time.Duration
	retention time.Duration
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// NewCachePruner constructs a background job that prunes every interval.
func NewCachePruner(logger *zap.Logger, c Pruner, interval, retention time.Duration) *CachePruner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachePruner{
		logger:    logger,
		cache:     c,
		interval:  interval,
		retention: retention,
		stopCh:    make(chan struct{}),
	}
}

// Start runs the prune loop until Stop is called or ctx is done.
func (p *CachePruner) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("cache_pruner.started",
		zap.Duration("interval", p.interval),
		zap.Duration("retention", p.retention))

	for {
		select {
		case <-ticker.C:
			p.RunOnce(ctx)
		case <-p.stopCh:
			p.logger.Info("cache_pruner.stopped", zap.String("reason", "manual stop"))
			return
		case <-ctx.Done():
			p.logger.Info("cache_pruner.stopped", zap.String("reason", "context canceled"))
			return
		}
	}
}

// Stop halts the pruner. It is safe to call more than once.
func (p *CachePruner) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

// RunOnce executes one prune cycle.
func (p *CachePruner) RunOnce(ctx context.Context) {
	start := time.Now()

	removed, err := p.cache.Prune(ctx, p.retention)
	if err != nil {
		metrics.IncError("cache_pruner", "prune_failed")
		p.logger.Error("cache_pruner.prune_failed", zap.Int("removed", removed), zap.Error(err))
		return
	}

	p.logger.Info("cache_pruner.success",
		zap.Int("removed", removed),
		zap.Duration("duration", time.Since(start)))
}
