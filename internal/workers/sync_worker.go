package workers

import (
	"context"
	"time"

	"github.com/mlevkov/lockstep/internal/config"
	"github.com/mlevkov/lockstep/internal/logger"
	"github.com/mlevkov/lockstep/internal/service"
)

// SyncWorker starts the sync engine's periodic background loop. The engine
// owns the timer and the in-flight deduplication; the worker only kicks it
// off with the configured interval.
type SyncWorker struct {
	engine   service.SyncEngine
	interval time.Duration
	logger   *logger.Logger
}

func NewSyncWorker(engine service.SyncEngine, cfg config.ClientWorkers, logger *logger.Logger) *SyncWorker {
	interval := cfg.SyncInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &SyncWorker{
		engine:   engine,
		interval: interval,
		logger:   logger,
	}
}

// Run implements Worker.
func (w *SyncWorker) Run() {
	w.logger.Info().
		Str("func", "SyncWorker.Run").
		Dur("interval", w.interval).
		Msg("starting periodic sync")

	w.engine.Start(context.Background(), w.interval)
}

// Stop cancels future periodic syncs. An in-flight cycle is not interrupted.
func (w *SyncWorker) Stop() {
	w.engine.Stop()
}
