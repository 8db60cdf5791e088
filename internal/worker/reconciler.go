package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ConflictFacade reports tracks that exist both live and archived.
type ConflictFacade interface {
	ArchiveConflicts(ctx context.Context, limit int) ([]string, error)
}

// Reconciler periodically looks for track numbers present in the track
// store and the global archive at once.
type Reconciler struct {
	facade   ConflictFacade
	interval time.Duration
	limit    int
	logger   *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

func NewReconciler(facade ConflictFacade, interval time.Duration, limit int, logger *slog.Logger) *Reconciler {
	if limit <= 0 {
		limit = 1
	}
	return &Reconciler{facade: facade, interval: interval, limit: limit, logger: logger}
}

func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		every(runCtx, r.interval, r.check)
	}()
}

func (r *Reconciler) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Reconciler) check(ctx context.Context) {
	numbers, err := r.facade.ArchiveConflicts(ctx, r.limit)
	if err != nil {
		r.logger.Error("archive reconciliation failed", slog.String("error", err.Error()))
		return
	}
	for _, number := range numbers {
		r.logger.Warn("track is both live and archived", slog.String("track", number))
	}
}
