package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/domain/model"
)

// ArchiveFacade exposes the subset of application functionality required by the sweeper.
type ArchiveFacade interface {
	SweepCandidates(ctx context.Context, limit int) ([]model.SweepCandidate, error)
	ArchiveTrack(ctx context.Context, userID int64, trackNumber string) (*model.Archive, error)
}

// ArchiveSweeper moves completed tracks whose bookmarks were all migrated
// into the global archive, using a fixed pool of workers.
type ArchiveSweeper struct {
	facade       ArchiveFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.SweepCandidate
	group  *errgroup.Group
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewArchiveSweeper constructs the sweeper worker pool.
func NewArchiveSweeper(facade ArchiveFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *ArchiveSweeper {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &ArchiveSweeper{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.SweepCandidate, batchSize*workers),
	}
}

// Start launches background processing.
func (s *ArchiveSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	group, groupCtx := errgroup.WithContext(runCtx)
	for i := 0; i < s.workers; i++ {
		group.Go(func() error {
			s.worker(groupCtx)
			return nil
		})
	}
	group.Go(func() error {
		defer close(s.jobs)
		every(groupCtx, s.pollInterval, s.fetchAndDispatch)
		return nil
	})
	s.group = group
}

// Stop waits for all workers to finish.
func (s *ArchiveSweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	group := s.group
	s.mu.Unlock()

	if group != nil {
		_ = group.Wait()
	}
}

func (s *ArchiveSweeper) fetchAndDispatch(ctx context.Context) {
	candidates, err := s.facade.SweepCandidates(ctx, s.batchSize)
	if err != nil {
		s.logger.Error("fetch sweep candidates failed", slog.String("error", err.Error()))
		return
	}
	for _, c := range candidates {
		select {
		case <-ctx.Done():
			return
		case s.jobs <- c:
		}
	}
}

func (s *ArchiveSweeper) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-s.jobs:
			if !ok {
				return
			}
			s.handle(ctx, c)
		}
	}
}

func (s *ArchiveSweeper) handle(ctx context.Context, c model.SweepCandidate) {
	archive, err := s.facade.ArchiveTrack(ctx, c.UserID, c.TrackNumber)
	switch {
	case err == nil:
		s.logger.Info("track archived",
			slog.String("track", c.TrackNumber),
			slog.Int64("archive_id", archive.ID),
		)
	case errors.Is(err, domainErrors.ErrTrackNotFound):
		// Archived concurrently by another path.
		s.logger.Debug("sweep candidate already gone", slog.String("track", c.TrackNumber))
	case errors.Is(err, context.Canceled):
	default:
		s.logger.Error("archive track failed", slog.String("track", c.TrackNumber), slog.String("error", err.Error()))
	}
}
