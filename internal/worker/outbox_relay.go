package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/polkiloo/parceltrack/internal/domain/model"
)

// OutboxFacade hands out stored events and records their delivery.
type OutboxFacade interface {
	PendingEvents(ctx context.Context, limit int) ([]model.Event, error)
	EventDelivered(ctx context.Context, id uuid.UUID) error
	EventFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// Publisher sends a single event downstream.
type Publisher interface {
	Publish(ctx context.Context, event model.Event) error
}

// OutboxRelay drains the outbox into the publisher.
type OutboxRelay struct {
	facade    OutboxFacade
	publisher Publisher
	interval  time.Duration
	batchSize int
	workers   int
	logger    *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewOutboxRelay constructs the relay.
func NewOutboxRelay(facade OutboxFacade, publisher Publisher, interval time.Duration, batchSize, workers int, logger *slog.Logger) *OutboxRelay {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &OutboxRelay{
		facade:    facade,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		workers:   workers,
		logger:    logger,
	}
}

func (r *OutboxRelay) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		every(runCtx, r.interval, r.drain)
	}()
}

func (r *OutboxRelay) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *OutboxRelay) drain(ctx context.Context) {
	events, err := r.facade.PendingEvents(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("fetch pending events failed", slog.String("error", err.Error()))
		return
	}
	if len(events) == 0 {
		return
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.workers)
	for _, event := range events {
		group.Go(func() error {
			r.relay(groupCtx, event)
			return nil
		})
	}
	_ = group.Wait()
}

func (r *OutboxRelay) relay(ctx context.Context, event model.Event) {
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.Warn("publish event failed",
			slog.String("id", event.ID.String()),
			slog.String("topic", event.Topic),
			slog.Int("attempts", event.Attempts+1),
			slog.String("error", err.Error()),
		)
		if err := r.facade.EventFailed(ctx, event.ID, err.Error()); err != nil {
			r.logger.Error("record event failure failed", slog.String("id", event.ID.String()), slog.String("error", err.Error()))
		}
		return
	}
	if err := r.facade.EventDelivered(ctx, event.ID); err != nil {
		r.logger.Error("mark event sent failed", slog.String("id", event.ID.String()), slog.String("error", err.Error()))
	}
}
