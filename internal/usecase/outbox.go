package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/parceltrack/internal/config"
	"github.com/polkiloo/parceltrack/internal/domain/model"
	"github.com/polkiloo/parceltrack/internal/domain/repository"
)

const defaultMaxDeliveryAttempts = 5

// OutboxUseCase hands stored events to the relay and records delivery.
type OutboxUseCase struct {
	outbox      repository.OutboxRepository
	maxAttempts int
}

// NewOutboxUseCase constructs OutboxUseCase.
func NewOutboxUseCase(outbox repository.OutboxRepository, cfg *config.Config) *OutboxUseCase {
	attempts := defaultMaxDeliveryAttempts
	if cfg != nil && cfg.OutboxMaxAttempts > 0 {
		attempts = cfg.OutboxMaxAttempts
	}
	return &OutboxUseCase{outbox: outbox, maxAttempts: attempts}
}

// PendingEvents claims up to limit undelivered events.
func (u *OutboxUseCase) PendingEvents(ctx context.Context, limit int) ([]model.Event, error) {
	return u.outbox.FetchPending(ctx, limit)
}

// EventDelivered marks the event as sent.
func (u *OutboxUseCase) EventDelivered(ctx context.Context, id uuid.UUID) error {
	return u.outbox.MarkSent(ctx, id)
}

// EventFailed records a failed attempt; the event is retried until the
// attempt limit is reached.
func (u *OutboxUseCase) EventFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return u.outbox.MarkFailed(ctx, id, reason, u.maxAttempts)
}
