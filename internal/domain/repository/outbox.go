package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/parceltrack/internal/domain/model"
)

// OutboxRepository stores domain events until they are relayed.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event model.Event) error
	// FetchPending claims up to limit undelivered events.
	FetchPending(ctx context.Context, limit int) ([]model.Event, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string, maxAttempts int) error
}
