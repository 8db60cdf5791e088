package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/parceltrack/internal/domain/model"
)

type outboxRepository struct {
	db querier
}

func (r *outboxRepository) Enqueue(ctx context.Context, event model.Event) error {
	const query = `INSERT INTO outbox_events (id, topic, event_key, payload, status)
                   VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, query, event.ID, event.Topic, event.Key, event.Payload, string(model.EventStatusNew))
	return err
}

// FetchPending claims new events and events stuck in processing after a
// relay crash.
func (r *outboxRepository) FetchPending(ctx context.Context, limit int) ([]model.Event, error) {
	const query = `UPDATE outbox_events
                   SET status = 'processing', updated_at = NOW()
                   WHERE id IN (
                       SELECT id FROM outbox_events
                       WHERE status = 'new'
                          OR (status = 'processing' AND updated_at < NOW() - INTERVAL '1 minute')
                       ORDER BY created_at
                       LIMIT $1
                       FOR UPDATE SKIP LOCKED)
                   RETURNING id, topic, event_key, payload, status, attempts, last_error, created_at, updated_at`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Event
	for rows.Next() {
		var (
			e      model.Event
			status string
		)
		if err := rows.Scan(&e.ID, &e.Topic, &e.Key, &e.Payload, &status, &e.Attempts, &e.LastError,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		e.Status = model.EventStatus(status)
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *outboxRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE outbox_events SET status = 'sent', last_error = NULL, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string, maxAttempts int) error {
	const query = `UPDATE outbox_events
                   SET attempts = attempts + 1,
                       last_error = $2,
                       status = CASE WHEN attempts + 1 >= $3 THEN 'failed' ELSE 'new' END,
                       updated_at = NOW()
                   WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, reason, maxAttempts)
	return err
}
