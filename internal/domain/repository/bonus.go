package repository

import (
	"context"

	"github.com/polkiloo/parceltrack/internal/domain/model"
)

// BonusRepository is the payout ledger keyed by idempotency key.
type BonusRepository interface {
	// RecordPayout returns false when a payout with the same key exists.
	RecordPayout(ctx context.Context, payout model.BonusPayout) (bool, error)
}
