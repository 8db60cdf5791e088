package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/parceltrack/internal/domain/model"
	"github.com/polkiloo/parceltrack/internal/domain/repository"
)

// InvoicePaidEvent is published when staff confirm an invoice payment.
type InvoicePaidEvent struct {
	InvoiceID   int64           `json:"invoice_id"`
	UserID      int64           `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalWeight decimal.Decimal `json:"total_weight"`
	Tracks      []string        `json:"tracks"`
	PaidAt      time.Time       `json:"paid_at"`
}

// BonusCreditedEvent is published for every new referral payout.
type BonusCreditedEvent struct {
	Key        string          `json:"key"`
	PayerID    int64           `json:"payer_id"`
	PayeeID    int64           `json:"payee_id"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
	Balance    decimal.Decimal `json:"balance"`
}

// BookmarksArchivedEvent is published after a selective migration.
type BookmarksArchivedEvent struct {
	UserID     int64           `json:"user_id"`
	Tracks     []string        `json:"tracks"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// TrackArchivedEvent is published when a track leaves the store.
type TrackArchivedEvent struct {
	TrackNumber string `json:"track_number"`
	UserID      int64  `json:"user_id"`
	ArchiveID   int64  `json:"archive_id"`
}

// ArchiveConflictEvent reports a number present both in the store and in
// the global archive.
type ArchiveConflictEvent struct {
	TrackNumber string    `json:"track_number"`
	DetectedAt  time.Time `json:"detected_at"`
}

func publish(ctx context.Context, repos repository.Factory, topic, key string, payload any) error {
	ev, err := model.NewEvent(topic, key, payload)
	if err != nil {
		return err
	}
	return repos.Outbox().Enqueue(ctx, ev)
}
