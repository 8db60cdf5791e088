package repository

import (
	"context"

	"github.com/polkiloo/parceltrack/internal/domain/model"
)

// InvoiceRepository describes per-user invoices.
type InvoiceRepository interface {
	GetPending(ctx context.Context, userID int64) (*model.Invoice, error)
	// GetForUpdate loads the user's invoice and locks it.
	GetForUpdate(ctx context.Context, userID, invoiceID int64) (*model.Invoice, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Invoice, error)
	CreatePending(ctx context.Context, userID int64) (*model.Invoice, error)
	// AddItem stores the item and increments invoice totals atomically.
	AddItem(ctx context.Context, invoiceID int64, item model.InvoiceItem) error
	Touch(ctx context.Context, invoiceID int64) error
	Delete(ctx context.Context, invoiceID int64) error
	MarkPaid(ctx context.Context, invoiceID int64) error
}
