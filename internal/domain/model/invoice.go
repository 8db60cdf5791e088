package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// InvoiceItem is a priced bookmark snapshot inside an invoice.
type InvoiceItem struct {
	TrackNumber string
	Price       decimal.Decimal
	Weight      decimal.Decimal
}

// Invoice batches priced bookmarks awaiting or having completed payment.
type Invoice struct {
	ID          int64
	UserID      int64
	Status      InvoiceStatus
	Items       []InvoiceItem
	TotalAmount decimal.Decimal
	TotalWeight decimal.Decimal
	TotalItems  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsPaid reports whether the invoice is closed.
func (i Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// Contains reports whether the invoice already holds the track number.
func (i Invoice) Contains(trackNumber string) bool {
	for _, it := range i.Items {
		if it.TrackNumber == trackNumber {
			return true
		}
	}
	return false
}

// Add appends an item and increments the running totals.
func (i *Invoice) Add(item InvoiceItem) {
	i.Items = append(i.Items, item)
	i.TotalAmount = i.TotalAmount.Add(item.Price)
	i.TotalWeight = i.TotalWeight.Add(item.Weight)
	i.TotalItems++
}

// TrackNumbers lists the track numbers of all items.
func (i Invoice) TrackNumbers() []string {
	out := make([]string, 0, len(i.Items))
	for _, it := range i.Items {
		out = append(out, it.TrackNumber)
	}
	return out
}

// InvoiceCandidate is a raw item offered for addition to the pending invoice.
type InvoiceCandidate struct {
	TrackNumber string
	Price       string
	Weight      string
}

// InvoiceOutcome is the per-item result of an invoice update.
type InvoiceOutcome string

const (
	InvoiceOutcomeAdded              InvoiceOutcome = "added"
	InvoiceOutcomeMissingPriceWeight InvoiceOutcome = "missing_price_or_weight"
	InvoiceOutcomeInvalidPriceWeight InvoiceOutcome = "invalid_price_or_weight"
	InvoiceOutcomeAlreadyInInvoice   InvoiceOutcome = "already_in_invoice"
	InvoiceOutcomeAlreadyPaid        InvoiceOutcome = "already_paid"
)

// InvoiceItemResult reports what happened to one offered item.
type InvoiceItemResult struct {
	TrackNumber string
	Outcome     InvoiceOutcome
}

// InvoiceUpdate is the result of adding items. Invoice is nil when the
// update ended with an empty invoice that was discarded.
type InvoiceUpdate struct {
	Invoice *Invoice
	Items   []InvoiceItemResult
}

// PaymentConfirmation is the result of confirming an invoice payment.
type PaymentConfirmation struct {
	Invoice Invoice
	Bonus   Bonus
}
