package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/parceltrack/internal/domain/model"
)

// InvoiceItemRequest offers one priced bookmark for the pending invoice.
// Price and weight stay raw strings; the invoice aggregator classifies them.
type InvoiceItemRequest struct {
	TrackNumber string `json:"trackNumber"`
	Price       string `json:"price"`
	Weight      string `json:"weight"`
}

// AddInvoiceItemsRequest is a batch of invoice candidates.
type AddInvoiceItemsRequest struct {
	Items []InvoiceItemRequest `json:"items" binding:"required,min=1"`
}

// InvoiceItemResponse is one invoice line.
type InvoiceItemResponse struct {
	TrackNumber string          `json:"trackNumber"`
	Price       decimal.Decimal `json:"price"`
	Weight      decimal.Decimal `json:"weight"`
}

// InvoiceResponse describes an invoice.
type InvoiceResponse struct {
	ID          int64                 `json:"id"`
	Status      string                `json:"status"`
	Items       []InvoiceItemResponse `json:"items"`
	TotalAmount decimal.Decimal       `json:"totalAmount"`
	TotalWeight decimal.Decimal       `json:"totalWeight"`
	TotalItems  int                   `json:"totalItems"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// InvoiceUpdateResponse is the result of adding items.
type InvoiceUpdateResponse struct {
	Invoice *InvoiceResponse     `json:"invoice"`
	Items   []ItemResultResponse `json:"items"`
}

// PaymentResponse is the result of confirming a payment.
type PaymentResponse struct {
	Invoice InvoiceResponse `json:"invoice"`
	Bonus   BonusResponse   `json:"bonus"`
}

// NewInvoiceResponse converts an invoice.
func NewInvoiceResponse(inv model.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, InvoiceItemResponse(it))
	}
	return InvoiceResponse{
		ID:          inv.ID,
		Status:      string(inv.Status),
		Items:       items,
		TotalAmount: inv.TotalAmount,
		TotalWeight: inv.TotalWeight,
		TotalItems:  inv.TotalItems,
		CreatedAt:   inv.CreatedAt,
		UpdatedAt:   inv.UpdatedAt,
	}
}

// NewInvoiceUpdateResponse converts an invoice update.
func NewInvoiceUpdateResponse(u model.InvoiceUpdate) InvoiceUpdateResponse {
	resp := InvoiceUpdateResponse{Items: make([]ItemResultResponse, 0, len(u.Items))}
	if u.Invoice != nil {
		inv := NewInvoiceResponse(*u.Invoice)
		resp.Invoice = &inv
	}
	for _, it := range u.Items {
		resp.Items = append(resp.Items, ItemResultResponse{TrackNumber: it.TrackNumber, Status: string(it.Outcome)})
	}
	return resp
}

// ToCandidates converts the request into invoice candidates.
func (r AddInvoiceItemsRequest) ToCandidates() []model.InvoiceCandidate {
	out := make([]model.InvoiceCandidate, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, model.InvoiceCandidate(it))
	}
	return out
}
