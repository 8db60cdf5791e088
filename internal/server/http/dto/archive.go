package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/parceltrack/internal/domain/model"
)

// ArchiveItemRequest names one bookmark to migrate.
type ArchiveItemRequest struct {
	TrackNumber string `json:"trackNumber" binding:"required"`
	Description string `json:"description"`
}

// ArchiveBookmarksRequest is a selective migration batch.
type ArchiveBookmarksRequest struct {
	Items []ArchiveItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ItemResultResponse is the per-item outcome of a batch operation.
type ItemResultResponse struct {
	TrackNumber string `json:"trackNumber"`
	Status      string `json:"status"`
}

// BonusResponse describes a settled referral bonus.
type BonusResponse struct {
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
	PayeeID    *int64          `json:"payeeId,omitempty"`
	Credited   bool            `json:"credited"`
}

// MigrationResponse summarises a selective migration.
type MigrationResponse struct {
	Items      []ItemResultResponse `json:"items"`
	Archived   int                  `json:"archived"`
	TotalPrice decimal.Decimal      `json:"totalPrice"`
	Bonus      BonusResponse        `json:"bonus"`
}

// ArchivedBookmarkResponse is an entry of the user archive.
type ArchivedBookmarkResponse struct {
	ID          int64                `json:"id"`
	TrackNumber string               `json:"trackNumber"`
	Description string               `json:"description"`
	CreatedAt   time.Time            `json:"createdAt"`
	Price       *string              `json:"price,omitempty"`
	Weight      *string              `json:"weight,omitempty"`
	User        *string              `json:"user,omitempty"`
	History     []model.HistoryEntry `json:"history"`
}

// ArchiveResponse is a global archive record.
type ArchiveResponse struct {
	ID          int64                `json:"id"`
	TrackNumber string               `json:"trackNumber"`
	UserID      *int64               `json:"userId,omitempty"`
	Price       *string              `json:"price,omitempty"`
	Weight      *string              `json:"weight,omitempty"`
	History     []model.HistoryEntry `json:"history"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// NewBonusResponse converts a bonus.
func NewBonusResponse(b model.Bonus) BonusResponse {
	return BonusResponse{Amount: b.Amount, Percentage: b.Percentage, PayeeID: b.PayeeID, Credited: b.Credited}
}

// NewMigrationResponse converts a migration report.
func NewMigrationResponse(r model.MigrationReport) MigrationResponse {
	items := make([]ItemResultResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, ItemResultResponse{TrackNumber: it.TrackNumber, Status: string(it.Outcome)})
	}
	return MigrationResponse{
		Items:      items,
		Archived:   r.Archived(),
		TotalPrice: r.TotalPrice,
		Bonus:      NewBonusResponse(r.Bonus),
	}
}

// NewArchivedBookmarkResponse converts a user archive entry.
func NewArchivedBookmarkResponse(a model.ArchivedBookmark) ArchivedBookmarkResponse {
	return ArchivedBookmarkResponse{
		ID:          a.ID,
		TrackNumber: a.TrackNumber,
		Description: a.Description,
		CreatedAt:   a.CreatedAt,
		Price:       a.Price,
		Weight:      a.Weight,
		User:        a.UserPhone,
		History:     history(a.History),
	}
}

// NewArchiveResponse converts a global archive record.
func NewArchiveResponse(a model.Archive) ArchiveResponse {
	return ArchiveResponse{
		ID:          a.ID,
		TrackNumber: a.TrackNumber,
		UserID:      a.UserID,
		Price:       a.Price,
		Weight:      a.Weight,
		History:     history(a.History),
		CreatedAt:   a.CreatedAt,
	}
}
