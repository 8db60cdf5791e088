package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ArchivedBookmark is a frozen snapshot of a completed bookmark.
type ArchivedBookmark struct {
	ID          int64
	UserID      int64
	TrackNumber string
	Description string
	CreatedAt   time.Time
	History     []HistoryEntry
	Price       *string
	Weight      *string
	UserPhone   *string
}

// Archive is the permanent record of a track removed from the store.
type Archive struct {
	ID          int64
	TrackNumber string
	UserID      *int64
	Price       *string
	Weight      *string
	History     []HistoryEntry
	CreatedAt   time.Time
}

// ArchiveRequest names a bookmark to migrate into the user archive.
type ArchiveRequest struct {
	TrackNumber string
	Description string
}

// ArchiveOutcome is the per-item result of a selective migration.
type ArchiveOutcome string

const (
	ArchiveOutcomeArchived        ArchiveOutcome = "archived"
	ArchiveOutcomeAlreadyArchived ArchiveOutcome = "already_archived"
	ArchiveOutcomeTrackNotFound   ArchiveOutcome = "track_not_found"
)

// ArchiveItemResult reports what happened to one requested bookmark.
type ArchiveItemResult struct {
	TrackNumber string
	Outcome     ArchiveOutcome
}

// MigrationReport summarises a selective migration batch.
type MigrationReport struct {
	Items      []ArchiveItemResult
	TotalPrice decimal.Decimal
	Bonus      Bonus
}

// Archived counts migrated items.
func (r MigrationReport) Archived() int {
	n := 0
	for _, it := range r.Items {
		if it.Outcome == ArchiveOutcomeArchived {
			n++
		}
	}
	return n
}

// SweepCandidate is a completed track ready for global archival.
type SweepCandidate struct {
	UserID      int64
	TrackNumber string
}
