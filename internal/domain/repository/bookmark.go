package repository

import (
	"context"

	"github.com/polkiloo/parceltrack/internal/domain/model"
)

// BookmarkRepository describes the per-user bookmark collection.
type BookmarkRepository interface {
	Create(ctx context.Context, bookmark model.Bookmark) (*model.Bookmark, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Bookmark, error)
	Bind(ctx context.Context, bookmarkID, trackID int64, statusID *int64) error
	// Delete removes a bookmark matching the number case-insensitively.
	Delete(ctx context.Context, userID int64, trackNumber string) error
	// RemoveExact removes bookmarks with exactly this number and reports how many.
	RemoveExact(ctx context.Context, userID int64, trackNumber string) (int64, error)
	MarkPaid(ctx context.Context, userID int64, trackNumbers []string) error
	ListWithoutStatus(ctx context.Context) ([]model.OwnedBookmark, error)
}
