package repository

import (
	"context"

	"github.com/polkiloo/parceltrack/internal/domain/model"
)

// ArchiveRepository describes user archives and the global archive.
type ArchiveRepository interface {
	// AddUserEntry stores the snapshot unless the user already archived the
	// number; the returned entry is nil in that case.
	AddUserEntry(ctx context.Context, entry model.ArchivedBookmark) (*model.ArchivedBookmark, error)
	ListUserEntries(ctx context.Context, userID int64) ([]model.ArchivedBookmark, error)
	DeleteUserEntry(ctx context.Context, userID int64, trackNumber string) error
	AddGlobal(ctx context.Context, archive model.Archive) (*model.Archive, error)
}
