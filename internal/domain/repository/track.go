package repository

import (
	"context"
	"time"

	"github.com/polkiloo/parceltrack/internal/domain/model"
)

// TrackRepository describes the track store.
type TrackRepository interface {
	// FindByPattern returns the first track whose number matches the
	// case-insensitive regular expression.
	FindByPattern(ctx context.Context, pattern string) (*model.Track, error)
	FindExact(ctx context.Context, number string) (*model.Track, error)
	// LockExact is FindExact holding a row lock until the transaction ends.
	LockExact(ctx context.Context, number string) (*model.Track, error)
	GetByID(ctx context.Context, id int64) (*model.Track, error)
	Create(ctx context.Context, input model.TrackInput) (*model.Track, error)
	Update(ctx context.Context, id int64, input model.TrackInput) error
	// AssignUser sets the assigned phone and returns the previous one.
	AssignUser(ctx context.Context, id int64, phone string) (*string, error)
	AppendHistory(ctx context.Context, trackID, statusID int64, at time.Time) error
	DeleteByNumber(ctx context.Context, number string) error
	List(ctx context.Context, filter model.TrackFilter) ([]model.Track, int64, error)
	// ListSweepCandidates returns completed tracks migrated into a user
	// archive that no active bookmark references anymore.
	ListSweepCandidates(ctx context.Context, limit int) ([]model.SweepCandidate, error)
	// ClearResolvedConflicts forgets recorded conflicts whose live track is gone.
	ClearResolvedConflicts(ctx context.Context) error
	// RecordArchiveConflicts records numbers present both in the store and in
	// the global archive and returns only those not recorded before.
	RecordArchiveConflicts(ctx context.Context, limit int) ([]string, error)
}

// StatusRepository describes shipment status definitions.
type StatusRepository interface {
	List(ctx context.Context) ([]model.Status, error)
	GetByID(ctx context.Context, id int64) (*model.Status, error)
	Create(ctx context.Context, text string) (*model.Status, error)
}
