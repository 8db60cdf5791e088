package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/domain/model"
	"github.com/polkiloo/parceltrack/internal/domain/repository"
)

const (
	defaultTrackPageSize = 20
	maxTrackPageSize     = 100
)

// TrackUseCase maintains the track store and status definitions.
type TrackUseCase struct {
	tx       repository.Transactor
	tracks   repository.TrackRepository
	statuses repository.StatusRepository
	now      func() time.Time
}

// NewTrackUseCase constructs TrackUseCase.
func NewTrackUseCase(tx repository.Transactor, tracks repository.TrackRepository, statuses repository.StatusRepository) *TrackUseCase {
	return &TrackUseCase{tx: tx, tracks: tracks, statuses: statuses, now: time.Now}
}

// SaveTrack creates the track when the number is unknown and updates the
// given fields otherwise. A new status is appended to the history.
func (u *TrackUseCase) SaveTrack(ctx context.Context, input model.TrackInput) (*model.Track, bool, error) {
	number, err := NormalizeTrackNumber(input.Number)
	if err != nil {
		return nil, false, err
	}
	input.Number = number

	var (
		saved   *model.Track
		created bool
	)
	err = u.tx.InTx(ctx, func(ctx context.Context, repos repository.Factory) error {
		if input.StatusID != nil {
			if _, err := repos.Statuses().GetByID(ctx, *input.StatusID); err != nil {
				return err
			}
		}

		track, err := repos.Tracks().LockExact(ctx, number)
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			track, err = repos.Tracks().Create(ctx, input)
			if err != nil {
				return err
			}
			created = true
		case err != nil:
			return err
		default:
			if err := repos.Tracks().Update(ctx, track.ID, input); err != nil {
				return err
			}
		}

		if input.StatusID != nil && !sameStatus(track.CurrentStatusID, *input.StatusID) {
			at := u.now()
			if input.Date != nil {
				at = *input.Date
			}
			if err := repos.Tracks().AppendHistory(ctx, track.ID, *input.StatusID, at); err != nil {
				return err
			}
		}

		saved, err = repos.Tracks().GetByID(ctx, track.ID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return saved, created, nil
}

func sameStatus(current *int64, next int64) bool {
	return current != nil && *current == next
}

// ListTracks returns one page of tracks matching filter.
func (u *TrackUseCase) ListTracks(ctx context.Context, filter model.TrackFilter) (model.TrackPage, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultTrackPageSize
	}
	if filter.Limit > maxTrackPageSize {
		filter.Limit = maxTrackPageSize
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	filter.Search = strings.TrimSpace(filter.Search)

	tracks, total, err := u.tracks.List(ctx, filter)
	if err != nil {
		return model.TrackPage{}, err
	}
	return model.TrackPage{
		Tracks:      tracks,
		TotalCount:  total,
		CurrentPage: filter.Page,
		TotalPages:  int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
	}, nil
}

// ListStatuses returns every status definition.
func (u *TrackUseCase) ListStatuses(ctx context.Context) ([]model.Status, error) {
	return u.statuses.List(ctx)
}

// CreateStatus adds a status definition.
func (u *TrackUseCase) CreateStatus(ctx context.Context, text string) (*model.Status, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("status text is required: %w", domainErrors.ErrInvalidArgument)
	}
	return u.statuses.Create(ctx, text)
}
