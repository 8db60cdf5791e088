package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/polkiloo/parceltrack/internal/config"
	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/domain/model"
	"github.com/polkiloo/parceltrack/internal/domain/repository"
)

// MatchStrategy resolves a bookmark's track number to a stored track.
type MatchStrategy interface {
	Lookup(ctx context.Context, tracks repository.TrackRepository, number string) (*model.Track, error)
	Name() string
}

// FuzzyMatch ignores whitespace and case and accepts the number anywhere
// inside the stored track number.
type FuzzyMatch struct{}

func (FuzzyMatch) Lookup(ctx context.Context, tracks repository.TrackRepository, number string) (*model.Track, error) {
	pattern := FuzzyPattern(number)
	if pattern == "" {
		return nil, domainErrors.ErrTrackNotFound
	}
	return tracks.FindByPattern(ctx, pattern)
}

func (FuzzyMatch) Name() string { return config.MatchStrategyFuzzy }

// ExactMatch requires the stored number to equal the bookmark's number.
type ExactMatch struct{}

func (ExactMatch) Lookup(ctx context.Context, tracks repository.TrackRepository, number string) (*model.Track, error) {
	return tracks.FindExact(ctx, number)
}

func (ExactMatch) Name() string { return config.MatchStrategyExact }

// NewMatchStrategy picks the strategy configured for the deployment.
func NewMatchStrategy(cfg *config.Config) MatchStrategy {
	if cfg != nil && cfg.MatchStrategy == config.MatchStrategyExact {
		return ExactMatch{}
	}
	return FuzzyMatch{}
}

// Matcher resolves bookmarks against the track store, binding matches and
// recording the owner's phone on the matched track.
type Matcher struct {
	strategy MatchStrategy
	logger   *slog.Logger
}

// NewMatcher constructs Matcher.
func NewMatcher(strategy MatchStrategy, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{strategy: strategy, logger: logger}
}

// Match splits bookmarks into matched and unmatched groups. Matched
// bookmarks are bound to their track and the track is assigned to owner.
// Unmatched bookmarks never touch the track store.
func (m *Matcher) Match(ctx context.Context, repos repository.Factory, owner model.User, bookmarks []model.Bookmark) (model.MatchResult, error) {
	result := model.MatchResult{
		Matched:   make([]model.MatchedBookmark, 0, len(bookmarks)),
		Unmatched: make([]model.UnmatchedBookmark, 0),
	}
	tracks := repos.Tracks()

	for _, bm := range bookmarks {
		track, err := m.resolve(ctx, tracks, bm)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				result.Unmatched = append(result.Unmatched, model.UnmatchedBookmark{
					TrackNumber: bm.TrackNumber,
					Description: bm.Description,
					CreatedAt:   bm.CreatedAt,
				})
				continue
			}
			return model.MatchResult{}, err
		}

		if track.UserPhone == nil || *track.UserPhone != owner.Phone {
			previous, err := tracks.AssignUser(ctx, track.ID, owner.Phone)
			if err != nil {
				return model.MatchResult{}, err
			}
			if previous != nil && *previous != owner.Phone {
				m.logger.Warn("track reassigned",
					slog.String("track", track.Number),
					slog.String("previous_phone", *previous),
					slog.Int64("user_id", owner.ID))
			}
			phone := owner.Phone
			track.UserPhone = &phone
		}

		if needsBind(bm, *track) {
			if err := repos.Bookmarks().Bind(ctx, bm.ID, track.ID, track.CurrentStatusID); err != nil {
				return model.MatchResult{}, err
			}
			id := track.ID
			bm.TrackID = &id
			bm.CurrentStatusID = track.CurrentStatusID
		}

		result.Matched = append(result.Matched, model.MatchedBookmark{Bookmark: bm, Track: *track})
	}

	return result, nil
}

func (m *Matcher) resolve(ctx context.Context, tracks repository.TrackRepository, bm model.Bookmark) (*model.Track, error) {
	if bm.TrackID != nil {
		track, err := tracks.GetByID(ctx, *bm.TrackID)
		if err == nil {
			return track, nil
		}
		if !errors.Is(err, domainErrors.ErrNotFound) {
			return nil, err
		}
	}
	return m.strategy.Lookup(ctx, tracks, bm.TrackNumber)
}

func needsBind(bm model.Bookmark, track model.Track) bool {
	if bm.TrackID == nil || *bm.TrackID != track.ID {
		return true
	}
	switch {
	case bm.CurrentStatusID == nil && track.CurrentStatusID == nil:
		return false
	case bm.CurrentStatusID == nil || track.CurrentStatusID == nil:
		return true
	default:
		return *bm.CurrentStatusID != *track.CurrentStatusID
	}
}

// Partition splits matched bookmarks into active and completed groups.
func Partition(matched []model.MatchedBookmark) model.Partition {
	p := model.Partition{
		Active:    make([]model.MatchedBookmark, 0, len(matched)),
		Completed: make([]model.MatchedBookmark, 0),
	}
	for _, mb := range matched {
		if mb.Track.IsCompleted() {
			p.Completed = append(p.Completed, mb)
			continue
		}
		p.Active = append(p.Active, mb)
	}
	return p
}
