package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/parceltrack/internal/config"
	"github.com/polkiloo/parceltrack/internal/domain/model"
	"github.com/polkiloo/parceltrack/internal/domain/repository"
	testhelpers "github.com/polkiloo/parceltrack/internal/test"
)

func strPtr(s string) *string { return &s }

func matchAll(t *testing.T, store *testhelpers.MemoryStore, m *Matcher, owner model.User) model.MatchResult {
	t.Helper()
	var result model.MatchResult
	err := store.InTx(context.Background(), func(ctx context.Context, repos repository.Factory) error {
		bookmarks, err := repos.Bookmarks().ListByUser(ctx, owner.ID)
		if err != nil {
			return err
		}
		result, err = m.Match(ctx, repos, owner, bookmarks)
		return err
	})
	require.NoError(t, err)
	return result
}

func TestMatcherUnmatchedLeavesTracksUntouched(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	owner := store.SeedUser(model.User{Phone: "7000"})
	store.SeedTrack(model.Track{Number: "AB123"})
	store.SeedBookmark(model.Bookmark{UserID: owner.ID, TrackNumber: "ZZ999", Description: "shoes"})
	before := store.AllTracks()

	result := matchAll(t, store, NewMatcher(FuzzyMatch{}, nil), owner)

	assert.Empty(t, result.Matched)
	require.Len(t, result.Unmatched, 1)
	assert.Equal(t, "ZZ999", result.Unmatched[0].TrackNumber)
	assert.Equal(t, "shoes", result.Unmatched[0].Description)
	assert.Equal(t, before, store.AllTracks())
	assert.Nil(t, store.UserBookmarks(owner.ID)[0].TrackID)
}

func TestMatcherFuzzyBindsAndAssigns(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	owner := store.SeedUser(model.User{Phone: "7000"})
	transit := store.SeedStatus("В пути")
	track := store.SeedTrack(model.Track{Number: "LP00YT123KZ"}, transit)
	store.SeedBookmark(model.Bookmark{UserID: owner.ID, TrackNumber: " yt 123 ", Description: "bag"})

	result := matchAll(t, store, NewMatcher(FuzzyMatch{}, nil), owner)

	require.Len(t, result.Matched, 1)
	assert.Equal(t, track.ID, result.Matched[0].Track.ID)
	require.NotNil(t, result.Matched[0].TrackID)
	assert.Equal(t, track.ID, *result.Matched[0].TrackID)

	stored := store.UserBookmarks(owner.ID)[0]
	require.NotNil(t, stored.TrackID)
	assert.Equal(t, track.ID, *stored.TrackID)
	require.NotNil(t, stored.CurrentStatusID)
	assert.Equal(t, transit.ID, *stored.CurrentStatusID)

	updated, _ := store.Track("LP00YT123KZ")
	require.NotNil(t, updated.UserPhone)
	assert.Equal(t, "7000", *updated.UserPhone)
}

func TestMatcherFuzzyPicksFirstByID(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	owner := store.SeedUser(model.User{Phone: "7000"})
	first := store.SeedTrack(model.Track{Number: "XAB12"})
	store.SeedTrack(model.Track{Number: "AB12"})
	store.SeedBookmark(model.Bookmark{UserID: owner.ID, TrackNumber: "ab12", Description: "x"})

	result := matchAll(t, store, NewMatcher(FuzzyMatch{}, nil), owner)

	require.Len(t, result.Matched, 1)
	assert.Equal(t, first.ID, result.Matched[0].Track.ID)
}

func TestMatcherExactStrategy(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	owner := store.SeedUser(model.User{Phone: "7000"})
	store.SeedTrack(model.Track{Number: "AB12"})
	store.SeedBookmark(model.Bookmark{UserID: owner.ID, TrackNumber: "ab12", Description: "x"})
	store.SeedBookmark(model.Bookmark{UserID: owner.ID, TrackNumber: "AB12", Description: "y"})

	result := matchAll(t, store, NewMatcher(ExactMatch{}, nil), owner)

	require.Len(t, result.Matched, 1)
	assert.Equal(t, "AB12", result.Matched[0].TrackNumber)
	require.Len(t, result.Unmatched, 1)
	assert.Equal(t, "ab12", result.Unmatched[0].TrackNumber)
}

func TestMatcherLastWriterWins(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	owner := store.SeedUser(model.User{Phone: "7000"})
	store.SeedTrack(model.Track{Number: "AB12", UserPhone: strPtr("7999")})
	store.SeedBookmark(model.Bookmark{UserID: owner.ID, TrackNumber: "AB12", Description: "x"})

	result := matchAll(t, store, NewMatcher(FuzzyMatch{}, nil), owner)

	require.Len(t, result.Matched, 1)
	assert.Equal(t, "7000", *result.Matched[0].Track.UserPhone)
	updated, _ := store.Track("AB12")
	assert.Equal(t, "7000", *updated.UserPhone)
}

func TestMatcherBoundBookmarkWithDeletedTrack(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	owner := store.SeedUser(model.User{Phone: "7000"})
	gone := int64(404)
	store.SeedBookmark(model.Bookmark{UserID: owner.ID, TrackNumber: "AB12", Description: "x", TrackID: &gone})

	result := matchAll(t, store, NewMatcher(FuzzyMatch{}, nil), owner)

	assert.Empty(t, result.Matched)
	require.Len(t, result.Unmatched, 1)
}

func TestMatcherUsesBoundTrack(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	owner := store.SeedUser(model.User{Phone: "7000"})
	bound := store.SeedTrack(model.Track{Number: "OTHER", UserPhone: strPtr("7000")})
	store.SeedTrack(model.Track{Number: "AB12"})
	store.SeedBookmark(model.Bookmark{UserID: owner.ID, TrackNumber: "AB12", Description: "x", TrackID: &bound.ID})

	result := matchAll(t, store, NewMatcher(FuzzyMatch{}, nil), owner)

	require.Len(t, result.Matched, 1)
	assert.Equal(t, bound.ID, result.Matched[0].Track.ID)
}

func TestPartition(t *testing.T) {
	done := model.Track{History: []model.HistoryEntry{{StatusText: "В пути"}, {StatusText: model.TerminalStatusText}}}
	moving := model.Track{History: []model.HistoryEntry{{StatusText: "В пути"}}}

	p := Partition([]model.MatchedBookmark{{Track: done}, {Track: moving}, {Track: model.Track{}}})

	assert.Len(t, p.Completed, 1)
	assert.Len(t, p.Active, 2)
}

func TestNewMatchStrategy(t *testing.T) {
	assert.Equal(t, config.MatchStrategyFuzzy, NewMatchStrategy(nil).Name())
	assert.Equal(t, config.MatchStrategyFuzzy, NewMatchStrategy(&config.Config{MatchStrategy: "fuzzy"}).Name())
	assert.Equal(t, config.MatchStrategyExact, NewMatchStrategy(&config.Config{MatchStrategy: "exact"}).Name())
}
