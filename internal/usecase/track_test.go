package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/domain/model"
	testhelpers "github.com/polkiloo/parceltrack/internal/test"
)

func newTrackUseCase(store *testhelpers.MemoryStore) *TrackUseCase {
	return NewTrackUseCase(store, store.Tracks(), store.Statuses())
}

func TestTrackSaveCreatesAndUpdates(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	transit := store.SeedStatus("В пути")
	done := store.SeedStatus(model.TerminalStatusText)
	uc := newTrackUseCase(store)
	ctx := context.Background()

	created, isNew, err := uc.SaveTrack(ctx, model.TrackInput{Number: " T1 ", StatusID: &transit.ID, Price: strPtr("100")})
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "T1", created.Number)
	require.Len(t, created.History, 1)
	assert.Equal(t, transit.ID, *created.CurrentStatusID)

	same, isNew, err := uc.SaveTrack(ctx, model.TrackInput{Number: "T1", StatusID: &transit.ID, Weight: strPtr("2")})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Len(t, same.History, 1)
	assert.Equal(t, "100", *same.Price)
	assert.Equal(t, "2", *same.Weight)

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	finished, _, err := uc.SaveTrack(ctx, model.TrackInput{Number: "T1", StatusID: &done.ID, Date: &at})
	require.NoError(t, err)
	require.Len(t, finished.History, 2)
	assert.Equal(t, at, finished.History[1].Date)
	assert.True(t, finished.IsCompleted())
	assert.Len(t, store.AllTracks(), 1)
}

func TestTrackSaveValidation(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	uc := newTrackUseCase(store)
	ctx := context.Background()

	_, _, err := uc.SaveTrack(ctx, model.TrackInput{Number: ""})
	assert.ErrorIs(t, err, domainErrors.ErrInvalidArgument)

	missing := int64(99)
	_, _, err = uc.SaveTrack(ctx, model.TrackInput{Number: "T1", StatusID: &missing})
	assert.ErrorIs(t, err, domainErrors.ErrStatusNotFound)
	assert.Empty(t, store.AllTracks())
}

func TestTrackList(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	transit := store.SeedStatus("В пути")
	for i := 0; i < 5; i++ {
		tr := model.Track{Number: fmt.Sprintf("T%d", i)}
		if i%2 == 0 {
			tr.UserPhone = strPtr("7000")
		}
		store.SeedTrack(tr, transit)
	}
	uc := newTrackUseCase(store)
	ctx := context.Background()

	page, err := uc.ListTracks(ctx, model.TrackFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Len(t, page.Tracks, 2)

	assigned, err := uc.ListTracks(ctx, model.TrackFilter{UserFilter: model.UserFilterExists})
	require.NoError(t, err)
	assert.Equal(t, int64(3), assigned.TotalCount)
	assert.Equal(t, 1, assigned.CurrentPage)

	free, err := uc.ListTracks(ctx, model.TrackFilter{UserFilter: model.UserFilterNotExists, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, int64(2), free.TotalCount)

	search, err := uc.ListTracks(ctx, model.TrackFilter{Search: " t3 "})
	require.NoError(t, err)
	require.Len(t, search.Tracks, 1)
	assert.Equal(t, "T3", search.Tracks[0].Number)
}

func TestTrackStatuses(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	uc := newTrackUseCase(store)
	ctx := context.Background()

	st, err := uc.CreateStatus(ctx, " Получено ")
	require.NoError(t, err)
	assert.Equal(t, model.TerminalStatusText, st.Text)

	_, err = uc.CreateStatus(ctx, model.TerminalStatusText)
	assert.ErrorIs(t, err, domainErrors.ErrAlreadyExists)

	_, err = uc.CreateStatus(ctx, "")
	assert.ErrorIs(t, err, domainErrors.ErrInvalidArgument)

	all, err := uc.ListStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
