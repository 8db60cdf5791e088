package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/domain/model"
	"github.com/polkiloo/parceltrack/internal/domain/repository"
)

const (
	unknownValue = "Неизвестно"
	unknownPlace = "-"
)

// BookmarkUseCase manages user bookmarks and their resolution against tracks.
type BookmarkUseCase struct {
	tx        repository.Transactor
	bookmarks repository.BookmarkRepository
	matcher   *Matcher
}

// NewBookmarkUseCase constructs BookmarkUseCase.
func NewBookmarkUseCase(tx repository.Transactor, bookmarks repository.BookmarkRepository, matcher *Matcher) *BookmarkUseCase {
	return &BookmarkUseCase{tx: tx, bookmarks: bookmarks, matcher: matcher}
}

// AddBookmark stores a new bookmark for the user.
func (u *BookmarkUseCase) AddBookmark(ctx context.Context, userID int64, trackNumber, description string) (*model.Bookmark, error) {
	number, err := NormalizeTrackNumber(trackNumber)
	if err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("description is required: %w", domainErrors.ErrInvalidArgument)
	}
	return u.bookmarks.Create(ctx, model.Bookmark{
		UserID:      userID,
		TrackNumber: number,
		Description: description,
	})
}

// DeleteBookmark removes the user's bookmark for the track number.
func (u *BookmarkUseCase) DeleteBookmark(ctx context.Context, userID int64, trackNumber string) error {
	number, err := NormalizeTrackNumber(trackNumber)
	if err != nil {
		return err
	}
	return u.bookmarks.Delete(ctx, userID, number)
}

// ListBookmarks returns one page of active bookmarks and every unmatched one.
func (u *BookmarkUseCase) ListBookmarks(ctx context.Context, userID int64, page int) (model.BookmarkListing, error) {
	var listing model.BookmarkListing
	err := u.tx.InTx(ctx, func(ctx context.Context, repos repository.Factory) error {
		_, partition, unmatched, err := u.resolve(ctx, repos, userID)
		if err != nil {
			return err
		}
		items, pages := paginate(partition.Active, page, model.BookmarksPerPage)
		listing = model.BookmarkListing{
			Active:         items,
			Unmatched:      unmatched,
			TotalPages:     pages,
			TotalBookmarks: len(partition.Active) + len(unmatched),
		}
		return nil
	})
	return listing, err
}

// ArchiveCandidates returns one page of completed bookmarks with their
// display price, weight and place.
func (u *BookmarkUseCase) ArchiveCandidates(ctx context.Context, userID int64, page int) (model.CandidateListing, error) {
	var listing model.CandidateListing
	err := u.tx.InTx(ctx, func(ctx context.Context, repos repository.Factory) error {
		owner, partition, _, err := u.resolve(ctx, repos, userID)
		if err != nil {
			return err
		}
		items, pages := paginate(partition.Completed, page, model.BookmarksPerPage)
		candidates := make([]model.ArchiveCandidate, 0, len(items))
		for _, mb := range items {
			candidates = append(candidates, candidateOf(mb, owner.PersonalRate))
		}
		listing = model.CandidateListing{
			Candidates:     candidates,
			TotalPages:     pages,
			TotalBookmarks: len(partition.Completed),
		}
		return nil
	})
	return listing, err
}

// BookmarksWithoutStatus lists bookmarks of every user whose cached status
// is empty, bound or not, with the owner attached.
func (u *BookmarkUseCase) BookmarksWithoutStatus(ctx context.Context) ([]model.OwnedBookmark, error) {
	return u.bookmarks.ListWithoutStatus(ctx)
}

func (u *BookmarkUseCase) resolve(ctx context.Context, repos repository.Factory, userID int64) (*model.User, model.Partition, []model.UnmatchedBookmark, error) {
	owner, err := repos.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, model.Partition{}, nil, err
	}
	bookmarks, err := repos.Bookmarks().ListByUser(ctx, userID)
	if err != nil {
		return nil, model.Partition{}, nil, err
	}
	result, err := u.matcher.Match(ctx, repos, *owner, bookmarks)
	if err != nil {
		return nil, model.Partition{}, nil, err
	}
	return owner, Partition(result.Matched), result.Unmatched, nil
}

func candidateOf(mb model.MatchedBookmark, personalRate *decimal.Decimal) model.ArchiveCandidate {
	c := model.ArchiveCandidate{
		MatchedBookmark: mb,
		Price:           unknownValue,
		Weight:          unknownValue,
		Place:           unknownPlace,
	}
	if w := mb.Track.Weight; w != nil && strings.TrimSpace(*w) != "" {
		c.Weight = *w
	}
	if p := mb.Track.Place; p != nil && strings.TrimSpace(*p) != "" {
		c.Place = *p
	}

	weight, weightOK := parseOptionalAmount(mb.Track.Weight)
	switch {
	case personalRate != nil && weightOK:
		c.Price = weight.Mul(*personalRate).StringFixed(2)
	case mb.Track.Price != nil && strings.TrimSpace(*mb.Track.Price) != "":
		c.Price = *mb.Track.Price
	}
	return c
}

func paginate[T any](items []T, page, size int) ([]T, int) {
	pages := (len(items) + size - 1) / size
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}, pages
	}
	end := min(start+size, len(items))
	return items[start:end], pages
}
