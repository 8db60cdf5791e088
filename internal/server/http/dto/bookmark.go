package dto

import (
	"time"

	"github.com/polkiloo/parceltrack/internal/domain/model"
)

// AddBookmarkRequest describes a new bookmark.
type AddBookmarkRequest struct {
	TrackNumber string `json:"trackNumber" binding:"required,tracknumber"`
	Description string `json:"description" binding:"required"`
}

// BookmarkResponse is an active bookmark joined with its track.
type BookmarkResponse struct {
	TrackNumber     string               `json:"trackNumber"`
	Description     string               `json:"description"`
	CreatedAt       time.Time            `json:"createdAt"`
	TrackID         *int64               `json:"trackId,omitempty"`
	CurrentStatusID *int64               `json:"currentStatus,omitempty"`
	IsPaid          bool                 `json:"isPaid"`
	Price           *string              `json:"price,omitempty"`
	Weight          *string              `json:"weight,omitempty"`
	Place           *string              `json:"place,omitempty"`
	History         []model.HistoryEntry `json:"history"`
}

// UnmatchedBookmarkResponse is a bookmark with no known track yet.
type UnmatchedBookmarkResponse struct {
	TrackNumber string    `json:"trackNumber"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BookmarkListResponse is a page of active bookmarks plus unmatched ones.
type BookmarkListResponse struct {
	Bookmarks      []BookmarkResponse          `json:"bookmarks"`
	Unmatched      []UnmatchedBookmarkResponse `json:"notFoundBookmarks"`
	TotalPages     int                         `json:"totalPages"`
	TotalBookmarks int                         `json:"totalBookmarks"`
}

// ArchiveCandidateResponse is a completed bookmark ready for archiving.
type ArchiveCandidateResponse struct {
	TrackNumber string               `json:"trackNumber"`
	Description string               `json:"description"`
	CreatedAt   time.Time            `json:"createdAt"`
	Price       string               `json:"price"`
	Weight      string               `json:"weight"`
	Place       string               `json:"place"`
	History     []model.HistoryEntry `json:"history"`
}

// CandidateListResponse is a page of archive candidates.
type CandidateListResponse struct {
	Bookmarks      []ArchiveCandidateResponse `json:"bookmarks"`
	TotalPages     int                        `json:"totalPages"`
	TotalBookmarks int                        `json:"totalBookmarks"`
}

// OwnerResponse is the short form of a user in staff listings.
type OwnerResponse struct {
	ID      int64  `json:"id"`
	Phone   string `json:"phone"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// OwnedBookmarkResponse is a bookmark with its owner.
type OwnedBookmarkResponse struct {
	TrackNumber string        `json:"trackNumber"`
	Description string        `json:"description"`
	CreatedAt   time.Time     `json:"createdAt"`
	Owner       OwnerResponse `json:"user"`
}

// NewBookmarkListResponse converts a listing.
func NewBookmarkListResponse(l model.BookmarkListing) BookmarkListResponse {
	resp := BookmarkListResponse{
		Bookmarks:      make([]BookmarkResponse, 0, len(l.Active)),
		Unmatched:      make([]UnmatchedBookmarkResponse, 0, len(l.Unmatched)),
		TotalPages:     l.TotalPages,
		TotalBookmarks: l.TotalBookmarks,
	}
	for _, mb := range l.Active {
		resp.Bookmarks = append(resp.Bookmarks, BookmarkResponse{
			TrackNumber:     mb.TrackNumber,
			Description:     mb.Description,
			CreatedAt:       mb.CreatedAt,
			TrackID:         mb.TrackID,
			CurrentStatusID: mb.CurrentStatusID,
			IsPaid:          mb.IsPaid,
			Price:           mb.Track.Price,
			Weight:          mb.Track.Weight,
			Place:           mb.Track.Place,
			History:         history(mb.Track.History),
		})
	}
	for _, ub := range l.Unmatched {
		resp.Unmatched = append(resp.Unmatched, UnmatchedBookmarkResponse(ub))
	}
	return resp
}

// NewCandidateListResponse converts archive candidates.
func NewCandidateListResponse(l model.CandidateListing) CandidateListResponse {
	resp := CandidateListResponse{
		Bookmarks:      make([]ArchiveCandidateResponse, 0, len(l.Candidates)),
		TotalPages:     l.TotalPages,
		TotalBookmarks: l.TotalBookmarks,
	}
	for _, c := range l.Candidates {
		resp.Bookmarks = append(resp.Bookmarks, ArchiveCandidateResponse{
			TrackNumber: c.TrackNumber,
			Description: c.Description,
			CreatedAt:   c.CreatedAt,
			Price:       c.Price,
			Weight:      c.Weight,
			Place:       c.Place,
			History:     history(c.Track.History),
		})
	}
	return resp
}

// NewOwnedBookmarkResponse converts a staff listing entry.
func NewOwnedBookmarkResponse(b model.OwnedBookmark) OwnedBookmarkResponse {
	return OwnedBookmarkResponse{
		TrackNumber: b.TrackNumber,
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		Owner:       NewOwnerResponse(b.Owner),
	}
}

// NewOwnerResponse converts a user into its short form.
func NewOwnerResponse(u model.User) OwnerResponse {
	return OwnerResponse{ID: u.ID, Phone: u.Phone, Name: u.Name, Surname: u.Surname}
}

func history(entries []model.HistoryEntry) []model.HistoryEntry {
	if entries == nil {
		return []model.HistoryEntry{}
	}
	return entries
}
