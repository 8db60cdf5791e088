package model

import "time"

// BookmarksPerPage is the page size of bookmark and archive listings.
const BookmarksPerPage = 20

// Bookmark is a user's watch on one track number.
type Bookmark struct {
	ID              int64
	UserID          int64
	CreatedAt       time.Time
	Description     string
	TrackNumber     string
	TrackID         *int64
	CurrentStatusID *int64
	IsPaid          bool
}

// OwnedBookmark pairs a bookmark with its owner for staff listings.
type OwnedBookmark struct {
	Bookmark
	Owner User
}

// MatchedBookmark is a bookmark resolved against a live track.
type MatchedBookmark struct {
	Bookmark
	Track Track
}

// UnmatchedBookmark is a bookmark whose track number is not in the store yet.
type UnmatchedBookmark struct {
	TrackNumber string
	Description string
	CreatedAt   time.Time
}

// MatchResult splits bookmarks into matched and unmatched groups.
type MatchResult struct {
	Matched   []MatchedBookmark
	Unmatched []UnmatchedBookmark
}

// Partition splits matched bookmarks by completion.
type Partition struct {
	Active    []MatchedBookmark
	Completed []MatchedBookmark
}

// BookmarkListing is a page of active bookmarks plus the unmatched group.
type BookmarkListing struct {
	Active         []MatchedBookmark
	Unmatched      []UnmatchedBookmark
	TotalPages     int
	TotalBookmarks int
}

// ArchiveCandidate is a completed bookmark with its display price.
type ArchiveCandidate struct {
	MatchedBookmark
	Price  string
	Weight string
	Place  string
}

// CandidateListing is a page of archive candidates.
type CandidateListing struct {
	Candidates     []ArchiveCandidate
	TotalPages     int
	TotalBookmarks int
}
