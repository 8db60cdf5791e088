package model

import "time"

// Status texts that mark a shipment as received and archive-eligible.
const (
	TerminalStatusText        = "Получено"
	TerminalStatusTextEnglish = "Received"
)

// TerminalStatusTexts lists every terminal status text.
func TerminalStatusTexts() []string {
	return []string{TerminalStatusText, TerminalStatusTextEnglish}
}

// IsTerminalStatus reports whether text marks a received shipment.
func IsTerminalStatus(text string) bool {
	return text == TerminalStatusText || text == TerminalStatusTextEnglish
}

// Status is a named stage of the shipment lifecycle.
type Status struct {
	ID   int64
	Text string
}

// HistoryEntry records a status transition of a track.
type HistoryEntry struct {
	StatusID   int64     `json:"status"`
	StatusText string    `json:"statusText,omitempty"`
	Date       time.Time `json:"date"`
}

// Track is a shipment record with an append-only status history.
type Track struct {
	ID              int64
	Number          string
	CurrentStatusID *int64
	Price           *string
	Weight          *string
	Place           *string
	UserPhone       *string
	History         []HistoryEntry
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsCompleted reports whether the terminal status appears anywhere in history.
func (t Track) IsCompleted() bool {
	for _, h := range t.History {
		if IsTerminalStatus(h.StatusText) {
			return true
		}
	}
	return false
}

// TrackInput describes a manual track upsert. Nil fields are left untouched.
type TrackInput struct {
	Number   string
	StatusID *int64
	Price    *string
	Weight   *string
	Place    *string
	Date     *time.Time
}

// UserFilter narrows track listings by assignment state.
type UserFilter string

const (
	UserFilterAny       UserFilter = ""
	UserFilterExists    UserFilter = "exists"
	UserFilterNotExists UserFilter = "notExists"
)

// TrackFilter holds track listing parameters.
type TrackFilter struct {
	Page       int
	Limit      int
	Search     string
	StatusID   *int64
	UserFilter UserFilter
	Oldest     bool
}

// TrackPage is one page of a track listing.
type TrackPage struct {
	Tracks      []Track
	TotalCount  int64
	CurrentPage int
	TotalPages  int
}
