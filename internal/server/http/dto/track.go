package dto

import (
	"time"

	"github.com/polkiloo/parceltrack/internal/domain/model"
)

// SaveTrackRequest creates or updates a track.
type SaveTrackRequest struct {
	TrackNumber string     `json:"trackNumber" binding:"required,tracknumber"`
	StatusID    *int64     `json:"status" binding:"omitempty,gt=0"`
	Price       *string    `json:"price"`
	Weight      *string    `json:"weight"`
	Place       *string    `json:"place"`
	Date        *time.Time `json:"date"`
}

// TrackQuery holds track listing parameters.
type TrackQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	StatusID *int64 `form:"status" binding:"omitempty,gt=0"`
	User     string `form:"user" binding:"omitempty,oneof=exists notExists"`
	Sort     string `form:"sort" binding:"omitempty,oneof=latest oldest"`
}

// TrackResponse describes a track.
type TrackResponse struct {
	ID              int64                `json:"id"`
	TrackNumber     string               `json:"trackNumber"`
	CurrentStatusID *int64               `json:"currentStatus,omitempty"`
	Price           *string              `json:"price,omitempty"`
	Weight          *string              `json:"weight,omitempty"`
	Place           *string              `json:"place,omitempty"`
	User            *string              `json:"user,omitempty"`
	History         []model.HistoryEntry `json:"history"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// TrackPageResponse is one page of tracks.
type TrackPageResponse struct {
	TotalCount  int64           `json:"totalCount"`
	CurrentPage int             `json:"currentPage"`
	TotalPages  int             `json:"totalPages"`
	Tracks      []TrackResponse `json:"tracks"`
}

// StatusRequest creates a status.
type StatusRequest struct {
	StatusText string `json:"statusText" binding:"required"`
}

// StatusResponse describes a status.
type StatusResponse struct {
	ID         int64  `json:"id"`
	StatusText string `json:"statusText"`
}

// ToInput converts the request into a track upsert.
func (r SaveTrackRequest) ToInput() model.TrackInput {
	return model.TrackInput{
		Number:   r.TrackNumber,
		StatusID: r.StatusID,
		Price:    r.Price,
		Weight:   r.Weight,
		Place:    r.Place,
		Date:     r.Date,
	}
}

// ToFilter converts query parameters into a listing filter.
func (q TrackQuery) ToFilter() model.TrackFilter {
	return model.TrackFilter{
		Page:       q.Page,
		Limit:      q.Limit,
		Search:     q.Search,
		StatusID:   q.StatusID,
		UserFilter: model.UserFilter(q.User),
		Oldest:     q.Sort == "oldest",
	}
}

// NewTrackResponse converts a track.
func NewTrackResponse(t model.Track) TrackResponse {
	return TrackResponse{
		ID:              t.ID,
		TrackNumber:     t.Number,
		CurrentStatusID: t.CurrentStatusID,
		Price:           t.Price,
		Weight:          t.Weight,
		Place:           t.Place,
		User:            t.UserPhone,
		History:         history(t.History),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// NewTrackPageResponse converts a track page.
func NewTrackPageResponse(p model.TrackPage) TrackPageResponse {
	tracks := make([]TrackResponse, 0, len(p.Tracks))
	for _, t := range p.Tracks {
		tracks = append(tracks, NewTrackResponse(t))
	}
	return TrackPageResponse{
		TotalCount:  p.TotalCount,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		Tracks:      tracks,
	}
}
