package dto

import "github.com/polkiloo/parceltrack/internal/domain/model"

// UserQuery holds staff user listing parameters.
type UserQuery struct {
	Page          int    `form:"page" binding:"omitempty,min=1"`
	Limit         int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search        string `form:"search"`
	Role          string `form:"role" binding:"omitempty,oneof=client admin"`
	Filial        string `form:"filial"`
	InvoiceStatus string `form:"invoiceStatus" binding:"omitempty,oneof=all pending paid"`
	ByActivity    bool   `form:"sortByActivity"`
	Sort          string `form:"sort" binding:"omitempty,oneof=latest oldest"`
}

// ToFilter converts the query; "all" invoice status means no filter.
func (q UserQuery) ToFilter() model.UserListFilter {
	status := model.InvoiceStatus(q.InvoiceStatus)
	if q.InvoiceStatus == "all" {
		status = ""
	}
	return model.UserListFilter{
		Page:          q.Page,
		Limit:         q.Limit,
		Search:        q.Search,
		Role:          model.Role(q.Role),
		Filial:        q.Filial,
		InvoiceStatus: status,
		ByActivity:    q.ByActivity,
		Oldest:        q.Sort == "oldest",
	}
}

// UserSummaryResponse is a user row in the staff listing.
type UserSummaryResponse struct {
	ProfileResponse
	BookmarkCount int `json:"bookmarkCount"`
	ArchiveCount  int `json:"archiveCount"`
	TotalActivity int `json:"totalActivity"`
}

// UserPageResponse is one page of users.
type UserPageResponse struct {
	TotalCount  int64                 `json:"totalCount"`
	CurrentPage int                   `json:"currentPage"`
	TotalPages  int                   `json:"totalPages"`
	Users       []UserSummaryResponse `json:"users"`
}

// NewUserPageResponse converts a user page.
func NewUserPageResponse(p model.UserPage) UserPageResponse {
	users := make([]UserSummaryResponse, 0, len(p.Users))
	for _, u := range p.Users {
		users = append(users, UserSummaryResponse{
			ProfileResponse: NewProfileResponse(u.User),
			BookmarkCount:   u.BookmarkCount,
			ArchiveCount:    u.ArchiveCount,
			TotalActivity:   u.TotalActivity(),
		})
	}
	return UserPageResponse{
		TotalCount:  p.TotalCount,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		Users:       users,
	}
}
