package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role distinguishes customers from staff.
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// User is a registered customer of the forwarding service.
type User struct {
	ID             int64
	Phone          string
	PasswordHash   string
	Name           string
	Surname        string
	Email          string
	Role           Role
	CreatedAt      time.Time
	SelectedFilial string
	PersonalID     int64

	// PersonalRate is a per-kilogram price override used for archive listings.
	PersonalRate *decimal.Decimal
	// ReferralBonusPercentage overrides the global percentage for bonuses
	// this user earns as a referrer.
	ReferralBonusPercentage *decimal.Decimal
	Bonuses                 *decimal.Decimal
	ReferrerID              *int64
}

// BonusBalance returns accumulated bonuses treating an unset balance as zero.
func (u User) BonusBalance() decimal.Decimal {
	if u.Bonuses == nil {
		return decimal.Zero
	}
	return *u.Bonuses
}

// IsAdmin reports whether the user has staff privileges.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Registration carries validated sign-up data.
type Registration struct {
	Phone          string
	Password       string
	Name           string
	Surname        string
	Email          string
	SelectedFilial string
	ReferrerID     *int64
	Agreed         bool
}

// Partner is a user that referred at least one other user.
type Partner struct {
	User
	ReferralsCount int
}

// UserListFilter holds staff user listing parameters. Empty fields do not
// filter.
type UserListFilter struct {
	Page          int
	Limit         int
	Search        string
	Role          Role
	Filial        string
	InvoiceStatus InvoiceStatus
	ByActivity    bool
	Oldest        bool
}

// UserActivity is a user with the size of their bookmark list and archive.
type UserActivity struct {
	User
	BookmarkCount int
	ArchiveCount  int
}

// TotalActivity is the number of bookmarks and archived bookmarks together.
func (u UserActivity) TotalActivity() int {
	return u.BookmarkCount + u.ArchiveCount
}

// UserPage is one page of a user listing.
type UserPage struct {
	Users       []UserActivity
	TotalCount  int64
	CurrentPage int
	TotalPages  int
}
