package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/parceltrack/internal/domain/model"
	pkgAuth "github.com/polkiloo/parceltrack/internal/pkg/auth"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, reg model.Registration) (string, error)
	Authenticate(ctx context.Context, phone, password string) (string, error)
	ParseToken(token string) (pkgAuth.Claims, error)
	Profile(ctx context.Context, userID int64) (*model.User, error)
	RefreshToken(ctx context.Context, userID int64) (*model.User, string, error)
	ChangePassword(ctx context.Context, userID int64, current, next string) error
	Users(ctx context.Context, filter model.UserListFilter) (model.UserPage, error)
}

// BookmarkFacade covers bookmark management.
type BookmarkFacade interface {
	AddBookmark(ctx context.Context, userID int64, trackNumber, description string) (*model.Bookmark, error)
	Bookmarks(ctx context.Context, userID int64, page int) (model.BookmarkListing, error)
	DeleteBookmark(ctx context.Context, userID int64, trackNumber string) error
	ArchiveCandidates(ctx context.Context, userID int64, page int) (model.CandidateListing, error)
	BookmarksWithoutStatus(ctx context.Context) ([]model.OwnedBookmark, error)
}

// ArchiveFacade covers selective and global archival.
type ArchiveFacade interface {
	ArchiveBookmarks(ctx context.Context, userID int64, requests []model.ArchiveRequest) (model.MigrationReport, error)
	ArchiveTrack(ctx context.Context, userID int64, trackNumber string) (*model.Archive, error)
	Archive(ctx context.Context, userID int64) ([]model.ArchivedBookmark, error)
	DeleteArchiveEntry(ctx context.Context, userID int64, trackNumber string) error
}

// InvoiceFacade covers invoice aggregation and payment.
type InvoiceFacade interface {
	AddInvoiceItems(ctx context.Context, userID int64, items []model.InvoiceCandidate) (model.InvoiceUpdate, error)
	ConfirmPayment(ctx context.Context, userID, invoiceID int64) (model.PaymentConfirmation, error)
	CurrentInvoice(ctx context.Context, userID int64) (*model.Invoice, error)
	Invoices(ctx context.Context, userID int64) ([]model.Invoice, error)
}

// ReferralFacade covers the referral program.
type ReferralFacade interface {
	Partners(ctx context.Context, search string) ([]model.Partner, error)
	Referrals(ctx context.Context, userID int64) ([]model.User, error)
	BonusPercentage(ctx context.Context, userID int64) (decimal.Decimal, bool, error)
	SetReferralPercentage(ctx context.Context, userID int64, percent *decimal.Decimal) error
	SetBonuses(ctx context.Context, userID int64, amount decimal.Decimal) error
	SetPersonalRate(ctx context.Context, userID int64, rate *decimal.Decimal) error
}

// TrackFacade covers the track store.
type TrackFacade interface {
	SaveTrack(ctx context.Context, input model.TrackInput) (*model.Track, bool, error)
	Tracks(ctx context.Context, filter model.TrackFilter) (model.TrackPage, error)
	Statuses(ctx context.Context) ([]model.Status, error)
	CreateStatus(ctx context.Context, text string) (*model.Status, error)
}

// SettingsFacade covers global settings.
type SettingsFacade interface {
	Settings(ctx context.Context) (model.Settings, error)
	UpdateSettings(ctx context.Context, patch model.SettingsPatch) (model.Settings, error)
	GlobalBonus(ctx context.Context) (decimal.Decimal, error)
	SetGlobalBonus(ctx context.Context, percentage decimal.Decimal) (decimal.Decimal, error)
}

// ParcelFacade aggregates the full set of operations used across handlers.
type ParcelFacade interface {
	AuthFacade
	BookmarkFacade
	ArchiveFacade
	InvoiceFacade
	ReferralFacade
	TrackFacade
	SettingsFacade
}
