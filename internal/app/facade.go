package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"

	"github.com/polkiloo/parceltrack/internal/domain/model"
	pkgAuth "github.com/polkiloo/parceltrack/internal/pkg/auth"
	"github.com/polkiloo/parceltrack/internal/usecase"
)

// FacadeParams groups the use cases behind ParcelFacade.
type FacadeParams struct {
	fx.In

	Auth      *usecase.AuthUseCase
	Bookmarks *usecase.BookmarkUseCase
	Archive   *usecase.ArchiveUseCase
	Invoices  *usecase.InvoiceUseCase
	Referrals *usecase.ReferralUseCase
	Tracks    *usecase.TrackUseCase
	Settings  *usecase.SettingsProvider
	Outbox    *usecase.OutboxUseCase
}

// ParcelFacade is the single entry point used by HTTP handlers and workers.
type ParcelFacade struct {
	auth      *usecase.AuthUseCase
	bookmarks *usecase.BookmarkUseCase
	archive   *usecase.ArchiveUseCase
	invoices  *usecase.InvoiceUseCase
	referrals *usecase.ReferralUseCase
	tracks    *usecase.TrackUseCase
	settings  *usecase.SettingsProvider
	outbox    *usecase.OutboxUseCase
}

func NewParcelFacade(p FacadeParams) *ParcelFacade {
	return &ParcelFacade{
		auth:      p.Auth,
		bookmarks: p.Bookmarks,
		archive:   p.Archive,
		invoices:  p.Invoices,
		referrals: p.Referrals,
		tracks:    p.Tracks,
		settings:  p.Settings,
		outbox:    p.Outbox,
	}
}

func (f *ParcelFacade) Register(ctx context.Context, reg model.Registration) (string, error) {
	_, token, err := f.auth.Register(ctx, reg)
	return token, err
}

func (f *ParcelFacade) Authenticate(ctx context.Context, phone, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, phone, password)
	return token, err
}

func (f *ParcelFacade) ParseToken(token string) (pkgAuth.Claims, error) {
	return f.auth.ParseToken(token)
}

func (f *ParcelFacade) Profile(ctx context.Context, userID int64) (*model.User, error) {
	return f.auth.GetByID(ctx, userID)
}

func (f *ParcelFacade) RefreshToken(ctx context.Context, userID int64) (*model.User, string, error) {
	return f.auth.RefreshToken(ctx, userID)
}

func (f *ParcelFacade) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	return f.auth.ChangePassword(ctx, userID, current, next)
}

func (f *ParcelFacade) Users(ctx context.Context, filter model.UserListFilter) (model.UserPage, error) {
	return f.auth.ListUsers(ctx, filter)
}

func (f *ParcelFacade) AddBookmark(ctx context.Context, userID int64, trackNumber, description string) (*model.Bookmark, error) {
	return f.bookmarks.AddBookmark(ctx, userID, trackNumber, description)
}

func (f *ParcelFacade) Bookmarks(ctx context.Context, userID int64, page int) (model.BookmarkListing, error) {
	return f.bookmarks.ListBookmarks(ctx, userID, page)
}

func (f *ParcelFacade) DeleteBookmark(ctx context.Context, userID int64, trackNumber string) error {
	return f.bookmarks.DeleteBookmark(ctx, userID, trackNumber)
}

func (f *ParcelFacade) ArchiveCandidates(ctx context.Context, userID int64, page int) (model.CandidateListing, error) {
	return f.bookmarks.ArchiveCandidates(ctx, userID, page)
}

func (f *ParcelFacade) BookmarksWithoutStatus(ctx context.Context) ([]model.OwnedBookmark, error) {
	return f.bookmarks.BookmarksWithoutStatus(ctx)
}

func (f *ParcelFacade) ArchiveBookmarks(ctx context.Context, userID int64, requests []model.ArchiveRequest) (model.MigrationReport, error) {
	return f.archive.ArchiveBookmarks(ctx, userID, requests)
}

func (f *ParcelFacade) ArchiveTrack(ctx context.Context, userID int64, trackNumber string) (*model.Archive, error) {
	return f.archive.ArchiveTrack(ctx, userID, trackNumber)
}

func (f *ParcelFacade) Archive(ctx context.Context, userID int64) ([]model.ArchivedBookmark, error) {
	return f.archive.ListArchive(ctx, userID)
}

func (f *ParcelFacade) DeleteArchiveEntry(ctx context.Context, userID int64, trackNumber string) error {
	return f.archive.DeleteArchiveEntry(ctx, userID, trackNumber)
}

func (f *ParcelFacade) AddInvoiceItems(ctx context.Context, userID int64, items []model.InvoiceCandidate) (model.InvoiceUpdate, error) {
	return f.invoices.AddItems(ctx, userID, items)
}

func (f *ParcelFacade) ConfirmPayment(ctx context.Context, userID, invoiceID int64) (model.PaymentConfirmation, error) {
	return f.invoices.ConfirmPayment(ctx, userID, invoiceID)
}

func (f *ParcelFacade) CurrentInvoice(ctx context.Context, userID int64) (*model.Invoice, error) {
	return f.invoices.CurrentInvoice(ctx, userID)
}

func (f *ParcelFacade) Invoices(ctx context.Context, userID int64) ([]model.Invoice, error) {
	return f.invoices.Invoices(ctx, userID)
}

func (f *ParcelFacade) Partners(ctx context.Context, search string) ([]model.Partner, error) {
	return f.referrals.Partners(ctx, search)
}

func (f *ParcelFacade) Referrals(ctx context.Context, userID int64) ([]model.User, error) {
	return f.referrals.Referrals(ctx, userID)
}

func (f *ParcelFacade) BonusPercentage(ctx context.Context, userID int64) (decimal.Decimal, bool, error) {
	return f.referrals.BonusPercentage(ctx, userID)
}

func (f *ParcelFacade) SetReferralPercentage(ctx context.Context, userID int64, percent *decimal.Decimal) error {
	return f.referrals.SetReferralPercentage(ctx, userID, percent)
}

func (f *ParcelFacade) SetBonuses(ctx context.Context, userID int64, amount decimal.Decimal) error {
	return f.referrals.SetBonuses(ctx, userID, amount)
}

func (f *ParcelFacade) SetPersonalRate(ctx context.Context, userID int64, rate *decimal.Decimal) error {
	return f.referrals.SetPersonalRate(ctx, userID, rate)
}

func (f *ParcelFacade) SaveTrack(ctx context.Context, input model.TrackInput) (*model.Track, bool, error) {
	return f.tracks.SaveTrack(ctx, input)
}

func (f *ParcelFacade) Tracks(ctx context.Context, filter model.TrackFilter) (model.TrackPage, error) {
	return f.tracks.ListTracks(ctx, filter)
}

func (f *ParcelFacade) Statuses(ctx context.Context) ([]model.Status, error) {
	return f.tracks.ListStatuses(ctx)
}

func (f *ParcelFacade) CreateStatus(ctx context.Context, text string) (*model.Status, error) {
	return f.tracks.CreateStatus(ctx, text)
}

func (f *ParcelFacade) Settings(ctx context.Context) (model.Settings, error) {
	return f.settings.Get(ctx)
}

func (f *ParcelFacade) UpdateSettings(ctx context.Context, patch model.SettingsPatch) (model.Settings, error) {
	return f.settings.Update(ctx, patch)
}

func (f *ParcelFacade) GlobalBonus(ctx context.Context) (decimal.Decimal, error) {
	return f.settings.GlobalBonus(ctx)
}

func (f *ParcelFacade) SetGlobalBonus(ctx context.Context, percentage decimal.Decimal) (decimal.Decimal, error) {
	return f.settings.SetGlobalBonus(ctx, percentage)
}

func (f *ParcelFacade) SweepCandidates(ctx context.Context, limit int) ([]model.SweepCandidate, error) {
	return f.archive.SweepCandidates(ctx, limit)
}

func (f *ParcelFacade) ArchiveConflicts(ctx context.Context, limit int) ([]string, error) {
	return f.archive.ArchiveConflicts(ctx, limit)
}

func (f *ParcelFacade) PendingEvents(ctx context.Context, limit int) ([]model.Event, error) {
	return f.outbox.PendingEvents(ctx, limit)
}

func (f *ParcelFacade) EventDelivered(ctx context.Context, id uuid.UUID) error {
	return f.outbox.EventDelivered(ctx, id)
}

func (f *ParcelFacade) EventFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return f.outbox.EventFailed(ctx, id, reason)
}
