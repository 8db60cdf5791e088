package repository

import "context"

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Tracks() TrackRepository
	Statuses() StatusRepository
	Bookmarks() BookmarkRepository
	Archives() ArchiveRepository
	Invoices() InvoiceRepository
	Settings() SettingsRepository
	Bonuses() BonusRepository
	Outbox() OutboxRepository
}

// Transactor runs fn against repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, repos Factory) error) error
}
