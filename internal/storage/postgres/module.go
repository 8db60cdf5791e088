package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/parceltrack/internal/config"
	"github.com/polkiloo/parceltrack/internal/domain/repository"
)

// Module wires PostgreSQL storage and repository adapters.
var Module = fx.Options(
	fx.Provide(newStorage),
	fx.Provide(
		func(s *Storage) repository.Transactor { return s },
		func(s *Storage) repository.Factory { return s },
		func(s *Storage) repository.UserRepository { return s.Users() },
		func(s *Storage) repository.TrackRepository { return s.Tracks() },
		func(s *Storage) repository.StatusRepository { return s.Statuses() },
		func(s *Storage) repository.BookmarkRepository { return s.Bookmarks() },
		func(s *Storage) repository.ArchiveRepository { return s.Archives() },
		func(s *Storage) repository.InvoiceRepository { return s.Invoices() },
		func(s *Storage) repository.SettingsRepository { return s.Settings() },
		func(s *Storage) repository.OutboxRepository { return s.Outbox() },
	),
	fx.Invoke(registerLifecycle),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (*Storage, error) {
	return New(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, storage *Storage) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := storage.HealthCheck(ctx); err != nil {
				return fmt.Errorf("database unavailable: %w", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			storage.Close()
			return nil
		},
	})
}
