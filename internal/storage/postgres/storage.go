package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polkiloo/parceltrack/internal/domain/repository"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxPool interface {
	querier
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

var migrate = runMigrations

var retryDelays = []time.Duration{50 * time.Millisecond, 200 * time.Millisecond, 500 * time.Millisecond}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

// repositories binds every repository to one querier: the pool or a transaction.
type repositories struct {
	db querier
}

// New creates storage and applies pending migrations.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := migrate(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Storage) repos() repositories {
	return repositories{db: s.pool}
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository         { return s.repos().Users() }
func (s *Storage) Tracks() repository.TrackRepository       { return s.repos().Tracks() }
func (s *Storage) Statuses() repository.StatusRepository    { return s.repos().Statuses() }
func (s *Storage) Bookmarks() repository.BookmarkRepository { return s.repos().Bookmarks() }
func (s *Storage) Archives() repository.ArchiveRepository   { return s.repos().Archives() }
func (s *Storage) Invoices() repository.InvoiceRepository   { return s.repos().Invoices() }
func (s *Storage) Settings() repository.SettingsRepository  { return s.repos().Settings() }
func (s *Storage) Bonuses() repository.BonusRepository      { return s.repos().Bonuses() }
func (s *Storage) Outbox() repository.OutboxRepository      { return s.repos().Outbox() }

func (r repositories) Users() repository.UserRepository         { return &userRepository{db: r.db} }
func (r repositories) Tracks() repository.TrackRepository       { return &trackRepository{db: r.db} }
func (r repositories) Statuses() repository.StatusRepository    { return &statusRepository{db: r.db} }
func (r repositories) Bookmarks() repository.BookmarkRepository { return &bookmarkRepository{db: r.db} }
func (r repositories) Archives() repository.ArchiveRepository   { return &archiveRepository{db: r.db} }
func (r repositories) Invoices() repository.InvoiceRepository   { return &invoiceRepository{db: r.db} }
func (r repositories) Settings() repository.SettingsRepository  { return &settingsRepository{db: r.db} }
func (r repositories) Bonuses() repository.BonusRepository      { return &bonusRepository{db: r.db} }
func (r repositories) Outbox() repository.OutboxRepository      { return &outboxRepository{db: r.db} }

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// InTx runs fn against transaction-bound repositories, retrying the whole
// transaction on serialization failures and deadlocks.
func (s *Storage) InTx(ctx context.Context, fn func(ctx context.Context, repos repository.Factory) error) error {
	return s.withRetry(ctx, func() error {
		return s.WithinTransaction(ctx, func(tx pgx.Tx) error {
			return fn(ctx, repositories{db: tx})
		})
	})
}

func (s *Storage) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !isRetryable(err) || attempt >= len(retryDelays) {
			return err
		}
		s.logger.Warn("retrying transaction",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelays[attempt]):
		}
	}
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
