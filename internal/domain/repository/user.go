package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/parceltrack/internal/domain/model"
)

// UserRepository describes persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user model.User) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByIDForUpdate locks the user row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*model.User, error)
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	CountAll(ctx context.Context) (int64, error)
	// AddBonuses atomically increments the balance, treating NULL as zero,
	// and returns the new balance.
	AddBonuses(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error)
	SetBonuses(ctx context.Context, id int64, amount decimal.Decimal) error
	SetReferralPercentage(ctx context.Context, id int64, percent *decimal.Decimal) error
	SetPersonalRate(ctx context.Context, id int64, rate *decimal.Decimal) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	ListPartners(ctx context.Context, search string) ([]model.Partner, error)
	ListReferrals(ctx context.Context, referrerID int64) ([]model.User, error)
	// List returns one page of users with activity counts and the total
	// number of users matching filter.
	List(ctx context.Context, filter model.UserListFilter) ([]model.UserActivity, int64, error)
}
