package usecase

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/domain/model"
	"github.com/polkiloo/parceltrack/internal/domain/repository"
)

// ReferralUseCase administers partners, their referrals and bonus balances.
type ReferralUseCase struct {
	users    repository.UserRepository
	settings *SettingsProvider
}

// NewReferralUseCase constructs ReferralUseCase.
func NewReferralUseCase(users repository.UserRepository, settings *SettingsProvider) *ReferralUseCase {
	return &ReferralUseCase{users: users, settings: settings}
}

// Partners lists users with at least one referral.
func (u *ReferralUseCase) Partners(ctx context.Context, search string) ([]model.Partner, error) {
	return u.users.ListPartners(ctx, strings.TrimSpace(search))
}

// Referrals lists users referred by userID.
func (u *ReferralUseCase) Referrals(ctx context.Context, userID int64) ([]model.User, error) {
	if _, err := u.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	referrals, err := u.users.ListReferrals(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(referrals) == 0 {
		return nil, domainErrors.ErrReferralsNotFound
	}
	return referrals, nil
}

// BonusPercentage returns the percentage userID earns as a referrer and
// whether it is a personal override.
func (u *ReferralUseCase) BonusPercentage(ctx context.Context, userID int64) (decimal.Decimal, bool, error) {
	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return decimal.Zero, false, err
	}
	if usr.ReferralBonusPercentage != nil {
		return *usr.ReferralBonusPercentage, true, nil
	}
	global, err := u.settings.GlobalBonus(ctx)
	if err != nil {
		return decimal.Zero, false, err
	}
	return global, false, nil
}

// SetReferralPercentage sets or, with nil, clears the personal override.
func (u *ReferralUseCase) SetReferralPercentage(ctx context.Context, userID int64, percent *decimal.Decimal) error {
	if percent != nil && percent.IsNegative() {
		return domainErrors.ErrInvalidPercentage
	}
	return u.users.SetReferralPercentage(ctx, userID, percent)
}

// SetBonuses overwrites the user's bonus balance.
func (u *ReferralUseCase) SetBonuses(ctx context.Context, userID int64, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return domainErrors.ErrInvalidAmount
	}
	return u.users.SetBonuses(ctx, userID, amount)
}

// SetPersonalRate sets or, with nil, clears the per-kilogram rate.
func (u *ReferralUseCase) SetPersonalRate(ctx context.Context, userID int64, rate *decimal.Decimal) error {
	if rate != nil && rate.IsNegative() {
		return domainErrors.ErrInvalidRate
	}
	return u.users.SetPersonalRate(ctx, userID, rate)
}
