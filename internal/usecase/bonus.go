package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/domain/model"
	"github.com/polkiloo/parceltrack/internal/domain/repository"
)

var hundred = decimal.NewFromInt(100)

// ComputeBonus derives the referral bonus for total. The referrer's own
// percentage wins over the global one; amounts are rounded to one decimal
// place, half away from zero. A nil referrer yields a zero bonus without payee.
func ComputeBonus(total decimal.Decimal, referrer *model.User, settings model.Settings) model.Bonus {
	pct := settings.GlobalReferralBonusPercentage
	if referrer != nil && referrer.ReferralBonusPercentage != nil {
		pct = *referrer.ReferralBonusPercentage
	}

	if referrer == nil {
		return model.Bonus{Amount: decimal.Zero, Percentage: pct}
	}
	id := referrer.ID
	return model.Bonus{
		Amount:     total.Mul(pct).Div(hundred).Round(1),
		Percentage: pct,
		PayeeID:    &id,
	}
}

// BonusEngine credits referral bonuses exactly once per idempotency key.
type BonusEngine struct {
	settings *SettingsProvider
	logger   *slog.Logger
	now      func() time.Time
}

// NewBonusEngine constructs BonusEngine.
func NewBonusEngine(settings *SettingsProvider, logger *slog.Logger) *BonusEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &BonusEngine{settings: settings, logger: logger, now: time.Now}
}

// Settle computes the bonus payer's referrer earns on total and credits it
// within repos' transaction. A repeated key credits nothing.
func (e *BonusEngine) Settle(ctx context.Context, repos repository.Factory, payer model.User, total decimal.Decimal, key string) (model.Bonus, error) {
	settings, err := e.settings.Get(ctx)
	if err != nil {
		return model.Bonus{}, err
	}

	referrer, err := e.referrerOf(ctx, repos, payer)
	if err != nil {
		return model.Bonus{}, err
	}

	bonus := ComputeBonus(total, referrer, settings)
	if !bonus.HasPayee() || !bonus.Amount.IsPositive() {
		return bonus, nil
	}

	recorded, err := repos.Bonuses().RecordPayout(ctx, model.BonusPayout{
		Key:        key,
		PayerID:    payer.ID,
		PayeeID:    *bonus.PayeeID,
		Amount:     bonus.Amount,
		Percentage: bonus.Percentage,
		CreatedAt:  e.now(),
	})
	if err != nil {
		return model.Bonus{}, err
	}
	if !recorded {
		e.logger.Info("bonus already credited", slog.String("key", key))
		return bonus, nil
	}

	balance, err := repos.Users().AddBonuses(ctx, *bonus.PayeeID, bonus.Amount)
	if err != nil {
		return model.Bonus{}, err
	}
	bonus.Credited = true

	err = publish(ctx, repos, model.TopicBonusCredited, key, BonusCreditedEvent{
		Key:        key,
		PayerID:    payer.ID,
		PayeeID:    *bonus.PayeeID,
		Amount:     bonus.Amount,
		Percentage: bonus.Percentage,
		Balance:    balance,
	})
	if err != nil {
		return model.Bonus{}, err
	}
	return bonus, nil
}

func (e *BonusEngine) referrerOf(ctx context.Context, repos repository.Factory, payer model.User) (*model.User, error) {
	if payer.ReferrerID == nil {
		return nil, nil
	}
	referrer, err := repos.Users().GetByID(ctx, *payer.ReferrerID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			e.logger.Warn("referrer missing", slog.Int64("user_id", payer.ID), slog.Int64("referrer_id", *payer.ReferrerID))
			return nil, nil
		}
		return nil, err
	}
	return referrer, nil
}
