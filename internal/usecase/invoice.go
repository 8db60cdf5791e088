package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/domain/model"
	"github.com/polkiloo/parceltrack/internal/domain/repository"
)

// InvoiceUseCase accumulates priced bookmarks into the pending invoice and
// confirms payments.
type InvoiceUseCase struct {
	tx       repository.Transactor
	invoices repository.InvoiceRepository
	bonus    *BonusEngine
	logger   *slog.Logger
	now      func() time.Time
}

// NewInvoiceUseCase constructs InvoiceUseCase.
func NewInvoiceUseCase(tx repository.Transactor, invoices repository.InvoiceRepository, bonus *BonusEngine, logger *slog.Logger) *InvoiceUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvoiceUseCase{tx: tx, invoices: invoices, bonus: bonus, logger: logger, now: time.Now}
}

// AddItems adds the qualifying candidates to the user's pending invoice,
// creating it when needed. Items that do not qualify are reported and
// skipped. An invoice left without items is discarded.
func (u *InvoiceUseCase) AddItems(ctx context.Context, userID int64, candidates []model.InvoiceCandidate) (model.InvoiceUpdate, error) {
	var update model.InvoiceUpdate
	err := u.tx.InTx(ctx, func(ctx context.Context, repos repository.Factory) error {
		update = model.InvoiceUpdate{Items: make([]model.InvoiceItemResult, 0, len(candidates))}

		if _, err := repos.Users().GetByIDForUpdate(ctx, userID); err != nil {
			return err
		}

		inv, err := repos.Invoices().GetPending(ctx, userID)
		if errors.Is(err, domainErrors.ErrNotFound) {
			inv, err = repos.Invoices().CreatePending(ctx, userID)
		}
		if err != nil {
			return err
		}

		paid, err := paidTrackNumbers(ctx, repos, userID)
		if err != nil {
			return err
		}

		for _, c := range candidates {
			number := strings.TrimSpace(c.TrackNumber)
			outcome, item := classify(*inv, paid, number, c)
			if outcome == model.InvoiceOutcomeAdded {
				if err := repos.Invoices().AddItem(ctx, inv.ID, item); err != nil {
					return err
				}
				inv.Add(item)
			} else {
				u.logger.Info("invoice item skipped",
					slog.Int64("user_id", userID),
					slog.String("track", number),
					slog.String("reason", string(outcome)))
			}
			update.Items = append(update.Items, model.InvoiceItemResult{TrackNumber: number, Outcome: outcome})
		}

		if inv.TotalItems == 0 {
			return repos.Invoices().Delete(ctx, inv.ID)
		}

		if err := repos.Invoices().Touch(ctx, inv.ID); err != nil {
			return err
		}
		inv.UpdatedAt = u.now()
		update.Invoice = inv
		return nil
	})
	if err != nil {
		return model.InvoiceUpdate{}, err
	}
	return update, nil
}

func classify(inv model.Invoice, paid map[string]bool, number string, c model.InvoiceCandidate) (model.InvoiceOutcome, model.InvoiceItem) {
	if number == "" || strings.TrimSpace(c.Price) == "" || strings.TrimSpace(c.Weight) == "" {
		return model.InvoiceOutcomeMissingPriceWeight, model.InvoiceItem{}
	}
	price, okPrice := parseAmount(c.Price)
	weight, okWeight := parseAmount(c.Weight)
	if !okPrice || !okWeight {
		return model.InvoiceOutcomeInvalidPriceWeight, model.InvoiceItem{}
	}
	if inv.Contains(number) {
		return model.InvoiceOutcomeAlreadyInInvoice, model.InvoiceItem{}
	}
	if paid[number] {
		return model.InvoiceOutcomeAlreadyPaid, model.InvoiceItem{}
	}
	return model.InvoiceOutcomeAdded, model.InvoiceItem{TrackNumber: number, Price: price, Weight: weight}
}

func paidTrackNumbers(ctx context.Context, repos repository.Factory, userID int64) (map[string]bool, error) {
	bookmarks, err := repos.Bookmarks().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	paid := make(map[string]bool)
	for _, bm := range bookmarks {
		if bm.IsPaid {
			paid[bm.TrackNumber] = true
		}
	}
	return paid, nil
}

// ConfirmPayment marks the invoice paid, flags its bookmarks as paid and
// credits the referral bonus on the invoice total.
func (u *InvoiceUseCase) ConfirmPayment(ctx context.Context, userID, invoiceID int64) (model.PaymentConfirmation, error) {
	var confirmation model.PaymentConfirmation
	err := u.tx.InTx(ctx, func(ctx context.Context, repos repository.Factory) error {
		payer, err := repos.Users().GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		inv, err := repos.Invoices().GetForUpdate(ctx, userID, invoiceID)
		if err != nil {
			return err
		}
		if inv.IsPaid() {
			return domainErrors.ErrInvoiceAlreadyPaid
		}

		if err := repos.Invoices().MarkPaid(ctx, inv.ID); err != nil {
			return err
		}
		inv.Status = model.InvoiceStatusPaid
		inv.UpdatedAt = u.now()

		tracks := inv.TrackNumbers()
		if err := repos.Bookmarks().MarkPaid(ctx, userID, tracks); err != nil {
			return err
		}

		key := "invoice:" + strconv.FormatInt(inv.ID, 10)
		bonus, err := u.bonus.Settle(ctx, repos, *payer, inv.TotalAmount, key)
		if err != nil {
			return err
		}

		err = publish(ctx, repos, model.TopicInvoicePaid, key, InvoicePaidEvent{
			InvoiceID:   inv.ID,
			UserID:      userID,
			TotalAmount: inv.TotalAmount,
			TotalWeight: inv.TotalWeight,
			Tracks:      tracks,
			PaidAt:      inv.UpdatedAt,
		})
		if err != nil {
			return err
		}

		confirmation = model.PaymentConfirmation{Invoice: *inv, Bonus: bonus}
		return nil
	})
	if err != nil {
		return model.PaymentConfirmation{}, err
	}
	return confirmation, nil
}

// CurrentInvoice returns the pending invoice or nil when there is none.
func (u *InvoiceUseCase) CurrentInvoice(ctx context.Context, userID int64) (*model.Invoice, error) {
	inv, err := u.invoices.GetPending(ctx, userID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil, nil
	}
	return inv, err
}

// Invoices lists all user invoices, newest first.
func (u *InvoiceUseCase) Invoices(ctx context.Context, userID int64) ([]model.Invoice, error) {
	return u.invoices.ListByUser(ctx, userID)
}
