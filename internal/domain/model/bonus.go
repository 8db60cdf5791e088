package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bonus is the outcome of a referral bonus computation. PayeeID is nil when
// the payer has no referrer, in which case nothing is credited.
type Bonus struct {
	Amount     decimal.Decimal
	Percentage decimal.Decimal
	PayeeID    *int64
	// Credited is false when the payout was already recorded under the same key.
	Credited bool
}

// HasPayee reports whether the bonus has a recipient.
func (b Bonus) HasPayee() bool {
	return b.PayeeID != nil
}

// BonusPayout is the ledger row guarding a single credit.
type BonusPayout struct {
	Key        string
	PayerID    int64
	PayeeID    int64
	Amount     decimal.Decimal
	Percentage decimal.Decimal
	CreatedAt  time.Time
}
