package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/parceltrack/internal/domain/model"
)

// PartnerResponse is a user with at least one referral.
type PartnerResponse struct {
	ID                      int64            `json:"id"`
	Phone                   string           `json:"phone"`
	Name                    string           `json:"name"`
	Surname                 string           `json:"surname"`
	PersonalID              int64            `json:"personalId"`
	ReferralsCount          int              `json:"referralsCount"`
	ReferralBonusPercentage *decimal.Decimal `json:"referralBonusPercentage,omitempty"`
	Bonuses                 decimal.Decimal  `json:"bonuses"`
}

// ReferralResponse is a referred user.
type ReferralResponse struct {
	ID        int64     `json:"id"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	CreatedAt time.Time `json:"createdAt"`
}

// PercentRequest sets or clears (null) a referrer's bonus percentage.
type PercentRequest struct {
	Percent *decimal.Decimal `json:"percent"`
}

// BonusesRequest overwrites a user's bonus balance.
type BonusesRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

// RateRequest sets or clears (null) a user's personal rate.
type RateRequest struct {
	Rate *decimal.Decimal `json:"rate"`
}

// BonusPercentageResponse is the effective referral percentage.
type BonusPercentageResponse struct {
	Percentage decimal.Decimal `json:"percentage"`
	Personal   bool            `json:"personal"`
}

// NewPartnerResponse converts a partner.
func NewPartnerResponse(p model.Partner) PartnerResponse {
	return PartnerResponse{
		ID:                      p.ID,
		Phone:                   p.Phone,
		Name:                    p.Name,
		Surname:                 p.Surname,
		PersonalID:              p.PersonalID,
		ReferralsCount:          p.ReferralsCount,
		ReferralBonusPercentage: p.ReferralBonusPercentage,
		Bonuses:                 p.BonusBalance(),
	}
}

// NewReferralResponse converts a referred user.
func NewReferralResponse(u model.User) ReferralResponse {
	return ReferralResponse{ID: u.ID, Phone: u.Phone, Name: u.Name, Surname: u.Surname, CreatedAt: u.CreatedAt}
}

// NewProfileResponse converts a user profile.
func NewProfileResponse(u model.User) ProfileResponse {
	return ProfileResponse{
		ID:                      u.ID,
		Phone:                   u.Phone,
		Name:                    u.Name,
		Surname:                 u.Surname,
		Email:                   u.Email,
		Role:                    string(u.Role),
		SelectedFilial:          u.SelectedFilial,
		PersonalID:              u.PersonalID,
		PersonalRate:            u.PersonalRate,
		ReferralBonusPercentage: u.ReferralBonusPercentage,
		Bonuses:                 u.BonusBalance(),
		ReferrerID:              u.ReferrerID,
		CreatedAt:               u.CreatedAt,
	}
}
