package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/parceltrack/internal/domain/model"
)

// SettingsResponse describes the global settings.
type SettingsResponse struct {
	GlobalReferralBonusPercentage decimal.Decimal `json:"globalReferralBonusPercentage"`
	Price                         string          `json:"price"`
	Currency                      string          `json:"currency"`
	VideoLink                     string          `json:"videoLink"`
	ChinaAddress                  string          `json:"chinaAddress"`
	WhatsappNumber                string          `json:"whatsappNumber"`
	AboutUsText                   string          `json:"aboutUsText"`
	ProhibitedItemsText           string          `json:"prohibitedItemsText"`
	ContractFilePath              string          `json:"contractFilePath"`
	UpdatedAt                     time.Time       `json:"updatedAt"`
}

// SettingsPatchRequest updates only the fields present.
type SettingsPatchRequest struct {
	GlobalReferralBonusPercentage *decimal.Decimal `json:"globalReferralBonusPercentage"`
	Price                         *string          `json:"price"`
	Currency                      *string          `json:"currency"`
	VideoLink                     *string          `json:"videoLink" binding:"omitempty,url"`
	ChinaAddress                  *string          `json:"chinaAddress"`
	WhatsappNumber                *string          `json:"whatsappNumber"`
	AboutUsText                   *string          `json:"aboutUsText"`
	ProhibitedItemsText           *string          `json:"prohibitedItemsText"`
	ContractFilePath              *string          `json:"contractFilePath"`
}

// GlobalBonusRequest sets the global referral percentage.
type GlobalBonusRequest struct {
	Percentage *decimal.Decimal `json:"globalReferralBonusPercentage" binding:"required"`
}

// GlobalBonusResponse carries the global referral percentage.
type GlobalBonusResponse struct {
	Percentage decimal.Decimal `json:"globalReferralBonusPercentage"`
}

// NewSettingsResponse converts settings.
func NewSettingsResponse(s model.Settings) SettingsResponse {
	return SettingsResponse(s)
}

// ToPatch converts the request into a settings patch.
func (r SettingsPatchRequest) ToPatch() model.SettingsPatch {
	return model.SettingsPatch(r)
}
