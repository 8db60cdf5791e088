package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultGlobalReferralBonusPercentage applies until staff change it.
var DefaultGlobalReferralBonusPercentage = decimal.NewFromInt(4)

// Settings is the global configuration singleton.
type Settings struct {
	GlobalReferralBonusPercentage decimal.Decimal
	Price                         string
	Currency                      string
	VideoLink                     string
	ChinaAddress                  string
	WhatsappNumber                string
	AboutUsText                   string
	ProhibitedItemsText           string
	ContractFilePath              string
	UpdatedAt                     time.Time
}

// DefaultSettings returns the settings used before any are stored.
func DefaultSettings() Settings {
	return Settings{GlobalReferralBonusPercentage: DefaultGlobalReferralBonusPercentage}
}

// SettingsPatch updates only the non-nil fields.
type SettingsPatch struct {
	GlobalReferralBonusPercentage *decimal.Decimal
	Price                         *string
	Currency                      *string
	VideoLink                     *string
	ChinaAddress                  *string
	WhatsappNumber                *string
	AboutUsText                   *string
	ProhibitedItemsText           *string
	ContractFilePath              *string
}

// Apply returns a copy of s with the patch applied.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.GlobalReferralBonusPercentage != nil {
		s.GlobalReferralBonusPercentage = *p.GlobalReferralBonusPercentage
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&s.Price, p.Price)
	set(&s.Currency, p.Currency)
	set(&s.VideoLink, p.VideoLink)
	set(&s.ChinaAddress, p.ChinaAddress)
	set(&s.WhatsappNumber, p.WhatsappNumber)
	set(&s.AboutUsText, p.AboutUsText)
	set(&s.ProhibitedItemsText, p.ProhibitedItemsText)
	set(&s.ContractFilePath, p.ContractFilePath)
	return s
}
