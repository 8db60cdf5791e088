package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/domain/model"
)

type settingsRepository struct {
	db querier
}

func (r *settingsRepository) Get(ctx context.Context) (*model.Settings, error) {
	const query = `SELECT global_referral_bonus_percentage, price, currency, video_link, china_address,
                          whatsapp_number, about_us_text, prohibited_items_text, contract_file_path, updated_at
                   FROM settings WHERE id = 1`
	var s model.Settings
	err := r.db.QueryRow(ctx, query).Scan(&s.GlobalReferralBonusPercentage, &s.Price, &s.Currency, &s.VideoLink,
		&s.ChinaAddress, &s.WhatsappNumber, &s.AboutUsText, &s.ProhibitedItemsText, &s.ContractFilePath, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepository) Save(ctx context.Context, s model.Settings) error {
	const query = `INSERT INTO settings (id, global_referral_bonus_percentage, price, currency, video_link, china_address,
                                        whatsapp_number, about_us_text, prohibited_items_text, contract_file_path, updated_at)
                   VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
                   ON CONFLICT (id) DO UPDATE SET
                       global_referral_bonus_percentage = EXCLUDED.global_referral_bonus_percentage,
                       price = EXCLUDED.price,
                       currency = EXCLUDED.currency,
                       video_link = EXCLUDED.video_link,
                       china_address = EXCLUDED.china_address,
                       whatsapp_number = EXCLUDED.whatsapp_number,
                       about_us_text = EXCLUDED.about_us_text,
                       prohibited_items_text = EXCLUDED.prohibited_items_text,
                       contract_file_path = EXCLUDED.contract_file_path,
                       updated_at = NOW()`
	_, err := r.db.Exec(ctx, query, s.GlobalReferralBonusPercentage, s.Price, s.Currency, s.VideoLink, s.ChinaAddress,
		s.WhatsappNumber, s.AboutUsText, s.ProhibitedItemsText, s.ContractFilePath)
	return err
}
