package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/domain/model"
)

type userRepository struct {
	db querier
}

const userColumns = `id, phone, password_hash, name, surname, email, role, created_at, selected_filial,
       personal_id, personal_rate, referral_bonus_percentage, bonuses, referrer_id`

// scanUser reads userColumns followed by any extra destinations.
func scanUser(row pgx.Row, extra ...any) (*model.User, error) {
	var (
		u                  model.User
		role               string
		rate, pct, bonuses decimal.NullDecimal
	)
	dest := []any{&u.ID, &u.Phone, &u.PasswordHash, &u.Name, &u.Surname, &u.Email, &role, &u.CreatedAt,
		&u.SelectedFilial, &u.PersonalID, &rate, &pct, &bonuses, &u.ReferrerID}
	err := row.Scan(append(dest, extra...)...)
	if err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	u.PersonalRate = decimalPtr(rate)
	u.ReferralBonusPercentage = decimalPtr(pct)
	u.Bonuses = decimalPtr(bonuses)
	return &u, nil
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func (r *userRepository) Create(ctx context.Context, user model.User) (*model.User, error) {
	const query = `INSERT INTO users (phone, password_hash, name, surname, email, role, selected_filial, personal_id, referrer_id)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
                   RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, user.Phone, user.PasswordHash, user.Name, user.Surname, user.Email,
		string(user.Role), user.SelectedFilial, user.PersonalID, user.ReferrerID).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		switch {
		case hasCode(err, pgerrcode.UniqueViolation):
			return nil, domainErrors.ErrAlreadyExists
		case hasCode(err, pgerrcode.ForeignKeyViolation):
			return nil, domainErrors.ErrReferrerNotFound
		case hasCode(err, pgerrcode.CheckViolation):
			return nil, domainErrors.ErrSelfReferral
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) get(ctx context.Context, query string, arg any) (*model.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1 FOR UPDATE`, id)
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE phone=$1`, phone)
}

func (r *userRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *userRepository) AddBonuses(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error) {
	const query = `UPDATE users SET bonuses = COALESCE(bonuses, 0) + $2 WHERE id=$1 RETURNING bonuses`
	var balance decimal.Decimal
	if err := r.db.QueryRow(ctx, query, id, amount).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domainErrors.ErrUserNotFound
		}
		return decimal.Zero, err
	}
	return balance, nil
}

func (r *userRepository) update(ctx context.Context, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetBonuses(ctx context.Context, id int64, amount decimal.Decimal) error {
	return r.update(ctx, `UPDATE users SET bonuses=$2 WHERE id=$1`, id, amount)
}

func (r *userRepository) SetReferralPercentage(ctx context.Context, id int64, percent *decimal.Decimal) error {
	return r.update(ctx, `UPDATE users SET referral_bonus_percentage=$2 WHERE id=$1`, id, nullable(percent))
}

func (r *userRepository) SetPersonalRate(ctx context.Context, id int64, rate *decimal.Decimal) error {
	return r.update(ctx, `UPDATE users SET personal_rate=$2 WHERE id=$1`, id, nullable(rate))
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.update(ctx, `UPDATE users SET password_hash=$2 WHERE id=$1`, id, hash)
}

func nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func (r *userRepository) ListPartners(ctx context.Context, search string) ([]model.Partner, error) {
	const query = `SELECT u.id, u.phone, u.password_hash, u.name, u.surname, u.email, u.role, u.created_at,
                          u.selected_filial, u.personal_id, u.personal_rate, u.referral_bonus_percentage,
                          u.bonuses, u.referrer_id, COUNT(r.id)
                   FROM users u
                   JOIN users r ON r.referrer_id = u.id
                   WHERE $1 = '' OR u.name ILIKE $2 OR u.surname ILIKE $2 OR u.phone = $1
                   GROUP BY u.id
                   ORDER BY u.id`
	rows, err := r.db.Query(ctx, query, search, containsPattern(search))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Partner
	for rows.Next() {
		var count int
		u, err := scanUser(rows, &count)
		if err != nil {
			return nil, err
		}
		result = append(result, model.Partner{User: *u, ReferralsCount: count})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *userRepository) ListReferrals(ctx context.Context, referrerID int64) ([]model.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE referrer_id=$1 ORDER BY created_at`, referrerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *userRepository) List(ctx context.Context, filter model.UserListFilter) ([]model.UserActivity, int64, error) {
	var (
		where []string
		args  []any
	)
	if filter.Search != "" {
		args = append(args, filter.Search, containsPattern(filter.Search))
		where = append(where, fmt.Sprintf("(u.phone = $%d OR u.name ILIKE $%d OR u.surname ILIKE $%d)",
			len(args)-1, len(args), len(args)))
	}
	if filter.Role != "" {
		args = append(args, string(filter.Role))
		where = append(where, fmt.Sprintf("u.role = $%d", len(args)))
	}
	if filter.Filial != "" {
		args = append(args, filter.Filial)
		where = append(where, fmt.Sprintf("u.selected_filial = $%d", len(args)))
	}
	if filter.InvoiceStatus != "" {
		args = append(args, string(filter.InvoiceStatus))
		where = append(where, fmt.Sprintf("EXISTS (SELECT 1 FROM invoices i WHERE i.user_id = u.id AND i.status = $%d)", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users u`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "created_at DESC, id DESC"
	if filter.Oldest {
		order = "created_at ASC, id ASC"
	}
	if filter.ByActivity {
		order = "bookmark_count + archive_count DESC, " + order
	}
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(`SELECT %s, bookmark_count, archive_count
                          FROM (SELECT u.*,
                                       (SELECT COUNT(*) FROM bookmarks b WHERE b.user_id = u.id) AS bookmark_count,
                                       (SELECT COUNT(*) FROM archived_bookmarks a WHERE a.user_id = u.id) AS archive_count
                                FROM users u%s) s
                          ORDER BY %s
                          LIMIT $%d OFFSET $%d`,
		userColumns, clause, order, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []model.UserActivity
	for rows.Next() {
		var bookmarks, archived int
		u, err := scanUser(rows, &bookmarks, &archived)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, model.UserActivity{User: *u, BookmarkCount: bookmarks, ArchiveCount: archived})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

type bonusRepository struct {
	db querier
}

func (r *bonusRepository) RecordPayout(ctx context.Context, payout model.BonusPayout) (bool, error) {
	const query = `INSERT INTO bonus_payouts (idempotency_key, payer_id, payee_id, amount, percentage)
                   VALUES ($1, $2, $3, $4, $5)
                   ON CONFLICT (idempotency_key) DO NOTHING`
	tag, err := r.db.Exec(ctx, query, payout.Key, payout.PayerID, payout.PayeeID, payout.Amount, payout.Percentage)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
