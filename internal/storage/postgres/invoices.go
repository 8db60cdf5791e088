package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/domain/model"
)

type invoiceRepository struct {
	db querier
}

const invoiceColumns = `id, user_id, status, total_amount, total_weight, total_items, created_at, updated_at`

func scanInvoice(row pgx.Row) (*model.Invoice, error) {
	var (
		inv    model.Invoice
		status string
	)
	if err := row.Scan(&inv.ID, &inv.UserID, &status, &inv.TotalAmount, &inv.TotalWeight, &inv.TotalItems,
		&inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return nil, err
	}
	inv.Status = model.InvoiceStatus(status)
	return &inv, nil
}

func (r *invoiceRepository) loadItems(ctx context.Context, invoices ...*model.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(invoices))
	byID := make(map[int64]*model.Invoice, len(invoices))
	for _, inv := range invoices {
		ids = append(ids, inv.ID)
		byID[inv.ID] = inv
	}

	rows, err := r.db.Query(ctx, `SELECT invoice_id, track_number, price, weight FROM invoice_items WHERE invoice_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			invoiceID int64
			item      model.InvoiceItem
		)
		if err := rows.Scan(&invoiceID, &item.TrackNumber, &item.Price, &item.Weight); err != nil {
			return err
		}
		if inv, ok := byID[invoiceID]; ok {
			inv.Items = append(inv.Items, item)
		}
	}
	return rows.Err()
}

func (r *invoiceRepository) getOne(ctx context.Context, query string, args ...any) (*model.Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrInvoiceNotFound
		}
		return nil, err
	}
	if err := r.loadItems(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepository) GetPending(ctx context.Context, userID int64) (*model.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE user_id = $1 AND status = 'pending' FOR UPDATE`, userID)
}

func (r *invoiceRepository) GetForUpdate(ctx context.Context, userID, invoiceID int64) (*model.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 AND user_id = $2 FOR UPDATE`, invoiceID, userID)
}

func (r *invoiceRepository) ListByUser(ctx context.Context, userID int64) ([]model.Invoice, error) {
	rows, err := r.db.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*model.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.loadItems(ctx, invoices...); err != nil {
		return nil, err
	}
	result := make([]model.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, *inv)
	}
	return result, nil
}

func (r *invoiceRepository) CreatePending(ctx context.Context, userID int64) (*model.Invoice, error) {
	const query = `INSERT INTO invoices (user_id, status) VALUES ($1, 'pending') RETURNING ` + invoiceColumns
	inv, err := scanInvoice(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if hasCode(err, pgerrcode.UniqueViolation) {
			return nil, domainErrors.ErrConflict
		}
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepository) AddItem(ctx context.Context, invoiceID int64, item model.InvoiceItem) error {
	const query = `WITH item AS (
                       INSERT INTO invoice_items (invoice_id, track_number, price, weight)
                       VALUES ($1, $2, $3, $4)
                       RETURNING invoice_id, price, weight
                   )
                   UPDATE invoices i
                   SET total_amount = i.total_amount + item.price,
                       total_weight = i.total_weight + item.weight,
                       total_items = i.total_items + 1,
                       updated_at = NOW()
                   FROM item WHERE i.id = item.invoice_id`
	_, err := r.db.Exec(ctx, query, invoiceID, item.TrackNumber, item.Price, item.Weight)
	if err != nil {
		switch {
		case hasCode(err, pgerrcode.UniqueViolation):
			return domainErrors.ErrAlreadyExists
		case hasCode(err, pgerrcode.ForeignKeyViolation):
			return domainErrors.ErrInvoiceNotFound
		}
		return err
	}
	return nil
}

func (r *invoiceRepository) exec(ctx context.Context, query string, id int64, missing error) error {
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return missing
	}
	return nil
}

func (r *invoiceRepository) Touch(ctx context.Context, invoiceID int64) error {
	return r.exec(ctx, `UPDATE invoices SET updated_at = NOW() WHERE id = $1`, invoiceID, domainErrors.ErrInvoiceNotFound)
}

func (r *invoiceRepository) Delete(ctx context.Context, invoiceID int64) error {
	return r.exec(ctx, `DELETE FROM invoices WHERE id = $1`, invoiceID, domainErrors.ErrInvoiceNotFound)
}

func (r *invoiceRepository) MarkPaid(ctx context.Context, invoiceID int64) error {
	return r.exec(ctx, `UPDATE invoices SET status = 'paid', updated_at = NOW() WHERE id = $1 AND status = 'pending'`,
		invoiceID, domainErrors.ErrInvoiceAlreadyPaid)
}
