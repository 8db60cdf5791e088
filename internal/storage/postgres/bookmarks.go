package postgres

import (
	"context"

	"github.com/jackc/pgerrcode"

	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/domain/model"
)

type bookmarkRepository struct {
	db querier
}

const bookmarkColumns = `id, user_id, created_at, description, track_number, track_id, current_status_id, is_paid`

func (r *bookmarkRepository) Create(ctx context.Context, bookmark model.Bookmark) (*model.Bookmark, error) {
	const query = `INSERT INTO bookmarks (user_id, description, track_number)
                   VALUES ($1, $2, $3)
                   RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, bookmark.UserID, bookmark.Description, bookmark.TrackNumber).
		Scan(&bookmark.ID, &bookmark.CreatedAt)
	if err != nil {
		switch {
		case hasCode(err, pgerrcode.UniqueViolation):
			return nil, domainErrors.ErrDuplicateBookmark
		case hasCode(err, pgerrcode.ForeignKeyViolation):
			return nil, domainErrors.ErrUserNotFound
		}
		return nil, err
	}
	return &bookmark, nil
}

func (r *bookmarkRepository) ListByUser(ctx context.Context, userID int64) ([]model.Bookmark, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookmarkColumns+` FROM bookmarks WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Bookmark
	for rows.Next() {
		var b model.Bookmark
		if err := rows.Scan(&b.ID, &b.UserID, &b.CreatedAt, &b.Description, &b.TrackNumber, &b.TrackID,
			&b.CurrentStatusID, &b.IsPaid); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (r *bookmarkRepository) Bind(ctx context.Context, bookmarkID, trackID int64, statusID *int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE bookmarks SET track_id = $2, current_status_id = $3 WHERE id = $1`,
		bookmarkID, trackID, statusID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrBookmarkNotFound
	}
	return nil
}

func (r *bookmarkRepository) Delete(ctx context.Context, userID int64, trackNumber string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookmarks WHERE user_id = $1 AND lower(track_number) = lower($2)`,
		userID, trackNumber)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrBookmarkNotFound
	}
	return nil
}

func (r *bookmarkRepository) RemoveExact(ctx context.Context, userID int64, trackNumber string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookmarks WHERE user_id = $1 AND track_number = $2`, userID, trackNumber)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *bookmarkRepository) MarkPaid(ctx context.Context, userID int64, trackNumbers []string) error {
	if len(trackNumbers) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `UPDATE bookmarks SET is_paid = TRUE WHERE user_id = $1 AND track_number = ANY($2)`,
		userID, trackNumbers)
	return err
}

func (r *bookmarkRepository) ListWithoutStatus(ctx context.Context) ([]model.OwnedBookmark, error) {
	const query = `SELECT b.id, b.user_id, b.created_at, b.description, b.track_number, b.track_id,
                          b.current_status_id, b.is_paid,
                          u.phone, u.name, u.surname, u.personal_id
                   FROM bookmarks b
                   JOIN users u ON u.id = b.user_id
                   WHERE b.current_status_id IS NULL
                   ORDER BY b.created_at DESC, b.id DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.OwnedBookmark
	for rows.Next() {
		var b model.OwnedBookmark
		if err := rows.Scan(&b.ID, &b.UserID, &b.CreatedAt, &b.Description, &b.TrackNumber, &b.TrackID,
			&b.CurrentStatusID, &b.IsPaid, &b.Owner.Phone, &b.Owner.Name, &b.Owner.Surname, &b.Owner.PersonalID); err != nil {
			return nil, err
		}
		b.Owner.ID = b.UserID
		result = append(result, b)
	}
	return result, rows.Err()
}
