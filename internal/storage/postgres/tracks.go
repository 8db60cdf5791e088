package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/domain/model"
)

type trackRepository struct {
	db querier
}

const trackColumns = `id, track_number, current_status_id, price, weight, place, user_phone, created_at, updated_at`

func scanTrack(row pgx.Row) (*model.Track, error) {
	var t model.Track
	if err := row.Scan(&t.ID, &t.Number, &t.CurrentStatusID, &t.Price, &t.Weight, &t.Place, &t.UserPhone,
		&t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *trackRepository) loadHistory(ctx context.Context, tracks ...*model.Track) error {
	if len(tracks) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(tracks))
	byID := make(map[int64]*model.Track, len(tracks))
	for _, t := range tracks {
		ids = append(ids, t.ID)
		byID[t.ID] = t
	}

	const query = `SELECT h.track_id, h.status_id, s.status_text, h.date
                   FROM track_history h
                   JOIN statuses s ON s.id = h.status_id
                   WHERE h.track_id = ANY($1)
                   ORDER BY h.date, h.id`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			trackID int64
			entry   model.HistoryEntry
		)
		if err := rows.Scan(&trackID, &entry.StatusID, &entry.StatusText, &entry.Date); err != nil {
			return err
		}
		if t, ok := byID[trackID]; ok {
			t.History = append(t.History, entry)
		}
	}
	return rows.Err()
}

func (r *trackRepository) findOne(ctx context.Context, query string, arg any) (*model.Track, error) {
	t, err := scanTrack(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrTrackNotFound
		}
		return nil, err
	}
	if err := r.loadHistory(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *trackRepository) FindByPattern(ctx context.Context, pattern string) (*model.Track, error) {
	return r.findOne(ctx, `SELECT `+trackColumns+` FROM tracks WHERE track_number ~* $1 ORDER BY id LIMIT 1`, pattern)
}

func (r *trackRepository) FindExact(ctx context.Context, number string) (*model.Track, error) {
	return r.findOne(ctx, `SELECT `+trackColumns+` FROM tracks WHERE track_number = $1 ORDER BY id LIMIT 1`, number)
}

func (r *trackRepository) LockExact(ctx context.Context, number string) (*model.Track, error) {
	return r.findOne(ctx, `SELECT `+trackColumns+` FROM tracks WHERE track_number = $1 ORDER BY id LIMIT 1 FOR UPDATE`, number)
}

func (r *trackRepository) GetByID(ctx context.Context, id int64) (*model.Track, error) {
	return r.findOne(ctx, `SELECT `+trackColumns+` FROM tracks WHERE id = $1`, id)
}

func (r *trackRepository) Create(ctx context.Context, input model.TrackInput) (*model.Track, error) {
	const query = `INSERT INTO tracks (track_number, price, weight, place)
                   VALUES ($1, $2, $3, $4)
                   RETURNING ` + trackColumns
	t, err := scanTrack(r.db.QueryRow(ctx, query, input.Number, input.Price, input.Weight, input.Place))
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *trackRepository) Update(ctx context.Context, id int64, input model.TrackInput) error {
	const query = `UPDATE tracks
                   SET price = COALESCE($2, price),
                       weight = COALESCE($3, weight),
                       place = COALESCE($4, place),
                       updated_at = NOW()
                   WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, input.Price, input.Weight, input.Place)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrTrackNotFound
	}
	return nil
}

func (r *trackRepository) AssignUser(ctx context.Context, id int64, phone string) (*string, error) {
	const query = `UPDATE tracks t
                   SET user_phone = $2, updated_at = NOW()
                   FROM (SELECT id, user_phone FROM tracks WHERE id = $1 FOR UPDATE) prev
                   WHERE t.id = prev.id
                   RETURNING prev.user_phone`
	var previous *string
	if err := r.db.QueryRow(ctx, query, id, phone).Scan(&previous); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrTrackNotFound
		}
		return nil, err
	}
	return previous, nil
}

func (r *trackRepository) AppendHistory(ctx context.Context, trackID, statusID int64, at time.Time) error {
	const query = `WITH entry AS (
                       INSERT INTO track_history (track_id, status_id, date) VALUES ($1, $2, $3)
                       RETURNING track_id, status_id
                   )
                   UPDATE tracks t SET current_status_id = entry.status_id, updated_at = NOW()
                   FROM entry WHERE t.id = entry.track_id`
	if _, err := r.db.Exec(ctx, query, trackID, statusID, at); err != nil {
		if hasCode(err, pgerrcode.ForeignKeyViolation) {
			return fmt.Errorf("append history to track %d: %w", trackID, domainErrors.ErrTrackNotFound)
		}
		return err
	}
	return nil
}

func (r *trackRepository) DeleteByNumber(ctx context.Context, number string) error {
	const query = `DELETE FROM tracks WHERE id = (SELECT id FROM tracks WHERE track_number = $1 ORDER BY id LIMIT 1)`
	tag, err := r.db.Exec(ctx, query, number)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrTrackNotFound
	}
	return nil
}

func (r *trackRepository) List(ctx context.Context, filter model.TrackFilter) ([]model.Track, int64, error) {
	var (
		where []string
		args  []any
	)
	if filter.Search != "" {
		args = append(args, containsPattern(filter.Search))
		where = append(where, fmt.Sprintf("track_number ILIKE $%d", len(args)))
	}
	if filter.StatusID != nil {
		args = append(args, *filter.StatusID)
		where = append(where, fmt.Sprintf("current_status_id = $%d", len(args)))
	}
	switch filter.UserFilter {
	case model.UserFilterExists:
		where = append(where, "user_phone IS NOT NULL")
	case model.UserFilterNotExists:
		where = append(where, "user_phone IS NULL")
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tracks`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "DESC"
	if filter.Oldest {
		order = "ASC"
	}
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(`SELECT %s FROM tracks%s ORDER BY updated_at %s, id %s LIMIT $%d OFFSET $%d`,
		trackColumns, clause, order, order, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tracks []*model.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, 0, err
		}
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	if err := r.loadHistory(ctx, tracks...); err != nil {
		return nil, 0, err
	}
	result := make([]model.Track, 0, len(tracks))
	for _, t := range tracks {
		result = append(result, *t)
	}
	return result, total, nil
}

func (r *trackRepository) ListSweepCandidates(ctx context.Context, limit int) ([]model.SweepCandidate, error) {
	const query = `SELECT DISTINCT ON (t.id) a.user_id, t.track_number
                   FROM tracks t
                   JOIN archived_bookmarks a ON a.track_number = t.track_number
                   WHERE EXISTS (
                           SELECT 1 FROM track_history h
                           JOIN statuses s ON s.id = h.status_id
                           WHERE h.track_id = t.id AND s.status_text = ANY($1))
                     AND NOT EXISTS (
                           SELECT 1 FROM bookmarks b
                           WHERE b.track_id = t.id OR lower(b.track_number) = lower(t.track_number))
                   ORDER BY t.id, a.created_at
                   LIMIT $2`
	rows, err := r.db.Query(ctx, query, model.TerminalStatusTexts(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.SweepCandidate
	for rows.Next() {
		var c model.SweepCandidate
		if err := rows.Scan(&c.UserID, &c.TrackNumber); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *trackRepository) ClearResolvedConflicts(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM archive_conflicts c
                              WHERE NOT EXISTS (SELECT 1 FROM tracks t WHERE t.track_number = c.track_number)`)
	return err
}

func (r *trackRepository) RecordArchiveConflicts(ctx context.Context, limit int) ([]string, error) {
	const query = `INSERT INTO archive_conflicts (track_number)
                   SELECT DISTINCT t.track_number
                   FROM tracks t
                   JOIN archives a ON a.track_number = t.track_number
                   WHERE NOT EXISTS (SELECT 1 FROM archive_conflicts c WHERE c.track_number = t.track_number)
                   ORDER BY t.track_number
                   LIMIT $1
                   ON CONFLICT (track_number) DO NOTHING
                   RETURNING track_number`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return nil, err
		}
		result = append(result, number)
	}
	return result, rows.Err()
}

type statusRepository struct {
	db querier
}

func (r *statusRepository) List(ctx context.Context) ([]model.Status, error) {
	rows, err := r.db.Query(ctx, `SELECT id, status_text FROM statuses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Status
	for rows.Next() {
		var s model.Status
		if err := rows.Scan(&s.ID, &s.Text); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *statusRepository) GetByID(ctx context.Context, id int64) (*model.Status, error) {
	var s model.Status
	if err := r.db.QueryRow(ctx, `SELECT id, status_text FROM statuses WHERE id = $1`, id).Scan(&s.ID, &s.Text); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrStatusNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *statusRepository) Create(ctx context.Context, text string) (*model.Status, error) {
	s := model.Status{Text: text}
	if err := r.db.QueryRow(ctx, `INSERT INTO statuses (status_text) VALUES ($1) RETURNING id`, text).Scan(&s.ID); err != nil {
		if hasCode(err, pgerrcode.UniqueViolation) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &s, nil
}
