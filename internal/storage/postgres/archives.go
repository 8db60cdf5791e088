package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/domain/model"
)

type archiveRepository struct {
	db querier
}

func encodeHistory(history []model.HistoryEntry) ([]byte, error) {
	if history == nil {
		history = []model.HistoryEntry{}
	}
	body, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return body, nil
}

func decodeHistory(body []byte) ([]model.HistoryEntry, error) {
	if len(body) == 0 {
		return nil, nil
	}
	var history []model.HistoryEntry
	if err := json.Unmarshal(body, &history); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return history, nil
}

func (r *archiveRepository) AddUserEntry(ctx context.Context, entry model.ArchivedBookmark) (*model.ArchivedBookmark, error) {
	history, err := encodeHistory(entry.History)
	if err != nil {
		return nil, err
	}
	const query = `INSERT INTO archived_bookmarks (user_id, track_number, description, history, price, weight, user_phone)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   ON CONFLICT (user_id, track_number) DO NOTHING
                   RETURNING id, created_at`
	err = r.db.QueryRow(ctx, query, entry.UserID, entry.TrackNumber, entry.Description, history,
		entry.Price, entry.Weight, entry.UserPhone).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *archiveRepository) ListUserEntries(ctx context.Context, userID int64) ([]model.ArchivedBookmark, error) {
	const query = `SELECT id, user_id, track_number, description, created_at, history, price, weight, user_phone
                   FROM archived_bookmarks
                   WHERE user_id = $1
                   ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.ArchivedBookmark
	for rows.Next() {
		var (
			e       model.ArchivedBookmark
			history []byte
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.TrackNumber, &e.Description, &e.CreatedAt, &history,
			&e.Price, &e.Weight, &e.UserPhone); err != nil {
			return nil, err
		}
		if e.History, err = decodeHistory(history); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *archiveRepository) DeleteUserEntry(ctx context.Context, userID int64, trackNumber string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM archived_bookmarks WHERE user_id = $1 AND track_number = $2`,
		userID, trackNumber)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrArchiveEntryNotFound
	}
	return nil
}

func (r *archiveRepository) AddGlobal(ctx context.Context, archive model.Archive) (*model.Archive, error) {
	history, err := encodeHistory(archive.History)
	if err != nil {
		return nil, err
	}
	const query = `INSERT INTO archives (track_number, user_id, price, weight, history)
                   VALUES ($1, $2, $3, $4, $5)
                   RETURNING id, created_at`
	err = r.db.QueryRow(ctx, query, archive.TrackNumber, archive.UserID, archive.Price, archive.Weight, history).
		Scan(&archive.ID, &archive.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &archive, nil
}
