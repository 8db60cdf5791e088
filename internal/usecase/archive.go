package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/domain/model"
	"github.com/polkiloo/parceltrack/internal/domain/repository"
)

// ArchiveUseCase moves completed bookmarks into user archives and tracks
// into the global archive.
type ArchiveUseCase struct {
	tx       repository.Transactor
	archives repository.ArchiveRepository
	tracks   repository.TrackRepository
	bonus    *BonusEngine
	logger   *slog.Logger
	now      func() time.Time
}

// NewArchiveUseCase constructs ArchiveUseCase.
func NewArchiveUseCase(tx repository.Transactor, archives repository.ArchiveRepository, tracks repository.TrackRepository, bonus *BonusEngine, logger *slog.Logger) *ArchiveUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveUseCase{tx: tx, archives: archives, tracks: tracks, bonus: bonus, logger: logger, now: time.Now}
}

// ArchiveBookmarks snapshots each requested bookmark into the user archive
// and removes it from the active bookmarks. Unknown tracks are skipped.
// The referral bonus is settled once on the summed price of the batch.
func (u *ArchiveUseCase) ArchiveBookmarks(ctx context.Context, userID int64, requests []model.ArchiveRequest) (model.MigrationReport, error) {
	var report model.MigrationReport
	err := u.tx.InTx(ctx, func(ctx context.Context, repos repository.Factory) error {
		report = model.MigrationReport{Items: make([]model.ArchiveItemResult, 0, len(requests)), TotalPrice: decimal.Zero}

		owner, err := repos.Users().GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		var firstID int64
		archived := make([]string, 0, len(requests))
		for _, req := range requests {
			outcome, entry, err := u.archiveOne(ctx, repos, owner.ID, req)
			if err != nil {
				return err
			}
			report.Items = append(report.Items, model.ArchiveItemResult{TrackNumber: req.TrackNumber, Outcome: outcome})
			if outcome != model.ArchiveOutcomeArchived {
				u.logger.Info("archive item skipped",
					slog.Int64("user_id", owner.ID),
					slog.String("track", req.TrackNumber),
					slog.String("reason", string(outcome)))
				continue
			}
			if firstID == 0 {
				firstID = entry.ID
			}
			archived = append(archived, entry.TrackNumber)
			if price, ok := parseOptionalAmount(entry.Price); ok {
				report.TotalPrice = report.TotalPrice.Add(price)
			}
		}

		if len(archived) == 0 {
			return nil
		}

		key := "archive:" + strconv.FormatInt(owner.ID, 10) + ":" + strconv.FormatInt(firstID, 10)
		report.Bonus, err = u.bonus.Settle(ctx, repos, *owner, report.TotalPrice, key)
		if err != nil {
			return err
		}

		return publish(ctx, repos, model.TopicBookmarksArchived, strconv.FormatInt(owner.ID, 10), BookmarksArchivedEvent{
			UserID:     owner.ID,
			Tracks:     archived,
			TotalPrice: report.TotalPrice,
		})
	})
	if err != nil {
		return model.MigrationReport{}, err
	}
	return report, nil
}

func (u *ArchiveUseCase) archiveOne(ctx context.Context, repos repository.Factory, userID int64, req model.ArchiveRequest) (model.ArchiveOutcome, *model.ArchivedBookmark, error) {
	number, err := NormalizeTrackNumber(req.TrackNumber)
	if err != nil {
		return model.ArchiveOutcomeTrackNotFound, nil, nil
	}

	track, err := repos.Tracks().LockExact(ctx, number)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return model.ArchiveOutcomeTrackNotFound, nil, nil
		}
		return "", nil, err
	}

	entry, err := repos.Archives().AddUserEntry(ctx, model.ArchivedBookmark{
		UserID:      userID,
		TrackNumber: track.Number,
		Description: req.Description,
		CreatedAt:   u.now(),
		History:     track.History,
		Price:       track.Price,
		Weight:      track.Weight,
		UserPhone:   track.UserPhone,
	})
	if err != nil {
		return "", nil, err
	}

	if _, err := repos.Bookmarks().RemoveExact(ctx, userID, track.Number); err != nil {
		return "", nil, err
	}

	if entry == nil {
		return model.ArchiveOutcomeAlreadyArchived, nil, nil
	}
	return model.ArchiveOutcomeArchived, entry, nil
}

// ArchiveTrack copies the track into the global archive and removes it
// from the store.
func (u *ArchiveUseCase) ArchiveTrack(ctx context.Context, userID int64, trackNumber string) (*model.Archive, error) {
	number, err := NormalizeTrackNumber(trackNumber)
	if err != nil {
		return nil, err
	}

	var archive *model.Archive
	err = u.tx.InTx(ctx, func(ctx context.Context, repos repository.Factory) error {
		if _, err := repos.Users().GetByID(ctx, userID); err != nil {
			return err
		}

		track, err := repos.Tracks().LockExact(ctx, number)
		if err != nil {
			return err
		}

		owner := userID
		archive, err = repos.Archives().AddGlobal(ctx, model.Archive{
			TrackNumber: track.Number,
			UserID:      &owner,
			Price:       track.Price,
			Weight:      track.Weight,
			History:     track.History,
			CreatedAt:   u.now(),
		})
		if err != nil {
			return err
		}

		if err := repos.Tracks().DeleteByNumber(ctx, track.Number); err != nil {
			return err
		}

		return publish(ctx, repos, model.TopicTrackArchived, track.Number, TrackArchivedEvent{
			TrackNumber: track.Number,
			UserID:      userID,
			ArchiveID:   archive.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return archive, nil
}

// ListArchive returns the user's archived bookmarks.
func (u *ArchiveUseCase) ListArchive(ctx context.Context, userID int64) ([]model.ArchivedBookmark, error) {
	return u.archives.ListUserEntries(ctx, userID)
}

// DeleteArchiveEntry removes an archived bookmark by exact track number.
func (u *ArchiveUseCase) DeleteArchiveEntry(ctx context.Context, userID int64, trackNumber string) error {
	number, err := NormalizeTrackNumber(trackNumber)
	if err != nil {
		return err
	}
	return u.archives.DeleteUserEntry(ctx, userID, number)
}

// SweepCandidates lists completed tracks ready for global archival.
func (u *ArchiveUseCase) SweepCandidates(ctx context.Context, limit int) ([]model.SweepCandidate, error) {
	return u.tracks.ListSweepCandidates(ctx, limit)
}

// ArchiveConflicts finds numbers newly present both in the store and in the
// global archive and records one event for each. A conflict is reported
// again only after its live track was removed and the number reappeared.
func (u *ArchiveUseCase) ArchiveConflicts(ctx context.Context, limit int) ([]string, error) {
	var numbers []string
	err := u.tx.InTx(ctx, func(ctx context.Context, repos repository.Factory) error {
		if err := repos.Tracks().ClearResolvedConflicts(ctx); err != nil {
			return fmt.Errorf("clear resolved conflicts: %w", err)
		}
		var err error
		numbers, err = repos.Tracks().RecordArchiveConflicts(ctx, limit)
		if err != nil {
			return err
		}
		detected := u.now()
		for _, number := range numbers {
			err := publish(ctx, repos, model.TopicArchiveConflict, number, ArchiveConflictEvent{
				TrackNumber: number,
				DetectedAt:  detected,
			})
			if err != nil {
				return fmt.Errorf("record conflict %s: %w", number, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return numbers, nil
}
