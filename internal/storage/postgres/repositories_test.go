package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/domain/model"
)

func ptr[T any](v T) *T { return &v }

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmockv3.AnyArg()
	}
	return args
}

var userRowColumns = []string{"id", "phone", "password_hash", "name", "surname", "email", "role", "created_at",
	"selected_filial", "personal_id", "personal_rate", "referral_bonus_percentage", "bonuses", "referrer_id"}

func userRow(rows *pgxmockv3.Rows, id int64, phone string, referrer *int64, bonuses any) *pgxmockv3.Rows {
	return rows.AddRow(id, phone, "hash", "Ann", "Lee", "", "client", time.Now(), "Almaty", id,
		nil, nil, bonuses, referrer)
}

func TestUserRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Users()
	ctx := context.Background()

	user := model.User{Phone: "77001112233", PasswordHash: "hash", Name: "Ann", Surname: "Lee", Role: model.RoleClient,
		SelectedFilial: "Almaty", PersonalID: 1}
	createdAt := time.Now()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("77001112233", "hash", "Ann", "Lee", "", "client", "Almaty", int64(1), (*int64)(nil)).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(7), createdAt))
	created, err := repo.Create(ctx, user)
	if err != nil || created.ID != 7 || !created.CreatedAt.Equal(createdAt) {
		t.Fatalf("unexpected result: %+v err=%v", created, err)
	}

	cases := []struct {
		code string
		want error
	}{
		{pgerrcode.UniqueViolation, domainErrors.ErrAlreadyExists},
		{pgerrcode.ForeignKeyViolation, domainErrors.ErrReferrerNotFound},
		{pgerrcode.CheckViolation, domainErrors.ErrSelfReferral},
	}
	for _, tc := range cases {
		mock.ExpectQuery("INSERT INTO users").WithArgs(anyArgs(9)...).WillReturnError(pgError(tc.code))
		if _, err := repo.Create(ctx, user); !errors.Is(err, tc.want) {
			t.Fatalf("code %s: expected %v, got %v", tc.code, tc.want, err)
		}
	}

	mock.ExpectQuery("INSERT INTO users").WithArgs(anyArgs(9)...).WillReturnError(errors.New("other"))
	if _, err := repo.Create(ctx, user); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestUserRepositoryLookups(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Users()
	ctx := context.Background()

	mock.ExpectQuery("FROM users WHERE id=").WithArgs(int64(1)).WillReturnRows(
		userRow(pgxmockv3.NewRows(userRowColumns), 1, "7700", ptr(int64(9)), decimal.NewNullDecimal(decimal.RequireFromString("12.5"))))
	user, err := repo.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ReferrerID == nil || *user.ReferrerID != 9 || !user.BonusBalance().Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.PersonalRate != nil || user.ReferralBonusPercentage != nil || user.Role != model.RoleClient {
		t.Fatalf("unexpected nullable fields: %+v", user)
	}

	mock.ExpectQuery("FROM users WHERE id=.* FOR UPDATE").WithArgs(int64(2)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByIDForUpdate(ctx, 2); !errors.Is(err, domainErrors.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}

	mock.ExpectQuery("FROM users WHERE phone=").WithArgs("7700").WillReturnRows(
		userRow(pgxmockv3.NewRows(userRowColumns), 1, "7700", nil, nil))
	user, err = repo.GetByPhone(ctx, "7700")
	if err != nil || user.ReferrerID != nil || user.Bonuses != nil {
		t.Fatalf("unexpected user: %+v err=%v", user, err)
	}

	mock.ExpectQuery("FROM users WHERE phone=").WithArgs("x").WillReturnError(errors.New("boom"))
	if _, err := repo.GetByPhone(ctx, "x"); err == nil || errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected raw error, got %v", err)
	}

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(pgxmockv3.NewRows([]string{"count"}).AddRow(int64(41)))
	if n, err := repo.CountAll(ctx); err != nil || n != 41 {
		t.Fatalf("unexpected count: %d err=%v", n, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestUserRepositoryBalances(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Users()
	ctx := context.Background()

	amount := decimal.RequireFromString("18.8")
	mock.ExpectQuery(regexp.QuoteMeta("SET bonuses = COALESCE(bonuses, 0) +")).WithArgs(int64(3), amount).
		WillReturnRows(pgxmockv3.NewRows([]string{"bonuses"}).AddRow(decimal.RequireFromString("20.8")))
	balance, err := repo.AddBonuses(ctx, 3, amount)
	if err != nil || !balance.Equal(decimal.RequireFromString("20.8")) {
		t.Fatalf("unexpected balance: %s err=%v", balance, err)
	}

	mock.ExpectQuery("SET bonuses = COALESCE").WithArgs(anyArgs(2)...).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.AddBonuses(ctx, 4, amount); !errors.Is(err, domainErrors.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}

	mock.ExpectExec("UPDATE users SET bonuses=").WithArgs(int64(3), amount).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.SetBonuses(ctx, 3, amount); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE users SET referral_bonus_percentage=").WithArgs(int64(3), decimal.NullDecimal{}).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.SetReferralPercentage(ctx, 3, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rate := decimal.RequireFromString("5.5")
	mock.ExpectExec("UPDATE users SET personal_rate=").WithArgs(int64(9), decimal.NewNullDecimal(rate)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.SetPersonalRate(ctx, 9, &rate); !errors.Is(err, domainErrors.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}

	mock.ExpectExec("UPDATE users SET personal_rate=").WithArgs(anyArgs(2)...).WillReturnError(errors.New("boom"))
	if err := repo.SetPersonalRate(ctx, 9, &rate); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectExec("UPDATE users SET password_hash=").WithArgs(int64(3), "new-hash").
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.UpdatePasswordHash(ctx, 3, "new-hash"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestContainsPatternEscapesWildcards(t *testing.T) {
	cases := map[string]string{
		"Ann":     "%Ann%",
		"50%":     `%50\%%`,
		"a_b":     `%a\_b%`,
		`back\sl`: `%back\\sl%`,
	}
	for in, want := range cases {
		if got := containsPattern(in); got != want {
			t.Fatalf("containsPattern(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUserRepositoryList(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Users()
	ctx := context.Background()

	filter := model.UserListFilter{
		Page:          2,
		Limit:         5,
		Search:        "Ann",
		Role:          model.RoleClient,
		Filial:        "Almaty",
		InvoiceStatus: model.InvoiceStatusPending,
		ByActivity:    true,
	}
	where := "WHERE (u.phone = $1 OR u.name ILIKE $2 OR u.surname ILIKE $2) AND u.role = $3 AND " +
		"u.selected_filial = $4 AND EXISTS (SELECT 1 FROM invoices i WHERE i.user_id = u.id AND i.status = $5)"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users u "+where)).
		WithArgs("Ann", "%Ann%", "client", "Almaty", "pending").
		WillReturnRows(pgxmockv3.NewRows([]string{"count"}).AddRow(int64(6)))
	rows := pgxmockv3.NewRows(append(append([]string{}, userRowColumns...), "bookmark_count", "archive_count")).
		AddRow(int64(7), "7707", "hash", "Ann", "Lee", "", "client", time.Now(), "Almaty", int64(7),
			nil, nil, nil, nil, 3, 2)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY bookmark_count + archive_count DESC, created_at DESC, id DESC")).
		WithArgs("Ann", "%Ann%", "client", "Almaty", "pending", 5, 5).
		WillReturnRows(rows)

	users, total, err := repo.List(ctx, filter)
	if err != nil || total != 6 || len(users) != 1 {
		t.Fatalf("unexpected list: %+v total=%d err=%v", users, total, err)
	}
	if users[0].BookmarkCount != 3 || users[0].ArchiveCount != 2 || users[0].TotalActivity() != 5 {
		t.Fatalf("unexpected counts: %+v", users[0])
	}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users u")).WillReturnError(errors.New("boom"))
	if _, _, err := repo.List(ctx, model.UserListFilter{Page: 1, Limit: 5}); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestUserRepositoryReferrals(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Users()
	ctx := context.Background()

	partnerRows := pgxmockv3.NewRows(append(append([]string{}, userRowColumns...), "count")).
		AddRow(int64(1), "7700", "hash", "Ann", "Lee", "", "client", time.Now(), "Almaty", int64(1),
			nil, decimal.NewNullDecimal(decimal.NewFromInt(10)), nil, nil, 2)
	mock.ExpectQuery("JOIN users r ON r.referrer_id = u.id").WithArgs("Ann", "%Ann%").WillReturnRows(partnerRows)
	partners, err := repo.ListPartners(ctx, "Ann")
	if err != nil || len(partners) != 1 {
		t.Fatalf("unexpected partners: %+v err=%v", partners, err)
	}
	if partners[0].ReferralsCount != 2 || !partners[0].ReferralBonusPercentage.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected partner: %+v", partners[0])
	}

	referralRows := pgxmockv3.NewRows(userRowColumns)
	userRow(referralRows, 2, "7701", ptr(int64(1)), nil)
	userRow(referralRows, 3, "7702", ptr(int64(1)), nil)
	mock.ExpectQuery("FROM users WHERE referrer_id=").WithArgs(int64(1)).WillReturnRows(referralRows)
	referrals, err := repo.ListReferrals(ctx, 1)
	if err != nil || len(referrals) != 2 || referrals[1].Phone != "7702" {
		t.Fatalf("unexpected referrals: %+v err=%v", referrals, err)
	}

	mock.ExpectQuery("JOIN users r ON r.referrer_id = u.id").WithArgs("50%_off", `%50\%\_off%`).
		WillReturnRows(pgxmockv3.NewRows(append(append([]string{}, userRowColumns...), "count")))
	partners, err = repo.ListPartners(ctx, "50%_off")
	if err != nil || len(partners) != 0 {
		t.Fatalf("wildcards must match literally: %+v err=%v", partners, err)
	}

	mock.ExpectQuery("FROM users WHERE referrer_id=").WithArgs(int64(5)).WillReturnError(errors.New("boom"))
	if _, err := repo.ListReferrals(ctx, 5); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestBonusRepositoryRecordPayout(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Bonuses()
	ctx := context.Background()

	payout := model.BonusPayout{Key: "invoice:1", PayerID: 2, PayeeID: 1, Amount: decimal.NewFromInt(4), Percentage: decimal.NewFromInt(4)}
	mock.ExpectExec("INSERT INTO bonus_payouts").WithArgs("invoice:1", int64(2), int64(1), payout.Amount, payout.Percentage).
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	if created, err := repo.RecordPayout(ctx, payout); err != nil || !created {
		t.Fatalf("expected new payout, got created=%v err=%v", created, err)
	}

	mock.ExpectExec("INSERT INTO bonus_payouts").WithArgs(anyArgs(5)...).WillReturnResult(pgxmockv3.NewResult("INSERT", 0))
	if created, err := repo.RecordPayout(ctx, payout); err != nil || created {
		t.Fatalf("expected duplicate payout, got created=%v err=%v", created, err)
	}

	mock.ExpectExec("INSERT INTO bonus_payouts").WithArgs(anyArgs(5)...).WillReturnError(errors.New("boom"))
	if _, err := repo.RecordPayout(ctx, payout); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

var trackRowColumns = []string{"id", "track_number", "current_status_id", "price", "weight", "place", "user_phone",
	"created_at", "updated_at"}

var historyColumns = []string{"track_id", "status_id", "status_text", "date"}

func TestTrackRepositoryFind(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Tracks()
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE track_number ~* $1 ORDER BY id LIMIT 1")).WithArgs("ab12").WillReturnRows(
		pgxmockv3.NewRows(trackRowColumns).AddRow(int64(5), "AB12", ptr(int64(2)), ptr("10"), ptr("1.5"), nil, nil, now, now))
	mock.ExpectQuery("FROM track_history").WithArgs([]int64{5}).WillReturnRows(
		pgxmockv3.NewRows(historyColumns).
			AddRow(int64(5), int64(1), "В пути", now.Add(-time.Hour)).
			AddRow(int64(5), int64(2), model.TerminalStatusText, now))
	track, err := repo.FindByPattern(ctx, "ab12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if track.Number != "AB12" || *track.Price != "10" || track.Place != nil || len(track.History) != 2 || !track.IsCompleted() {
		t.Fatalf("unexpected track: %+v", track)
	}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE track_number = $1 ORDER BY id LIMIT 1")).WithArgs("NONE").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.FindExact(ctx, "NONE"); !errors.Is(err, domainErrors.ErrTrackNotFound) {
		t.Fatalf("expected track not found, got %v", err)
	}

	mock.ExpectQuery("FOR UPDATE").WithArgs("AB12").WillReturnRows(
		pgxmockv3.NewRows(trackRowColumns).AddRow(int64(5), "AB12", nil, nil, nil, nil, ptr("7700"), now, now))
	mock.ExpectQuery("FROM track_history").WithArgs([]int64{5}).WillReturnError(errors.New("history"))
	if _, err := repo.LockExact(ctx, "AB12"); err == nil {
		t.Fatal("expected history error")
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM tracks WHERE id = $1")).WithArgs(int64(5)).WillReturnRows(
		pgxmockv3.NewRows(trackRowColumns).AddRow(int64(5), "AB12", nil, nil, nil, nil, ptr("7700"), now, now))
	mock.ExpectQuery("FROM track_history").WithArgs([]int64{5}).WillReturnRows(pgxmockv3.NewRows(historyColumns))
	track, err = repo.GetByID(ctx, 5)
	if err != nil || *track.UserPhone != "7700" || track.IsCompleted() {
		t.Fatalf("unexpected track: %+v err=%v", track, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestTrackRepositoryWrites(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Tracks()
	ctx := context.Background()
	now := time.Now()

	input := model.TrackInput{Number: "AB12", Price: ptr("10"), Weight: ptr("2")}
	mock.ExpectQuery("INSERT INTO tracks").WithArgs("AB12", ptr("10"), ptr("2"), (*string)(nil)).WillReturnRows(
		pgxmockv3.NewRows(trackRowColumns).AddRow(int64(1), "AB12", nil, ptr("10"), ptr("2"), nil, nil, now, now))
	track, err := repo.Create(ctx, input)
	if err != nil || track.ID != 1 {
		t.Fatalf("unexpected track: %+v err=%v", track, err)
	}

	mock.ExpectExec("UPDATE tracks").WithArgs(int64(1), ptr("10"), ptr("2"), (*string)(nil)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.Update(ctx, 1, input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mock.ExpectExec("UPDATE tracks").WithArgs(anyArgs(4)...).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.Update(ctx, 2, input); !errors.Is(err, domainErrors.ErrTrackNotFound) {
		t.Fatalf("expected track not found, got %v", err)
	}

	mock.ExpectQuery("RETURNING prev.user_phone").WithArgs(int64(1), "7700").WillReturnRows(
		pgxmockv3.NewRows([]string{"user_phone"}).AddRow(ptr("7799")))
	prev, err := repo.AssignUser(ctx, 1, "7700")
	if err != nil || prev == nil || *prev != "7799" {
		t.Fatalf("unexpected previous phone: %v err=%v", prev, err)
	}
	mock.ExpectQuery("RETURNING prev.user_phone").WithArgs(int64(1), "7700").WillReturnRows(
		pgxmockv3.NewRows([]string{"user_phone"}).AddRow(nil))
	if prev, err = repo.AssignUser(ctx, 1, "7700"); err != nil || prev != nil {
		t.Fatalf("expected no previous phone, got %v err=%v", prev, err)
	}
	mock.ExpectQuery("RETURNING prev.user_phone").WithArgs(int64(3), "7700").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.AssignUser(ctx, 3, "7700"); !errors.Is(err, domainErrors.ErrTrackNotFound) {
		t.Fatalf("expected track not found, got %v", err)
	}

	mock.ExpectExec("INSERT INTO track_history").WithArgs(int64(1), int64(2), now).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.AppendHistory(ctx, 1, 2, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mock.ExpectExec("INSERT INTO track_history").WithArgs(anyArgs(3)...).WillReturnError(pgError(pgerrcode.ForeignKeyViolation))
	if err := repo.AppendHistory(ctx, 9, 2, now); !errors.Is(err, domainErrors.ErrTrackNotFound) {
		t.Fatalf("expected track not found, got %v", err)
	}

	mock.ExpectExec("DELETE FROM tracks").WithArgs("AB12").WillReturnResult(pgxmockv3.NewResult("DELETE", 1))
	if err := repo.DeleteByNumber(ctx, "AB12"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mock.ExpectExec("DELETE FROM tracks").WithArgs("AB12").WillReturnResult(pgxmockv3.NewResult("DELETE", 0))
	if err := repo.DeleteByNumber(ctx, "AB12"); !errors.Is(err, domainErrors.ErrTrackNotFound) {
		t.Fatalf("expected track not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestTrackRepositoryList(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Tracks()
	ctx := context.Background()
	now := time.Now()

	filter := model.TrackFilter{Page: 2, Limit: 10, Search: "AB", StatusID: ptr(int64(3)), UserFilter: model.UserFilterExists}
	where := "WHERE track_number ILIKE $1 AND current_status_id = $2 AND user_phone IS NOT NULL"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tracks "+where)).WithArgs("%AB%", int64(3)).
		WillReturnRows(pgxmockv3.NewRows([]string{"count"}).AddRow(int64(12)))
	mock.ExpectQuery(regexp.QuoteMeta(where+" ORDER BY updated_at DESC, id DESC LIMIT $3 OFFSET $4")).
		WithArgs("%AB%", int64(3), 10, 10).
		WillReturnRows(pgxmockv3.NewRows(trackRowColumns).
			AddRow(int64(11), "AB11", ptr(int64(3)), nil, nil, nil, ptr("7700"), now, now).
			AddRow(int64(12), "AB12", ptr(int64(3)), nil, nil, nil, ptr("7701"), now, now))
	mock.ExpectQuery("FROM track_history").WithArgs([]int64{11, 12}).WillReturnRows(
		pgxmockv3.NewRows(historyColumns).AddRow(int64(12), int64(3), "На складе", now))

	tracks, total, err := repo.List(ctx, filter)
	if err != nil || total != 12 || len(tracks) != 2 {
		t.Fatalf("unexpected list: %+v total=%d err=%v", tracks, total, err)
	}
	if len(tracks[0].History) != 0 || len(tracks[1].History) != 1 {
		t.Fatalf("history attached to wrong track: %+v", tracks)
	}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tracks WHERE user_phone IS NULL")).
		WillReturnRows(pgxmockv3.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY updated_at ASC, id ASC LIMIT $1 OFFSET $2")).WithArgs(5, 0).
		WillReturnRows(pgxmockv3.NewRows(trackRowColumns))
	tracks, total, err = repo.List(ctx, model.TrackFilter{Page: 1, Limit: 5, UserFilter: model.UserFilterNotExists, Oldest: true})
	if err != nil || total != 0 || len(tracks) != 0 {
		t.Fatalf("unexpected list: %+v total=%d err=%v", tracks, total, err)
	}

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("count"))
	if _, _, err := repo.List(ctx, model.TrackFilter{Page: 1, Limit: 5}); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestTrackRepositoryMaintenanceQueries(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Tracks()
	ctx := context.Background()

	mock.ExpectQuery("SELECT DISTINCT ON").WithArgs(model.TerminalStatusTexts(), 50).WillReturnRows(
		pgxmockv3.NewRows([]string{"user_id", "track_number"}).AddRow(int64(1), "AB12").AddRow(int64(2), "CD34"))
	candidates, err := repo.ListSweepCandidates(ctx, 50)
	if err != nil || len(candidates) != 2 || candidates[1] != (model.SweepCandidate{UserID: 2, TrackNumber: "CD34"}) {
		t.Fatalf("unexpected candidates: %+v err=%v", candidates, err)
	}

	mock.ExpectExec("DELETE FROM archive_conflicts").WillReturnResult(pgxmockv3.NewResult("DELETE", 1))
	if err := repo.ClearResolvedConflicts(ctx); err != nil {
		t.Fatalf("clear conflicts: %v", err)
	}

	mock.ExpectQuery("INSERT INTO archive_conflicts").WithArgs(10).WillReturnRows(
		pgxmockv3.NewRows([]string{"track_number"}).AddRow("AB12"))
	conflicts, err := repo.RecordArchiveConflicts(ctx, 10)
	if err != nil || len(conflicts) != 1 || conflicts[0] != "AB12" {
		t.Fatalf("unexpected conflicts: %v err=%v", conflicts, err)
	}

	mock.ExpectQuery("INSERT INTO archive_conflicts").WithArgs(10).WillReturnError(errors.New("boom"))
	if _, err := repo.RecordArchiveConflicts(ctx, 10); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestStatusRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Statuses()
	ctx := context.Background()

	mock.ExpectQuery("SELECT id, status_text FROM statuses ORDER BY id").WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "status_text"}).AddRow(int64(1), "В пути").AddRow(int64(2), model.TerminalStatusText))
	statuses, err := repo.List(ctx)
	if err != nil || len(statuses) != 2 || statuses[1].Text != model.TerminalStatusText {
		t.Fatalf("unexpected statuses: %+v err=%v", statuses, err)
	}

	mock.ExpectQuery("FROM statuses WHERE id").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "status_text"}).AddRow(int64(1), "В пути"))
	if s, err := repo.GetByID(ctx, 1); err != nil || s.Text != "В пути" {
		t.Fatalf("unexpected status: %+v err=%v", s, err)
	}
	mock.ExpectQuery("FROM statuses WHERE id").WithArgs(int64(5)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(ctx, 5); !errors.Is(err, domainErrors.ErrStatusNotFound) {
		t.Fatalf("expected status not found, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO statuses").WithArgs("Новый").WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(3)))
	if s, err := repo.Create(ctx, "Новый"); err != nil || s.ID != 3 {
		t.Fatalf("unexpected status: %+v err=%v", s, err)
	}
	mock.ExpectQuery("INSERT INTO statuses").WithArgs("Новый").WillReturnError(pgError(pgerrcode.UniqueViolation))
	if _, err := repo.Create(ctx, "Новый"); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

var bookmarkRowColumns = []string{"id", "user_id", "created_at", "description", "track_number", "track_id",
	"current_status_id", "is_paid"}

func TestBookmarkRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Bookmarks()
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery("INSERT INTO bookmarks").WithArgs(int64(1), "shoes", "AB12").WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(4), now))
	b, err := repo.Create(ctx, model.Bookmark{UserID: 1, Description: "shoes", TrackNumber: "AB12"})
	if err != nil || b.ID != 4 {
		t.Fatalf("unexpected bookmark: %+v err=%v", b, err)
	}
	mock.ExpectQuery("INSERT INTO bookmarks").WithArgs(anyArgs(3)...).WillReturnError(pgError(pgerrcode.UniqueViolation))
	if _, err := repo.Create(ctx, model.Bookmark{UserID: 1, Description: "shoes", TrackNumber: "ab12"}); !errors.Is(err, domainErrors.ErrDuplicateBookmark) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	mock.ExpectQuery("FROM bookmarks WHERE user_id").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows(bookmarkRowColumns).
			AddRow(int64(4), int64(1), now, "shoes", "AB12", ptr(int64(5)), ptr(int64(2)), false).
			AddRow(int64(3), int64(1), now, "bag", "CD34", nil, nil, true))
	list, err := repo.ListByUser(ctx, 1)
	if err != nil || len(list) != 2 || *list[0].TrackID != 5 || list[1].TrackID != nil || !list[1].IsPaid {
		t.Fatalf("unexpected bookmarks: %+v err=%v", list, err)
	}

	mock.ExpectExec("UPDATE bookmarks SET track_id").WithArgs(int64(4), int64(5), ptr(int64(2))).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.Bind(ctx, 4, 5, ptr(int64(2))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mock.ExpectExec("UPDATE bookmarks SET track_id").WithArgs(anyArgs(3)...).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.Bind(ctx, 9, 5, nil); !errors.Is(err, domainErrors.ErrBookmarkNotFound) {
		t.Fatalf("expected bookmark not found, got %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta("lower(track_number) = lower($2)")).WithArgs(int64(1), "ab12").
		WillReturnResult(pgxmockv3.NewResult("DELETE", 0))
	if err := repo.Delete(ctx, 1, "ab12"); !errors.Is(err, domainErrors.ErrBookmarkNotFound) {
		t.Fatalf("expected bookmark not found, got %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta("AND track_number = $2")).WithArgs(int64(1), "AB12").
		WillReturnResult(pgxmockv3.NewResult("DELETE", 1))
	if n, err := repo.RemoveExact(ctx, 1, "AB12"); err != nil || n != 1 {
		t.Fatalf("unexpected removal: %d err=%v", n, err)
	}

	if err := repo.MarkPaid(ctx, 1, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mock.ExpectExec("SET is_paid = TRUE").WithArgs(int64(1), []string{"AB12"}).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.MarkPaid(ctx, 1, []string{"AB12"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectQuery("WHERE b.current_status_id IS NULL").WillReturnRows(
		pgxmockv3.NewRows(append(append([]string{}, bookmarkRowColumns...), "phone", "name", "surname", "personal_id")).
			AddRow(int64(3), int64(1), now, "bag", "CD34", nil, nil, false, "7700", "Ann", "Lee", int64(1)))
	owned, err := repo.ListWithoutStatus(ctx)
	if err != nil || len(owned) != 1 || owned[0].Owner.ID != 1 || owned[0].Owner.Phone != "7700" {
		t.Fatalf("unexpected owned bookmarks: %+v err=%v", owned, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestArchiveRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Archives()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	history := []model.HistoryEntry{{StatusID: 2, StatusText: model.TerminalStatusText, Date: now}}
	encoded, _ := json.Marshal(history)
	entry := model.ArchivedBookmark{UserID: 1, TrackNumber: "AB12", Description: "shoes", History: history, Price: ptr("10")}

	mock.ExpectQuery("INSERT INTO archived_bookmarks").
		WithArgs(int64(1), "AB12", "shoes", encoded, ptr("10"), (*string)(nil), (*string)(nil)).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(8), now))
	saved, err := repo.AddUserEntry(ctx, entry)
	if err != nil || saved == nil || saved.ID != 8 {
		t.Fatalf("unexpected entry: %+v err=%v", saved, err)
	}

	mock.ExpectQuery("INSERT INTO archived_bookmarks").WithArgs(anyArgs(7)...).WillReturnError(pgx.ErrNoRows)
	saved, err = repo.AddUserEntry(ctx, entry)
	if err != nil || saved != nil {
		t.Fatalf("expected already archived, got %+v err=%v", saved, err)
	}

	mock.ExpectQuery("FROM archived_bookmarks").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "user_id", "track_number", "description", "created_at", "history", "price", "weight", "user_phone"}).
			AddRow(int64(8), int64(1), "AB12", "shoes", now, encoded, ptr("10"), nil, nil))
	entries, err := repo.ListUserEntries(ctx, 1)
	if err != nil || len(entries) != 1 || len(entries[0].History) != 1 || !entries[0].History[0].Date.Equal(now) {
		t.Fatalf("unexpected entries: %+v err=%v", entries, err)
	}

	mock.ExpectQuery("FROM archived_bookmarks").WithArgs(int64(2)).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "user_id", "track_number", "description", "created_at", "history", "price", "weight", "user_phone"}).
			AddRow(int64(9), int64(2), "AB12", "shoes", now, []byte("{"), nil, nil, nil))
	if _, err := repo.ListUserEntries(ctx, 2); err == nil {
		t.Fatal("expected decode error")
	}

	mock.ExpectExec("DELETE FROM archived_bookmarks").WithArgs(int64(1), "AB12").WillReturnResult(pgxmockv3.NewResult("DELETE", 0))
	if err := repo.DeleteUserEntry(ctx, 1, "AB12"); !errors.Is(err, domainErrors.ErrArchiveEntryNotFound) {
		t.Fatalf("expected archive entry not found, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO archives").WithArgs("AB12", ptr(int64(1)), (*string)(nil), (*string)(nil), []byte("[]")).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(2), now))
	archive, err := repo.AddGlobal(ctx, model.Archive{TrackNumber: "AB12", UserID: ptr(int64(1))})
	if err != nil || archive.ID != 2 {
		t.Fatalf("unexpected archive: %+v err=%v", archive, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

var invoiceRowColumns = []string{"id", "user_id", "status", "total_amount", "total_weight", "total_items", "created_at", "updated_at"}

func TestInvoiceRepositoryReads(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Invoices()
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery("status = 'pending' FOR UPDATE").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows(invoiceRowColumns).AddRow(int64(3), int64(1), "pending", decimal.NewFromInt(25), decimal.NewFromInt(3), 2, now, now))
	mock.ExpectQuery("FROM invoice_items").WithArgs([]int64{3}).WillReturnRows(
		pgxmockv3.NewRows([]string{"invoice_id", "track_number", "price", "weight"}).
			AddRow(int64(3), "AB12", decimal.NewFromInt(10), decimal.NewFromInt(1)).
			AddRow(int64(3), "CD34", decimal.NewFromInt(15), decimal.NewFromInt(2)))
	inv, err := repo.GetPending(ctx, 1)
	if err != nil || inv.IsPaid() || len(inv.Items) != 2 || !inv.Contains("CD34") || !inv.TotalAmount.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("unexpected invoice: %+v err=%v", inv, err)
	}

	mock.ExpectQuery("status = 'pending' FOR UPDATE").WithArgs(int64(2)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetPending(ctx, 2); !errors.Is(err, domainErrors.ErrInvoiceNotFound) {
		t.Fatalf("expected invoice not found, got %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND user_id = $2 FOR UPDATE")).WithArgs(int64(3), int64(1)).WillReturnRows(
		pgxmockv3.NewRows(invoiceRowColumns).AddRow(int64(3), int64(1), "paid", decimal.NewFromInt(25), decimal.NewFromInt(3), 2, now, now))
	mock.ExpectQuery("FROM invoice_items").WithArgs([]int64{3}).WillReturnRows(
		pgxmockv3.NewRows([]string{"invoice_id", "track_number", "price", "weight"}))
	if inv, err = repo.GetForUpdate(ctx, 1, 3); err != nil || !inv.IsPaid() {
		t.Fatalf("unexpected invoice: %+v err=%v", inv, err)
	}

	mock.ExpectQuery("ORDER BY created_at DESC").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows(invoiceRowColumns).
			AddRow(int64(3), int64(1), "pending", decimal.NewFromInt(10), decimal.NewFromInt(1), 1, now, now).
			AddRow(int64(2), int64(1), "paid", decimal.NewFromInt(5), decimal.NewFromInt(1), 1, now, now))
	mock.ExpectQuery("FROM invoice_items").WithArgs([]int64{3, 2}).WillReturnRows(
		pgxmockv3.NewRows([]string{"invoice_id", "track_number", "price", "weight"}).
			AddRow(int64(2), "OLD1", decimal.NewFromInt(5), decimal.NewFromInt(1)).
			AddRow(int64(3), "AB12", decimal.NewFromInt(10), decimal.NewFromInt(1)))
	invoices, err := repo.ListByUser(ctx, 1)
	if err != nil || len(invoices) != 2 || invoices[0].Items[0].TrackNumber != "AB12" || invoices[1].Items[0].TrackNumber != "OLD1" {
		t.Fatalf("unexpected invoices: %+v err=%v", invoices, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestInvoiceRepositoryWrites(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Invoices()
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery("INSERT INTO invoices").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows(invoiceRowColumns).AddRow(int64(4), int64(1), "pending", decimal.Zero, decimal.Zero, 0, now, now))
	inv, err := repo.CreatePending(ctx, 1)
	if err != nil || inv.ID != 4 || inv.Status != model.InvoiceStatusPending {
		t.Fatalf("unexpected invoice: %+v err=%v", inv, err)
	}
	mock.ExpectQuery("INSERT INTO invoices").WithArgs(int64(1)).WillReturnError(pgError(pgerrcode.UniqueViolation))
	if _, err := repo.CreatePending(ctx, 1); !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	item := model.InvoiceItem{TrackNumber: "AB12", Price: decimal.NewFromInt(10), Weight: decimal.NewFromInt(1)}
	mock.ExpectExec("INSERT INTO invoice_items").WithArgs(int64(4), "AB12", item.Price, item.Weight).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.AddItem(ctx, 4, item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mock.ExpectExec("INSERT INTO invoice_items").WithArgs(anyArgs(4)...).WillReturnError(pgError(pgerrcode.UniqueViolation))
	if err := repo.AddItem(ctx, 4, item); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
	mock.ExpectExec("INSERT INTO invoice_items").WithArgs(anyArgs(4)...).WillReturnError(pgError(pgerrcode.ForeignKeyViolation))
	if err := repo.AddItem(ctx, 5, item); !errors.Is(err, domainErrors.ErrInvoiceNotFound) {
		t.Fatalf("expected invoice not found, got %v", err)
	}

	mock.ExpectExec("UPDATE invoices SET updated_at").WithArgs(int64(4)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.Touch(ctx, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mock.ExpectExec("DELETE FROM invoices").WithArgs(int64(4)).WillReturnResult(pgxmockv3.NewResult("DELETE", 0))
	if err := repo.Delete(ctx, 4); !errors.Is(err, domainErrors.ErrInvoiceNotFound) {
		t.Fatalf("expected invoice not found, got %v", err)
	}

	mock.ExpectExec("SET status = 'paid'").WithArgs(int64(4)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.MarkPaid(ctx, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mock.ExpectExec("SET status = 'paid'").WithArgs(int64(4)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.MarkPaid(ctx, 4); !errors.Is(err, domainErrors.ErrInvoiceAlreadyPaid) {
		t.Fatalf("expected already paid, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestSettingsRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Settings()
	ctx := context.Background()
	now := time.Now()

	columns := []string{"global_referral_bonus_percentage", "price", "currency", "video_link", "china_address",
		"whatsapp_number", "about_us_text", "prohibited_items_text", "contract_file_path", "updated_at"}
	mock.ExpectQuery("FROM settings WHERE id = 1").WillReturnRows(
		pgxmockv3.NewRows(columns).AddRow(decimal.NewFromInt(6), "3.5", "USD", "", "", "", "", "", "", now))
	s, err := repo.Get(ctx)
	if err != nil || !s.GlobalReferralBonusPercentage.Equal(decimal.NewFromInt(6)) || s.Currency != "USD" {
		t.Fatalf("unexpected settings: %+v err=%v", s, err)
	}

	mock.ExpectQuery("FROM settings WHERE id = 1").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.Get(ctx); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	saved := model.DefaultSettings()
	mock.ExpectExec("INSERT INTO settings").WithArgs(anyArgs(9)...).WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	if err := repo.Save(ctx, saved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOutboxRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Outbox()
	ctx := context.Background()
	now := time.Now()

	event, err := model.NewEvent(model.TopicInvoicePaid, "1", map[string]int{"invoice": 3})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	mock.ExpectExec("INSERT INTO outbox_events").WithArgs(event.ID, model.TopicInvoicePaid, "1", event.Payload, "new").
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	if err := repo.Enqueue(ctx, event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WithArgs(10).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "topic", "event_key", "payload", "status", "attempts", "last_error", "created_at", "updated_at"}).
			AddRow(event.ID, model.TopicInvoicePaid, "1", event.Payload, "processing", 1, ptr("timeout"), now, now))
	events, err := repo.FetchPending(ctx, 10)
	if err != nil || len(events) != 1 || events[0].ID != event.ID || events[0].Status != model.EventStatusProcessing || *events[0].LastError != "timeout" {
		t.Fatalf("unexpected events: %+v err=%v", events, err)
	}

	mock.ExpectExec("SET status = 'sent'").WithArgs(event.ID).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.MarkSent(ctx, event.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id := uuid.New()
	mock.ExpectExec("SET attempts = attempts").WithArgs(id, "broker down", 5).WillReturnError(errors.New("boom"))
	if err := repo.MarkFailed(ctx, id, "broker down", 5); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
