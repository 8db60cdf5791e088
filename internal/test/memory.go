package test

import (
	"context"
	"maps"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/domain/model"
	"github.com/polkiloo/parceltrack/internal/domain/repository"
)

// MemoryStore is an in-memory implementation of every repository and of
// the transaction runner. Transactions are serialized and roll back the
// whole store when the callback fails.
type MemoryStore struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data memoryData

	failures map[string]error
	// Commits counts successful InTx calls.
	Commits int
	// Rollbacks counts InTx calls whose callback returned an error.
	Rollbacks int
}

type memoryData struct {
	nextID    int64
	users     map[int64]model.User
	statuses  map[int64]model.Status
	tracks    map[int64]model.Track
	bookmarks map[int64]model.Bookmark
	userArch  map[int64]model.ArchivedBookmark
	archives  map[int64]model.Archive
	invoices  map[int64]model.Invoice
	settings  *model.Settings
	payouts   map[string]model.BonusPayout
	events    []model.Event
	conflicts map[string]bool
}

func (d memoryData) clone() memoryData {
	c := d
	c.users = maps.Clone(d.users)
	c.statuses = maps.Clone(d.statuses)
	c.tracks = make(map[int64]model.Track, len(d.tracks))
	for id, t := range d.tracks {
		t.History = slices.Clone(t.History)
		c.tracks[id] = t
	}
	c.bookmarks = maps.Clone(d.bookmarks)
	c.userArch = maps.Clone(d.userArch)
	c.archives = maps.Clone(d.archives)
	c.invoices = make(map[int64]model.Invoice, len(d.invoices))
	for id, inv := range d.invoices {
		inv.Items = slices.Clone(inv.Items)
		c.invoices[id] = inv
	}
	if d.settings != nil {
		s := *d.settings
		c.settings = &s
	}
	c.payouts = maps.Clone(d.payouts)
	c.events = slices.Clone(d.events)
	c.conflicts = maps.Clone(d.conflicts)
	return c
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: memoryData{
			users:     make(map[int64]model.User),
			statuses:  make(map[int64]model.Status),
			tracks:    make(map[int64]model.Track),
			bookmarks: make(map[int64]model.Bookmark),
			userArch:  make(map[int64]model.ArchivedBookmark),
			archives:  make(map[int64]model.Archive),
			invoices:  make(map[int64]model.Invoice),
			payouts:   make(map[string]model.BonusPayout),
			conflicts: make(map[string]bool),
		},
		failures: make(map[string]error),
	}
}

// Fail makes the named operation (for example "Users.AddBonuses") return err.
func (s *MemoryStore) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// lock acquires the data mutex and reports the injected failure for op.
func (s *MemoryStore) lock(op string) error {
	s.mu.Lock()
	return s.failures[op]
}

func (s *MemoryStore) id() int64 {
	s.data.nextID++
	return s.data.nextID
}

// InTx runs fn against the store, restoring the previous state on error.
func (s *MemoryStore) InTx(ctx context.Context, fn func(ctx context.Context, repos repository.Factory) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := s.lock("InTx"); err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.Rollbacks++
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.Commits++
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Users() repository.UserRepository         { return memoryUsers{s} }
func (s *MemoryStore) Tracks() repository.TrackRepository       { return memoryTracks{s} }
func (s *MemoryStore) Statuses() repository.StatusRepository    { return memoryStatuses{s} }
func (s *MemoryStore) Bookmarks() repository.BookmarkRepository { return memoryBookmarks{s} }
func (s *MemoryStore) Archives() repository.ArchiveRepository   { return memoryArchives{s} }
func (s *MemoryStore) Invoices() repository.InvoiceRepository   { return memoryInvoices{s} }
func (s *MemoryStore) Settings() repository.SettingsRepository  { return memorySettings{s} }
func (s *MemoryStore) Bonuses() repository.BonusRepository      { return memoryBonuses{s} }
func (s *MemoryStore) Outbox() repository.OutboxRepository      { return memoryOutbox{s} }

var (
	_ repository.Factory    = (*MemoryStore)(nil)
	_ repository.Transactor = (*MemoryStore)(nil)
)

// SeedUser stores u as is, assigning an id when missing.
func (s *MemoryStore) SeedUser(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.id()
	} else if u.ID > s.data.nextID {
		s.data.nextID = u.ID
	}
	if u.Role == "" {
		u.Role = model.RoleClient
	}
	s.data.users[u.ID] = u
	return u
}

// SeedStatus stores a status definition.
func (s *MemoryStore) SeedStatus(text string) model.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := model.Status{ID: s.id(), Text: text}
	s.data.statuses[st.ID] = st
	return st
}

// SeedTrack stores a track with history built from statuses in order.
func (s *MemoryStore) SeedTrack(t model.Track, statuses ...model.Status) model.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, st := range statuses {
		t.History = append(t.History, model.HistoryEntry{StatusID: st.ID, StatusText: st.Text, Date: at.Add(time.Duration(i) * time.Hour)})
		id := st.ID
		t.CurrentStatusID = &id
	}
	s.data.tracks[t.ID] = t
	return t
}

// SeedBookmark stores a bookmark as is.
func (s *MemoryStore) SeedBookmark(b model.Bookmark) model.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.id()
	s.data.bookmarks[b.ID] = b
	return b
}

// User returns the stored user.
func (s *MemoryStore) User(id int64) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.data.users[id]
	return u, ok
}

// Track returns the first stored track with the exact number.
func (s *MemoryStore) Track(number string) (model.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.findExact(number)
	return t, ok
}

// AllTracks returns every stored track ordered by id.
func (s *MemoryStore) AllTracks() []model.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedTracks()
}

// UserBookmarks returns the stored bookmarks of a user ordered by id.
func (s *MemoryStore) UserBookmarks(userID int64) []model.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Bookmark
	for _, b := range s.data.bookmarks {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UserArchive returns the archived bookmarks of a user ordered by id.
func (s *MemoryStore) UserArchive(userID int64) []model.ArchivedBookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ArchivedBookmark
	for _, a := range s.data.userArch {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GlobalArchive returns every global archive record ordered by id.
func (s *MemoryStore) GlobalArchive() []model.Archive {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Collect(maps.Values(s.data.archives))
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SeedArchive stores a global archive record.
func (s *MemoryStore) SeedArchive(a model.Archive) model.Archive {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	s.data.archives[a.ID] = a
	return a
}

// SeedUserArchive stores an archived bookmark.
func (s *MemoryStore) SeedUserArchive(a model.ArchivedBookmark) model.ArchivedBookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	s.data.userArch[a.ID] = a
	return a
}

// UserInvoices returns the invoices of a user ordered by id.
func (s *MemoryStore) UserInvoices(userID int64) []model.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userInvoices(userID)
}

// Events returns every enqueued event in order.
func (s *MemoryStore) Events() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.events)
}

// Payouts returns recorded bonus payouts keyed by idempotency key.
func (s *MemoryStore) Payouts() map[string]model.BonusPayout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.data.payouts)
}

func (s *MemoryStore) sortedTracks() []model.Track {
	out := slices.Collect(maps.Values(s.data.tracks))
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) findExact(number string) (model.Track, bool) {
	for _, t := range s.sortedTracks() {
		if t.Number == number {
			return t, true
		}
	}
	return model.Track{}, false
}

func (s *MemoryStore) userInvoices(userID int64) []model.Invoice {
	var out []model.Invoice
	for _, inv := range s.data.invoices {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Create(ctx context.Context, user model.User) (*model.User, error) {
	s := r.s
	if err := s.lock("Users.Create"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	for _, u := range s.data.users {
		if u.Phone == user.Phone {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	if user.ReferrerID != nil {
		if _, ok := s.data.users[*user.ReferrerID]; !ok {
			return nil, domainErrors.ErrReferrerNotFound
		}
	}
	user.ID = s.id()
	user.CreatedAt = time.Now()
	s.data.users[user.ID] = user
	return &user, nil
}

func (r memoryUsers) get(op string, id int64) (*model.User, error) {
	s := r.s
	if err := s.lock(op); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	u, ok := s.data.users[id]
	if !ok {
		return nil, domainErrors.ErrUserNotFound
	}
	return &u, nil
}

func (r memoryUsers) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.get("Users.GetByID", id)
}

func (r memoryUsers) GetByIDForUpdate(ctx context.Context, id int64) (*model.User, error) {
	return r.get("Users.GetByIDForUpdate", id)
}

func (r memoryUsers) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	s := r.s
	if err := s.lock("Users.GetByPhone"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	for _, u := range s.data.users {
		if u.Phone == phone {
			return &u, nil
		}
	}
	return nil, domainErrors.ErrUserNotFound
}

func (r memoryUsers) CountAll(ctx context.Context) (int64, error) {
	s := r.s
	if err := s.lock("Users.CountAll"); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	defer s.mu.Unlock()
	return int64(len(s.data.users)), nil
}

func (r memoryUsers) update(op string, id int64, fn func(u *model.User)) error {
	s := r.s
	if err := s.lock(op); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	u, ok := s.data.users[id]
	if !ok {
		return domainErrors.ErrUserNotFound
	}
	fn(&u)
	s.data.users[id] = u
	return nil
}

func (r memoryUsers) AddBonuses(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.update("Users.AddBonuses", id, func(u *model.User) {
		balance = u.BonusBalance().Add(amount)
		u.Bonuses = &balance
	})
	return balance, err
}

func (r memoryUsers) SetBonuses(ctx context.Context, id int64, amount decimal.Decimal) error {
	return r.update("Users.SetBonuses", id, func(u *model.User) { u.Bonuses = &amount })
}

func (r memoryUsers) SetReferralPercentage(ctx context.Context, id int64, percent *decimal.Decimal) error {
	return r.update("Users.SetReferralPercentage", id, func(u *model.User) { u.ReferralBonusPercentage = percent })
}

func (r memoryUsers) SetPersonalRate(ctx context.Context, id int64, rate *decimal.Decimal) error {
	return r.update("Users.SetPersonalRate", id, func(u *model.User) { u.PersonalRate = rate })
}

func (r memoryUsers) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.update("Users.UpdatePasswordHash", id, func(u *model.User) { u.PasswordHash = hash })
}

func (r memoryUsers) ListPartners(ctx context.Context, search string) ([]model.Partner, error) {
	s := r.s
	if err := s.lock("Users.ListPartners"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()

	counts := make(map[int64]int)
	for _, u := range s.data.users {
		if u.ReferrerID != nil {
			counts[*u.ReferrerID]++
		}
	}
	needle := strings.ToLower(search)
	var out []model.Partner
	for id, n := range counts {
		u, ok := s.data.users[id]
		if !ok {
			continue
		}
		if search != "" && u.Phone != search &&
			!strings.Contains(strings.ToLower(u.Name), needle) &&
			!strings.Contains(strings.ToLower(u.Surname), needle) {
			continue
		}
		out = append(out, model.Partner{User: u, ReferralsCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memoryUsers) List(ctx context.Context, filter model.UserListFilter) ([]model.UserActivity, int64, error) {
	s := r.s
	if err := s.lock("Users.List"); err != nil {
		s.mu.Unlock()
		return nil, 0, err
	}
	defer s.mu.Unlock()

	withInvoice := make(map[int64]bool)
	for _, inv := range s.data.invoices {
		if inv.Status == filter.InvoiceStatus {
			withInvoice[inv.UserID] = true
		}
	}
	needle := strings.ToLower(filter.Search)
	var out []model.UserActivity
	for _, u := range s.data.users {
		switch {
		case filter.Search != "" && u.Phone != filter.Search &&
			!strings.Contains(strings.ToLower(u.Name), needle) &&
			!strings.Contains(strings.ToLower(u.Surname), needle):
			continue
		case filter.Role != "" && u.Role != filter.Role:
			continue
		case filter.Filial != "" && u.SelectedFilial != filter.Filial:
			continue
		case filter.InvoiceStatus != "" && !withInvoice[u.ID]:
			continue
		}
		a := model.UserActivity{User: u}
		for _, b := range s.data.bookmarks {
			if b.UserID == u.ID {
				a.BookmarkCount++
			}
		}
		for _, e := range s.data.userArch {
			if e.UserID == u.ID {
				a.ArchiveCount++
			}
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.ByActivity && out[i].TotalActivity() != out[j].TotalActivity() {
			return out[i].TotalActivity() > out[j].TotalActivity()
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt) != filter.Oldest
		}
		return (out[i].ID > out[j].ID) != filter.Oldest
	})

	total := int64(len(out))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(out) {
		return nil, total, nil
	}
	end := min(start+filter.Limit, len(out))
	return out[start:end], total, nil
}

func (r memoryUsers) ListReferrals(ctx context.Context, referrerID int64) ([]model.User, error) {
	s := r.s
	if err := s.lock("Users.ListReferrals"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	var out []model.User
	for _, u := range s.data.users {
		if u.ReferrerID != nil && *u.ReferrerID == referrerID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memoryStatuses struct{ s *MemoryStore }

func (r memoryStatuses) List(ctx context.Context) ([]model.Status, error) {
	s := r.s
	if err := s.lock("Statuses.List"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	out := slices.Collect(maps.Values(s.data.statuses))
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memoryStatuses) GetByID(ctx context.Context, id int64) (*model.Status, error) {
	s := r.s
	if err := s.lock("Statuses.GetByID"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	st, ok := s.data.statuses[id]
	if !ok {
		return nil, domainErrors.ErrStatusNotFound
	}
	return &st, nil
}

func (r memoryStatuses) Create(ctx context.Context, text string) (*model.Status, error) {
	s := r.s
	if err := s.lock("Statuses.Create"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	for _, st := range s.data.statuses {
		if st.Text == text {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	st := model.Status{ID: s.id(), Text: text}
	s.data.statuses[st.ID] = st
	return &st, nil
}

type memoryTracks struct{ s *MemoryStore }

func (r memoryTracks) FindByPattern(ctx context.Context, pattern string) (*model.Track, error) {
	s := r.s
	if err := s.lock("Tracks.FindByPattern"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, err
	}
	for _, t := range s.sortedTracks() {
		if re.MatchString(t.Number) {
			return &t, nil
		}
	}
	return nil, domainErrors.ErrTrackNotFound
}

func (r memoryTracks) exact(op, number string) (*model.Track, error) {
	s := r.s
	if err := s.lock(op); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	t, ok := s.findExact(number)
	if !ok {
		return nil, domainErrors.ErrTrackNotFound
	}
	return &t, nil
}

func (r memoryTracks) FindExact(ctx context.Context, number string) (*model.Track, error) {
	return r.exact("Tracks.FindExact", number)
}

func (r memoryTracks) LockExact(ctx context.Context, number string) (*model.Track, error) {
	return r.exact("Tracks.LockExact", number)
}

func (r memoryTracks) GetByID(ctx context.Context, id int64) (*model.Track, error) {
	s := r.s
	if err := s.lock("Tracks.GetByID"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	t, ok := s.data.tracks[id]
	if !ok {
		return nil, domainErrors.ErrTrackNotFound
	}
	t.History = slices.Clone(t.History)
	return &t, nil
}

func (r memoryTracks) Create(ctx context.Context, input model.TrackInput) (*model.Track, error) {
	s := r.s
	if err := s.lock("Tracks.Create"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	now := time.Now()
	t := model.Track{
		ID:        s.id(),
		Number:    input.Number,
		Price:     input.Price,
		Weight:    input.Weight,
		Place:     input.Place,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.data.tracks[t.ID] = t
	return &t, nil
}

func (r memoryTracks) Update(ctx context.Context, id int64, input model.TrackInput) error {
	s := r.s
	if err := s.lock("Tracks.Update"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	t, ok := s.data.tracks[id]
	if !ok {
		return domainErrors.ErrTrackNotFound
	}
	if input.Price != nil {
		t.Price = input.Price
	}
	if input.Weight != nil {
		t.Weight = input.Weight
	}
	if input.Place != nil {
		t.Place = input.Place
	}
	t.UpdatedAt = time.Now()
	s.data.tracks[id] = t
	return nil
}

func (r memoryTracks) AssignUser(ctx context.Context, id int64, phone string) (*string, error) {
	s := r.s
	if err := s.lock("Tracks.AssignUser"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	t, ok := s.data.tracks[id]
	if !ok {
		return nil, domainErrors.ErrTrackNotFound
	}
	previous := t.UserPhone
	t.UserPhone = &phone
	s.data.tracks[id] = t
	return previous, nil
}

func (r memoryTracks) AppendHistory(ctx context.Context, trackID, statusID int64, at time.Time) error {
	s := r.s
	if err := s.lock("Tracks.AppendHistory"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	t, ok := s.data.tracks[trackID]
	if !ok {
		return domainErrors.ErrTrackNotFound
	}
	st, ok := s.data.statuses[statusID]
	if !ok {
		return domainErrors.ErrStatusNotFound
	}
	t.History = append(slices.Clone(t.History), model.HistoryEntry{StatusID: st.ID, StatusText: st.Text, Date: at})
	t.CurrentStatusID = &st.ID
	t.UpdatedAt = time.Now()
	s.data.tracks[trackID] = t
	return nil
}

func (r memoryTracks) DeleteByNumber(ctx context.Context, number string) error {
	s := r.s
	if err := s.lock("Tracks.DeleteByNumber"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	t, ok := s.findExact(number)
	if !ok {
		return domainErrors.ErrTrackNotFound
	}
	delete(s.data.tracks, t.ID)
	for id, b := range s.data.bookmarks {
		if b.TrackID != nil && *b.TrackID == t.ID {
			b.TrackID = nil
			s.data.bookmarks[id] = b
		}
	}
	return nil
}

func (r memoryTracks) List(ctx context.Context, filter model.TrackFilter) ([]model.Track, int64, error) {
	s := r.s
	if err := s.lock("Tracks.List"); err != nil {
		s.mu.Unlock()
		return nil, 0, err
	}
	defer s.mu.Unlock()

	var matched []model.Track
	for _, t := range s.sortedTracks() {
		if filter.Search != "" && !strings.Contains(strings.ToLower(t.Number), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.StatusID != nil && (t.CurrentStatusID == nil || *t.CurrentStatusID != *filter.StatusID) {
			continue
		}
		if filter.UserFilter == model.UserFilterExists && t.UserPhone == nil {
			continue
		}
		if filter.UserFilter == model.UserFilterNotExists && t.UserPhone != nil {
			continue
		}
		matched = append(matched, t)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			if filter.Oldest {
				return a.UpdatedAt.Before(b.UpdatedAt)
			}
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		if filter.Oldest {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(matched) {
		return []model.Track{}, total, nil
	}
	end := min(start+filter.Limit, len(matched))
	return matched[start:end], total, nil
}

func (r memoryTracks) ListSweepCandidates(ctx context.Context, limit int) ([]model.SweepCandidate, error) {
	s := r.s
	if err := s.lock("Tracks.ListSweepCandidates"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()

	var out []model.SweepCandidate
	for _, t := range s.sortedTracks() {
		if len(out) >= limit {
			break
		}
		if !t.IsCompleted() || s.referenced(t) {
			continue
		}
		var owner *model.ArchivedBookmark
		for _, a := range s.data.userArch {
			if a.TrackNumber == t.Number && (owner == nil || a.CreatedAt.Before(owner.CreatedAt)) {
				entry := a
				owner = &entry
			}
		}
		if owner != nil {
			out = append(out, model.SweepCandidate{UserID: owner.UserID, TrackNumber: t.Number})
		}
	}
	return out, nil
}

func (s *MemoryStore) referenced(t model.Track) bool {
	for _, b := range s.data.bookmarks {
		if (b.TrackID != nil && *b.TrackID == t.ID) || strings.EqualFold(b.TrackNumber, t.Number) {
			return true
		}
	}
	return false
}

func (r memoryTracks) ClearResolvedConflicts(ctx context.Context) error {
	s := r.s
	if err := s.lock("Tracks.ClearResolvedConflicts"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	for number := range s.data.conflicts {
		if _, ok := s.findExact(number); !ok {
			delete(s.data.conflicts, number)
		}
	}
	return nil
}

func (r memoryTracks) RecordArchiveConflicts(ctx context.Context, limit int) ([]string, error) {
	s := r.s
	if err := s.lock("Tracks.RecordArchiveConflicts"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()

	archived := make(map[string]bool)
	for _, a := range s.data.archives {
		archived[a.TrackNumber] = true
	}
	seen := make(map[string]bool)
	var out []string
	for _, t := range s.data.tracks {
		if archived[t.Number] && !seen[t.Number] && !s.data.conflicts[t.Number] {
			seen[t.Number] = true
			out = append(out, t.Number)
		}
	}
	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	for _, number := range out {
		s.data.conflicts[number] = true
	}
	return out, nil
}
