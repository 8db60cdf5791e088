package test

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/domain/model"
)

type memoryBookmarks struct{ s *MemoryStore }

func (r memoryBookmarks) Create(ctx context.Context, bookmark model.Bookmark) (*model.Bookmark, error) {
	s := r.s
	if err := s.lock("Bookmarks.Create"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	if _, ok := s.data.users[bookmark.UserID]; !ok {
		return nil, domainErrors.ErrUserNotFound
	}
	for _, b := range s.data.bookmarks {
		if b.UserID == bookmark.UserID && strings.EqualFold(b.TrackNumber, bookmark.TrackNumber) {
			return nil, domainErrors.ErrDuplicateBookmark
		}
	}
	bookmark.ID = s.id()
	bookmark.CreatedAt = time.Now()
	s.data.bookmarks[bookmark.ID] = bookmark
	return &bookmark, nil
}

func (r memoryBookmarks) ListByUser(ctx context.Context, userID int64) ([]model.Bookmark, error) {
	s := r.s
	if err := s.lock("Bookmarks.ListByUser"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	var out []model.Bookmark
	for _, b := range s.data.bookmarks {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r memoryBookmarks) Bind(ctx context.Context, bookmarkID, trackID int64, statusID *int64) error {
	s := r.s
	if err := s.lock("Bookmarks.Bind"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	b, ok := s.data.bookmarks[bookmarkID]
	if !ok {
		return domainErrors.ErrBookmarkNotFound
	}
	b.TrackID = &trackID
	b.CurrentStatusID = statusID
	s.data.bookmarks[bookmarkID] = b
	return nil
}

func (r memoryBookmarks) Delete(ctx context.Context, userID int64, trackNumber string) error {
	s := r.s
	if err := s.lock("Bookmarks.Delete"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	for id, b := range s.data.bookmarks {
		if b.UserID == userID && strings.EqualFold(b.TrackNumber, trackNumber) {
			delete(s.data.bookmarks, id)
			return nil
		}
	}
	return domainErrors.ErrBookmarkNotFound
}

func (r memoryBookmarks) RemoveExact(ctx context.Context, userID int64, trackNumber string) (int64, error) {
	s := r.s
	if err := s.lock("Bookmarks.RemoveExact"); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	defer s.mu.Unlock()
	var n int64
	for id, b := range s.data.bookmarks {
		if b.UserID == userID && b.TrackNumber == trackNumber {
			delete(s.data.bookmarks, id)
			n++
		}
	}
	return n, nil
}

func (r memoryBookmarks) MarkPaid(ctx context.Context, userID int64, trackNumbers []string) error {
	s := r.s
	if err := s.lock("Bookmarks.MarkPaid"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	for id, b := range s.data.bookmarks {
		if b.UserID == userID && slices.Contains(trackNumbers, b.TrackNumber) {
			b.IsPaid = true
			s.data.bookmarks[id] = b
		}
	}
	return nil
}

func (r memoryBookmarks) ListWithoutStatus(ctx context.Context) ([]model.OwnedBookmark, error) {
	s := r.s
	if err := s.lock("Bookmarks.ListWithoutStatus"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	var out []model.OwnedBookmark
	for _, b := range s.data.bookmarks {
		if b.CurrentStatusID != nil {
			continue
		}
		out = append(out, model.OwnedBookmark{Bookmark: b, Owner: s.data.users[b.UserID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type memoryArchives struct{ s *MemoryStore }

func (r memoryArchives) AddUserEntry(ctx context.Context, entry model.ArchivedBookmark) (*model.ArchivedBookmark, error) {
	s := r.s
	if err := s.lock("Archives.AddUserEntry"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	for _, a := range s.data.userArch {
		if a.UserID == entry.UserID && a.TrackNumber == entry.TrackNumber {
			return nil, nil
		}
	}
	entry.ID = s.id()
	entry.History = slices.Clone(entry.History)
	s.data.userArch[entry.ID] = entry
	return &entry, nil
}

func (r memoryArchives) ListUserEntries(ctx context.Context, userID int64) ([]model.ArchivedBookmark, error) {
	s := r.s
	if err := s.lock("Archives.ListUserEntries"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	var out []model.ArchivedBookmark
	for _, a := range s.data.userArch {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memoryArchives) DeleteUserEntry(ctx context.Context, userID int64, trackNumber string) error {
	s := r.s
	if err := s.lock("Archives.DeleteUserEntry"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	for id, a := range s.data.userArch {
		if a.UserID == userID && a.TrackNumber == trackNumber {
			delete(s.data.userArch, id)
			return nil
		}
	}
	return domainErrors.ErrArchiveEntryNotFound
}

func (r memoryArchives) AddGlobal(ctx context.Context, archive model.Archive) (*model.Archive, error) {
	s := r.s
	if err := s.lock("Archives.AddGlobal"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	archive.ID = s.id()
	archive.History = slices.Clone(archive.History)
	s.data.archives[archive.ID] = archive
	return &archive, nil
}

type memoryInvoices struct{ s *MemoryStore }

func (r memoryInvoices) GetPending(ctx context.Context, userID int64) (*model.Invoice, error) {
	s := r.s
	if err := s.lock("Invoices.GetPending"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	for _, inv := range s.userInvoices(userID) {
		if inv.Status == model.InvoiceStatusPending {
			inv.Items = slices.Clone(inv.Items)
			return &inv, nil
		}
	}
	return nil, domainErrors.ErrInvoiceNotFound
}

func (r memoryInvoices) GetForUpdate(ctx context.Context, userID, invoiceID int64) (*model.Invoice, error) {
	s := r.s
	if err := s.lock("Invoices.GetForUpdate"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	inv, ok := s.data.invoices[invoiceID]
	if !ok || inv.UserID != userID {
		return nil, domainErrors.ErrInvoiceNotFound
	}
	inv.Items = slices.Clone(inv.Items)
	return &inv, nil
}

func (r memoryInvoices) ListByUser(ctx context.Context, userID int64) ([]model.Invoice, error) {
	s := r.s
	if err := s.lock("Invoices.ListByUser"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	out := s.userInvoices(userID)
	slices.Reverse(out)
	return out, nil
}

func (r memoryInvoices) CreatePending(ctx context.Context, userID int64) (*model.Invoice, error) {
	s := r.s
	if err := s.lock("Invoices.CreatePending"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	for _, inv := range s.userInvoices(userID) {
		if inv.Status == model.InvoiceStatusPending {
			return nil, domainErrors.ErrConflict
		}
	}
	now := time.Now()
	inv := model.Invoice{ID: s.id(), UserID: userID, Status: model.InvoiceStatusPending, CreatedAt: now, UpdatedAt: now}
	s.data.invoices[inv.ID] = inv
	return &inv, nil
}

func (r memoryInvoices) AddItem(ctx context.Context, invoiceID int64, item model.InvoiceItem) error {
	s := r.s
	if err := s.lock("Invoices.AddItem"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	inv, ok := s.data.invoices[invoiceID]
	if !ok {
		return domainErrors.ErrInvoiceNotFound
	}
	if inv.Contains(item.TrackNumber) {
		return domainErrors.ErrAlreadyExists
	}
	inv.Items = slices.Clone(inv.Items)
	inv.Add(item)
	s.data.invoices[invoiceID] = inv
	return nil
}

func (r memoryInvoices) Touch(ctx context.Context, invoiceID int64) error {
	s := r.s
	if err := s.lock("Invoices.Touch"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	inv, ok := s.data.invoices[invoiceID]
	if !ok {
		return domainErrors.ErrInvoiceNotFound
	}
	inv.UpdatedAt = time.Now()
	s.data.invoices[invoiceID] = inv
	return nil
}

func (r memoryInvoices) Delete(ctx context.Context, invoiceID int64) error {
	s := r.s
	if err := s.lock("Invoices.Delete"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	delete(s.data.invoices, invoiceID)
	return nil
}

func (r memoryInvoices) MarkPaid(ctx context.Context, invoiceID int64) error {
	s := r.s
	if err := s.lock("Invoices.MarkPaid"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	inv, ok := s.data.invoices[invoiceID]
	if !ok || inv.Status != model.InvoiceStatusPending {
		return domainErrors.ErrInvoiceAlreadyPaid
	}
	inv.Status = model.InvoiceStatusPaid
	inv.UpdatedAt = time.Now()
	s.data.invoices[invoiceID] = inv
	return nil
}

type memorySettings struct{ s *MemoryStore }

func (r memorySettings) Get(ctx context.Context) (*model.Settings, error) {
	s := r.s
	if err := s.lock("Settings.Get"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	if s.data.settings == nil {
		return nil, domainErrors.ErrNotFound
	}
	out := *s.data.settings
	return &out, nil
}

func (r memorySettings) Save(ctx context.Context, settings model.Settings) error {
	s := r.s
	if err := s.lock("Settings.Save"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	settings.UpdatedAt = time.Now()
	s.data.settings = &settings
	return nil
}

type memoryBonuses struct{ s *MemoryStore }

func (r memoryBonuses) RecordPayout(ctx context.Context, payout model.BonusPayout) (bool, error) {
	s := r.s
	if err := s.lock("Bonuses.RecordPayout"); err != nil {
		s.mu.Unlock()
		return false, err
	}
	defer s.mu.Unlock()
	if _, exists := s.data.payouts[payout.Key]; exists {
		return false, nil
	}
	s.data.payouts[payout.Key] = payout
	return true, nil
}

type memoryOutbox struct{ s *MemoryStore }

func (r memoryOutbox) Enqueue(ctx context.Context, event model.Event) error {
	s := r.s
	if err := s.lock("Outbox.Enqueue"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	now := time.Now()
	event.CreatedAt, event.UpdatedAt = now, now
	s.data.events = append(s.data.events, event)
	return nil
}

func (r memoryOutbox) FetchPending(ctx context.Context, limit int) ([]model.Event, error) {
	s := r.s
	if err := s.lock("Outbox.FetchPending"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	var out []model.Event
	for i, e := range s.data.events {
		if len(out) >= limit {
			break
		}
		if e.Status != model.EventStatusNew {
			continue
		}
		e.Status = model.EventStatusProcessing
		s.data.events[i] = e
		out = append(out, e)
	}
	return out, nil
}

func (r memoryOutbox) update(op string, id uuid.UUID, fn func(e *model.Event)) error {
	s := r.s
	if err := s.lock(op); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	for i, e := range s.data.events {
		if e.ID == id {
			fn(&e)
			e.UpdatedAt = time.Now()
			s.data.events[i] = e
			return nil
		}
	}
	return nil
}

func (r memoryOutbox) MarkSent(ctx context.Context, id uuid.UUID) error {
	return r.update("Outbox.MarkSent", id, func(e *model.Event) { e.Status = model.EventStatusSent })
}

func (r memoryOutbox) MarkFailed(ctx context.Context, id uuid.UUID, reason string, maxAttempts int) error {
	return r.update("Outbox.MarkFailed", id, func(e *model.Event) {
		e.Attempts++
		e.LastError = &reason
		e.Status = model.EventStatusNew
		if e.Attempts >= maxAttempts {
			e.Status = model.EventStatusFailed
		}
	})
}
