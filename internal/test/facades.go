package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/parceltrack/internal/domain/model"
)

// ArchiveFacadeStub mimics sweeper interactions with the parcel facade.
type ArchiveFacadeStub struct {
	Candidates [][]model.SweepCandidate
	ArchiveFn  func(context.Context, int64, string) (*model.Archive, error)
	Archived   []model.SweepCandidate
	mu         sync.Mutex
	calls      int32
}

// Lock exposes internal mutex for external synchronization.
func (s *ArchiveFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *ArchiveFacadeStub) Unlock() { s.mu.Unlock() }

// SweepCandidates returns batches from the configured queue.
func (s *ArchiveFacadeStub) SweepCandidates(ctx context.Context, limit int) ([]model.SweepCandidate, error) {
	call := atomic.AddInt32(&s.calls, 1)
	if int(call) <= len(s.Candidates) {
		return s.Candidates[call-1], nil
	}
	return nil, nil
}

// ArchiveTrack records the request.
func (s *ArchiveFacadeStub) ArchiveTrack(ctx context.Context, userID int64, trackNumber string) (*model.Archive, error) {
	s.mu.Lock()
	s.Archived = append(s.Archived, model.SweepCandidate{UserID: userID, TrackNumber: trackNumber})
	s.mu.Unlock()
	if s.ArchiveFn != nil {
		return s.ArchiveFn(ctx, userID, trackNumber)
	}
	return &model.Archive{ID: 1, TrackNumber: trackNumber, UserID: &userID}, nil
}

// ConflictFacadeStub returns preconfigured conflict batches.
type ConflictFacadeStub struct {
	Conflicts []string
	Err       error
	calls     int32
}

// ArchiveConflicts reports configured numbers.
func (s *ConflictFacadeStub) ArchiveConflicts(ctx context.Context, limit int) ([]string, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.Conflicts, s.Err
}

// Calls returns how many times the stub was polled.
func (s *ConflictFacadeStub) Calls() int {
	return int(atomic.LoadInt32(&s.calls))
}

// FailedEvent stores an EventFailed invocation.
type FailedEvent struct {
	ID     uuid.UUID
	Reason string
}

// OutboxFacadeStub serves events and records delivery outcomes.
type OutboxFacadeStub struct {
	Events    [][]model.Event
	Delivered []uuid.UUID
	Failed    []FailedEvent
	mu        sync.Mutex
	calls     int32
}

// Lock exposes internal mutex for external synchronization.
func (s *OutboxFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *OutboxFacadeStub) Unlock() { s.mu.Unlock() }

// PendingEvents returns batches from the configured queue.
func (s *OutboxFacadeStub) PendingEvents(ctx context.Context, limit int) ([]model.Event, error) {
	call := atomic.AddInt32(&s.calls, 1)
	if int(call) <= len(s.Events) {
		return s.Events[call-1], nil
	}
	time.Sleep(time.Millisecond)
	return nil, nil
}

// EventDelivered records a delivered event.
func (s *OutboxFacadeStub) EventDelivered(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Delivered = append(s.Delivered, id)
	return nil
}

// EventFailed records a failed event.
func (s *OutboxFacadeStub) EventFailed(ctx context.Context, id uuid.UUID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failed = append(s.Failed, FailedEvent{ID: id, Reason: reason})
	return nil
}

// PublisherStub collects published events.
type PublisherStub struct {
	PublishFn func(context.Context, model.Event) error
	Published []model.Event
	mu        sync.Mutex
}

// Publish records the event unless PublishFn rejects it.
func (s *PublisherStub) Publish(ctx context.Context, event model.Event) error {
	if s.PublishFn != nil {
		if err := s.PublishFn(ctx, event); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Published = append(s.Published, event)
	return nil
}

// Close satisfies the publisher contract.
func (s *PublisherStub) Close() error { return nil }

// Count returns the number of published events.
func (s *PublisherStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Published)
}
