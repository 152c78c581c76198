// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

// Package store holds the canonical in-memory event collection for the
// visible calendar window. Mutations apply optimistically: local state
// changes immediately, the backend is called, and on failure the state is
// rolled back to the snapshot captured when that mutation was issued.
//
// Rollbacks are version-stamped per event ID. If a second mutation on the
// same event has already been applied when an earlier one fails, the stale
// rollback is discarded instead of stomping the newer optimistic state; the
// server remains the final arbiter.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ushiradineth/koano/internal/models"
	"github.com/ushiradineth/koano/internal/pkg/errors"
	"github.com/ushiradineth/koano/internal/pkg/logger"
)

// Backend is the remote persistence collaborator.
type Backend interface {
	List(ctx context.Context, startDay, endDay time.Time) ([]*models.Event, error)
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) (*models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Store is the canonical event collection.
type Store struct {
	mu       sync.Mutex
	backend  Backend
	log      *logger.Logger
	events   []*models.Event
	active   *models.Event
	versions map[uuid.UUID]uint64
}

// New creates a store backed by the given backend.
func New(backend Backend, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		backend:  backend,
		log:      log.Named("store"),
		versions: make(map[uuid.UUID]uint64),
	}
}

// Load replaces the collection with the backend's events for the window
// [startDay, endDay].
func (s *Store) Load(ctx context.Context, startDay, endDay time.Time) error {
	events, err := s.backend.List(ctx, startDay, endDay)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	s.mu.Lock()
	s.events = events
	s.mu.Unlock()

	s.log.Debug("loaded event window",
		"start_day", startDay.Format("2006-01-02"),
		"end_day", endDay.Format("2006-01-02"),
		"count", len(events),
	)
	return nil
}

// Events returns a snapshot copy of the collection.
func (s *Store) Events() []*models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Event, len(s.events))
	for i, e := range s.events {
		out[i] = e.Clone()
	}
	return out
}

// GetByID returns the event with the given ID.
func (s *Store) GetByID(id uuid.UUID) (*models.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.events {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return nil, false
}

// Active returns the currently selected event, or nil.
func (s *Store) Active() *models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.Clone()
}

// SetActive marks an event as selected. Pass nil to clear the selection.
func (s *Store) SetActive(event *models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = event.Clone()
}

// Reset discards all local state. Called on sign-out.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.active = nil
	s.versions = make(map[uuid.UUID]uint64)
}

// Add inserts a provisional event immediately and persists it. On success
// the provisional entry is replaced by the server-returned entity; on
// failure the provisional entry is removed entirely and the error surfaced.
func (s *Store) Add(ctx context.Context, draft *models.Event) (*models.Event, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	provisionalID := draft.ID

	s.mu.Lock()
	s.events = append(s.events, draft.Clone())
	s.active = draft.Clone()
	s.mu.Unlock()

	created, err := s.backend.Create(ctx, draft)
	if err != nil {
		s.mu.Lock()
		s.removeLocked(provisionalID)
		if s.active != nil && s.active.ID == provisionalID {
			s.active = nil
		}
		s.mu.Unlock()

		s.log.Warn("create rejected, provisional event removed",
			"provisional_id", provisionalID,
			"error", err,
		)
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.mu.Lock()
	s.replaceLocked(provisionalID, created)
	s.active = created.Clone()
	s.mu.Unlock()

	s.log.Info("created event",
		"id", created.ID,
		"provisional_id", provisionalID,
		"title", created.Title,
	)
	return created.Clone(), nil
}

// Edit writes the updated event into local state immediately and persists
// it. On failure the exact pre-edit snapshot is restored, unless a newer
// mutation has been applied to the same event in the meantime.
func (s *Store) Edit(ctx context.Context, updated *models.Event) (*models.Event, error) {
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	snapshot := s.findLocked(updated.ID)
	if snapshot == nil {
		s.mu.Unlock()
		s.log.Warn("edit of unknown event abandoned", "id", updated.ID)
		return nil, errors.NotFound("event")
	}
	snapshot = snapshot.Clone()
	version := s.versions[updated.ID] + 1
	s.versions[updated.ID] = version
	s.replaceLocked(updated.ID, updated)
	s.active = updated.Clone()
	s.mu.Unlock()

	confirmed, err := s.backend.Update(ctx, updated)
	if err != nil {
		s.mu.Lock()
		if s.versions[updated.ID] == version {
			s.replaceLocked(updated.ID, snapshot)
			s.active = snapshot.Clone()
			s.log.Warn("update rejected, snapshot restored", "id", updated.ID, "error", err)
		} else {
			s.log.Warn("update rejected, stale rollback discarded",
				"id", updated.ID,
				"version", version,
				"latest", s.versions[updated.ID],
			)
		}
		s.mu.Unlock()
		return nil, fmt.Errorf("update event: %w", err)
	}

	s.mu.Lock()
	if s.versions[updated.ID] == version {
		s.replaceLocked(confirmed.ID, confirmed)
		s.active = confirmed.Clone()
	}
	s.mu.Unlock()

	s.log.Info("updated event", "id", confirmed.ID, "title", confirmed.Title)
	return confirmed.Clone(), nil
}

// Remove deletes the event immediately and persists the deletion. On
// failure the exact snapshot is reinserted.
func (s *Store) Remove(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	snapshot := s.findLocked(id)
	if snapshot == nil {
		s.mu.Unlock()
		s.log.Warn("remove of unknown event abandoned", "id", id)
		return errors.NotFound("event")
	}
	snapshot = snapshot.Clone()
	version := s.versions[id] + 1
	s.versions[id] = version
	s.removeLocked(id)
	if s.active != nil && s.active.ID == id {
		s.active = nil
	}
	s.mu.Unlock()

	if err := s.backend.Delete(ctx, id); err != nil {
		s.mu.Lock()
		if s.versions[id] == version {
			s.events = append(s.events, snapshot)
			s.active = snapshot.Clone()
			s.log.Warn("delete rejected, event reinserted", "id", id, "error", err)
		}
		s.mu.Unlock()
		return fmt.Errorf("delete event: %w", err)
	}

	s.log.Info("deleted event", "id", id)
	return nil
}

// findLocked returns the stored entry with the given ID. Caller holds mu.
func (s *Store) findLocked(id uuid.UUID) *models.Event {
	for _, e := range s.events {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// replaceLocked swaps the entry matching id for the given event, keeping
// list position. Caller holds mu.
func (s *Store) replaceLocked(id uuid.UUID, event *models.Event) {
	for i, e := range s.events {
		if e.ID == id {
			s.events[i] = event.Clone()
			return
		}
	}
}

// removeLocked drops the entry with the given ID. Caller holds mu.
func (s *Store) removeLocked(id uuid.UUID) {
	for i, e := range s.events {
		if e.ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return
		}
	}
}
