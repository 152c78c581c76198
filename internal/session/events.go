// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

package session

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ushiradineth/koano/internal/models"
	"github.com/ushiradineth/koano/internal/pkg/errors"
)

// CreateEvent creates an event from the form boundary, e.g. the event
// dialog, as opposed to a selection gesture.
// POST /api/v1/events
func (s *Server) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var in models.CreateEventInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, errors.InvalidInput("invalid event payload"))
		return
	}
	if err := in.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	draft := &models.Event{
		ID:        uuid.New(),
		Title:     in.Title,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Timezone:  in.Timezone,
		Repeated:  in.Repeated,
	}
	created, err := s.store.Add(r.Context(), draft)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusCreated, created)
}

// UpdateEvent applies a partial update, e.g. a rename or a recurrence
// change from the event dialog.
// PUT /api/v1/events/{id}
func (s *Server) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, errors.InvalidInput("invalid event id"))
		return
	}

	var in models.UpdateEventInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, errors.InvalidInput("invalid event payload"))
		return
	}
	if err := in.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	event, ok := s.store.GetByID(id)
	if !ok {
		s.writeError(w, errors.NotFound("event not found"))
		return
	}
	updated := event.Clone()
	in.Apply(updated)

	confirmed, err := s.store.Edit(r.Context(), updated)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, confirmed)
}

// DeleteEvent removes an event.
// DELETE /api/v1/events/{id}
func (s *Server) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, errors.InvalidInput("invalid event id"))
		return
	}
	if err := s.store.Remove(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, map[string]string{"deleted": id.String()})
}
