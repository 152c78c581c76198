// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

// Package models defines the domain types shared across the application.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ushiradineth/koano/internal/pkg/errors"
)

// Repeat is the recurrence setting of an event. It is stored and round-
// tripped to the backend but never expanded into instances.
type Repeat string

// Repeat values.
const (
	RepeatNever   Repeat = "never"
	RepeatDaily   Repeat = "daily"
	RepeatWeekly  Repeat = "weekly"
	RepeatMonthly Repeat = "monthly"
	RepeatYearly  Repeat = "yearly"
)

// ValidRepeats is the set of allowed recurrence values.
var ValidRepeats = map[Repeat]bool{
	RepeatNever:   true,
	RepeatDaily:   true,
	RepeatWeekly:  true,
	RepeatMonthly: true,
	RepeatYearly:  true,
}

// Valid reports whether r is an allowed recurrence value.
func (r Repeat) Valid() bool {
	return ValidRepeats[r]
}

// Title length bounds, enforced at the input boundary.
const (
	TitleMinLength = 2
	TitleMaxLength = 256
)

// Event represents a scheduled calendar event. IDs are assigned client-side
// at creation (provisional) and replaced by the server-assigned ID once the
// backend confirms the create.
type Event struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id,omitempty"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Timezone  string    `json:"timezone"`
	Repeated  Repeat    `json:"repeated"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Validate checks the event invariants: title length within bounds, a known
// recurrence value, and a strictly positive duration.
func (e *Event) Validate() error {
	fields := make(map[string]string)

	if len(e.Title) < TitleMinLength || len(e.Title) > TitleMaxLength {
		fields["title"] = "must be between 2 and 256 characters"
	}
	if !e.Repeated.Valid() {
		fields["repeated"] = "must be one of never, daily, weekly, monthly, yearly"
	}
	if !e.StartTime.Before(e.EndTime) {
		fields["end_time"] = "must be strictly after start_time"
	}

	if len(fields) > 0 {
		return errors.ValidationFailed(fields)
	}
	return nil
}

// Duration returns the event length.
func (e *Event) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// Clone returns a deep copy of the event.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	clone := *e
	return &clone
}

// Equal reports whether two events carry identical field values.
func (e *Event) Equal(other *Event) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.ID == other.ID &&
		e.UserID == other.UserID &&
		e.Title == other.Title &&
		e.StartTime.Equal(other.StartTime) &&
		e.EndTime.Equal(other.EndTime) &&
		e.Timezone == other.Timezone &&
		e.Repeated == other.Repeated
}

// CreateEventInput is the form-boundary payload for creating an event.
type CreateEventInput struct {
	Title     string    `json:"title" validate:"required,min=2,max=256"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Timezone  string    `json:"timezone" validate:"required"`
	Repeated  Repeat    `json:"repeated" validate:"required,oneof=never daily weekly monthly yearly"`
}

// UpdateEventInput is the form-boundary payload for updating an event.
// Nil fields are left unchanged.
type UpdateEventInput struct {
	Title     *string    `json:"title" validate:"omitempty,min=2,max=256"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Timezone  *string    `json:"timezone"`
	Repeated  *Repeat    `json:"repeated" validate:"omitempty,oneof=never daily weekly monthly yearly"`
}
