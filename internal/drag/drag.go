// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

// Package drag relocates events between day columns. A drag is a
// whole-event move: the duration is preserved and only the quantized
// vertical delta plus the drop column decide the new start.
package drag

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ushiradineth/koano/internal/grid"
	"github.com/ushiradineth/koano/internal/pkg/errors"
	"github.com/ushiradineth/koano/internal/pkg/logger"
	"github.com/ushiradineth/koano/internal/store"
)

// Coordinator tracks at most one in-flight drag and commits the drop
// through the event store.
type Coordinator struct {
	store *store.Store
	log   *logger.Logger

	mu        sync.Mutex
	active    bool
	eventID   uuid.UUID
	originDay time.Time
}

// New creates a Coordinator backed by the given store.
func New(st *store.Store, log *logger.Logger) *Coordinator {
	if log == nil {
		log = logger.Nop()
	}
	return &Coordinator{store: st, log: log.Named("drag")}
}

// Begin starts dragging the given event out of its origin day column.
// Beginning while another drag is in flight replaces it.
func (c *Coordinator) Begin(eventID uuid.UUID, originDay time.Time) error {
	if _, ok := c.store.GetByID(eventID); !ok {
		return errors.NotFound("event not found")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = true
	c.eventID = eventID
	c.originDay = originDay
	return nil
}

// Active reports whether a drag is in flight.
func (c *Coordinator) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Cancel discards the in-flight drag without touching the event.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
}

// Drop finishes the drag on the given day column with the given vertical
// pixel delta and commits the move. A zero delta is a click that never
// moved, so nothing is committed. If the event disappeared mid-drag the
// drop is abandoned quietly. Ends landing exactly on the next midnight
// are allowed; any further spill past the column is rejected.
func (c *Coordinator) Drop(ctx context.Context, dropDay time.Time, deltaY int) error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return nil
	}
	eventID, originDay := c.eventID, c.originDay
	c.active = false
	c.mu.Unlock()

	// A drop with no vertical movement is a click, even when the pointer
	// wandered over another column on the way down.
	if deltaY == 0 {
		return nil
	}

	event, ok := c.store.GetByID(eventID)
	if !ok {
		c.log.Debugf("drop abandoned, event %s no longer exists", eventID)
		return nil
	}

	startOffset := grid.Quantize(grid.OffsetFromTime(event.StartTime, originDay) + deltaY)
	newStart := grid.TimeFromOffset(startOffset, dropDay)
	newEnd := newStart.Add(event.Duration())

	if newStart.Equal(event.StartTime) && newEnd.Equal(event.EndTime) {
		return nil
	}

	if startOffset >= grid.Height {
		return errors.InvalidInput("event cannot start at or past midnight")
	}
	if endOffset := grid.OffsetFromTime(newEnd, dropDay); endOffset > grid.Height {
		return errors.InvalidInput("event cannot spill into the next day")
	}

	updated := event.Clone()
	updated.StartTime = newStart
	updated.EndTime = newEnd

	_, err := c.store.Edit(ctx, updated)
	return err
}
