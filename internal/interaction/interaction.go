// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

// Package interaction is the pointer and keyboard state machine of the
// calendar grid. It consumes abstract pointer events, derives the live
// quantized preview rectangle for the day under the gesture, and commits
// finished gestures through the event store and the drag coordinator.
//
// Exactly one gesture is armed at a time across all day columns; a pointer
// going down anywhere while a gesture is active cancels the prior gesture
// first.
package interaction

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ushiradineth/koano/internal/drag"
	"github.com/ushiradineth/koano/internal/grid"
	"github.com/ushiradineth/koano/internal/models"
	"github.com/ushiradineth/koano/internal/pkg/errors"
	"github.com/ushiradineth/koano/internal/pkg/logger"
	"github.com/ushiradineth/koano/internal/store"
)

// DefaultTitle names events created from a selection gesture before the
// user renames them.
const DefaultTitle = "New event"

// ============================================================================
// Pointer input
// ============================================================================

// Kind is the pointer event kind.
type Kind int

// Pointer event kinds.
const (
	Down Kind = iota
	Move
	Up
)

// Region is the grid surface the pointer event landed on.
type Region int

// Pointer regions. EventBody starts a drag or a click-to-select,
// EventEdge starts a resize, Grid starts a selection.
const (
	Grid Region = iota
	EventBody
	EventEdge
)

// PointerEvent is one abstract pointer input: which day column it landed
// on, the vertical pixel position within the column, and the surface under
// the pointer. EventID is set for EventBody and EventEdge regions.
type PointerEvent struct {
	Kind    Kind
	Day     time.Time
	Y       int
	Region  Region
	EventID uuid.UUID
}

// ============================================================================
// Modes
// ============================================================================

// Mode is the current interaction state. A single value makes illegal
// combinations unrepresentable.
type Mode int

// Interaction modes.
const (
	// Idle means no gesture is in progress.
	Idle Mode = iota
	// Selecting sweeps out a new event on empty grid space.
	Selecting
	// Extending drags one edge of an existing event.
	Extending
	// Dragging moves a whole event, possibly across days.
	Dragging
	// Previewing holds the committed rectangle on screen while the
	// store confirms a freshly created event.
	Previewing
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	case Extending:
		return "extending"
	case Dragging:
		return "dragging"
	case Previewing:
		return "previewing"
	default:
		return "unknown"
	}
}

// Preview is the live gesture rectangle in pixel space, always aligned to
// quarter boundaries.
type Preview struct {
	Top    int
	Height int
}

// session is the per-gesture state, discarded on pointer-up or cancel.
type session struct {
	mode    Mode
	day     time.Time
	anchor  int
	cursor  int
	moved   bool
	preview Preview

	// extending only
	target      uuid.UUID
	dragStart   bool
	fixedOffset int
}

// ============================================================================
// Controller
// ============================================================================

// Controller drives the gesture state machine.
type Controller struct {
	store *store.Store
	drag  *drag.Coordinator
	log   *logger.Logger

	mu   sync.Mutex
	sess session
}

// New creates a Controller over the given store and drag coordinator.
func New(st *store.Store, dc *drag.Coordinator, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{store: st, drag: dc, log: log.Named("interaction")}
}

// Mode returns the current interaction mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.mode
}

// Preview returns the live preview rectangle and the day it belongs to.
// The second return is false when no preview is on screen.
func (c *Controller) Preview() (Preview, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.sess.mode {
	case Extending, Previewing:
		return c.sess.preview, c.sess.day, true
	case Selecting:
		if c.sess.moved {
			return c.sess.preview, c.sess.day, true
		}
	}
	return Preview{}, time.Time{}, false
}

// Handle processes one pointer event.
func (c *Controller) Handle(ctx context.Context, ev PointerEvent) error {
	ev.Y = grid.Clamp(ev.Y)
	switch ev.Kind {
	case Down:
		return c.pointerDown(ev)
	case Move:
		c.pointerMove(ev)
		return nil
	case Up:
		return c.pointerUp(ctx, ev)
	default:
		return errors.InvalidInput("unknown pointer event kind")
	}
}

func (c *Controller) pointerDown(ev PointerEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A new gesture anywhere cancels the one in progress.
	if c.sess.mode != Idle {
		c.log.Debugf("gesture on %s cancelled by new pointer-down", c.sess.day.Format("2006-01-02"))
		c.abortLocked()
	}

	switch ev.Region {
	case EventBody:
		event, ok := c.store.GetByID(ev.EventID)
		if !ok {
			c.log.Warnf("pointer-down on unknown event %s", ev.EventID)
			return nil
		}
		c.store.SetActive(event)
		if err := c.drag.Begin(event.ID, ev.Day); err != nil {
			return err
		}
		c.sess = session{mode: Dragging, day: ev.Day, anchor: ev.Y, cursor: ev.Y}
		return nil

	case EventEdge:
		event, ok := c.store.GetByID(ev.EventID)
		if !ok {
			c.log.Warnf("pointer-down on unknown event edge %s", ev.EventID)
			return nil
		}
		c.store.SetActive(event)
		startOffset := grid.OffsetFromTime(event.StartTime, ev.Day)
		endOffset := grid.OffsetFromTime(event.EndTime, ev.Day)

		// The dragged edge is the start unless the press lands within one
		// quarter of the end edge; the opposite edge stays pinned.
		clickOffset := grid.Quantize(ev.Y)
		dragStart := true
		fixed := endOffset
		if diff := endOffset - clickOffset; diff >= -grid.PixelsPerQuarter && diff <= grid.PixelsPerQuarter {
			dragStart = false
			fixed = startOffset
		}

		c.sess = session{
			mode:        Extending,
			day:         ev.Day,
			anchor:      ev.Y,
			cursor:      ev.Y,
			target:      event.ID,
			dragStart:   dragStart,
			fixedOffset: fixed,
			preview:     Preview{Top: startOffset, Height: endOffset - startOffset},
		}
		return nil

	default:
		c.sess = session{mode: Selecting, day: ev.Day, anchor: ev.Y, cursor: ev.Y}
		return nil
	}
}

func (c *Controller) pointerMove(ev PointerEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.sess.mode {
	case Selecting:
		c.sess.cursor = ev.Y
		c.sess.moved = true
		top, height := grid.SelectionSpan(c.sess.anchor, c.sess.cursor)
		c.sess.preview = Preview{Top: top, Height: height}

	case Extending:
		c.sess.cursor = ev.Y
		c.sess.moved = true
		if c.sess.dragStart {
			newStart := grid.Quantize(ev.Y)
			// The pinned end edge is never overtaken.
			if newStart >= c.sess.fixedOffset {
				return
			}
			c.sess.preview = Preview{Top: newStart, Height: c.sess.fixedOffset - newStart}
		} else {
			newEnd := grid.Quantize(ev.Y) + grid.PixelsPerQuarter
			if newEnd > grid.Height {
				newEnd = grid.Height
			}
			// The pinned start edge is never overtaken.
			if newEnd <= c.sess.fixedOffset {
				return
			}
			c.sess.preview = Preview{Top: c.sess.fixedOffset, Height: newEnd - c.sess.fixedOffset}
		}

	case Dragging:
		c.sess.cursor = ev.Y
		c.sess.moved = true
	}
}

func (c *Controller) pointerUp(ctx context.Context, ev PointerEvent) error {
	c.mu.Lock()

	switch c.sess.mode {
	case Selecting:
		if !c.sess.moved {
			// A plain click on empty grid creates nothing.
			c.sess = session{}
			c.mu.Unlock()
			return nil
		}
		day, preview := c.sess.day, c.sess.preview
		c.sess.mode = Previewing
		c.mu.Unlock()

		draft := &models.Event{
			ID:        uuid.New(),
			Title:     DefaultTitle,
			StartTime: grid.TimeFromOffset(preview.Top, day),
			EndTime:   grid.TimeFromOffset(preview.Top+preview.Height, day),
			Timezone:  day.Location().String(),
			Repeated:  models.RepeatNever,
		}
		_, err := c.store.Add(ctx, draft)

		c.mu.Lock()
		c.sess = session{}
		c.mu.Unlock()
		return err

	case Extending:
		if !c.sess.moved {
			c.sess = session{}
			c.mu.Unlock()
			return nil
		}
		day, preview, target := c.sess.day, c.sess.preview, c.sess.target
		c.sess = session{}
		c.mu.Unlock()

		event, ok := c.store.GetByID(target)
		if !ok {
			c.log.Debugf("resize abandoned, event %s no longer exists", target)
			return nil
		}
		updated := event.Clone()
		updated.StartTime = grid.TimeFromOffset(preview.Top, day)
		updated.EndTime = grid.TimeFromOffset(preview.Top+preview.Height, day)
		if updated.StartTime.Equal(event.StartTime) && updated.EndTime.Equal(event.EndTime) {
			return nil
		}
		_, err := c.store.Edit(ctx, updated)
		return err

	case Dragging:
		delta := ev.Y - c.sess.anchor
		c.sess = session{}
		c.mu.Unlock()
		return c.drag.Drop(ctx, ev.Day, delta)

	default:
		c.mu.Unlock()
		return nil
	}
}

// Cancel aborts the active gesture without committing. Bound to Escape.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.abortLocked()
}

func (c *Controller) abortLocked() {
	if c.sess.mode == Dragging {
		c.drag.Cancel()
	}
	c.sess = session{}
}

// DeleteActive removes the currently selected event. Bound to Backspace;
// ignored while a gesture is in progress or when nothing is selected.
func (c *Controller) DeleteActive(ctx context.Context) error {
	c.mu.Lock()
	if c.sess.mode != Idle {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	active := c.store.Active()
	if active == nil {
		return nil
	}
	if err := c.store.Remove(ctx, active.ID); err != nil {
		return err
	}
	c.store.SetActive(nil)
	return nil
}
