// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ushiradineth/koano/internal/interaction"
)

// handleFrame dispatches one client frame and builds the reply.
func (s *Server) handleFrame(ctx context.Context, frame ClientFrame, loc *time.Location) ServerFrame {
	switch frame.Type {
	case FramePointer:
		if frame.Pointer == nil {
			return ServerFrame{Type: FrameError, Error: "pointer frame without payload"}
		}
		ev, err := s.pointerEvent(*frame.Pointer, loc)
		if err != nil {
			return ServerFrame{Type: FrameError, Error: err.Error()}
		}
		if err := s.controller.Handle(ctx, ev); err != nil {
			// The store already rolled back; tell the client and resync.
			reply := s.stateFrame()
			reply.Type = FrameError
			reply.Error = err.Error()
			return reply
		}
		return s.stateFrame()

	case FrameKey:
		switch frame.Key {
		case KeyEscape:
			s.controller.Cancel()
		case KeyBackspace:
			if err := s.controller.DeleteActive(ctx); err != nil {
				reply := s.stateFrame()
				reply.Type = FrameError
				reply.Error = err.Error()
				return reply
			}
		}
		return s.stateFrame()

	case FrameScroll:
		s.pager.HandleScroll(frame.ScrollX)
		return s.stateFrame()

	default:
		return ServerFrame{Type: FrameError, Error: "unknown frame type"}
	}
}

// pointerEvent translates a wire pointer frame into a typed event.
func (s *Server) pointerEvent(p PointerFrame, loc *time.Location) (interaction.PointerEvent, error) {
	var ev interaction.PointerEvent

	day, err := time.ParseInLocation("2006-01-02", p.Day, loc)
	if err != nil {
		return ev, err
	}
	ev.Day = day
	ev.Y = p.Y

	switch p.Kind {
	case "down":
		ev.Kind = interaction.Down
	case "move":
		ev.Kind = interaction.Move
	default:
		ev.Kind = interaction.Up
	}

	switch p.Region {
	case "body":
		ev.Region = interaction.EventBody
	case "edge":
		ev.Region = interaction.EventEdge
	default:
		ev.Region = interaction.Grid
	}

	if p.EventID != "" {
		id, err := uuid.Parse(p.EventID)
		if err != nil {
			return ev, err
		}
		ev.EventID = id
	}
	return ev, nil
}

// stateFrame captures the machine state after an input.
func (s *Server) stateFrame() ServerFrame {
	frame := ServerFrame{
		Type: FrameState,
		Mode: s.controller.Mode().String(),
	}
	if preview, day, ok := s.controller.Preview(); ok {
		frame.Preview = &PreviewFrame{
			Day:    day.Format("2006-01-02"),
			Top:    preview.Top,
			Height: preview.Height,
		}
	}
	grid := s.snapshot(time.Now())
	frame.Grid = &grid
	return frame
}
