// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

package session

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket configuration constants.
const (
	// WriteWait is time allowed to write a message to the peer.
	WriteWait = 10 * time.Second

	// PongWait is time allowed to read the next pong message from the peer.
	PongWait = 60 * time.Second

	// PingPeriod is period for sending pings. Must be less than PongWait.
	PingPeriod = 50 * time.Second

	// MaxMessageSize is maximum message size allowed from peer.
	MaxMessageSize = 4096
)

// Upgrader is the websocket upgrader for the grid channel.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Same-origin only; the gateway and the UI share a host.
		origin := r.Header.Get("Origin")
		return origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host
	},
}

// ============================================================================
// Frame types
// ============================================================================

// Client frame types.
const (
	FramePointer = "pointer"
	FrameKey     = "key"
	FrameScroll  = "scroll"
)

// Key frame values.
const (
	KeyEscape    = "Escape"
	KeyBackspace = "Backspace"
)

// PointerFrame is one pointer input from the client.
type PointerFrame struct {
	// Kind is "down", "move" or "up".
	Kind string `json:"kind"`
	// Day is the column date, "2006-01-02" in the display timezone.
	Day string `json:"day"`
	// Y is the vertical pixel position within the column.
	Y int `json:"y"`
	// Region is "grid", "body" or "edge".
	Region string `json:"region"`
	// EventID identifies the event under the pointer for body and edge.
	EventID string `json:"event_id,omitempty"`
}

// ClientFrame is one input frame from the browser.
type ClientFrame struct {
	Type    string        `json:"type"`
	Pointer *PointerFrame `json:"pointer,omitempty"`
	Key     string        `json:"key,omitempty"`
	ScrollX int           `json:"scroll_x,omitempty"`
}

// ServerFrame is one state frame pushed to the browser.
type ServerFrame struct {
	Type string `json:"type"`
	// Mode is the interaction mode after the input.
	Mode string `json:"mode,omitempty"`
	// Preview is the live gesture rectangle, when one is on screen.
	Preview *PreviewFrame `json:"preview,omitempty"`
	// Grid is the refreshed snapshot after a committing input.
	Grid *gridPayload `json:"grid,omitempty"`
	// Error carries a non-blocking failure notification.
	Error string `json:"error,omitempty"`
}

// PreviewFrame is the preview rectangle in a server frame.
type PreviewFrame struct {
	Day    string `json:"day"`
	Top    int    `json:"top"`
	Height int    `json:"height"`
}

// Server frame types.
const (
	FrameState = "state"
	FrameError = "error"
)

// ============================================================================
// Socket handler
// ============================================================================

// GridSocket upgrades to a websocket and runs the gesture frame loop:
// each client frame is fed to the interaction machine and answered with a
// state frame. Commit failures come back as non-blocking error frames,
// the optimistic rollback having already happened in the store.
// GET /api/v1/ws
func (s *Server) GridSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(PongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go s.pingLoop(conn, done)

	loc := s.displayLocation()
	for {
		var frame ClientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warnw("websocket read failed", "error", err)
			}
			return
		}

		reply := s.handleFrame(r.Context(), frame, loc)
		_ = conn.SetWriteDeadline(time.Now().Add(WriteWait))
		if err := conn.WriteJSON(reply); err != nil {
			s.log.Warnw("websocket write failed", "error", err)
			return
		}
	}
}

func (s *Server) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *Server) displayLocation() *time.Location {
	cols := s.pager.Columns()
	if len(cols) > 0 {
		return cols[0].Day.Location()
	}
	return time.Local
}
