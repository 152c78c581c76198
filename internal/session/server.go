// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

// Package session is the gateway surface of the calendar: an HTTP server
// exposing the grid snapshot, the iCalendar export, and the websocket
// channel that carries pointer and keyboard input into the interaction
// state machine.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ushiradineth/koano/internal/ics"
	"github.com/ushiradineth/koano/internal/interaction"
	"github.com/ushiradineth/koano/internal/pkg/errors"
	"github.com/ushiradineth/koano/internal/pkg/logger"
	"github.com/ushiradineth/koano/internal/store"
	"github.com/ushiradineth/koano/internal/view"
)

// Config configures the gateway server.
type Config struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	JWTSecret       string
	// TwentyFourHour selects 24-hour time labels in snapshots.
	TwentyFourHour bool
}

// Server hosts the gateway endpoints.
type Server struct {
	cfg        Config
	log        *logger.Logger
	store      *store.Store
	controller *interaction.Controller
	pager      *view.Pager
	httpServer *http.Server
}

// New assembles the gateway over the supplied collaborators.
func New(cfg Config, st *store.Store, ctrl *interaction.Controller, pager *view.Pager, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		cfg:        cfg,
		log:        log.Named("gateway"),
		store:      st,
		controller: ctrl,
		pager:      pager,
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.Healthz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Auth(s.cfg.JWTSecret))
		r.Get("/grid", s.GridSnapshot)
		r.Post("/grid/scroll", s.GridScroll)
		r.Post("/events", s.CreateEvent)
		r.Put("/events/{id}", s.UpdateEvent)
		r.Delete("/events/{id}", s.DeleteEvent)
		r.Get("/export", s.ExportICS)
		r.Get("/ws", s.GridSocket)
	})

	return r
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Infow("gateway listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains connections within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// ============================================================================
// Handlers
// ============================================================================

// Healthz reports liveness.
// GET /healthz
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

// columnPayload is one day column in a grid snapshot.
type columnPayload struct {
	Key    string         `json:"key"`
	Day    string         `json:"day"`
	Today  bool           `json:"today"`
	Now    *int           `json:"now_offset,omitempty"`
	Events []eventPayload `json:"events"`
}

type eventPayload struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Top        int    `json:"top"`
	Height     int    `json:"height"`
	StartLabel string `json:"start_label"`
	EndLabel   string `json:"end_label"`
	Repeated   string `json:"repeated"`
	Active     bool   `json:"active"`
}

type gridPayload struct {
	MonthLabel string          `json:"month_label"`
	ScrollX    int             `json:"scroll_x"`
	TotalWidth int             `json:"total_width"`
	MonthView  bool            `json:"month_view"`
	Columns    []columnPayload `json:"columns"`
}

// GridSnapshot returns the whole rendered window.
// GET /api/v1/grid
func (s *Server) GridSnapshot(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, s.snapshot(time.Now()))
}

func (s *Server) snapshot(now time.Time) gridPayload {
	payload := gridPayload{
		MonthLabel: s.pager.CurrentMonthLabel(),
		ScrollX:    s.pager.ScrollX(),
		TotalWidth: s.pager.TotalWidth(),
		MonthView:  s.pager.MonthView(),
	}
	if payload.MonthView {
		// Month view renders a placeholder, the day grid stays empty.
		return payload
	}

	events := s.store.Events()
	active := s.store.Active()

	for _, col := range s.pager.Columns() {
		cp := columnPayload{
			Key:    col.Key.String(),
			Day:    col.Day.Format("2006-01-02"),
			Today:  col.IsToday(now),
			Events: []eventPayload{},
		}
		if offset, ok := col.NowOffset(now); ok {
			cp.Now = &offset
		}
		for _, e := range col.Events(events) {
			top, height := col.EventRect(e)
			ep := eventPayload{
				ID:         e.ID.String(),
				Title:      e.Title,
				Top:        top,
				Height:     height,
				StartLabel: view.TimeLabel(e.StartTime.In(col.Day.Location()), s.cfg.TwentyFourHour),
				EndLabel:   view.TimeLabel(e.EndTime.In(col.Day.Location()), s.cfg.TwentyFourHour),
				Repeated:   string(e.Repeated),
				Active:     active != nil && active.ID == e.ID,
			}
			cp.Events = append(cp.Events, ep)
		}
		payload.Columns = append(payload.Columns, cp)
	}
	return payload
}

// scrollRequest is the non-websocket scroll fallback payload.
type scrollRequest struct {
	X int `json:"x"`
}

// GridScroll records a scroll position, extends the window when needed,
// and returns the refreshed snapshot.
// POST /api/v1/grid/scroll
func (s *Server) GridScroll(w http.ResponseWriter, r *http.Request) {
	var req scrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.InvalidInput("invalid scroll payload"))
		return
	}
	if req.X < 0 {
		s.writeError(w, errors.InvalidInput("scroll position must be non-negative"))
		return
	}
	s.pager.HandleScroll(req.X)
	s.writeData(w, http.StatusOK, s.snapshot(time.Now()))
}

// ExportICS streams the loaded window as an iCalendar file.
// GET /api/v1/export
func (s *Server) ExportICS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="koano.ics"`)
	if err := ics.Write(w, s.store.Events(), time.Now()); err != nil {
		s.log.Warnw("ics export write failed", "error", err)
	}
}

// ============================================================================
// Response envelope
// ============================================================================

func (s *Server) writeData(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":   code,
		"status": "success",
		"data":   data,
	})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.HTTPStatusCode(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	status := "error"
	if code < http.StatusInternalServerError {
		status = "fail"
	}
	message := "internal error"
	if appErr, ok := errors.GetAppError(err); ok {
		message = appErr.Message
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":   code,
		"status": status,
		"error":  message,
	})
}
