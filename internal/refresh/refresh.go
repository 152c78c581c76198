// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

// Package refresh periodically refetches the loaded event window so other
// clients' changes show up without a reload.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ushiradineth/koano/internal/pkg/errors"
	"github.com/ushiradineth/koano/internal/pkg/logger"
	"github.com/ushiradineth/koano/internal/store"
)

// DefaultSchedule refetches every five minutes.
const DefaultSchedule = "@every 5m"

// DefaultTimeout bounds a single refetch.
const DefaultTimeout = 30 * time.Second

// WindowFunc reports the date range currently loaded, typically the
// pager's span.
type WindowFunc func() (first, last time.Time)

// Config configures the refresher.
type Config struct {
	// Schedule is a cron expression or @every duration.
	Schedule string
	// Timeout bounds a single refetch.
	Timeout time.Duration
}

// Refresher reloads the store on a cron schedule.
type Refresher struct {
	store  *store.Store
	window WindowFunc
	cfg    Config
	log    *logger.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
	ctx     context.Context
}

// New creates a Refresher. The window function decides what range each
// refetch covers.
func New(st *store.Store, window WindowFunc, cfg Config, log *logger.Logger) *Refresher {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Refresher{
		store:  st,
		window: window,
		cfg:    cfg,
		log:    log.Named("refresh"),
	}
}

// Start schedules the periodic refetch. The context bounds each refetch
// and outlives individual runs.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return errors.New(errors.CodeConflict, "refresher already running")
	}

	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	if _, err := c.AddFunc(r.cfg.Schedule, func() { r.Refresh(r.ctx) }); err != nil {
		return errors.Wrap(err, errors.CodeBadRequest, "invalid refresh schedule")
	}

	r.ctx = ctx
	r.cron = c
	r.running = true
	c.Start()
	r.log.Infow("refresher started", "schedule", r.cfg.Schedule)
	return nil
}

// Stop halts the schedule. In-flight refetches finish on their own.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.cron.Stop()
	r.running = false
	r.log.Info("refresher stopped")
}

// Refresh reloads the store's window once. Failures are logged, never
// retried; the next tick tries again.
func (r *Refresher) Refresh(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	first, last := r.window()
	if err := r.store.Load(ctx, first, last); err != nil {
		r.log.Warnw("window refetch failed", "error", err)
		return
	}
	r.log.Debugw("window refetched",
		"first", first.Format("2006-01-02"),
		"last", last.Format("2006-01-02"),
	)
}
