// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

// Package app assembles and runs the application: configuration, the
// event backend client, the auth session, the canonical store, the
// interaction machine, the pager, the refresher, and the gateway server.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ushiradineth/koano/internal/api/client"
	"github.com/ushiradineth/koano/internal/auth"
	"github.com/ushiradineth/koano/internal/drag"
	"github.com/ushiradineth/koano/internal/ics"
	"github.com/ushiradineth/koano/internal/interaction"
	"github.com/ushiradineth/koano/internal/pkg/logger"
	"github.com/ushiradineth/koano/internal/refresh"
	"github.com/ushiradineth/koano/internal/session"
	"github.com/ushiradineth/koano/internal/store"
	"github.com/ushiradineth/koano/internal/view"
)

// Version information, set at build time via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// PrintVersion prints build information.
func PrintVersion() {
	fmt.Printf("koano %s (commit %s, built %s)\n", Version, Commit, BuildDate)
}

// Application holds all application dependencies.
type Application struct {
	Config     *Config
	Logger     *logger.Logger
	Session    *auth.Session
	Backend    *client.Client
	Store      *store.Store
	Drag       *drag.Coordinator
	Controller *interaction.Controller
	Pager      *view.Pager
	Refresher  *refresh.Refresher
	Server     *session.Server
}

// Bootstrap loads configuration and wires every component. Nothing is
// started yet.
func Bootstrap(cfgFile string) (*Application, error) {
	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	app := &Application{Config: cfg, Logger: log}

	app.Session = auth.NewSession(cfg.Auth.AccessToken, nil, log)
	app.Session.OnSignOut(func() {
		log.Warn("session terminated, backend mutations will fail until sign-in")
	})

	app.Backend = client.New(client.Config{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
	}, app.Session, log)

	app.Store = store.New(app.Backend, log)
	app.Drag = drag.New(app.Store, log)
	app.Controller = interaction.New(app.Store, app.Drag, log)

	app.Pager, err = view.NewPager(view.PagerConfig{
		ColumnWidth:   cfg.Grid.ColumnWidth,
		ViewportWidth: cfg.Grid.ViewportWidth,
		VisibleDays:   cfg.Grid.VisibleDays,
		Location:      loc,
		Debounce:      view.DefaultDebounce,
	}, log)
	if err != nil {
		return nil, err
	}

	app.Refresher = refresh.New(app.Store, app.Pager.Span, refresh.Config{
		Schedule: cfg.Refresh.Schedule,
		Timeout:  cfg.Refresh.Timeout,
	}, log)

	app.Server = session.New(session.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		JWTSecret:       cfg.Auth.JWTSecret,
		TwentyFourHour:  cfg.Grid.TwentyFourHour,
	}, app.Store, app.Controller, app.Pager, log)

	return app, nil
}

// Run bootstraps the application and serves until SIGINT or SIGTERM.
func Run(cfgFile string) error {
	app, err := Bootstrap(cfgFile)
	if err != nil {
		return err
	}
	defer app.Logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The initial window load is best-effort: an unreachable backend at
	// boot means an empty grid, the refresher retries on schedule.
	loadCtx, cancel := context.WithTimeout(ctx, app.Config.Backend.Timeout)
	first, last := app.Pager.Span()
	if err := app.Store.Load(loadCtx, first, last); err != nil {
		app.Logger.Warnw("initial window load failed", "error", err)
	}
	cancel()

	if app.Config.Refresh.Enabled {
		if err := app.Refresher.Start(ctx); err != nil {
			return err
		}
		defer app.Refresher.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.Logger.Info("shutting down")
	shutdownCtx := context.Background()
	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// ExportICS loads the configured window and writes it as iCalendar to
// the given path, or stdout when path is "-".
func ExportICS(cfgFile, path string) error {
	app, err := Bootstrap(cfgFile)
	if err != nil {
		return err
	}
	defer app.Logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), app.Config.Backend.Timeout)
	defer cancel()

	first, last := app.Pager.Span()
	if err := app.Store.Load(ctx, first, last); err != nil {
		return err
	}

	out := os.Stdout
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return ics.Write(out, app.Store.Events(), time.Now())
}
