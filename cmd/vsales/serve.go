// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/spf13/cobra"

	"github.com/olegiv/vsales/internal/config"
	"github.com/olegiv/vsales/internal/logging"
	"github.com/olegiv/vsales/internal/mail"
	"github.com/olegiv/vsales/internal/middleware"
	"github.com/olegiv/vsales/internal/render"
	"github.com/olegiv/vsales/internal/session"
	"github.com/olegiv/vsales/internal/store"
	"github.com/olegiv/vsales/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

// newLogger returns a text logger. With a database, WARN and ERROR
// records are also written to the event log.
func newLogger(level string, db *sql.DB) *slog.Logger {
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(level)})
	if db == nil {
		return slog.New(textHandler)
	}
	return slog.New(logging.NewEventLogHandler(textHandler, db))
}

func newSender(cfg *config.Config, logger *slog.Logger) mail.Sender {
	if !cfg.SMTPEnabled() {
		slog.Warn("SMTP not configured, receipts will only be logged")
		return mail.NewLogSender(logger)
	}
	return mail.NewSMTPSender(mail.SMTPConfig{
		Addr:     cfg.SMTPAddr(),
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
}

// newSessionManager keeps sessions in SQLite when that is the main store.
// MySQL deployments use in-process sessions.
func newSessionManager(cfg *config.Config, db *sql.DB) *scs.SessionManager {
	if cfg.DBDriver == config.DriverSQLite {
		return session.New(db, cfg.IsDevelopment())
	}
	slog.Warn("using in-memory sessions; sign-ins do not survive a restart", "driver", cfg.DBDriver)
	return session.NewMemory(cfg.IsDevelopment())
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	slog.SetDefault(newLogger(cfg.LogLevel, nil))

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)
	slog.Info("database ready")

	logger := newLogger(cfg.LogLevel, db)
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	if err := store.Seed(ctx, db, store.SeedOptions{
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
		AdminEmail:    cfg.AdminEmail,
		BcryptCost:    cfg.BcryptCost,
		Vehicles:      cfg.SeedVehicles,
	}); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	sessionManager := newSessionManager(cfg, db)
	slog.Info("session manager initialized")

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}

	app := &application{
		db:         db,
		sessions:   sessionManager,
		renderer:   renderer,
		sender:     newSender(cfg, logger),
		logger:     logger,
		staticFS:   staticFS,
		csrfKey:    []byte(cfg.SessionSecret),
		bcryptCost: cfg.BcryptCost,
		version:    appVersion,
		isDev:      cfg.IsDevelopment(),
		rateLimit:  20,
		rateBurst:  40,
		login:      middleware.DefaultLoginProtectionConfig(),
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           app.routes(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", appVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
