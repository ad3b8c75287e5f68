// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the vsales project.
package testutil

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/olegiv/vsales/internal/mail"
	"github.com/olegiv/vsales/internal/store"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary test database with migrations applied.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "vsales-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

// CreateVehicle inserts a vehicle and fails the test on error.
func CreateVehicle(t *testing.T, db *sql.DB, vMake, vModel string, stock, price int64) store.Vehicle {
	t.Helper()

	v, err := store.New(db).CreateVehicle(context.Background(), store.CreateVehicleParams{
		Make:  vMake,
		Model: vModel,
		Stock: stock,
		Price: price,
	})
	if err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}
	return v
}

// CaptureSender is a mail.Sender that records every message.
type CaptureSender struct {
	mu   sync.Mutex
	msgs []mail.Message
	Err  error
}

// ErrSendFailed is a canned failure for CaptureSender.Err.
var ErrSendFailed = errors.New("send failed")

// Send records msg, or returns Err when it is set.
func (s *CaptureSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.msgs = append(s.msgs, msg)
	return nil
}

// Messages returns a copy of the recorded messages.
func (s *CaptureSender) Messages() []mail.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mail.Message(nil), s.msgs...)
}
