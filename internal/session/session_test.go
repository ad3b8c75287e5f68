// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/olegiv/vsales/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX sessions_expiry_idx ON sessions(expiry);
	`)
	if err != nil {
		t.Fatalf("failed to create sessions table: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// loadContext returns a context carrying a fresh session for sm.
func loadContext(t *testing.T, sm *scs.SessionManager) context.Context {
	t.Helper()
	ctx, err := sm.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return ctx
}

func TestNew_DevMode(t *testing.T) {
	sm := New(setupTestDB(t), true)

	if sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = false in dev mode")
	}
	if sm.Cookie.Name == "__Host-session" {
		t.Error("expected default cookie name in dev mode")
	}
}

func TestNew_ProductionMode(t *testing.T) {
	sm := New(setupTestDB(t), false)

	if !sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = true in production mode")
	}
	if sm.Cookie.Name != "__Host-session" {
		t.Errorf("expected __Host-session cookie name, got %q", sm.Cookie.Name)
	}
	if sm.Cookie.Path != "/" {
		t.Errorf("expected Cookie.Path = '/', got %q", sm.Cookie.Path)
	}
}

func TestNew_SessionSettings(t *testing.T) {
	sm := NewMemory(true)

	if sm.Lifetime != 24*time.Hour {
		t.Errorf("Lifetime = %v, want 24h", sm.Lifetime)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("expected HttpOnly cookie")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", sm.Cookie.SameSite)
	}
}

func TestLoginCurrentLogout(t *testing.T) {
	sm := NewMemory(true)
	ctx := loadContext(t, sm)

	if _, ok := Current(ctx, sm); ok {
		t.Fatal("fresh session should be anonymous")
	}

	want := Identity{UserID: 7, Username: "john123", Role: model.RoleCustomer}
	if err := Login(ctx, sm, want); err != nil {
		t.Fatalf("Login: %v", err)
	}

	got, ok := Current(ctx, sm)
	if !ok {
		t.Fatal("expected identity after login")
	}
	if got != want {
		t.Errorf("Current = %+v, want %+v", got, want)
	}
	if got.IsAdmin() {
		t.Error("customer reported as admin")
	}

	Rename(ctx, sm, "johnny")
	got, _ = Current(ctx, sm)
	if got.Username != "johnny" {
		t.Errorf("Username after Rename = %q", got.Username)
	}

	promoted := Identity{UserID: 7, Username: "johnny", Role: model.RoleAdmin}
	Refresh(ctx, sm, promoted)
	if got, _ = Current(ctx, sm); got != promoted {
		t.Errorf("Current after Refresh = %+v, want %+v", got, promoted)
	}

	if err := Logout(ctx, sm); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok := Current(ctx, sm); ok {
		t.Error("identity survived logout")
	}
}

func TestLogin_SQLiteStore(t *testing.T) {
	sm := New(setupTestDB(t), true)
	ctx := loadContext(t, sm)

	if err := Login(ctx, sm, Identity{UserID: 1, Username: "Admin", Role: model.RoleAdmin}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	token, _, err := sm.Commit(ctx)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// A new request carrying the token sees the same identity.
	ctx2, err := sm.Load(context.Background(), token)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	id, ok := Current(ctx2, sm)
	if !ok || !id.IsAdmin() {
		t.Errorf("Current = %+v, %v; want admin identity", id, ok)
	}
}

func TestIdentity_IsAdmin(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{model.RoleAdmin, true},
		{model.RoleCustomer, false},
		{"Admin", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := (Identity{Role: tt.role}).IsAdmin(); got != tt.want {
			t.Errorf("IsAdmin(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}
