// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the scs session manager and exposes the
// signed-in identity as a typed value.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/olegiv/vsales/internal/model"
)

// Session keys.
const (
	KeyUserID   = "user_id"
	KeyUsername = "username"
	KeyRole     = "role"
)

// Identity is the authenticated user bound to a session.
type Identity struct {
	UserID   int64
	Username string
	Role     string
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

// New creates a session manager backed by the SQLite sessions table.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	return NewWithStore(sqlite3store.New(db), isDev)
}

// NewMemory creates a session manager with an in-process store. Used with
// MySQL, which has no sessions table, and in tests.
func NewMemory(isDev bool) *scs.SessionManager {
	return NewWithStore(memstore.New(), isDev)
}

// NewWithStore creates a session manager around the given store.
func NewWithStore(store scs.Store, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = store

	sm.Lifetime = 24 * time.Hour
	sm.IdleTimeout = 2 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.Path = "/"
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev
	if !isDev {
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}

// Login renews the session token and binds id to the session.
func Login(ctx context.Context, sm *scs.SessionManager, id Identity) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, KeyUserID, id.UserID)
	sm.Put(ctx, KeyUsername, id.Username)
	sm.Put(ctx, KeyRole, id.Role)
	return nil
}

// Current returns the identity bound to the session, if any.
func Current(ctx context.Context, sm *scs.SessionManager) (Identity, bool) {
	username := sm.GetString(ctx, KeyUsername)
	if username == "" {
		return Identity{}, false
	}
	return Identity{
		UserID:   sm.GetInt64(ctx, KeyUserID),
		Username: username,
		Role:     sm.GetString(ctx, KeyRole),
	}, true
}

// Rename updates the username stored in the session after a profile change.
func Rename(ctx context.Context, sm *scs.SessionManager, username string) {
	sm.Put(ctx, KeyUsername, username)
}

// Refresh rewrites the stored identity in place, keeping the token.
func Refresh(ctx context.Context, sm *scs.SessionManager, id Identity) {
	sm.Put(ctx, KeyUserID, id.UserID)
	sm.Put(ctx, KeyUsername, id.Username)
	sm.Put(ctx, KeyRole, id.Role)
}

// Logout destroys the session.
func Logout(ctx context.Context, sm *scs.SessionManager) error {
	return sm.Destroy(ctx)
}
