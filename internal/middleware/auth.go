// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/vsales/internal/model"
	"github.com/olegiv/vsales/internal/service"
	"github.com/olegiv/vsales/internal/session"
	"github.com/olegiv/vsales/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyIdentity holds the signed-in session.Identity.
const ContextKeyIdentity ContextKey = "identity"

// ForbiddenMessage is the body sent to signed-in users who are not admins.
const ForbiddenMessage = "You do not have permission to view this page"

// UserLookup loads the account a session is bound to.
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (store.User, error)
}

// LoadIdentity creates middleware that reloads the session's user by ID and
// stores the current identity in the request context. A session whose user
// was deleted is destroyed and the request continues anonymously. A rename
// or role change made elsewhere is written back to the session. If the
// lookup fails for another reason the stored identity is used as is.
func LoadIdentity(sm *scs.SessionManager, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			id, ok := session.Current(ctx, sm)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUserByID(ctx, id.UserID)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Info("session user no longer exists",
					"category", model.EventCategoryAuth,
					"user_id", id.UserID,
					"username", id.Username,
				)
				if err := session.Logout(ctx, sm); err != nil {
					slog.Error("failed to destroy session", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			case err != nil:
				slog.Error("failed to load session user", "user_id", id.UserID, "error", err)
			default:
				fresh := session.Identity{UserID: user.ID, Username: user.Username, Role: user.Role}
				if fresh != id {
					if fresh.Role != id.Role {
						if err := sm.RenewToken(ctx); err != nil {
							slog.Error("failed to renew session token", "error", err)
						}
					}
					session.Refresh(ctx, sm, fresh)
					id = fresh
				}
			}

			ctx = context.WithValue(ctx, ContextKeyIdentity, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity retrieves the signed-in identity from the request context.
// Returns nil for anonymous requests.
func GetIdentity(r *http.Request) *session.Identity {
	id, ok := r.Context().Value(ContextKeyIdentity).(session.Identity)
	if !ok {
		return nil
	}
	return &id
}

// GetUsername returns the signed-in username, or "" for anonymous requests.
func GetUsername(r *http.Request) string {
	if id := GetIdentity(r); id != nil {
		return id.Username
	}
	return ""
}

// RequireLogin redirects anonymous requests to the sign-in page.
// It must run after LoadIdentity.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetIdentity(r) == nil {
			http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin creates middleware that admits only admins. Anonymous
// requests are sent to the sign-in page; other users get a plain 403.
// If eventService is provided, denials are written to the event log.
func RequireAdmin(eventService *service.EventService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := GetIdentity(r)
			if id == nil {
				http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
				return
			}

			if !id.IsAdmin() {
				slog.Info("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"username", id.Username,
					"role", id.Role,
					"remote_addr", r.RemoteAddr,
				)

				if eventService != nil {
					metadata := map[string]any{
						"method":   r.Method,
						"path":     r.URL.Path,
						"username": id.Username,
						"role":     id.Role,
					}
					_ = eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, "Access denied: admin required", metadata)
				}

				http.Error(w, ForbiddenMessage, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
