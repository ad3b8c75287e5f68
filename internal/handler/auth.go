// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/vsales/internal/middleware"
	"github.com/olegiv/vsales/internal/model"
	"github.com/olegiv/vsales/internal/render"
	"github.com/olegiv/vsales/internal/service"
	"github.com/olegiv/vsales/internal/session"
)

// Flash texts shown by the auth pages.
const (
	msgInvalidCredentials = "Invalid username or password"
	msgSignUpFailed       = "Could not create account"
	msgAccountCreated     = "Account created. Please sign in."
)

// AuthHandler handles sign-up, sign-in and logout.
type AuthHandler struct {
	authService     *service.AuthService
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, bcryptCost int, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		authService:     service.NewAuthService(db, bcryptCost),
		renderer:        renderer,
		sessionManager:  sm,
		eventService:    service.NewEventService(db),
		loginProtection: lp,
	}
}

// signUpForm holds submitted values so the page can be re-rendered.
type signUpForm struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
}

// SignUpForm renders the sign-up page.
func (h *AuthHandler) SignUpForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, "sign-up", render.TemplateData{Title: "Sign Up"})
}

// SignUp handles POST /sign-up.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectSignUp) {
		return
	}

	in := service.SignUpInput{
		FirstName: r.FormValue("first-name"),
		LastName:  r.FormValue("last-name"),
		Username:  r.FormValue("username"),
		Email:     r.FormValue("email"),
		Password:  r.FormValue("password"),
	}

	user, err := h.authService.SignUp(r.Context(), in)
	if err != nil {
		slog.Warn("sign-up failed", "category", model.EventCategoryAuth, "username", in.Username, "error", err)
		renderPage(w, r, h.renderer, "sign-up", render.TemplateData{
			Title:     "Sign Up",
			Flash:     validationMessage(err, msgSignUpFailed),
			FlashType: render.FlashError,
			Data: signUpForm{
				FirstName: in.FirstName,
				LastName:  in.LastName,
				Username:  in.Username,
				Email:     in.Email,
			},
		})
		return
	}

	slog.Info("account created", "user_id", user.ID, "username", user.Username)
	flashSuccess(w, r, h.renderer, redirectSignIn, msgAccountCreated)
}

// SignInForm renders the sign-in page. Signed-in users go home.
func (h *AuthHandler) SignInForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetIdentity(r) != nil {
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
		return
	}
	renderPage(w, r, h.renderer, "sign-in", render.TemplateData{Title: "Sign In"})
}

// SignIn handles POST /sign-in.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectSignIn) {
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	if username == "" || password == "" {
		flashError(w, r, h.renderer, redirectSignIn, msgInvalidCredentials)
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(username); locked {
			_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, "Sign-in attempt on locked account", map[string]any{"username": username})
			flashError(w, r, h.renderer, redirectSignIn, "Too many failed attempts. Try again in "+formatDuration(remaining)+".")
			return
		}
	}

	user, err := h.authService.SignIn(r.Context(), username, password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			slog.Error("database error during sign-in", "error", err)
		} else {
			slog.Debug("sign-in rejected", "username", username)
		}
		h.rejectSignIn(w, r, username)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(username)
	}

	// Regenerate session ID to prevent session fixation
	if err := session.Login(r.Context(), h.sessionManager, session.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}

	slog.Info("user signed in", "user_id", user.ID, "username", user.Username)
	_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "User signed in", map[string]any{"username": user.Username})

	http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
}

// rejectSignIn counts a failure and flashes a message that is the same
// whether or not the username exists.
func (h *AuthHandler) rejectSignIn(w http.ResponseWriter, r *http.Request, username string) {
	_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, "Sign-in failed", map[string]any{"username": username})

	if h.loginProtection != nil {
		if locked, lockDuration := h.loginProtection.RecordFailedAttempt(username); locked {
			flashError(w, r, h.renderer, redirectSignIn, "Too many failed attempts. Try again in "+formatDuration(lockDuration)+".")
			return
		}
	}
	flashError(w, r, h.renderer, redirectSignIn, msgInvalidCredentials)
}

// Logout handles GET /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	username := middleware.GetUsername(r)

	if err := session.Logout(r.Context(), h.sessionManager); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	if username != "" {
		slog.Info("user logged out", "username", username)
	}

	http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
}

// ForgotPassword renders the forgotten-password page.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, "forgot-password", render.TemplateData{Title: "Forgot Password"})
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
