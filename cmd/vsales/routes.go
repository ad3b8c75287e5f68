// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"database/sql"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/vsales/internal/handler"
	"github.com/olegiv/vsales/internal/mail"
	"github.com/olegiv/vsales/internal/middleware"
	"github.com/olegiv/vsales/internal/render"
	"github.com/olegiv/vsales/internal/service"
	"github.com/olegiv/vsales/internal/store"
)

// application holds the shared dependencies the router is built from.
type application struct {
	db         *sql.DB
	sessions   *scs.SessionManager
	renderer   *render.Renderer
	sender     mail.Sender
	logger     *slog.Logger
	staticFS   fs.FS
	csrfKey    []byte
	bcryptCost int
	version    string
	isDev      bool

	// requests per second and burst for the site-wide limiter
	rateLimit float64
	rateBurst int
	login     middleware.LoginProtectionConfig
}

func (app *application) routes() http.Handler {
	eventService := service.NewEventService(app.db)
	inventoryService := service.NewInventoryService(app.db)
	accountService := service.NewAccountService(app.db)
	purchaseService := service.NewPurchaseService(app.db, app.sender, app.logger)

	loginProtection := middleware.NewLoginProtection(app.login)

	authHandler := handler.NewAuthHandler(app.db, app.bcryptCost, app.renderer, app.sessions, loginProtection)
	frontendHandler := handler.NewFrontendHandler(app.renderer)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService, accountService)
	accountHandler := handler.NewAccountHandler(app.renderer, accountService, purchaseService)
	adminHandler := handler.NewAdminHandler(app.renderer, app.sessions, inventoryService, accountService, purchaseService)
	dataHandler := handler.NewDataHandler(inventoryService, purchaseService, accountService)
	healthHandler := handler.NewHealthHandler(app.db, app.version)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(chimw.StripSlashes)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(app.isDev)))
	r.Use(middleware.NewRateLimiter(app.rateLimit, app.rateBurst).Middleware())

	// Probes skip the session store
	r.Get(handler.RouteHealth+"/live", healthHandler.Liveness)
	r.Get(handler.RouteHealth+"/ready", healthHandler.Readiness)

	r.Handle(handler.RouteStatic, http.StripPrefix("/static/", http.FileServerFS(app.staticFS)))

	r.Group(func(r chi.Router) {
		r.Use(app.sessions.LoadAndSave)
		r.Use(middleware.LoadIdentity(app.sessions, store.New(app.db)))
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig(app.csrfKey, app.isDev)))

		// Admins get the detailed report
		r.Get(handler.RouteHealth, healthHandler.Health)

		r.Get(handler.RouteRoot, frontendHandler.Home)
		r.Get(handler.RouteSignUp, authHandler.SignUpForm)
		r.Post(handler.RouteSignUp, authHandler.SignUp)
		r.Get(handler.RouteSignIn, authHandler.SignInForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteSignIn, authHandler.SignIn)
		r.Get(handler.RouteLogout, authHandler.Logout)
		r.Post(handler.RouteLogout, authHandler.Logout)
		r.Get(handler.RouteForgotPassword, authHandler.ForgotPassword)

		r.Get(handler.RouteGetData, dataHandler.GetData)
		r.Get(handler.RouteGetUserData, dataHandler.GetUserData)
		r.Post(handler.RouteGetUserData, dataHandler.GetUserData)
		r.Post(handler.RoutePurchaseInfo, purchaseHandler.PurchaseInfo)
		r.Post(handler.RouteSavePurchaseInfo, purchaseHandler.SavePurchaseInfo)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireLogin)
			r.Get(handler.RoutePurchase, frontendHandler.Purchase)
			r.Get(handler.RouteUpdatePayment, accountHandler.UpdatePaymentForm)
			r.Post(handler.RouteUpdatePayment, accountHandler.UpdatePayment)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(eventService))
			r.Get(handler.RouteSalesReport, adminHandler.SalesReport)
			r.Get(handler.RouteVehicleInventory, adminHandler.VehicleInventory)
			r.Post(handler.RouteVehicleInventory, adminHandler.UpdateVehicle)
			r.Get(handler.RouteUpdateUser, adminHandler.UpdateUserForm)
			r.Post(handler.RouteUpdateUser, adminHandler.UpdateUser)
			r.Get(handler.RouteGetOrderData, dataHandler.GetOrderData)
		})
	})

	return r
}
