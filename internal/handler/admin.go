// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/vsales/internal/middleware"
	"github.com/olegiv/vsales/internal/model"
	"github.com/olegiv/vsales/internal/render"
	"github.com/olegiv/vsales/internal/service"
	"github.com/olegiv/vsales/internal/session"
	"github.com/olegiv/vsales/internal/store"
)

// AdminHandler serves the admin pages. Routes are mounted behind
// middleware.RequireAdmin.
type AdminHandler struct {
	renderer         *render.Renderer
	sessionManager   *scs.SessionManager
	inventoryService *service.InventoryService
	accountService   *service.AccountService
	purchaseService  *service.PurchaseService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(renderer *render.Renderer, sm *scs.SessionManager, is *service.InventoryService, as *service.AccountService, ps *service.PurchaseService) *AdminHandler {
	return &AdminHandler{
		renderer:         renderer,
		sessionManager:   sm,
		inventoryService: is,
		accountService:   as,
		purchaseService:  ps,
	}
}

// SalesReportData is passed to the sales report page.
type SalesReportData struct {
	Orders []store.Order
	Total  int64
}

// SalesReport renders the orders table.
func (h *AdminHandler) SalesReport(w http.ResponseWriter, r *http.Request) {
	data := render.TemplateData{Title: "Sales Report"}

	orders, err := h.purchaseService.ListOrders(r.Context())
	if err != nil {
		slog.Error("failed to list orders", "error", err)
		data.Flash = "Could not load orders"
		data.FlashType = render.FlashError
	}

	report := SalesReportData{Orders: orders}
	for _, o := range orders {
		report.Total += o.Price
	}
	data.Data = report

	renderPage(w, r, h.renderer, "sales-report", data)
}

// VehicleInventory renders the stock and price form.
func (h *AdminHandler) VehicleInventory(w http.ResponseWriter, r *http.Request) {
	data := render.TemplateData{Title: "Vehicle Inventory"}

	vehicles, err := h.inventoryService.ListVehicles(r.Context())
	if err != nil {
		slog.Error("failed to list vehicles", "error", err)
		data.Flash = "Could not load vehicles"
		data.FlashType = render.FlashError
	}
	data.Data = vehicles

	renderPage(w, r, h.renderer, "vehicle-inventory", data)
}

// UpdateVehicle handles POST /vehicle-inventory.
func (h *AdminHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectVehicleInventory) {
		return
	}

	name := r.FormValue("name")
	err := h.inventoryService.UpdateVehicle(r.Context(), name, r.FormValue("stock"), r.FormValue("price"))

	var vErr *model.ValidationError
	switch {
	case err == nil:
		flashSuccess(w, r, h.renderer, redirectVehicleInventory, "Vehicle updated")
	case errors.As(err, &vErr):
		flashError(w, r, h.renderer, redirectVehicleInventory, vErr.Error())
	case errors.Is(err, service.ErrVehicleNotFound):
		flashError(w, r, h.renderer, redirectVehicleInventory, "Vehicle not found")
	default:
		slog.Error("failed to update vehicle",
			"category", model.EventCategoryInventory,
			"name", name,
			"error", err,
		)
		flashError(w, r, h.renderer, redirectVehicleInventory, "Could not update vehicle")
	}
}

// UpdateUserForm renders the user edit form with the user list.
func (h *AdminHandler) UpdateUserForm(w http.ResponseWriter, r *http.Request) {
	data := render.TemplateData{Title: "Update User"}

	users, err := h.accountService.ListUsers(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		data.Flash = "Could not load users"
		data.FlashType = render.FlashError
	}
	data.Data = users

	renderPage(w, r, h.renderer, "update-user", data)
}

// UpdateUser handles POST /update-user.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectUpdateUser) {
		return
	}

	in := service.UpdateUserInput{
		Username:    r.FormValue("username"),
		FirstName:   r.FormValue("first-name"),
		LastName:    r.FormValue("last-name"),
		NewUsername: r.FormValue("new-username"),
		Email:       r.FormValue("email"),
	}

	user, err := h.accountService.UpdateUser(r.Context(), in)
	if err != nil {
		var vErr *model.ValidationError
		switch {
		case errors.As(err, &vErr):
			flashError(w, r, h.renderer, redirectUpdateUser, vErr.Error())
		case errors.Is(err, service.ErrUserNotFound):
			flashError(w, r, h.renderer, redirectUpdateUser, "User not found")
		default:
			slog.Error("failed to update user",
				"category", model.EventCategoryUser,
				"username", in.Username,
				"error", err,
			)
			flashError(w, r, h.renderer, redirectUpdateUser, "Could not update user")
		}
		return
	}

	// the admin renamed their own account
	if id := middleware.GetIdentity(r); id != nil && id.UserID == user.ID && id.Username != user.Username {
		session.Rename(r.Context(), h.sessionManager, user.Username)
	}

	slog.Info("user updated",
		"category", model.EventCategoryUser,
		"user_id", user.ID,
		"username", user.Username,
		"by", middleware.GetUsername(r),
	)
	flashSuccess(w, r, h.renderer, redirectUpdateUser, "User "+user.Username+" updated")
}
