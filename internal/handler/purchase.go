// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/olegiv/vsales/internal/middleware"
	"github.com/olegiv/vsales/internal/model"
	"github.com/olegiv/vsales/internal/service"
)

// maxJSONBody caps the checkout request bodies.
const maxJSONBody = 64 << 10

var errTrailingData = errors.New("unexpected data after JSON value")

// PurchaseHandler receives the JSON posted by the checkout page.
type PurchaseHandler struct {
	purchaseService *service.PurchaseService
	accountService  *service.AccountService
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(ps *service.PurchaseService, as *service.AccountService) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: ps,
		accountService:  as,
	}
}

// PurchaseInfo handles POST /purchase-info. Any syntactically valid JSON
// body is answered with 200 "success"; fields of the wrong type and step
// failures are logged by the purchase service and never reach the client.
func (h *PurchaseHandler) PurchaseInfo(w http.ResponseWriter, r *http.Request) {
	if !isJSONRequest(r) {
		badData(w)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		slog.Debug("unreadable purchase body", "error", err)
		badData(w)
		return
	}
	req, err := service.ParsePurchaseRequest(body)
	if err != nil {
		slog.Debug("undecodable purchase body", "error", err)
		badData(w)
		return
	}

	h.purchaseService.Purchase(r.Context(), middleware.GetUsername(r), req)

	writeText(w, bodySuccess)
}

// SavePurchaseInfo handles POST /save-purchase-info.
func (h *PurchaseHandler) SavePurchaseInfo(w http.ResponseWriter, r *http.Request) {
	if !isJSONRequest(r) {
		badData(w)
		return
	}

	var info service.PurchaseInfo
	if err := decodeJSON(w, r, &info); err != nil {
		badData(w)
		return
	}

	username := middleware.GetUsername(r)
	if username == "" {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	if err := h.accountService.SavePurchaseInfo(r.Context(), username, info); err != nil {
		slog.Warn("failed to save purchase info",
			"category", model.EventCategoryUser,
			"username", username,
			"error", err,
		)
		http.Error(w, validationMessage(err, "could not save information"), http.StatusUnprocessableEntity)
		return
	}

	writeText(w, bodySuccess)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return err
	}
	// one value per body
	if _, err := dec.Token(); err != io.EOF {
		return errTrailingData
	}
	return nil
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}
