package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/vsales/internal/middleware"
	"github.com/olegiv/vsales/internal/service"
	"github.com/olegiv/vsales/internal/store"
)

// DataHandler serves the JSON dumps read by the page scripts. Store
// failures are reported as {"error": msg} with status 200.
type DataHandler struct {
	inventoryService *service.InventoryService
	purchaseService  *service.PurchaseService
	accountService   *service.AccountService
}

// NewDataHandler creates a new DataHandler.
func NewDataHandler(is *service.InventoryService, ps *service.PurchaseService, as *service.AccountService) *DataHandler {
	return &DataHandler{
		inventoryService: is,
		purchaseService:  ps,
		accountService:   as,
	}
}

// GetData handles GET /get-data.
func (h *DataHandler) GetData(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.inventoryService.ListVehicles(r.Context())
	if err != nil {
		slog.Error("failed to list vehicles", "error", err)
		writeJSONError(w, http.StatusOK, err.Error())
		return
	}
	if vehicles == nil {
		vehicles = []store.Vehicle{}
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// GetOrderData handles GET /get-order-data.
func (h *DataHandler) GetOrderData(w http.ResponseWriter, r *http.Request) {
	orders, err := h.purchaseService.ListOrders(r.Context())
	if err != nil {
		slog.Error("failed to list orders", "error", err)
		writeJSONError(w, http.StatusOK, err.Error())
		return
	}
	if orders == nil {
		orders = []store.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetUserData handles GET and POST /get-user-data. GET returns the
// signed-in user; POST names a user in a form field or JSON body, and only
// admins may name someone else.
func (h *DataHandler) GetUserData(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r)
	if id == nil {
		writeJSON(w, http.StatusOK, []userData{})
		return
	}

	username := id.Username
	if r.Method == http.MethodPost {
		requested, err := requestedUsername(w, r)
		if err != nil {
			badData(w)
			return
		}
		if requested != "" && !strings.EqualFold(requested, id.Username) {
			if !id.IsAdmin() {
				http.Error(w, middleware.ForbiddenMessage, http.StatusForbidden)
				return
			}
			username = requested
		}
	}

	user, err := h.accountService.GetUser(r.Context(), username)
	if errors.Is(err, service.ErrUserNotFound) {
		writeJSON(w, http.StatusOK, []userData{})
		return
	}
	if err != nil {
		slog.Error("failed to load user", "username", username, "error", err)
		writeJSONError(w, http.StatusOK, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, []userData{newUserData(user)})
}

func requestedUsername(w http.ResponseWriter, r *http.Request) (string, error) {
	if isJSONRequest(r) {
		var body struct {
			Username string `json:"username"`
		}
		if err := decodeJSON(w, r, &body); err != nil {
			return "", err
		}
		return strings.TrimSpace(body.Username), nil
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return strings.TrimSpace(r.PostFormValue("username")), nil
}
