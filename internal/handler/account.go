package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/vsales/internal/middleware"
	"github.com/olegiv/vsales/internal/model"
	"github.com/olegiv/vsales/internal/render"
	"github.com/olegiv/vsales/internal/service"
	"github.com/olegiv/vsales/internal/store"
)

// AccountHandler serves the signed-in user's mailing and payment forms.
type AccountHandler struct {
	renderer        *render.Renderer
	accountService  *service.AccountService
	purchaseService *service.PurchaseService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(renderer *render.Renderer, as *service.AccountService, ps *service.PurchaseService) *AccountHandler {
	return &AccountHandler{
		renderer:        renderer,
		accountService:  as,
		purchaseService: ps,
	}
}

// accountPage is the update-payment view: the stored details plus the
// user's own orders.
type accountPage struct {
	store.User
	Orders []store.Order
}

// UpdatePaymentForm renders both forms filled with the stored values.
func (h *AccountHandler) UpdatePaymentForm(w http.ResponseWriter, r *http.Request) {
	data := render.TemplateData{Title: "Payment & Mailing"}
	username := middleware.GetUsername(r)

	var page accountPage
	user, err := h.accountService.GetUser(r.Context(), username)
	if err != nil {
		slog.Error("failed to load account", "username", username, "error", err)
		data.Flash = "Could not load your details"
		data.FlashType = render.FlashError
	}
	page.User = user

	orders, err := h.purchaseService.OrdersFor(r.Context(), username)
	if err != nil {
		slog.Error("failed to load orders", "username", username, "error", err)
	}
	page.Orders = orders
	data.Data = page

	renderPage(w, r, h.renderer, "update-payment", data)
}

// UpdatePayment handles POST /update-payment. The hidden form-identifier
// field selects which form was submitted.
func (h *AccountHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectUpdatePayment) {
		return
	}

	username := middleware.GetUsername(r)
	formID := r.FormValue("form-identifier")

	var err error
	switch formID {
	case service.FormMailing:
		err = h.accountService.UpdateMailing(r.Context(), username, service.MailingInput{
			Address:    r.FormValue("address"),
			Address2:   r.FormValue("address2"),
			City:       r.FormValue("city"),
			State:      r.FormValue("state"),
			PostalCode: r.FormValue("postal_code"),
		})
	case service.FormPayment:
		err = h.accountService.UpdatePayment(r.Context(), username, service.PaymentInput{
			Name:         r.FormValue("name"),
			CardNumber:   r.FormValue("card_number"),
			Expiration:   r.FormValue("expiration"),
			SecurityCode: r.FormValue("security_code"),
		})
	default:
		flashError(w, r, h.renderer, redirectUpdatePayment, "Unknown form")
		return
	}

	if err != nil {
		var vErr *model.ValidationError
		if errors.As(err, &vErr) {
			flashError(w, r, h.renderer, redirectUpdatePayment, vErr.Error())
			return
		}
		slog.Error("failed to update account",
			"category", model.EventCategoryUser,
			"username", username,
			"form", formID,
			"error", err,
		)
		flashError(w, r, h.renderer, redirectUpdatePayment, "Could not save your information")
		return
	}

	flashSuccess(w, r, h.renderer, redirectUpdatePayment, "Information saved")
}

// userData is the JSON shape of a user record. The card number is masked.
type userData struct {
	store.User
	CardNumber string `json:"card_number"`
}

func newUserData(u store.User) userData {
	return userData{User: u, CardNumber: model.MaskCardNumber(u.CardNumber)}
}
