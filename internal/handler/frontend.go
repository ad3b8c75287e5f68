package handler

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/vsales/internal/middleware"
	"github.com/olegiv/vsales/internal/render"
)

// FrontendHandler serves the customer-facing pages.
type FrontendHandler struct {
	renderer *render.Renderer
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(renderer *render.Renderer) *FrontendHandler {
	return &FrontendHandler{renderer: renderer}
}

// Home renders the catalog page. The vehicles are fetched by the page
// itself from /get-data.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	if username := middleware.GetUsername(r); username != "" {
		slog.Info("home visited", "username", username)
	}
	renderPage(w, r, h.renderer, "home", render.TemplateData{Title: "Vehicles"})
}

// Purchase renders the checkout page.
func (h *FrontendHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, "purchase", render.TemplateData{Title: "Purchase"})
}
