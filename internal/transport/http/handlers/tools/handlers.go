package toolshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/fields"
	"hrdesk/internal/domain/taxid"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
)

// Handler exposes the field checks so forms can validate as the user types.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tools", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/tax-id", h.handleTaxID)
		r.Get("/phone", h.handlePhone)
		r.Get("/email", h.handleEmail)
	})
}

func (h *Handler) handleTaxID(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("value")
	api.Success(w, map[string]any{
		"valid":      taxid.IsValid(value),
		"formatted":  taxid.Format(value),
		"normalized": taxid.Normalize(value),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePhone(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("value")
	api.Success(w, map[string]any{
		"valid":     fields.ValidPhone(value),
		"formatted": fields.FormatPhone(value),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEmail(w http.ResponseWriter, r *http.Request) {
	api.Success(w, map[string]any{
		"valid": fields.ValidEmail(r.URL.Query().Get("value")),
	}, middleware.GetRequestID(r.Context()))
}
