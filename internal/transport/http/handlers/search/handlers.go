package searchhandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"okrtrack/internal/domain/search"
	"okrtrack/internal/transport/http/api"
	"okrtrack/internal/transport/http/middleware"
)

type Handler struct {
	Service *search.Service
}

func NewHandler(service *search.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/search", h.handleSearch)
}

// handleSearch runs the cross-entity lookup. Results are already filtered to
// what any signed-in user may see; per-row visibility is not applied here.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	term := r.URL.Query().Get("q")
	limit := search.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}
	results, err := h.Service.Search(r.Context(), term, limit)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "search_failed", "search failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, results, middleware.GetRequestID(r.Context()))
}
