package activityhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"okrtrack/internal/domain/activity"
	"okrtrack/internal/domain/auth"
	"okrtrack/internal/transport/http/api"
	"okrtrack/internal/transport/http/middleware"
	"okrtrack/internal/transport/http/shared"
)

type Handler struct {
	Service *activity.Service
}

func NewHandler(service *activity.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermActivityRead)).Get("/activity", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 500)
	q := r.URL.Query()
	filter := activity.Filter{
		Action:     q.Get("action"),
		EntityKind: q.Get("entityKind"),
		ActorID:    q.Get("actorId"),
	}
	includeDetails := q.Get("includeDetails") == "true"

	total, err := h.Service.Count(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "activity_list_failed", "failed to list activity", middleware.GetRequestID(r.Context()))
		return
	}
	events, err := h.Service.List(r.Context(), filter, includeDetails, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "activity_list_failed", "failed to list activity", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"events": events,
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	}, middleware.GetRequestID(r.Context()))
}
