package financehandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"okrtrack/internal/domain/auth"
	"okrtrack/internal/domain/finance"
	"okrtrack/internal/transport/http/api"
	"okrtrack/internal/transport/http/middleware"
	"okrtrack/internal/transport/http/shared"
)

type Handler struct {
	Store *finance.Store
}

func NewHandler(store *finance.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/financial-data", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermFinanceRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermFinanceWrite)).Post("/", h.handleCreate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := finance.Filter{
		ObjectiveID: q.Get("objectiveId"),
		TeamID:      q.Get("teamId"),
	}
	if raw := q.Get("from"); raw != "" {
		t, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "from must be an ISO date", middleware.GetRequestID(r.Context()))
			return
		}
		filter.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "to must be an ISO date", middleware.GetRequestID(r.Context()))
			return
		}
		filter.To = t
	}

	snapshots, err := h.Store.List(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "finance_list_failed", "failed to list financial data", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, snapshots, middleware.GetRequestID(r.Context()))
}

type snapshotPayload struct {
	Date        string  `json:"date"`
	Revenue     float64 `json:"revenue"`
	Cost        float64 `json:"cost"`
	Note        string  `json:"note"`
	ObjectiveID *string `json:"objectiveId"`
	TeamID      *string `json:"teamId"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload snapshotPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	date, _ := v.Date("date", payload.Date)
	if payload.Revenue < 0 {
		v.Add("revenue", "revenue cannot be negative")
	}
	if payload.Cost < 0 {
		v.Add("cost", "cost cannot be negative")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Store.Create(r.Context(), date.Truncate(24*time.Hour), payload.Revenue, payload.Cost, payload.Note, payload.ObjectiveID, payload.TeamID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "finance_create_failed", "failed to record financial data", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}
