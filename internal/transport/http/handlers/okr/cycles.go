package okrhandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"okrtrack/internal/domain/notifications"
	"okrtrack/internal/domain/okr"
	"okrtrack/internal/transport/http/api"
	"okrtrack/internal/transport/http/middleware"
	"okrtrack/internal/transport/http/shared"
)

func (h *Handler) handleListCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.Service.ListCycles(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "cycle_list_failed", "failed to list cycles", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, cycles, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetCycle(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.Service.GetCycle(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		failOKR(w, r, err, "cycle_get_failed", "failed to load cycle")
		return
	}
	api.Success(w, cycle, middleware.GetRequestID(r.Context()))
}

type cyclePayload struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Type      string `json:"type"`
	Status    string `json:"status"`
}

func (h *Handler) handleCreateCycle(w http.ResponseWriter, r *http.Request) {
	var payload cyclePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Type == "" {
		payload.Type = okr.CycleTypeQuarterly
	}
	if payload.Status == "" {
		payload.Status = okr.CycleStatusUpcoming
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "cycle name is required")
	v.Enum("type", payload.Type, okr.CycleTypes, "unknown cycle type")
	v.Enum("status", payload.Status, okr.CycleStatuses, "unknown cycle status")
	start, startOK := v.Date("startDate", payload.StartDate)
	end, endOK := v.Date("endDate", payload.EndDate)
	if startOK && endOK {
		v.DateOrder("startDate", start, "endDate", end)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateCycle(r.Context(), payload.Name, start, end, payload.Type, payload.Status)
	if err != nil {
		failOKR(w, r, err, "cycle_create_failed", "failed to create cycle")
		return
	}
	h.record(r, "cycle.create", notifications.EntityCycle, id, nil, payload)

	cycle, err := h.Service.GetCycle(r.Context(), id)
	if err != nil {
		api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, cycle, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateCycle(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "cycleID")
	before, err := h.Service.GetCycle(r.Context(), cycleID)
	if err != nil {
		failOKR(w, r, err, "cycle_get_failed", "failed to load cycle")
		return
	}

	var payload cyclePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Type == "" {
		payload.Type = before.Type
	}
	if payload.Status == "" {
		payload.Status = before.Status
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "cycle name is required")
	v.Enum("type", payload.Type, okr.CycleTypes, "unknown cycle type")
	v.Enum("status", payload.Status, okr.CycleStatuses, "unknown cycle status")
	start, startOK := v.Date("startDate", payload.StartDate)
	end, endOK := v.Date("endDate", payload.EndDate)
	if startOK && endOK {
		v.DateOrder("startDate", start, "endDate", end)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.UpdateCycle(r.Context(), cycleID, payload.Name, start, end, payload.Type, payload.Status); err != nil {
		failOKR(w, r, err, "cycle_update_failed", "failed to update cycle")
		return
	}
	h.record(r, "cycle.update", notifications.EntityCycle, cycleID, before, payload)

	cycle, err := h.Service.GetCycle(r.Context(), cycleID)
	if err != nil {
		api.Success(w, map[string]string{"id": cycleID}, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, cycle, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSetDefaultCycle(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "cycleID")
	if err := h.Service.SetDefaultCycle(r.Context(), cycleID); err != nil {
		failOKR(w, r, err, "cycle_default_failed", "failed to set default cycle")
		return
	}
	h.record(r, "cycle.set_default", notifications.EntityCycle, cycleID, nil, nil)
	api.Success(w, map[string]string{"id": cycleID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUserSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.Service.UserCycleSummaries(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		failOKR(w, r, err, "summary_list_failed", "failed to list cycle summaries")
		return
	}
	api.Success(w, summaries, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTeamSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.Service.TeamCycleSummaries(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		failOKR(w, r, err, "summary_list_failed", "failed to list cycle summaries")
		return
	}
	api.Success(w, summaries, middleware.GetRequestID(r.Context()))
}
