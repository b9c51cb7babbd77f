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

func (h *Handler) handleListObjectives(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	q := r.URL.Query()
	filter := okr.ObjectiveFilter{
		TeamID:  q.Get("teamId"),
		OwnerID: q.Get("ownerId"),
		CycleID: q.Get("cycleId"),
		Status:  q.Get("status"),
		Limit:   page.Limit,
		Offset:  page.Offset,
	}
	objectives, err := h.Service.ListObjectives(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "objective_list_failed", "failed to list objectives", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, objectives, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCompanyObjectives(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	filter := okr.ObjectiveFilter{
		CycleID:     r.URL.Query().Get("cycleId"),
		CompanyOnly: true,
		Limit:       page.Limit,
		Offset:      page.Offset,
	}
	objectives, err := h.Service.ListObjectives(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "objective_list_failed", "failed to list objectives", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, objectives, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetObjective(w http.ResponseWriter, r *http.Request) {
	objective, err := h.Service.GetObjective(r.Context(), chi.URLParam(r, "objectiveID"))
	if err != nil {
		failOKR(w, r, err, "objective_get_failed", "failed to load objective")
		return
	}
	api.Success(w, objective, middleware.GetRequestID(r.Context()))
}

type objectivePayload struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Progress           *float64 `json:"progress"`
	TeamID             *string  `json:"teamId"`
	OwnerID            *string  `json:"ownerId"`
	IsCompanyObjective bool     `json:"isCompanyObjective"`
	StartDate          string   `json:"startDate"`
	EndDate            string   `json:"endDate"`
	CycleID            *string  `json:"cycleId"`
	Status             string   `json:"status"`
	Priority           string   `json:"priority"`
	ConfidenceScore    *int     `json:"confidenceScore"`
	ParentObjectiveID  *string  `json:"parentObjectiveId"`
	Version            *int     `json:"version"`
}

func (h *Handler) validateObjective(p objectivePayload) (okr.ObjectiveDetails, *shared.Validator) {
	v := shared.NewValidator()
	v.Required("title", p.Title, "title is required")
	v.Enum("status", p.Status, okr.StoredStatuses, "status must be draft, active or cancelled")
	v.Enum("priority", p.Priority, okr.Priorities, "priority must be low, medium or high")
	start, startOK := v.Date("startDate", p.StartDate)
	end, endOK := v.Date("endDate", p.EndDate)
	if startOK && endOK {
		v.DateOrder("startDate", start, "endDate", end)
	}
	details := okr.ObjectiveDetails{
		Title:              p.Title,
		Description:        p.Description,
		TeamID:             p.TeamID,
		OwnerID:            p.OwnerID,
		IsCompanyObjective: p.IsCompanyObjective,
		StartDate:          start,
		EndDate:            end,
		CycleID:            p.CycleID,
		Status:             p.Status,
		Priority:           p.Priority,
		ParentObjectiveID:  p.ParentObjectiveID,
	}
	if p.Progress != nil {
		v.Range("progress", *p.Progress, 0, 100, "progress must be between 0 and 100")
		details.Progress = *p.Progress
	}
	if p.ConfidenceScore != nil {
		v.Range("confidenceScore", float64(*p.ConfidenceScore), 1, 10, "confidence score must be between 1 and 10")
		details.ConfidenceScore = *p.ConfidenceScore
	} else {
		details.ConfidenceScore = 5
	}
	return details, v
}

func (h *Handler) handleCreateObjective(w http.ResponseWriter, r *http.Request) {
	var payload objectivePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Status == "" {
		payload.Status = okr.ObjectiveStatusActive
	}
	if payload.Priority == "" {
		payload.Priority = okr.PriorityMedium
	}
	details, v := h.validateObjective(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateObjective(r.Context(), details)
	if err != nil {
		failOKR(w, r, err, "objective_create_failed", "failed to create objective")
		return
	}
	h.record(r, "objective.create", notifications.EntityObjective, id, nil, details)
	h.Search.InvalidateAll()

	objective, err := h.Service.GetObjective(r.Context(), id)
	if err != nil {
		api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, objective, middleware.GetRequestID(r.Context()))
}

// handleUpdateObjective requires the client's last-seen version and refuses
// the write when the row moved underneath it.
func (h *Handler) handleUpdateObjective(w http.ResponseWriter, r *http.Request) {
	objectiveID := chi.URLParam(r, "objectiveID")
	before, err := h.Service.GetObjective(r.Context(), objectiveID)
	if err != nil {
		failOKR(w, r, err, "objective_get_failed", "failed to load objective")
		return
	}

	var payload objectivePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Version == nil {
		api.Fail(w, http.StatusBadRequest, "version_required", "version is required for updates", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Status == "" {
		payload.Status = before.Status
	}
	if payload.Priority == "" {
		payload.Priority = before.Priority
	}
	if payload.Progress == nil {
		progressValue := before.Progress
		payload.Progress = &progressValue
	}
	details, v := h.validateObjective(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.UpdateObjective(r.Context(), objectiveID, details, *payload.Version); err != nil {
		failOKR(w, r, err, "objective_update_failed", "failed to update objective")
		return
	}
	h.record(r, "objective.update", notifications.EntityObjective, objectiveID, before, details)
	h.Search.InvalidateAll()
	h.notifyOwner(r, before, notifications.TypeObjectiveUpdated, "Objective updated", "\""+before.Title+"\" was updated.")

	objective, err := h.Service.GetObjective(r.Context(), objectiveID)
	if err != nil {
		api.Success(w, map[string]string{"id": objectiveID}, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, objective, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteObjective(w http.ResponseWriter, r *http.Request) {
	objectiveID := chi.URLParam(r, "objectiveID")
	before, err := h.Service.GetObjective(r.Context(), objectiveID)
	if err != nil {
		failOKR(w, r, err, "objective_get_failed", "failed to load objective")
		return
	}
	if err := h.Service.DeleteObjective(r.Context(), objectiveID); err != nil {
		failOKR(w, r, err, "objective_delete_failed", "failed to delete objective")
		return
	}
	h.record(r, "objective.delete", notifications.EntityObjective, objectiveID, before, nil)
	h.Search.InvalidateAll()
	api.Success(w, map[string]string{"id": objectiveID}, middleware.GetRequestID(r.Context()))
}
