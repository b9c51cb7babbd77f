package okrhandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"okrtrack/internal/domain/notifications"
	"okrtrack/internal/domain/okr"
	"okrtrack/internal/progress"
	"okrtrack/internal/transport/http/api"
	"okrtrack/internal/transport/http/middleware"
	"okrtrack/internal/transport/http/shared"
)

func (h *Handler) handleListKeyResults(w http.ResponseWriter, r *http.Request) {
	objectiveID := chi.URLParam(r, "objectiveID")
	if _, err := h.Service.GetObjective(r.Context(), objectiveID); err != nil {
		failOKR(w, r, err, "objective_get_failed", "failed to load objective")
		return
	}
	keyResults, err := h.Service.ListKeyResults(r.Context(), objectiveID)
	if err != nil {
		failOKR(w, r, err, "key_result_list_failed", "failed to list key results")
		return
	}
	api.Success(w, keyResults, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetKeyResult(w http.ResponseWriter, r *http.Request) {
	keyResult, err := h.Service.GetKeyResult(r.Context(), chi.URLParam(r, "keyResultID"))
	if err != nil {
		failOKR(w, r, err, "key_result_get_failed", "failed to load key result")
		return
	}
	api.Success(w, keyResult, middleware.GetRequestID(r.Context()))
}

type keyResultPayload struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	StartValue  float64 `json:"startValue"`
	TargetValue float64 `json:"targetValue"`
	Direction   string  `json:"direction"`
	OwnerID     *string `json:"ownerId"`
	Version     *int    `json:"version"`
}

func (p keyResultPayload) details() okr.KeyResultDetails {
	return okr.KeyResultDetails{
		Title:       p.Title,
		Description: p.Description,
		StartValue:  p.StartValue,
		TargetValue: p.TargetValue,
		Direction:   progress.Direction(p.Direction),
		OwnerID:     p.OwnerID,
	}
}

func validateKeyResult(p keyResultPayload) *shared.Validator {
	v := shared.NewValidator()
	v.Required("title", p.Title, "title is required")
	v.Enum("direction", p.Direction, []string{string(progress.DirectionIncreasing), string(progress.DirectionDecreasing)}, "direction must be increasing or decreasing")
	if p.TargetValue == p.StartValue {
		v.Add("targetValue", "target value must differ from start value")
	}
	return v
}

func (h *Handler) handleCreateKeyResult(w http.ResponseWriter, r *http.Request) {
	objectiveID := chi.URLParam(r, "objectiveID")

	var payload keyResultPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Direction == "" {
		payload.Direction = string(progress.DirectionIncreasing)
	}
	if validateKeyResult(payload).Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateKeyResult(r.Context(), objectiveID, payload.details())
	if err != nil {
		failOKR(w, r, err, "key_result_create_failed", "failed to create key result")
		return
	}
	h.record(r, "key_result.create", notifications.EntityKeyResult, id, nil, payload.details())

	keyResult, err := h.Service.GetKeyResult(r.Context(), id)
	if err != nil {
		api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, keyResult, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateKeyResult(w http.ResponseWriter, r *http.Request) {
	keyResultID := chi.URLParam(r, "keyResultID")
	before, err := h.Service.GetKeyResult(r.Context(), keyResultID)
	if err != nil {
		failOKR(w, r, err, "key_result_get_failed", "failed to load key result")
		return
	}

	var payload keyResultPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Version == nil {
		api.Fail(w, http.StatusBadRequest, "version_required", "version is required for updates", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Direction == "" {
		payload.Direction = string(before.Direction)
	}
	if validateKeyResult(payload).Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.UpdateKeyResultDetails(r.Context(), keyResultID, payload.details(), *payload.Version); err != nil {
		failOKR(w, r, err, "key_result_update_failed", "failed to update key result")
		return
	}
	h.record(r, "key_result.update", notifications.EntityKeyResult, keyResultID, before, payload.details())

	keyResult, err := h.Service.GetKeyResult(r.Context(), keyResultID)
	if err != nil {
		api.Success(w, map[string]string{"id": keyResultID}, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, keyResult, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteKeyResult(w http.ResponseWriter, r *http.Request) {
	keyResultID := chi.URLParam(r, "keyResultID")
	before, err := h.Service.GetKeyResult(r.Context(), keyResultID)
	if err != nil {
		failOKR(w, r, err, "key_result_get_failed", "failed to load key result")
		return
	}
	if err := h.Service.DeleteKeyResult(r.Context(), keyResultID); err != nil {
		failOKR(w, r, err, "key_result_delete_failed", "failed to delete key result")
		return
	}
	h.record(r, "key_result.delete", notifications.EntityKeyResult, keyResultID, before, nil)
	api.Success(w, map[string]string{"id": keyResultID}, middleware.GetRequestID(r.Context()))
}
