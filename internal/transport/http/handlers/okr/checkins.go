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

func (h *Handler) handleListCheckIns(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	q := r.URL.Query()
	filter := okr.CheckInFilter{
		ObjectiveID: q.Get("objectiveId"),
		KeyResultID: q.Get("keyResultId"),
		AuthorID:    q.Get("authorId"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	}
	checkIns, err := h.Service.ListCheckIns(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "check_in_list_failed", "failed to list check-ins", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, checkIns, middleware.GetRequestID(r.Context()))
}

type checkInPayload struct {
	ObjectiveID *string  `json:"objectiveId"`
	KeyResultID *string  `json:"keyResultId"`
	NewValue    *float64 `json:"newValue"`
	Note        string   `json:"note"`
	Confidence  *int     `json:"confidence"`
	Version     *int     `json:"version"`
}

func validateCheckIn(p checkInPayload) *shared.Validator {
	v := shared.NewValidator()
	if p.NewValue == nil {
		v.Add("newValue", "new value is required")
	}
	if p.Confidence != nil {
		v.Range("confidence", float64(*p.Confidence), 1, 10, "confidence must be between 1 and 10")
	}
	return v
}

// handleCreateCheckIn is the flat create endpoint: the payload names either
// an objective or a key result and the request is routed accordingly.
func (h *Handler) handleCreateCheckIn(w http.ResponseWriter, r *http.Request) {
	var payload checkInPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	hasObjective := payload.ObjectiveID != nil && *payload.ObjectiveID != ""
	hasKeyResult := payload.KeyResultID != nil && *payload.KeyResultID != ""
	switch {
	case hasObjective == hasKeyResult:
		api.Fail(w, http.StatusBadRequest, "invalid_target", "provide exactly one of objectiveId or keyResultId", middleware.GetRequestID(r.Context()))
	case hasKeyResult:
		h.createKeyResultCheckIn(w, r, *payload.KeyResultID, payload)
	default:
		h.createObjectiveCheckIn(w, r, *payload.ObjectiveID, payload)
	}
}

func (h *Handler) handleKeyResultCheckIn(w http.ResponseWriter, r *http.Request) {
	var payload checkInPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	h.createKeyResultCheckIn(w, r, chi.URLParam(r, "keyResultID"), payload)
}

func (h *Handler) handleObjectiveCheckIn(w http.ResponseWriter, r *http.Request) {
	var payload checkInPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	h.createObjectiveCheckIn(w, r, chi.URLParam(r, "objectiveID"), payload)
}

// createKeyResultCheckIn records a progress update against a key result.
// The version precondition keeps two simultaneous check-ins from silently
// overwriting each other's value.
func (h *Handler) createKeyResultCheckIn(w http.ResponseWriter, r *http.Request, keyResultID string, payload checkInPayload) {
	actor, _ := middleware.GetUser(r.Context())
	if payload.Version == nil {
		api.Fail(w, http.StatusBadRequest, "version_required", "version is required for check-ins", middleware.GetRequestID(r.Context()))
		return
	}
	if validateCheckIn(payload).Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	checkIn, err := h.Service.CheckInKeyResult(r.Context(), keyResultID, *payload.NewValue, *payload.Version, payload.Note, checkInConfidence(payload), actor.UserID)
	if err != nil {
		failOKR(w, r, err, "check_in_failed", "failed to record check-in")
		return
	}
	h.record(r, "check_in.create", notifications.EntityCheckIn, checkIn.ID, nil, checkIn)
	api.Created(w, checkIn, middleware.GetRequestID(r.Context()))
}

func (h *Handler) createObjectiveCheckIn(w http.ResponseWriter, r *http.Request, objectiveID string, payload checkInPayload) {
	actor, _ := middleware.GetUser(r.Context())
	if validateCheckIn(payload).Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	checkIn, err := h.Service.CheckInObjective(r.Context(), objectiveID, *payload.NewValue, payload.Note, checkInConfidence(payload), actor.UserID)
	if err != nil {
		failOKR(w, r, err, "check_in_failed", "failed to record check-in")
		return
	}
	h.record(r, "check_in.create", notifications.EntityCheckIn, checkIn.ID, nil, checkIn)
	api.Created(w, checkIn, middleware.GetRequestID(r.Context()))
}

func checkInConfidence(p checkInPayload) int {
	if p.Confidence != nil {
		return *p.Confidence
	}
	return 5
}
