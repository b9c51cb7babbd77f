package okrhandler

import (
	"encoding/json"
	"net/http"

	"okrtrack/internal/domain/notifications"
	"okrtrack/internal/transport/http/api"
	"okrtrack/internal/transport/http/middleware"
	"okrtrack/internal/transport/http/shared"
)

func (h *Handler) handleListComments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	objectiveID := q.Get("objectiveId")
	keyResultID := q.Get("keyResultId")
	if objectiveID == "" && keyResultID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_target", "objectiveId or keyResultId is required", middleware.GetRequestID(r.Context()))
		return
	}
	comments, err := h.Service.ListComments(r.Context(), objectiveID, keyResultID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "comment_list_failed", "failed to list comments", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, comments, middleware.GetRequestID(r.Context()))
}

type commentPayload struct {
	ObjectiveID     *string `json:"objectiveId"`
	KeyResultID     *string `json:"keyResultId"`
	ParentCommentID *string `json:"parentCommentId"`
	Body            string  `json:"body"`
}

func (h *Handler) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	var payload commentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("body", payload.Body, "comment body is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateComment(r.Context(), payload.ObjectiveID, payload.KeyResultID, actor.UserID, payload.ParentCommentID, payload.Body)
	if err != nil {
		failOKR(w, r, err, "comment_create_failed", "failed to create comment")
		return
	}
	h.record(r, "comment.create", notifications.EntityComment, id, nil, payload)

	if payload.ObjectiveID != nil {
		if obj, err := h.Service.GetObjective(r.Context(), *payload.ObjectiveID); err == nil {
			h.notifyOwner(r, obj, notifications.TypeCommentAdded, "New comment", "A comment was added to \""+obj.Title+"\".")
		}
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}
