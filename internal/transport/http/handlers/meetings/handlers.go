package meetingshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"okrtrack/internal/domain/activity"
	"okrtrack/internal/domain/auth"
	"okrtrack/internal/domain/meetings"
	"okrtrack/internal/domain/notifications"
	"okrtrack/internal/transport/http/api"
	"okrtrack/internal/transport/http/middleware"
	"okrtrack/internal/transport/http/shared"
)

type Handler struct {
	Service  *meetings.Service
	Activity *activity.Service
	Notify   *notifications.Service
}

func NewHandler(service *meetings.Service, activitySvc *activity.Service, notify *notifications.Service) *Handler {
	return &Handler{Service: service, Activity: activitySvc, Notify: notify}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/meetings", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermMeetingsRead)).Get("/", h.handleListMeetings)
		r.With(middleware.RequirePermission(auth.PermMeetingsWrite)).Post("/", h.handleCreateMeeting)
		r.With(middleware.RequirePermission(auth.PermMeetingsRead)).Get("/{meetingID}", h.handleGetMeeting)
		r.With(middleware.RequirePermission(auth.PermMeetingsWrite)).Put("/{meetingID}", h.handleUpdateMeeting)
		r.With(middleware.RequirePermission(auth.PermMeetingsRead)).Get("/{meetingID}/agenda-items", h.handleListAgenda)
		r.With(middleware.RequirePermission(auth.PermMeetingsWrite)).Post("/{meetingID}/agenda-items", h.handleCreateAgendaItem)
		r.With(middleware.RequirePermission(auth.PermMeetingsWrite)).Put("/{meetingID}/agenda-items/{itemID}", h.handleUpdateAgendaItem)
	})
}

func failMeetings(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, meetings.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", requestID)
	case errors.Is(err, meetings.ErrSameParticipant):
		api.Fail(w, http.StatusBadRequest, "same_participant", "a meeting needs two distinct participants", requestID)
	case errors.Is(err, meetings.ErrInvalidTimeWindow):
		api.Fail(w, http.StatusBadRequest, "invalid_time_window", "meeting start must be before its end", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}

// handleListMeetings returns the meetings the caller participates in. There
// is no cross-user meeting listing; meetings are private to their pair.
func (h *Handler) handleListMeetings(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	list, err := h.Service.ListMeetings(r.Context(), actor.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "meeting_list_failed", "failed to list meetings", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetMeeting(w http.ResponseWriter, r *http.Request) {
	meeting, err := h.Service.GetMeeting(r.Context(), chi.URLParam(r, "meetingID"))
	if err != nil {
		failMeetings(w, r, err, "meeting_get_failed", "failed to load meeting")
		return
	}
	if !h.participant(r, meeting) {
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, meeting, middleware.GetRequestID(r.Context()))
}

type meetingPayload struct {
	UserID2     string  `json:"userId2"`
	ObjectiveID *string `json:"objectiveId"`
	Title       string  `json:"title"`
	Notes       string  `json:"notes"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
}

func (h *Handler) handleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	var payload meetingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("title", payload.Title, "meeting title is required")
	v.Required("userId2", payload.UserID2, "second participant is required")
	start, startOK := v.Date("startTime", payload.StartTime)
	end, endOK := v.Date("endTime", payload.EndTime)
	if startOK && endOK {
		v.DateOrder("startTime", start, "endTime", end)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	details := meetings.MeetingDetails{
		UserID1:     actor.UserID,
		UserID2:     payload.UserID2,
		ObjectiveID: payload.ObjectiveID,
		Title:       payload.Title,
		Notes:       payload.Notes,
		StartTime:   start,
		EndTime:     end,
	}
	id, err := h.Service.CreateMeeting(r.Context(), details)
	if err != nil {
		failMeetings(w, r, err, "meeting_create_failed", "failed to create meeting")
		return
	}
	h.record(r, "meeting.create", id, nil, details)
	h.notifyParticipant(r, payload.UserID2, id, notifications.TypeMeetingScheduled, "Meeting scheduled", "\""+payload.Title+"\" was scheduled with you.")

	meeting, err := h.Service.GetMeeting(r.Context(), id)
	if err != nil {
		api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, meeting, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateMeeting(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	meetingID := chi.URLParam(r, "meetingID")

	before, err := h.Service.GetMeeting(r.Context(), meetingID)
	if err != nil {
		failMeetings(w, r, err, "meeting_get_failed", "failed to load meeting")
		return
	}
	if !h.participant(r, before) {
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", middleware.GetRequestID(r.Context()))
		return
	}

	var payload meetingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.UserID2 == "" {
		payload.UserID2 = before.UserID2
	}
	v := shared.NewValidator()
	v.Required("title", payload.Title, "meeting title is required")
	start, startOK := v.Date("startTime", payload.StartTime)
	end, endOK := v.Date("endTime", payload.EndTime)
	if startOK && endOK {
		v.DateOrder("startTime", start, "endTime", end)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	details := meetings.MeetingDetails{
		UserID1:     before.UserID1,
		UserID2:     payload.UserID2,
		ObjectiveID: payload.ObjectiveID,
		Title:       payload.Title,
		Notes:       payload.Notes,
		StartTime:   start,
		EndTime:     end,
	}
	if err := h.Service.UpdateMeeting(r.Context(), meetingID, details); err != nil {
		failMeetings(w, r, err, "meeting_update_failed", "failed to update meeting")
		return
	}
	h.record(r, "meeting.update", meetingID, before, details)

	other := before.UserID1
	if actor.UserID == before.UserID1 {
		other = before.UserID2
	}
	h.notifyParticipant(r, other, meetingID, notifications.TypeMeetingUpdated, "Meeting updated", "\""+payload.Title+"\" was updated.")

	meeting, err := h.Service.GetMeeting(r.Context(), meetingID)
	if err != nil {
		api.Success(w, map[string]string{"id": meetingID}, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, meeting, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListAgenda(w http.ResponseWriter, r *http.Request) {
	meetingID := chi.URLParam(r, "meetingID")
	meeting, err := h.Service.GetMeeting(r.Context(), meetingID)
	if err != nil {
		failMeetings(w, r, err, "meeting_get_failed", "failed to load meeting")
		return
	}
	if !h.participant(r, meeting) {
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", middleware.GetRequestID(r.Context()))
		return
	}
	items, err := h.Service.ListAgendaItems(r.Context(), meetingID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "agenda_list_failed", "failed to list agenda items", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

type agendaPayload struct {
	Title      string  `json:"title"`
	Status     string  `json:"status"`
	AssigneeID *string `json:"assigneeId"`
	SortOrder  int     `json:"sortOrder"`
}

func (h *Handler) handleCreateAgendaItem(w http.ResponseWriter, r *http.Request) {
	meetingID := chi.URLParam(r, "meetingID")
	meeting, err := h.Service.GetMeeting(r.Context(), meetingID)
	if err != nil {
		failMeetings(w, r, err, "meeting_get_failed", "failed to load meeting")
		return
	}
	if !h.participant(r, meeting) {
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", middleware.GetRequestID(r.Context()))
		return
	}

	var payload agendaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Status == "" {
		payload.Status = meetings.AgendaStatusPending
	}
	v := shared.NewValidator()
	v.Required("title", payload.Title, "agenda item title is required")
	v.Enum("status", payload.Status, meetings.AgendaStatuses, "status must be pending, done or deferred")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateAgendaItem(r.Context(), meetingID, payload.Title, payload.Status, payload.AssigneeID, payload.SortOrder)
	if err != nil {
		failMeetings(w, r, err, "agenda_create_failed", "failed to create agenda item")
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateAgendaItem(w http.ResponseWriter, r *http.Request) {
	meetingID := chi.URLParam(r, "meetingID")
	meeting, err := h.Service.GetMeeting(r.Context(), meetingID)
	if err != nil {
		failMeetings(w, r, err, "meeting_get_failed", "failed to load meeting")
		return
	}
	if !h.participant(r, meeting) {
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", middleware.GetRequestID(r.Context()))
		return
	}

	var payload agendaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("title", payload.Title, "agenda item title is required")
	v.Enum("status", payload.Status, meetings.AgendaStatuses, "status must be pending, done or deferred")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.UpdateAgendaItem(r.Context(), chi.URLParam(r, "itemID"), payload.Title, payload.Status, payload.AssigneeID, payload.SortOrder); err != nil {
		failMeetings(w, r, err, "agenda_update_failed", "failed to update agenda item")
		return
	}
	api.Success(w, map[string]string{"id": chi.URLParam(r, "itemID")}, middleware.GetRequestID(r.Context()))
}

// participant reports whether the caller is one of the meeting's two users.
// Admins see everything for support purposes.
func (h *Handler) participant(r *http.Request, m meetings.Meeting) bool {
	actor, _ := middleware.GetUser(r.Context())
	if actor.Role == auth.RoleAdmin {
		return true
	}
	return actor.UserID == m.UserID1 || actor.UserID == m.UserID2
}

func (h *Handler) record(r *http.Request, action, meetingID string, before, after any) {
	actor, _ := middleware.GetUser(r.Context())
	if err := h.Activity.Record(r.Context(), actor.UserID, action, notifications.EntityRef{Kind: notifications.EntityMeeting, ID: meetingID}, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		slog.Warn("activity record failed", "action", action, "err", err)
	}
}

func (h *Handler) notifyParticipant(r *http.Request, userID, meetingID, notifType, title, message string) {
	actor, _ := middleware.GetUser(r.Context())
	if userID == "" || userID == actor.UserID {
		return
	}
	err := h.Notify.Notify(r.Context(), notifications.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Entity:  &notifications.EntityRef{Kind: notifications.EntityMeeting, ID: meetingID},
	})
	if err != nil {
		slog.Warn("meeting notification failed", "meetingId", meetingID, "err", err)
	}
}
