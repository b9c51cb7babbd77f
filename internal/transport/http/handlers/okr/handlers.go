package okrhandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"okrtrack/internal/domain/activity"
	"okrtrack/internal/domain/auth"
	"okrtrack/internal/domain/notifications"
	"okrtrack/internal/domain/okr"
	"okrtrack/internal/domain/search"
	"okrtrack/internal/hierarchy"
	"okrtrack/internal/progress"
	"okrtrack/internal/transport/http/api"
	"okrtrack/internal/transport/http/middleware"
	"okrtrack/internal/transport/http/shared"
)

type Handler struct {
	Service  *okr.Service
	Activity *activity.Service
	Notify   *notifications.Service
	Search   *search.Service
}

func NewHandler(service *okr.Service, activitySvc *activity.Service, notify *notifications.Service, searchSvc *search.Service) *Handler {
	return &Handler{Service: service, Activity: activitySvc, Notify: notify, Search: searchSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cycles", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermOKRRead)).Get("/", h.handleListCycles)
		r.With(middleware.RequirePermission(auth.PermCyclesWrite)).Post("/", h.handleCreateCycle)
		r.With(middleware.RequirePermission(auth.PermOKRRead)).Get("/{cycleID}", h.handleGetCycle)
		r.With(middleware.RequirePermission(auth.PermCyclesWrite)).Put("/{cycleID}", h.handleUpdateCycle)
		r.With(middleware.RequirePermission(auth.PermCyclesWrite)).Post("/{cycleID}/set-default", h.handleSetDefaultCycle)
		r.With(middleware.RequirePermission(auth.PermOKRRead)).Get("/{cycleID}/summaries/users", h.handleUserSummaries)
		r.With(middleware.RequirePermission(auth.PermOKRRead)).Get("/{cycleID}/summaries/teams", h.handleTeamSummaries)
	})
	r.Route("/objectives", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermOKRRead)).Get("/", h.handleListObjectives)
		r.With(middleware.RequirePermission(auth.PermOKRRead)).Get("/company", h.handleCompanyObjectives)
		r.With(middleware.RequirePermission(auth.PermOKRWrite)).Post("/", h.handleCreateObjective)
		r.With(middleware.RequirePermission(auth.PermOKRRead)).Get("/{objectiveID}", h.handleGetObjective)
		r.With(middleware.RequirePermission(auth.PermOKRWrite)).Put("/{objectiveID}", h.handleUpdateObjective)
		r.With(middleware.RequirePermission(auth.PermOKRWrite)).Patch("/{objectiveID}", h.handleUpdateObjective)
		r.With(middleware.RequirePermission(auth.PermOKRDelete)).Delete("/{objectiveID}", h.handleDeleteObjective)
		r.With(middleware.RequirePermission(auth.PermOKRRead)).Get("/{objectiveID}/key-results", h.handleListKeyResults)
		r.With(middleware.RequirePermission(auth.PermOKRWrite)).Post("/{objectiveID}/key-results", h.handleCreateKeyResult)
		r.With(middleware.RequirePermission(auth.PermCheckinsWrite)).Post("/{objectiveID}/check-ins", h.handleObjectiveCheckIn)
	})
	r.Route("/key-results", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermOKRRead)).Get("/{keyResultID}", h.handleGetKeyResult)
		r.With(middleware.RequirePermission(auth.PermOKRWrite)).Put("/{keyResultID}", h.handleUpdateKeyResult)
		r.With(middleware.RequirePermission(auth.PermOKRWrite)).Patch("/{keyResultID}", h.handleUpdateKeyResult)
		r.With(middleware.RequirePermission(auth.PermOKRDelete)).Delete("/{keyResultID}", h.handleDeleteKeyResult)
		r.With(middleware.RequirePermission(auth.PermCheckinsWrite)).Post("/{keyResultID}/check-ins", h.handleKeyResultCheckIn)
	})
	r.With(middleware.RequirePermission(auth.PermOKRRead)).Get("/check-ins", h.handleListCheckIns)
	r.With(middleware.RequirePermission(auth.PermCheckinsWrite)).Post("/check-ins", h.handleCreateCheckIn)
	r.Route("/comments", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermOKRRead)).Get("/", h.handleListComments)
		r.With(middleware.RequirePermission(auth.PermOKRWrite)).Post("/", h.handleCreateComment)
	})
}

// failOKR translates domain errors into the transport taxonomy. Version
// conflicts and hierarchy cycles are client-resolvable, so they get
// distinct codes instead of a generic failure.
func failOKR(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, okr.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", requestID)
	case errors.Is(err, okr.ErrVersionConflict):
		api.Fail(w, http.StatusConflict, "version_conflict", "the record changed since it was loaded, reload and retry", requestID)
	case errors.Is(err, hierarchy.ErrWouldCreateCycle):
		api.Fail(w, http.StatusConflict, "would_create_cycle", "change would create a cycle in the alignment tree", requestID)
	case errors.Is(err, hierarchy.ErrDepthExceeded):
		api.Fail(w, http.StatusBadRequest, "hierarchy_too_deep", "alignment tree exceeds the supported depth", requestID)
	case errors.Is(err, progress.ErrTargetEqualsStart):
		api.Fail(w, http.StatusBadRequest, "invalid_target", "target value must differ from start value", requestID)
	case errors.Is(err, okr.ErrCheckInTarget), errors.Is(err, okr.ErrCommentTarget):
		api.Fail(w, http.StatusBadRequest, "invalid_target", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}

func (h *Handler) record(r *http.Request, action string, kind notifications.EntityKind, id string, before, after any) {
	actor, _ := middleware.GetUser(r.Context())
	if err := h.Activity.Record(r.Context(), actor.UserID, action, notifications.EntityRef{Kind: kind, ID: id}, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		slog.Warn("activity record failed", "action", action, "err", err)
	}
}

// notifyOwner sends a notification to the objective owner unless the actor
// is the owner; nobody needs to be told about their own edits.
func (h *Handler) notifyOwner(r *http.Request, obj okr.Objective, notifType, title, message string) {
	if obj.OwnerID == nil {
		return
	}
	actor, _ := middleware.GetUser(r.Context())
	if actor.UserID == *obj.OwnerID {
		return
	}
	err := h.Notify.Notify(r.Context(), notifications.Notification{
		UserID:  *obj.OwnerID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Entity:  &notifications.EntityRef{Kind: notifications.EntityObjective, ID: obj.ID},
	})
	if err != nil {
		slog.Warn("owner notification failed", "objectiveId", obj.ID, "err", err)
	}
}
