package resourceshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"okrtrack/internal/domain/activity"
	"okrtrack/internal/domain/auth"
	"okrtrack/internal/domain/notifications"
	"okrtrack/internal/domain/resources"
	"okrtrack/internal/domain/search"
	"okrtrack/internal/transport/http/api"
	"okrtrack/internal/transport/http/middleware"
	"okrtrack/internal/transport/http/shared"
)

type Handler struct {
	Store    *resources.Store
	Activity *activity.Service
	Search   *search.Service
}

func NewHandler(store *resources.Store, activitySvc *activity.Service, searchSvc *search.Service) *Handler {
	return &Handler{Store: store, Activity: activitySvc, Search: searchSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/resources", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermResourcesRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermResourcesWrite)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermResourcesRead)).Get("/{resourceID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermResourcesWrite)).Put("/{resourceID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermResourcesWrite)).Delete("/{resourceID}", h.handleDelete)
	})
}

// handleList returns public resources plus the caller's own private ones.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	list, err := h.Store.List(r.Context(), actor.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "resource_list_failed", "failed to list resources", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	resource, err := h.Store.Get(r.Context(), chi.URLParam(r, "resourceID"))
	if err != nil {
		h.fail(w, r, err, "resource_get_failed", "failed to load resource")
		return
	}
	actor, _ := middleware.GetUser(r.Context())
	if !resource.IsPublic && !ownerOrAdmin(actor, resource.AuthorID) {
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, resource, middleware.GetRequestID(r.Context()))
}

type resourcePayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Type        string   `json:"type"`
	Tags        []string `json:"tags"`
	IsPublic    *bool    `json:"isPublic"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	var payload resourcePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Type == "" {
		payload.Type = resources.TypeArticle
	}
	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	v.Enum("type", payload.Type, resources.Types, "unknown resource type")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	isPublic := true
	if payload.IsPublic != nil {
		isPublic = *payload.IsPublic
	}
	details := resources.Details{
		Title:       payload.Title,
		Description: payload.Description,
		Content:     payload.Content,
		Type:        payload.Type,
		AuthorID:    &actor.UserID,
		Tags:        payload.Tags,
		IsPublic:    isPublic,
	}
	id, err := h.Store.Create(r.Context(), details)
	if err != nil {
		h.fail(w, r, err, "resource_create_failed", "failed to create resource")
		return
	}
	h.record(r, "resource.create", id, nil, details)
	h.Search.InvalidateAll()

	resource, err := h.Store.Get(r.Context(), id)
	if err != nil {
		api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, resource, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	resourceID := chi.URLParam(r, "resourceID")

	before, err := h.Store.Get(r.Context(), resourceID)
	if err != nil {
		h.fail(w, r, err, "resource_get_failed", "failed to load resource")
		return
	}
	if !ownerOrAdmin(actor, before.AuthorID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "only the author may modify this resource", middleware.GetRequestID(r.Context()))
		return
	}

	var payload resourcePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Type == "" {
		payload.Type = before.Type
	}
	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	v.Enum("type", payload.Type, resources.Types, "unknown resource type")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	isPublic := before.IsPublic
	if payload.IsPublic != nil {
		isPublic = *payload.IsPublic
	}
	details := resources.Details{
		Title:       payload.Title,
		Description: payload.Description,
		Content:     payload.Content,
		Type:        payload.Type,
		AuthorID:    before.AuthorID,
		Tags:        payload.Tags,
		IsPublic:    isPublic,
	}
	if err := h.Store.Update(r.Context(), resourceID, details); err != nil {
		h.fail(w, r, err, "resource_update_failed", "failed to update resource")
		return
	}
	h.record(r, "resource.update", resourceID, before, details)
	h.Search.InvalidateAll()

	resource, err := h.Store.Get(r.Context(), resourceID)
	if err != nil {
		api.Success(w, map[string]string{"id": resourceID}, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, resource, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	resourceID := chi.URLParam(r, "resourceID")

	before, err := h.Store.Get(r.Context(), resourceID)
	if err != nil {
		h.fail(w, r, err, "resource_get_failed", "failed to load resource")
		return
	}
	if !ownerOrAdmin(actor, before.AuthorID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "only the author may delete this resource", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Store.Delete(r.Context(), resourceID); err != nil {
		h.fail(w, r, err, "resource_delete_failed", "failed to delete resource")
		return
	}
	h.record(r, "resource.delete", resourceID, before, nil)
	h.Search.InvalidateAll()
	api.Success(w, map[string]string{"id": resourceID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	if errors.Is(err, resources.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", requestID)
		return
	}
	api.Fail(w, http.StatusInternalServerError, code, message, requestID)
}

func (h *Handler) record(r *http.Request, action, resourceID string, before, after any) {
	actor, _ := middleware.GetUser(r.Context())
	if err := h.Activity.Record(r.Context(), actor.UserID, action, notifications.EntityRef{Kind: notifications.EntityResource, ID: resourceID}, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		slog.Warn("activity record failed", "action", action, "err", err)
	}
}

func ownerOrAdmin(actor auth.UserContext, authorID *string) bool {
	if actor.Role == auth.RoleAdmin {
		return true
	}
	return authorID != nil && *authorID == actor.UserID
}
