package identityhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"okrtrack/internal/domain/activity"
	"okrtrack/internal/domain/auth"
	"okrtrack/internal/domain/identity"
	"okrtrack/internal/domain/notifications"
	"okrtrack/internal/domain/search"
	"okrtrack/internal/hierarchy"
	"okrtrack/internal/transport/http/api"
	"okrtrack/internal/transport/http/middleware"
	"okrtrack/internal/transport/http/shared"
)

type Handler struct {
	Service  *identity.Service
	Activity *activity.Service
	Notify   *notifications.Service
	Search   *search.Service
}

func NewHandler(service *identity.Service, activitySvc *activity.Service, notify *notifications.Service, searchSvc *search.Service) *Handler {
	return &Handler{Service: service, Activity: activitySvc, Notify: notify, Search: searchSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermUsersRead)).Get("/", h.handleListUsers)
		r.With(middleware.RequirePermission(auth.PermUsersWrite)).Post("/", h.handleCreateUser)
		r.With(middleware.RequirePermission(auth.PermUsersRead)).Get("/{userID}", h.handleGetUser)
		r.With(middleware.RequirePermission(auth.PermUsersWrite)).Put("/{userID}", h.handleUpdateUser)
	})
	r.Route("/teams", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermTeamsRead)).Get("/", h.handleListTeams)
		r.With(middleware.RequirePermission(auth.PermTeamsWrite)).Post("/", h.handleCreateTeam)
		r.With(middleware.RequirePermission(auth.PermTeamsRead)).Get("/{teamID}", h.handleGetTeam)
		r.With(middleware.RequirePermission(auth.PermTeamsWrite)).Put("/{teamID}", h.handleUpdateTeam)
		r.With(middleware.RequirePermission(auth.PermTeamsRead)).Get("/{teamID}/members", h.handleTeamMembers)
	})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	filter := identity.UserFilter{
		TeamID: r.URL.Query().Get("teamId"),
		Role:   r.URL.Query().Get("role"),
		Status: r.URL.Query().Get("status"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	users, err := h.Service.ListUsers(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_list_failed", "failed to list users", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, users, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.failIdentity(w, r, err, "user_get_failed", "failed to load user")
		return
	}
	api.Success(w, user, middleware.GetRequestID(r.Context()))
}

type userPayload struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	FullName string  `json:"fullName"`
	JobTitle string  `json:"jobTitle"`
	Role     string  `json:"role"`
	TeamID   *string `json:"teamId"`
	Status   string  `json:"status"`
	Password string  `json:"password"`
}

func (p userPayload) details() identity.UserDetails {
	return identity.UserDetails{
		Username: p.Username,
		Email:    p.Email,
		FullName: p.FullName,
		JobTitle: p.JobTitle,
		Role:     p.Role,
		TeamID:   p.TeamID,
		Status:   p.Status,
	}
}

func (h *Handler) validateUser(p userPayload, requirePassword bool) *shared.Validator {
	v := shared.NewValidator()
	v.Required("username", p.Username, "username is required")
	v.MinLength("username", p.Username, 3, "username must be at least 3 characters")
	v.Required("email", p.Email, "email is required")
	v.Required("fullName", p.FullName, "full name is required")
	if p.Role != "" && !auth.ValidRole(p.Role) {
		v.Add("role", "unknown role")
	}
	v.Enum("status", p.Status, []string{identity.UserStatusActive, identity.UserStatusInactive}, "status must be active or inactive")
	if requirePassword {
		v.Required("password", p.Password, "password is required")
		v.MinLength("password", p.Password, 8, "password must be at least 8 characters")
	}
	return v
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	var payload userPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Role == "" {
		payload.Role = auth.RoleUser
	}
	if payload.Status == "" {
		payload.Status = identity.UserStatusActive
	}
	if h.validateUser(payload, true).Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "hash_error", "failed to create user", middleware.GetRequestID(r.Context()))
		return
	}
	id, err := h.Service.CreateUser(r.Context(), payload.details(), hash)
	if err != nil {
		h.failIdentity(w, r, err, "user_create_failed", "failed to create user")
		return
	}

	h.record(r, actor.UserID, "user.create", notifications.EntityUser, id, nil, payload.details())
	h.Search.InvalidateAll()

	user, err := h.Service.GetUser(r.Context(), id)
	if err != nil {
		api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, user, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	before, err := h.Service.GetUser(r.Context(), userID)
	if err != nil {
		h.failIdentity(w, r, err, "user_get_failed", "failed to load user")
		return
	}

	var payload userPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Role == "" {
		payload.Role = before.Role
	}
	if payload.Status == "" {
		payload.Status = before.Status
	}
	if h.validateUser(payload, false).Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.UpdateUser(r.Context(), userID, payload.details()); err != nil {
		h.failIdentity(w, r, err, "user_update_failed", "failed to update user")
		return
	}

	h.record(r, actor.UserID, "user.update", notifications.EntityUser, userID, before, payload.details())
	h.Search.InvalidateAll()

	teamChanged := !equalPtr(before.TeamID, payload.TeamID)
	if teamChanged {
		if err := h.Notify.Notify(r.Context(), notifications.Notification{
			UserID:  userID,
			Type:    notifications.TypeTeamChanged,
			Title:   "Team assignment updated",
			Message: "Your team assignment has changed.",
			Entity:  &notifications.EntityRef{Kind: notifications.EntityUser, ID: userID},
		}); err != nil {
			slog.Warn("team change notification failed", "userId", userID, "err", err)
		}
	}

	user, err := h.Service.GetUser(r.Context(), userID)
	if err != nil {
		api.Success(w, map[string]string{"id": userID}, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, user, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.Service.ListTeams(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "team_list_failed", "failed to list teams", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, teams, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.Service.GetTeam(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		h.failIdentity(w, r, err, "team_get_failed", "failed to load team")
		return
	}
	api.Success(w, team, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTeamMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.Service.TeamMembers(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		h.failIdentity(w, r, err, "team_members_failed", "failed to list team members")
		return
	}
	api.Success(w, members, middleware.GetRequestID(r.Context()))
}

type teamPayload struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	LeaderID     *string `json:"leaderId"`
	ParentTeamID *string `json:"parentTeamId"`
}

func (p teamPayload) details() identity.TeamDetails {
	return identity.TeamDetails{
		Name:         p.Name,
		Description:  p.Description,
		LeaderID:     p.LeaderID,
		ParentTeamID: p.ParentTeamID,
	}
}

func (h *Handler) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	var payload teamPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "team name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateTeam(r.Context(), payload.details())
	if err != nil {
		h.failIdentity(w, r, err, "team_create_failed", "failed to create team")
		return
	}

	h.record(r, actor.UserID, "team.create", notifications.EntityTeam, id, nil, payload.details())
	h.Search.InvalidateAll()

	team, err := h.Service.GetTeam(r.Context(), id)
	if err != nil {
		api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, team, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	teamID := chi.URLParam(r, "teamID")

	before, err := h.Service.GetTeam(r.Context(), teamID)
	if err != nil {
		h.failIdentity(w, r, err, "team_get_failed", "failed to load team")
		return
	}

	var payload teamPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "team name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.UpdateTeam(r.Context(), teamID, payload.details()); err != nil {
		h.failIdentity(w, r, err, "team_update_failed", "failed to update team")
		return
	}

	h.record(r, actor.UserID, "team.update", notifications.EntityTeam, teamID, before, payload.details())
	h.Search.InvalidateAll()

	team, err := h.Service.GetTeam(r.Context(), teamID)
	if err != nil {
		api.Success(w, map[string]string{"id": teamID}, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, team, middleware.GetRequestID(r.Context()))
}

// failIdentity maps domain errors onto the transport taxonomy.
func (h *Handler) failIdentity(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	var dup *identity.DuplicateError
	switch {
	case errors.Is(err, identity.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", requestID)
	case errors.As(err, &dup):
		api.Fail(w, http.StatusConflict, "conflict", dup.Field+" already in use", requestID)
	case errors.Is(err, hierarchy.ErrWouldCreateCycle):
		api.Fail(w, http.StatusConflict, "would_create_cycle", "change would create a cycle in the team hierarchy", requestID)
	case errors.Is(err, hierarchy.ErrDepthExceeded):
		api.Fail(w, http.StatusBadRequest, "hierarchy_too_deep", "team hierarchy exceeds the supported depth", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}

func (h *Handler) record(r *http.Request, actorID, action string, kind notifications.EntityKind, id string, before, after any) {
	if err := h.Activity.Record(r.Context(), actorID, action, notifications.EntityRef{Kind: kind, ID: id}, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		slog.Warn("activity record failed", "action", action, "err", err)
	}
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
