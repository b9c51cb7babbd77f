package settingshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"okrtrack/internal/domain/activity"
	"okrtrack/internal/domain/auth"
	"okrtrack/internal/domain/notifications"
	"okrtrack/internal/domain/settings"
	cryptoutil "okrtrack/internal/platform/crypto"
	"okrtrack/internal/transport/http/api"
	"okrtrack/internal/transport/http/middleware"
	"okrtrack/internal/transport/http/shared"
)

type Handler struct {
	Store    *settings.Store
	Crypto   *cryptoutil.Service
	Activity *activity.Service
}

func NewHandler(store *settings.Store, crypto *cryptoutil.Service, activitySvc *activity.Service) *Handler {
	return &Handler{Store: store, Crypto: crypto, Activity: activitySvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		// Per-user settings require only a session.
		r.Get("/user", h.handleListUserSettings)
		r.Put("/user/{key}", h.handleUpsertUserSetting)
		r.Delete("/user/{key}", h.handleDeleteUserSetting)

		r.With(middleware.RequirePermission(auth.PermSettingsWrite)).Get("/system", h.handleListSystemSettings)
		r.With(middleware.RequirePermission(auth.PermSettingsWrite)).Put("/system/{key}", h.handleUpsertSystemSetting)
	})
	r.Route("/integrations", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermIntegrationsWrite)).Get("/", h.handleListIntegrations)
		r.With(middleware.RequirePermission(auth.PermIntegrationsWrite)).Post("/", h.handleCreateIntegration)
		r.With(middleware.RequirePermission(auth.PermIntegrationsWrite)).Get("/{integrationID}", h.handleGetIntegration)
		r.With(middleware.RequirePermission(auth.PermIntegrationsWrite)).Put("/{integrationID}", h.handleUpdateIntegration)
		r.With(middleware.RequirePermission(auth.PermIntegrationsWrite)).Delete("/{integrationID}", h.handleDeleteIntegration)
	})
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	actor, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return "", false
	}
	return actor.UserID, true
}

func (h *Handler) handleListUserSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	list, err := h.Store.ListUserSettings(r.Context(), userID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "settings_list_failed", "failed to list settings", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

type settingPayload struct {
	Value string `json:"value"`
}

func (h *Handler) handleUpsertUserSetting(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var payload settingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	setting, err := h.Store.UpsertUserSetting(r.Context(), userID, chi.URLParam(r, "key"), payload.Value)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "setting_save_failed", "failed to save setting", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, setting, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteUserSetting(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "key")
	if err := h.Store.DeleteUserSetting(r.Context(), userID, key); err != nil {
		if errors.Is(err, settings.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "record not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "setting_delete_failed", "failed to delete setting", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"key": key}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListSystemSettings(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListSystemSettings(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "settings_list_failed", "failed to list settings", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpsertSystemSetting(w http.ResponseWriter, r *http.Request) {
	var payload settingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	key := chi.URLParam(r, "key")
	setting, err := h.Store.UpsertSystemSetting(r.Context(), key, payload.Value)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "setting_save_failed", "failed to save setting", middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, "system_setting.update", nil, setting)
	api.Success(w, setting, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListIntegrations(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListIntegrations(r.Context(), h.Crypto)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "integration_list_failed", "failed to list integrations", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetIntegration(w http.ResponseWriter, r *http.Request) {
	integration, err := h.Store.GetIntegration(r.Context(), h.Crypto, chi.URLParam(r, "integrationID"))
	if err != nil {
		h.failIntegration(w, r, err, "integration_get_failed", "failed to load integration")
		return
	}
	api.Success(w, integration, middleware.GetRequestID(r.Context()))
}

type integrationPayload struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	WebhookURL string `json:"webhookUrl"`
	APIKey     string `json:"apiKey"`
	Enabled    bool   `json:"enabled"`
}

func (p integrationPayload) input() settings.IntegrationInput {
	return settings.IntegrationInput{
		Name:       p.Name,
		Kind:       p.Kind,
		WebhookURL: p.WebhookURL,
		APIKey:     p.APIKey,
		Enabled:    p.Enabled,
	}
}

func (h *Handler) handleCreateIntegration(w http.ResponseWriter, r *http.Request) {
	var payload integrationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "integration name is required")
	v.Required("kind", payload.Kind, "integration kind is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	integration, err := h.Store.CreateIntegration(r.Context(), h.Crypto, payload.input())
	if err != nil {
		h.failIntegration(w, r, err, "integration_create_failed", "failed to create integration")
		return
	}
	h.record(r, "integration.create", nil, integration)
	api.Created(w, integration, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateIntegration(w http.ResponseWriter, r *http.Request) {
	var payload integrationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "integration name is required")
	v.Required("kind", payload.Kind, "integration kind is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id := chi.URLParam(r, "integrationID")
	integration, err := h.Store.UpdateIntegration(r.Context(), h.Crypto, id, payload.input())
	if err != nil {
		h.failIntegration(w, r, err, "integration_update_failed", "failed to update integration")
		return
	}
	h.record(r, "integration.update", nil, integration)
	api.Success(w, integration, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteIntegration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "integrationID")
	if err := h.Store.DeleteIntegration(r.Context(), id); err != nil {
		h.failIntegration(w, r, err, "integration_delete_failed", "failed to delete integration")
		return
	}
	h.record(r, "integration.delete", nil, nil)
	api.Success(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) failIntegration(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, settings.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", requestID)
	case errors.Is(err, settings.ErrInvalidIntegrationKind):
		api.Fail(w, http.StatusBadRequest, "invalid_kind", "kind must be slack, webhook or calendar", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}

// record logs admin-level settings changes against the acting user. Values
// never include decrypted API keys; Integration carries only the masked form.
func (h *Handler) record(r *http.Request, action string, before, after any) {
	actor, _ := middleware.GetUser(r.Context())
	ref := notifications.EntityRef{Kind: notifications.EntityUser, ID: actor.UserID}
	if err := h.Activity.Record(r.Context(), actor.UserID, action, ref, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		slog.Warn("activity record failed", "action", action, "err", err)
	}
}
