package adminhandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"okrtrack/internal/domain/auth"
	"okrtrack/internal/platform/jobs"
	"okrtrack/internal/platform/metrics"
	"okrtrack/internal/transport/http/api"
	"okrtrack/internal/transport/http/middleware"
	"okrtrack/internal/transport/http/shared"
)

type Handler struct {
	Jobs    *jobs.Service
	Metrics *metrics.Collector
}

func NewHandler(jobsSvc *jobs.Service, collector *metrics.Collector) *Handler {
	return &Handler{Jobs: jobsSvc, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermSystemAdmin))
		r.Post("/jobs/{jobType}/run", h.handleRunJob)
		r.Get("/jobs/runs", h.handleListRuns)
		r.Get("/metrics", h.handleMetrics)
	})
}

// handleRunJob runs a maintenance job synchronously so the caller sees the
// outcome in the response instead of polling the run log.
func (h *Handler) handleRunJob(w http.ResponseWriter, r *http.Request) {
	jobType := chi.URLParam(r, "jobType")
	details, err := h.Jobs.RunNow(r.Context(), jobType)
	if err != nil {
		if errors.Is(err, jobs.ErrUnknownJob) {
			api.Fail(w, http.StatusNotFound, "unknown_job", "unknown job type", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "job_failed", "job run failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"jobType": jobType, "details": details}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	runs, err := h.Jobs.ListRuns(r.Context(), r.URL.Query().Get("jobType"), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "job_runs_failed", "failed to list job runs", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, runs, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
}
