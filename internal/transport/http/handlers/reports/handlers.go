package reportshandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"okrtrack/internal/domain/auth"
	"okrtrack/internal/domain/okr"
	"okrtrack/internal/domain/reports"
	"okrtrack/internal/transport/http/api"
	"okrtrack/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
}

func NewHandler(service *reports.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead)).Post("/preview", h.handlePreview)
		r.With(middleware.RequirePermission(auth.PermReportsExport)).Post("/excel", h.handleGenerate(reports.FormatExcel))
		r.With(middleware.RequirePermission(auth.PermReportsExport)).Post("/powerpoint", h.handleGenerate(reports.FormatPowerPoint))
		r.With(middleware.RequirePermission(auth.PermReportsExport)).Post("/pdf", h.handleGenerate(reports.FormatPDF))
		r.With(middleware.RequirePermission(auth.PermReportsRead)).Get("/files/{fileName}", h.handleDownload)
	})
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (reports.Request, bool) {
	var req reports.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return reports.Request{}, false
	}
	return req, true
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	preview, err := h.Service.Preview(r.Context(), req)
	if err != nil {
		failReports(w, r, err)
		return
	}
	api.Success(w, preview, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGenerate(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeRequest(w, r)
		if !ok {
			return
		}
		generated, err := h.Service.Generate(r.Context(), req, format)
		if err != nil {
			failReports(w, r, err)
			return
		}
		api.Success(w, generated, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	fileName := chi.URLParam(r, "fileName")
	path, err := h.Service.FilePath(fileName)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "report file not found", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	w.Header().Set("Content-Type", contentTypeFor(fileName))
	http.ServeFile(w, r, path)
}

func contentTypeFor(fileName string) string {
	switch {
	case strings.HasSuffix(fileName, ".xlsx"):
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case strings.HasSuffix(fileName, ".pptx"):
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case strings.HasSuffix(fileName, ".pdf"):
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// failReports distinguishes bad requests from failures worth retrying.
// Rendering errors surface as 503 so the client can re-submit the same
// request; validation errors will never succeed on retry.
func failReports(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	var genErr *reports.GenerationError
	switch {
	case errors.Is(err, reports.ErrInvalidPeriod), errors.Is(err, reports.ErrInvalidType), errors.Is(err, reports.ErrInvalidFormat):
		api.Fail(w, http.StatusBadRequest, "invalid_request", err.Error(), requestID)
	case errors.Is(err, reports.ErrNoCycle):
		api.Fail(w, http.StatusNotFound, "no_cycle", "no cycle matches the requested period", requestID)
	case errors.Is(err, okr.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", requestID)
	case errors.As(err, &genErr):
		api.Fail(w, http.StatusServiceUnavailable, "report_generation_failed", "report generation failed, try again", requestID)
	case errors.Is(err, os.ErrNotExist):
		api.Fail(w, http.StatusNotFound, "not_found", "report file not found", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build report", requestID)
	}
}
