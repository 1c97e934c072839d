// Package api provides the engine's operational HTTP surface: health,
// metrics, and job inspection. The dashboard itself lives elsewhere.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"metasync/internal/domain"
	"metasync/internal/service/orchestrator"
)

// Handler serves the status API for one orchestrator instance.
type Handler struct {
	orch   *orchestrator.Orchestrator
	logger *slog.Logger
}

// NewHandler creates a status API handler.
func NewHandler(orch *orchestrator.Orchestrator, logger *slog.Logger) *Handler {
	return &Handler{orch: orch, logger: logger}
}

// Routes builds the chi router for the status API.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", h.handleHealth)
	r.Get("/metrics", h.handleMetrics)
	r.Get("/jobs", h.handleListJobs)
	r.Get("/jobs/{id}", h.handleGetJob)
	r.Post("/jobs/{id}/cancel", h.handleCancelJob)
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.orch.Metrics(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, metrics)
}

func (h *Handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.orch.Jobs(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"jobs": jobs, "count": len(jobs)})
}

func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.orch.Job(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if job == nil {
		h.respondJSON(w, http.StatusNotFound, map[string]string{"error": "job not found"})
		return
	}
	h.respondJSON(w, http.StatusOK, job)
}

func (h *Handler) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	if err := h.orch.CancelJob(r.Context(), jobID); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled", "job_id": jobID})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("response encode failed", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	h.respondJSON(w, httpStatusFromDomainError(err), map[string]string{"error": err.Error()})
}

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var conflict *domain.ConflictError
	var configuration *domain.ConfigurationError

	switch {
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &configuration):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
