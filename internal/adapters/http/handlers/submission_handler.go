// Package handlers provides HTTP request handlers for the service's API endpoints.
package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/metric"

	"github.com/civiplan/submission-service/internal/adapters/http/dto"
	"github.com/civiplan/submission-service/internal/domain/submission"
	"github.com/civiplan/submission-service/internal/platform/telemetry"
	"github.com/civiplan/submission-service/internal/ports"
)

// SubmissionHandler handles HTTP requests for submission workflows: create,
// read, search, status/progress patching, and project membership.
type SubmissionHandler struct {
	svc     ports.SubmissionService
	metrics *telemetry.Metrics
}

// NewSubmissionHandler creates a new SubmissionHandler with the given
// service port. metrics may be nil, in which case recording is skipped.
func NewSubmissionHandler(svc ports.SubmissionService, metrics *telemetry.Metrics) *SubmissionHandler {
	return &SubmissionHandler{svc: svc, metrics: metrics}
}

// CreateSubmission handles POST /api/v1/submissions.
func (h *SubmissionHandler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSubmissionRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	created, err := h.svc.Create(r.Context(), req.ToCommand())
	h.record(r.Context(), "create", err)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToSubmissionResponse(created))
}

// GetSubmission handles GET /api/v1/submissions/{submissionNumber}.
func (h *SubmissionHandler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "submissionNumber")

	s, err := h.svc.Get(r.Context(), number)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSubmissionResponse(s))
}

// SearchSubmissions handles GET /api/v1/submissions.
func (h *SubmissionHandler) SearchSubmissions(w http.ResponseWriter, r *http.Request) {
	criteria := dto.SearchCriteriaFromQuery(r)

	submissions, err := h.svc.Search(r.Context(), criteria)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSubmissionListResponse(submissions))
}

// PatchSubmission handles PATCH /api/v1/submissions/{submissionNumber}.
func (h *SubmissionHandler) PatchSubmission(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "submissionNumber")

	var req dto.PatchSubmissionRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	patched, err := h.svc.Patch(r.Context(), req.ToCommand(number))
	h.record(r.Context(), "patch", err)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSubmissionResponse(patched))
}

// AddProject handles POST /api/v1/submissions/{submissionNumber}/projects/{projectId}.
func (h *SubmissionHandler) AddProject(w http.ResponseWriter, r *http.Request) {
	cmd := submission.AddProjectCommand{
		SubmissionNumber: chi.URLParam(r, "submissionNumber"),
		ProjectID:        chi.URLParam(r, "projectId"),
	}

	updated, err := h.svc.AddProject(r.Context(), cmd)
	h.record(r.Context(), "addProject", err)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSubmissionResponse(updated))
}

// RemoveProject handles DELETE /api/v1/submissions/{submissionNumber}/projects/{projectId}.
func (h *SubmissionHandler) RemoveProject(w http.ResponseWriter, r *http.Request) {
	cmd := submission.RemoveProjectCommand{
		SubmissionNumber: chi.URLParam(r, "submissionNumber"),
		ProjectID:        chi.URLParam(r, "projectId"),
	}

	updated, err := h.svc.RemoveProject(r.Context(), cmd)
	h.record(r.Context(), "removeProject", err)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSubmissionResponse(updated))
}

// record bumps the per-operation counter with a success/error result label.
func (h *SubmissionHandler) record(ctx context.Context, operation string, err error) {
	if h.metrics == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	h.metrics.SubmissionOperationTotal.Add(ctx, 1, metric.WithAttributes(
		telemetry.AttrOperation.String(operation),
		telemetry.AttrResult.String(result),
	))
}
