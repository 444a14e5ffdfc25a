package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/civiplan/submission-service/internal/adapters/http/dto"
	"github.com/civiplan/submission-service/internal/domain/submission"
	"github.com/civiplan/submission-service/internal/ports"
)

// RequirementHandler handles HTTP requests for requirement CRUD on a
// submission.
type RequirementHandler struct {
	svc ports.RequirementService
}

// NewRequirementHandler creates a new RequirementHandler with the given
// service port.
func NewRequirementHandler(svc ports.RequirementService) *RequirementHandler {
	return &RequirementHandler{svc: svc}
}

// CreateRequirement handles POST /api/v1/submissions/{submissionNumber}/requirements.
func (h *RequirementHandler) CreateRequirement(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "submissionNumber")

	var req dto.CreateRequirementRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	created, err := h.svc.CreateRequirement(r.Context(), req.ToCommand(number))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToRequirementResponse(created))
}

// UpdateRequirement handles PUT /api/v1/submissions/{submissionNumber}/requirements/{id}.
func (h *RequirementHandler) UpdateRequirement(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "submissionNumber")
	id := chi.URLParam(r, "id")

	var req dto.UpdateRequirementRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	updated, err := h.svc.UpdateRequirement(r.Context(), req.ToCommand(number, id))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRequirementResponse(updated))
}

// DeleteRequirement handles DELETE /api/v1/submissions/{submissionNumber}/requirements/{id}.
func (h *RequirementHandler) DeleteRequirement(w http.ResponseWriter, r *http.Request) {
	cmd := submission.DeleteRequirementCommand{
		SubmissionNumber: chi.URLParam(r, "submissionNumber"),
		ID:               chi.URLParam(r, "id"),
	}

	if err := h.svc.DeleteRequirement(r.Context(), cmd); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
