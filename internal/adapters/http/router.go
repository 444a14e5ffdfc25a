// Package http provides the inbound HTTP adapter including routing and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/civiplan/submission-service/internal/adapters/http/handlers"
)

// NewRouter creates an HTTP handler with all application routes registered.
// Middleware is applied globally in the order given.
func NewRouter(
	submissionHandler *handlers.SubmissionHandler,
	requirementHandler *handlers.RequirementHandler,
	healthHandler *handlers.HealthHandler,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	// Health endpoints (outside /api/v1 prefix).
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// API v1 routes.
	r.Route("/api/v1", func(r chi.Router) {
		// Submission workflows.
		r.Get("/submissions", submissionHandler.SearchSubmissions)
		r.Post("/submissions", submissionHandler.CreateSubmission)
		r.Get("/submissions/{submissionNumber}", submissionHandler.GetSubmission)
		r.Patch("/submissions/{submissionNumber}", submissionHandler.PatchSubmission)

		// Project membership.
		r.Post("/submissions/{submissionNumber}/projects/{projectId}", submissionHandler.AddProject)
		r.Delete("/submissions/{submissionNumber}/projects/{projectId}", submissionHandler.RemoveProject)

		// Requirement CRUD.
		r.Post("/submissions/{submissionNumber}/requirements", requirementHandler.CreateRequirement)
		r.Put("/submissions/{submissionNumber}/requirements/{id}", requirementHandler.UpdateRequirement)
		r.Delete("/submissions/{submissionNumber}/requirements/{id}", requirementHandler.DeleteRequirement)
	})

	return r
}
