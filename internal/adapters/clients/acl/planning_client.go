package acl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/civiplan/submission-service/internal/adapters/clients/acl/planning"
	domainproject "github.com/civiplan/submission-service/internal/domain/project"
	"github.com/civiplan/submission-service/internal/platform/httpclient"
	"github.com/civiplan/submission-service/internal/ports"
)

// Compile-time interface check.
var _ ports.PlanningClient = (*PlanningClient)(nil)

// PlanningClient is the outbound adapter for the downstream planning API,
// which owns the Project aggregate and its planning requirements. It
// implements [ports.PlanningClient].
//
// All methods translate between our domain types and the downstream API's
// representations via the ACL translators in sub-package [planning]. HTTP
// errors are mapped to domain errors (ErrNotFound, ErrUnavailable, etc.) by
// [TranslateHTTPError].
//
// The underlying [httpclient.Client] provides circuit breaking, retry with
// exponential backoff, OpenTelemetry tracing, and health checking
// ([ports.HealthChecker]) for every outbound call.
type PlanningClient struct {
	req    *Requester
	logger *slog.Logger
}

// NewPlanningClient creates a PlanningClient that sends requests through the
// given [httpclient.Client]. The client's BaseURL should point to the
// downstream planning API root (e.g. "https://planning-api.example.com").
func NewPlanningClient(client *httpclient.Client, logger *slog.Logger) *PlanningClient {
	return &PlanningClient{
		req:    NewRequester(client, logger),
		logger: logger,
	}
}

// GetProject fetches a single project by id from GET /api/v1/projects/{id}.
// Returns [domain.ErrNotFound] if the downstream API returns 404.
func (c *PlanningClient) GetProject(ctx context.Context, id string) (*domainproject.Project, error) {
	path := fmt.Sprintf("/api/v1/projects/%s", url.PathEscape(id))

	var dto planning.ProjectDTO
	if err := c.req.Do(ctx, http.MethodGet, path, http.StatusOK, nil, &dto); err != nil {
		return nil, err
	}
	result := planning.ToDomainProject(dto)
	return &result, nil
}

// SaveProject writes the project's submission back-pointer via
// PUT /api/v1/projects/{id}. Other project fields are owned by the planning
// API and are never written from here.
func (c *PlanningClient) SaveProject(ctx context.Context, p *domainproject.Project) error {
	path := fmt.Sprintf("/api/v1/projects/%s", url.PathEscape(p.ID))
	reqDTO := planning.ToUpdateProjectRequest(p)

	return c.req.Do(ctx, http.MethodPut, path, http.StatusOK, reqDTO, nil)
}

// ListPlanningRequirements fetches the requirements authored on a project
// from GET /api/v1/projects/{id}/requirements. Returns [domain.ErrNotFound]
// if the project does not exist.
func (c *PlanningClient) ListPlanningRequirements(ctx context.Context, projectID string) ([]domainproject.PlanningRequirement, error) {
	path := fmt.Sprintf("/api/v1/projects/%s/requirements", url.PathEscape(projectID))

	var dto planning.RequirementListResponseDTO
	if err := c.req.Do(ctx, http.MethodGet, path, http.StatusOK, nil, &dto); err != nil {
		return nil, err
	}
	return planning.ToDomainRequirements(dto), nil
}

// Name returns the identifier used when this component is registered with a
// [ports.HealthRegistry]. The value "planning-api" matches the service name
// used by the underlying [httpclient.Client] for tracing and metrics.
func (c *PlanningClient) Name() string {
	return "planning-api"
}

// HealthCheck reports the downstream planning API's availability based on
// the circuit breaker state. No network call is made.
//
// State mapping:
//   - "closed"    -- downstream is operating normally; returns nil.
//   - "half-open" -- circuit breaker is probing recovery; returns a
//     descriptive error indicating degraded state.
//   - "open"      -- downstream is unavailable and the breaker is rejecting
//     requests; returns a descriptive error indicating failure.
//
// This reports downstream status, not service readiness. The service itself
// is always ready to handle requests (it returns proper domain errors when
// the downstream is failing). Tying readiness to downstream health would
// prevent the circuit breaker from ever recovering, because Kubernetes would
// stop routing traffic to this service.
func (c *PlanningClient) HealthCheck(_ context.Context) error {
	state := c.req.CircuitBreakerState()
	switch state {
	case "closed":
		return nil
	case "half-open":
		return fmt.Errorf("planning-api: degraded (circuit breaker half-open)")
	case "open":
		return fmt.Errorf("planning-api: failing (circuit breaker open)")
	default:
		return fmt.Errorf("planning-api: unknown circuit breaker state %q", state)
	}
}
