package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	adapthttp "github.com/civiplan/submission-service/internal/adapters/http"
	"github.com/civiplan/submission-service/internal/adapters/http/handlers"
	"github.com/civiplan/submission-service/internal/domain/submission"
	"github.com/civiplan/submission-service/internal/ports"
)

// routerSubmissionService stubs ports.SubmissionService for routing tests.
// Only Search is exercised; the rest return nil.
type routerSubmissionService struct {
	searchFn func(ctx context.Context, criteria ports.SubmissionCriteria) ([]submission.Submission, error)
}

func (s *routerSubmissionService) Create(context.Context, submission.CreateCommand) (*submission.Submission, error) {
	return nil, nil
}

func (s *routerSubmissionService) Get(context.Context, string) (*submission.Submission, error) {
	return nil, nil
}

func (s *routerSubmissionService) Search(ctx context.Context, criteria ports.SubmissionCriteria) ([]submission.Submission, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, criteria)
	}
	return nil, nil
}

func (s *routerSubmissionService) Patch(context.Context, submission.PatchCommand) (*submission.Submission, error) {
	return nil, nil
}

func (s *routerSubmissionService) AddProject(context.Context, submission.AddProjectCommand) (*submission.Submission, error) {
	return nil, nil
}

func (s *routerSubmissionService) RemoveProject(context.Context, submission.RemoveProjectCommand) (*submission.Submission, error) {
	return nil, nil
}

type routerRequirementService struct{}

func (routerRequirementService) CreateRequirement(context.Context, submission.CreateRequirementCommand) (*submission.Requirement, error) {
	return nil, nil
}

func (routerRequirementService) UpdateRequirement(context.Context, submission.UpdateRequirementCommand) (*submission.Requirement, error) {
	return nil, nil
}

func (routerRequirementService) DeleteRequirement(context.Context, submission.DeleteRequirementCommand) error {
	return nil
}

type routerHealthRegistry struct{}

func (routerHealthRegistry) Register(ports.HealthChecker) {}

func (routerHealthRegistry) CheckAll(context.Context) map[string]error {
	return map[string]error{}
}

func newTestRouter(svc *routerSubmissionService, middlewares ...func(http.Handler) http.Handler) http.Handler {
	sh := handlers.NewSubmissionHandler(svc, nil)
	rh := handlers.NewRequirementHandler(routerRequirementService{})
	hh := handlers.NewHealthHandler(routerHealthRegistry{})
	return adapthttp.NewRouter(sh, rh, hh, middlewares...)
}

func TestRouter_AllRoutesRegistered(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&routerSubmissionService{})

	expectedRoutes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/health/live"},
		{http.MethodGet, "/health/ready"},
		{http.MethodGet, "/api/v1/submissions"},
		{http.MethodPost, "/api/v1/submissions"},
		{http.MethodGet, "/api/v1/submissions/{submissionNumber}"},
		{http.MethodPatch, "/api/v1/submissions/{submissionNumber}"},
		{http.MethodPost, "/api/v1/submissions/{submissionNumber}/projects/{projectId}"},
		{http.MethodDelete, "/api/v1/submissions/{submissionNumber}/projects/{projectId}"},
		{http.MethodPost, "/api/v1/submissions/{submissionNumber}/requirements"},
		{http.MethodPut, "/api/v1/submissions/{submissionNumber}/requirements/{id}"},
		{http.MethodDelete, "/api/v1/submissions/{submissionNumber}/requirements/{id}"},
	}

	chiRouter, ok := router.(*chi.Mux)
	if !ok {
		t.Fatal("router is not *chi.Mux")
	}

	registered := make(map[string]bool)
	err := chi.Walk(chiRouter, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		registered[method+" "+route] = true
		return nil
	})
	if err != nil {
		t.Fatalf("chi.Walk error: %v", err)
	}

	for _, expected := range expectedRoutes {
		key := expected.method + " " + expected.path
		if !registered[key] {
			t.Errorf("route %s not registered", key)
		}
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	t.Parallel()

	called := false
	testMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	}

	router := newTestRouter(&routerSubmissionService{}, testMW)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	router.ServeHTTP(rec, req)

	if !called {
		t.Error("middleware was not called")
	}
}

func TestRouter_IntegrationSearchSubmissions(t *testing.T) {
	t.Parallel()

	svc := &routerSubmissionService{
		searchFn: func(_ context.Context, criteria ports.SubmissionCriteria) ([]submission.Submission, error) {
			if criteria.DrmNumber != "7373" {
				t.Errorf("criteria DrmNumber = %q, want %q", criteria.DrmNumber, "7373")
			}
			return []submission.Submission{}, nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions?drmNumber=7373", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRouter_NotFoundReturns404(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&routerSubmissionService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&routerSubmissionService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/submissions", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
