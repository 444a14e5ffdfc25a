package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/civiplan/submission-service/internal/domain"
	"github.com/civiplan/submission-service/internal/domain/submission"
	"github.com/civiplan/submission-service/internal/ports"
)

var testTime = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

var testAuthor = domain.Author{UserName: "mlavoie", DisplayName: "M. Lavoie"}

// fakeSubmissionService implements ports.SubmissionService with overridable
// function fields. Unset methods panic so tests fail loudly on unexpected
// calls.
type fakeSubmissionService struct {
	createFn        func(ctx context.Context, cmd submission.CreateCommand) (*submission.Submission, error)
	getFn           func(ctx context.Context, number string) (*submission.Submission, error)
	searchFn        func(ctx context.Context, criteria ports.SubmissionCriteria) ([]submission.Submission, error)
	patchFn         func(ctx context.Context, cmd submission.PatchCommand) (*submission.Submission, error)
	addProjectFn    func(ctx context.Context, cmd submission.AddProjectCommand) (*submission.Submission, error)
	removeProjectFn func(ctx context.Context, cmd submission.RemoveProjectCommand) (*submission.Submission, error)
}

func (f *fakeSubmissionService) Create(ctx context.Context, cmd submission.CreateCommand) (*submission.Submission, error) {
	return f.createFn(ctx, cmd)
}

func (f *fakeSubmissionService) Get(ctx context.Context, number string) (*submission.Submission, error) {
	return f.getFn(ctx, number)
}

func (f *fakeSubmissionService) Search(ctx context.Context, criteria ports.SubmissionCriteria) ([]submission.Submission, error) {
	return f.searchFn(ctx, criteria)
}

func (f *fakeSubmissionService) Patch(ctx context.Context, cmd submission.PatchCommand) (*submission.Submission, error) {
	return f.patchFn(ctx, cmd)
}

func (f *fakeSubmissionService) AddProject(ctx context.Context, cmd submission.AddProjectCommand) (*submission.Submission, error) {
	return f.addProjectFn(ctx, cmd)
}

func (f *fakeSubmissionService) RemoveProject(ctx context.Context, cmd submission.RemoveProjectCommand) (*submission.Submission, error) {
	return f.removeProjectFn(ctx, cmd)
}

// fakeRequirementService implements ports.RequirementService.
type fakeRequirementService struct {
	createFn func(ctx context.Context, cmd submission.CreateRequirementCommand) (*submission.Requirement, error)
	updateFn func(ctx context.Context, cmd submission.UpdateRequirementCommand) (*submission.Requirement, error)
	deleteFn func(ctx context.Context, cmd submission.DeleteRequirementCommand) error
}

func (f *fakeRequirementService) CreateRequirement(ctx context.Context, cmd submission.CreateRequirementCommand) (*submission.Requirement, error) {
	return f.createFn(ctx, cmd)
}

func (f *fakeRequirementService) UpdateRequirement(ctx context.Context, cmd submission.UpdateRequirementCommand) (*submission.Requirement, error) {
	return f.updateFn(ctx, cmd)
}

func (f *fakeRequirementService) DeleteRequirement(ctx context.Context, cmd submission.DeleteRequirementCommand) error {
	return f.deleteFn(ctx, cmd)
}

// fakeHealthRegistry implements ports.HealthRegistry returning fixed
// results.
type fakeHealthRegistry struct {
	results map[string]error
}

func (f *fakeHealthRegistry) Register(ports.HealthChecker) {}

func (f *fakeHealthRegistry) CheckAll(context.Context) map[string]error {
	return f.results
}

func validSubmission() *submission.Submission {
	return submission.New("737301", "7373", "pb-2025", []string{"p1", "p2"}, testTime, testAuthor)
}

func withChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, want, rec.Body.String())
	}
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}
