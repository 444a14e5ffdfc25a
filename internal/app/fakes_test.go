package app

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/civiplan/submission-service/internal/domain"
	"github.com/civiplan/submission-service/internal/domain/project"
	"github.com/civiplan/submission-service/internal/domain/submission"
	"github.com/civiplan/submission-service/internal/ports"
)

// Hand-written port fakes with function fields: tests set only the calls
// they expect, and recorded writes can be asserted afterwards.

type fakeSubmissionRepo struct {
	findByNumber     func(ctx context.Context, number string) (*submission.Submission, error)
	findNumbersByDrm func(ctx context.Context, drm string) ([]string, error)
	findByProject    func(ctx context.Context, projectID string) ([]submission.Submission, error)
	search           func(ctx context.Context, criteria ports.SubmissionCriteria) ([]submission.Submission, error)
	saveErr          error
	saved            []*submission.Submission
}

func (f *fakeSubmissionRepo) FindByNumber(ctx context.Context, number string) (*submission.Submission, error) {
	if f.findByNumber == nil {
		return nil, domain.ErrNotFound
	}
	return f.findByNumber(ctx, number)
}

func (f *fakeSubmissionRepo) FindNumbersByDrm(ctx context.Context, drm string) ([]string, error) {
	if f.findNumbersByDrm == nil {
		return nil, nil
	}
	return f.findNumbersByDrm(ctx, drm)
}

func (f *fakeSubmissionRepo) FindByProject(ctx context.Context, projectID string) ([]submission.Submission, error) {
	if f.findByProject == nil {
		return nil, nil
	}
	return f.findByProject(ctx, projectID)
}

func (f *fakeSubmissionRepo) Search(ctx context.Context, criteria ports.SubmissionCriteria) ([]submission.Submission, error) {
	if f.search == nil {
		return nil, nil
	}
	return f.search(ctx, criteria)
}

func (f *fakeSubmissionRepo) Save(_ context.Context, s *submission.Submission) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, s)
	return nil
}

type fakePlanningClient struct {
	mu           sync.Mutex
	projects     map[string]*project.Project
	requirements map[string][]project.PlanningRequirement
	saveErr      error
	savedNumbers map[string][]string // project id -> back-pointer writes in order
}

func newFakePlanningClient(projects ...*project.Project) *fakePlanningClient {
	f := &fakePlanningClient{
		projects:     make(map[string]*project.Project),
		requirements: make(map[string][]project.PlanningRequirement),
		savedNumbers: make(map[string][]string),
	}
	for _, p := range projects {
		f.projects[p.ID] = p
	}
	return f
}

func (f *fakePlanningClient) GetProject(_ context.Context, id string) (*project.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakePlanningClient) SaveProject(_ context.Context, p *project.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	clone := *p
	f.projects[p.ID] = &clone
	f.savedNumbers[p.ID] = append(f.savedNumbers[p.ID], p.SubmissionNumber)
	return nil
}

func (f *fakePlanningClient) ListPlanningRequirements(_ context.Context, projectID string) ([]project.PlanningRequirement, error) {
	return f.requirements[projectID], nil
}

type fakeTaxonomies struct {
	entries map[string]*ports.Taxonomy // group + "/" + code
}

func newFakeTaxonomies() *fakeTaxonomies {
	return &fakeTaxonomies{entries: make(map[string]*ports.Taxonomy)}
}

func (f *fakeTaxonomies) add(group, code string, properties map[string]string) *fakeTaxonomies {
	f.entries[group+"/"+code] = &ports.Taxonomy{Group: group, Code: code, Properties: properties}
	return f
}

func (f *fakeTaxonomies) Get(_ context.Context, group, code string) (*ports.Taxonomy, error) {
	tax, ok := f.entries[group+"/"+code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return tax, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testUser() domain.User {
	return domain.User{
		UserName:    "mlavoie",
		DisplayName: "M. Lavoie",
		Permissions: []string{
			domain.PermissionSubmissionStatusWrite,
			domain.PermissionSubmissionProgressStatusWrite,
		},
	}
}

func testContext() context.Context {
	return domain.WithUser(context.Background(), testUser())
}

var testTime = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

// subtypeTaxonomies returns taxonomy entries mapping the test requirement
// subtypes to their types.
func subtypeTaxonomies() *fakeTaxonomies {
	return newFakeTaxonomies().
		add(ports.TaxonomyGroupRequirementSubtype, "espBefore", map[string]string{
			ports.TaxonomyPropertyTypeID: "programmation",
		}).
		add(ports.TaxonomyGroupRequirementSubtype, "coordinationObstacles", map[string]string{
			ports.TaxonomyPropertyTypeID: "planification",
		})
}

func draftSubmission(number string, projectIDs ...string) *submission.Submission {
	sub := submission.New(number, number[:4], "pb1", projectIDs, testTime.Add(-24*time.Hour), testUser().Author())
	return sub
}
