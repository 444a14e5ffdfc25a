// Package app provides application services that orchestrate the submission
// use cases by coordinating domain logic and infrastructure through port
// interfaces. Field-level validation lives on the commands; the services run
// the cross-entity business rules and sequence the multi-store writes.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	appctx "github.com/civiplan/submission-service/internal/app/context"
	"github.com/civiplan/submission-service/internal/app/fanout"
	"github.com/civiplan/submission-service/internal/domain"
	"github.com/civiplan/submission-service/internal/domain/project"
	"github.com/civiplan/submission-service/internal/domain/submission"
	"github.com/civiplan/submission-service/internal/domain/validation"
	"github.com/civiplan/submission-service/internal/ports"
)

// projectFetchWorkers bounds the concurrent project fetches of a create call.
const projectFetchWorkers = 4

// Compile-time check that SubmissionService implements ports.SubmissionService.
var _ ports.SubmissionService = (*SubmissionService)(nil)

// requestScope returns the RequestContext attached by the HTTP middleware,
// or a fresh one for callers invoked outside a request (jobs, tests).
func requestScope(ctx context.Context) *appctx.RequestContext {
	if rc := appctx.FromContext(ctx); rc != nil {
		return rc
	}
	return appctx.New(ctx)
}

// SubmissionService implements ports.SubmissionService. It orchestrates the
// submission workflows: create, patch (status and progress transitions), and
// project add/remove with back-pointer and requirement consistency.
type SubmissionService struct {
	submissions ports.SubmissionRepository
	planning    ports.PlanningClient
	taxonomies  ports.TaxonomyService
	logger      *slog.Logger
	now         func() time.Time
}

// NewSubmissionService creates a SubmissionService. The repository persists
// the submission aggregate; the planning client reaches the downstream owner
// of projects and planning requirements; the taxonomy service resolves
// reference data (progress adjacency, requirement subtype mapping).
func NewSubmissionService(
	submissions ports.SubmissionRepository,
	planning ports.PlanningClient,
	taxonomies ports.TaxonomyService,
	logger *slog.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissions: submissions,
		planning:    planning,
		taxonomies:  taxonomies,
		logger:      logger,
		now:         time.Now,
	}
}

// Create bundles the commanded projects into a new submission. The rule
// stages are dependent and run in order: shape, project existence, project
// eligibility, cross-project compatibility, numbering. Within a stage every
// failure is collected so the caller sees all of them at once.
func (s *SubmissionService) Create(ctx context.Context, cmd submission.CreateCommand) (*submission.Submission, error) {
	s.logger.InfoContext(ctx, "creating submission",
		slog.String("program_book_id", cmd.ProgramBookID),
		slog.Int("project_count", len(cmd.ProjectIDs)),
	)

	if res := cmd.Guard(); !res.Succeeded {
		return nil, res.Err()
	}

	rc := requestScope(ctx)

	projects, err := s.fetchProjects(ctx, cmd.ProjectIDs)
	if err != nil {
		return nil, err
	}

	if res := guardProjectsEligible(projects, cmd.ProgramBookID); !res.Succeeded {
		return nil, res.Err()
	}

	drm, err := s.checkProjectsCompatible(rc, projects)
	if err != nil {
		return nil, err
	}

	taken, err := s.submissions.FindNumbersByDrm(ctx, drm)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list submission numbers",
			slog.String("operation", "Create"),
			slog.String("drm_number", drm),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("listing submission numbers for drm %s: %w", drm, err)
	}

	numbered := submission.NextNumber(drm, taken)
	if numbered.IsFailure() {
		return nil, numbered.Err()
	}

	user, _ := domain.UserFromContext(ctx)
	sub := submission.New(numbered.Value(), drm, cmd.ProgramBookID, cmd.ProjectIDs, s.now(), user.Author())

	claims := make([]domain.Action, len(projects))
	for i, p := range projects {
		claims[i] = &repointProjectAction{
			planning: s.planning,
			project:  p,
			to:       sub.SubmissionNumber,
			previous: p.SubmissionNumber,
		}
	}
	if err := rc.AddGroup(claims...); err != nil {
		return nil, err
	}
	if err := s.stageSave(rc, sub); err != nil {
		return nil, err
	}

	if err := rc.Commit(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to create submission",
			slog.String("operation", "Create"),
			slog.String("submission_number", sub.SubmissionNumber),
			slog.Any("error", err),
		)
		return nil, err
	}

	return sub, nil
}

// Get returns the submission with the given number.
func (s *SubmissionService) Get(ctx context.Context, submissionNumber string) (*submission.Submission, error) {
	sub, err := s.submissions.FindByNumber(ctx, submissionNumber)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch submission",
			slog.String("operation", "Get"),
			slog.String("submission_number", submissionNumber),
			slog.Any("error", err),
		)
		return nil, err
	}
	return sub, nil
}

// Search returns submissions matching the criteria, most recent first.
func (s *SubmissionService) Search(ctx context.Context, criteria ports.SubmissionCriteria) ([]submission.Submission, error) {
	subs, err := s.submissions.Search(ctx, criteria)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to search submissions",
			slog.String("operation", "Search"),
			slog.Any("error", err),
		)
		return nil, err
	}
	return subs, nil
}

// Patch applies status and/or progress-status changes. The status change and
// the progress change are independent rule groups: both are validated and
// all failures surfaced together before anything is applied.
func (s *SubmissionService) Patch(ctx context.Context, cmd submission.PatchCommand) (*submission.Submission, error) {
	s.logger.InfoContext(ctx, "patching submission",
		slog.String("submission_number", cmd.SubmissionNumber),
	)

	if res := cmd.Guard(); !res.Succeeded {
		return nil, res.Err()
	}

	sub, err := s.submissions.FindByNumber(ctx, cmd.SubmissionNumber)
	if err != nil {
		return nil, err
	}

	user, _ := domain.UserFromContext(ctx)

	var checks []validation.Result
	if cmd.Status != nil {
		checks = append(checks, guardStatusChange(user, sub, *cmd.Status))
	}
	if cmd.ProgressStatus != nil {
		res, err := s.guardProgressChange(ctx, user, sub, *cmd.ProgressStatus, *cmd.ProgressStatusChangeDate)
		if err != nil {
			return nil, err
		}
		checks = append(checks, res)
	}
	if combined := validation.Combine(checks...); !combined.Succeeded {
		return nil, combined.Err()
	}

	now := s.now()
	if cmd.Status != nil && *cmd.Status != sub.Status {
		sub.ApplyStatus(*cmd.Status, *cmd.Comment, now, user.Author())
	}
	if cmd.ProgressStatus != nil {
		sub.ApplyProgress(*cmd.ProgressStatus, *cmd.ProgressStatusChangeDate, now, user.Author())
	}

	if err := s.submissions.Save(ctx, sub); err != nil {
		s.logger.ErrorContext(ctx, "failed to save submission",
			slog.String("operation", "Patch"),
			slog.String("submission_number", sub.SubmissionNumber),
			slog.Any("error", err),
		)
		return nil, err
	}

	return sub, nil
}

// AddProject adds a project to the submission, claims its back-pointer, and
// mirrors the project's planning requirements onto the submission.
func (s *SubmissionService) AddProject(ctx context.Context, cmd submission.AddProjectCommand) (*submission.Submission, error) {
	s.logger.InfoContext(ctx, "adding project to submission",
		slog.String("submission_number", cmd.SubmissionNumber),
		slog.String("project_id", cmd.ProjectID),
	)

	if res := cmd.Guard(); !res.Succeeded {
		return nil, res.Err()
	}

	rc := requestScope(ctx)

	sub, err := s.getSubmission(rc, cmd.SubmissionNumber)
	if err != nil {
		return nil, err
	}

	if sub.ProgressStatus.RequirementEditsBlocked() {
		return nil, validation.Failure("progressStatus", validation.CodeForbidden,
			fmt.Sprintf("projects cannot be added while the submission is in progress status %s", sub.ProgressStatus)).Err()
	}
	if sub.HasProject(cmd.ProjectID) {
		return nil, validation.Failure("projectId", validation.CodeDuplicate,
			fmt.Sprintf("project %s is already part of submission %s", cmd.ProjectID, sub.SubmissionNumber)).Err()
	}

	proj, err := s.planning.GetProject(ctx, cmd.ProjectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, validation.Failure("projectId", validation.CodeNotFound,
				fmt.Sprintf("project %s was not found", cmd.ProjectID)).Err()
		}
		return nil, fmt.Errorf("fetching project %s: %w", cmd.ProjectID, err)
	}

	if res := guardProjectsEligible([]*project.Project{proj}, sub.ProgramBookID); !res.Succeeded {
		return nil, res.Err()
	}

	if proj.SubmissionNumber != "" && proj.SubmissionNumber != sub.SubmissionNumber {
		prior, err := s.getSubmission(rc, proj.SubmissionNumber)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if prior != nil && prior.Status == submission.StatusValid {
			return nil, validation.Failure("projectId", validation.CodeConflict,
				fmt.Sprintf("project %s is claimed by submission %s, which is still valid", proj.ID, prior.SubmissionNumber)).Err()
		}
	}

	user, _ := domain.UserFromContext(ctx)
	now := s.now()

	sub.AddProject(proj.ID)
	sub.Audit.Touch(now, user.Author())

	if err := s.syncPlanningRequirements(ctx, sub, proj.ID, now, user.Author()); err != nil {
		return nil, err
	}

	if err := rc.AddAction(&repointProjectAction{
		planning: s.planning,
		project:  proj,
		to:       sub.SubmissionNumber,
		previous: proj.SubmissionNumber,
	}); err != nil {
		return nil, err
	}
	if err := s.stageSave(rc, sub); err != nil {
		return nil, err
	}

	if err := rc.Commit(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to add project to submission",
			slog.String("operation", "AddProject"),
			slog.String("submission_number", sub.SubmissionNumber),
			slog.String("project_id", proj.ID),
			slog.Any("error", err),
		)
		return nil, err
	}

	return sub, nil
}

// RemoveProject removes a project from the submission and repoints the
// project's back-pointer to the most recent other submission referencing it,
// or clears it when none exists.
func (s *SubmissionService) RemoveProject(ctx context.Context, cmd submission.RemoveProjectCommand) (*submission.Submission, error) {
	s.logger.InfoContext(ctx, "removing project from submission",
		slog.String("submission_number", cmd.SubmissionNumber),
		slog.String("project_id", cmd.ProjectID),
	)

	if res := cmd.Guard(); !res.Succeeded {
		return nil, res.Err()
	}

	rc := requestScope(ctx)

	sub, err := s.getSubmission(rc, cmd.SubmissionNumber)
	if err != nil {
		return nil, err
	}

	if !sub.HasProject(cmd.ProjectID) {
		return nil, validation.Failure("projectId", validation.CodeNotFound,
			fmt.Sprintf("project %s is not part of submission %s", cmd.ProjectID, sub.SubmissionNumber)).Err()
	}
	if len(sub.ProjectIDs) == 1 {
		return nil, validation.Failure("projectId", validation.CodeForbidden,
			"the last project of a submission cannot be removed").Err()
	}
	if refs := sub.RequirementsReferencingProject(cmd.ProjectID); len(refs) > 0 {
		return nil, validation.Failure("projectId", validation.CodeUnprocessableEntity,
			fmt.Sprintf("project %s is referenced by %d requirement(s) of the submission; detach them first", cmd.ProjectID, len(refs))).Err()
	}

	proj, err := s.planning.GetProject(ctx, cmd.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("fetching project %s: %w", cmd.ProjectID, err)
	}

	next, err := s.nextClaimant(ctx, cmd.ProjectID, sub.SubmissionNumber)
	if err != nil {
		return nil, err
	}

	user, _ := domain.UserFromContext(ctx)
	sub.RemoveProject(cmd.ProjectID)
	sub.Audit.Touch(s.now(), user.Author())

	if err := rc.AddAction(&repointProjectAction{
		planning: s.planning,
		project:  proj,
		to:       next,
		previous: proj.SubmissionNumber,
	}); err != nil {
		return nil, err
	}
	if err := s.stageSave(rc, sub); err != nil {
		return nil, err
	}

	if err := rc.Commit(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to remove project from submission",
			slog.String("operation", "RemoveProject"),
			slog.String("submission_number", sub.SubmissionNumber),
			slog.String("project_id", cmd.ProjectID),
			slog.Any("error", err),
		)
		return nil, err
	}

	return sub, nil
}

// fetchProjects fetches the candidate projects concurrently. All results are
// collected before any is reported: every missing project surfaces as its own
// notFound failure in one combined result. Infrastructure errors abort the
// call instead.
func (s *SubmissionService) fetchProjects(ctx context.Context, ids []string) ([]*project.Project, error) {
	results := fanout.Run(ctx, projectFetchWorkers, ids, s.planning.GetProject)

	projects := make([]*project.Project, 0, len(ids))
	var failures []validation.Result
	for i, r := range results {
		switch {
		case errors.Is(r.Err, domain.ErrNotFound):
			failures = append(failures, validation.Failure("projectIds", validation.CodeNotFound,
				fmt.Sprintf("project %s was not found", ids[i])))
		case r.Err != nil:
			return nil, fmt.Errorf("fetching project %s: %w", ids[i], r.Err)
		default:
			projects = append(projects, r.Value)
		}
	}
	if len(failures) > 0 {
		return nil, validation.Combine(failures...).Err()
	}
	return projects, nil
}

// checkProjectsCompatible runs the cross-project compatibility stage of a
// create call and returns the DRM number the submission is filed under.
// Projects without a prior submission must share one DRM number; projects
// with a prior submission must all share the same one, and that submission
// must no longer be valid.
func (s *SubmissionService) checkProjectsCompatible(rc *appctx.RequestContext, projects []*project.Project) (string, error) {
	prior := ""
	for _, p := range projects {
		if p.SubmissionNumber != "" {
			prior = p.SubmissionNumber
			break
		}
	}

	if prior == "" {
		drm := projects[0].DrmNumber
		for _, p := range projects {
			if p.DrmNumber != drm {
				return "", validation.Failure("drmNumber", validation.CodeInvalidInput,
					"all projects of a new submission must share the same drmNumber").Err()
			}
		}
		return drm, nil
	}

	for _, p := range projects {
		if p.SubmissionNumber != prior {
			return "", validation.Failure("submissionNumber", validation.CodeInvalidInput,
				fmt.Sprintf("all projects must share the same prior submission, expected %s", prior)).Err()
		}
	}

	priorSub, err := s.getSubmission(rc, prior)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", validation.Failure("submissionNumber", validation.CodeNotFound,
				fmt.Sprintf("prior submission %s was not found", prior)).Err()
		}
		return "", err
	}
	if priorSub.Status == submission.StatusValid {
		return "", validation.Failure("submissionNumber", validation.CodeConflict,
			fmt.Sprintf("prior submission %s is still valid", prior)).Err()
	}
	return priorSub.DrmNumber, nil
}

// guardStatusChange checks the status half of a patch: the acting user's
// permission, then the stage rule that the validity flag cannot be raised
// once tendering or realization is underway.
func guardStatusChange(user domain.User, sub *submission.Submission, next submission.Status) validation.Result {
	if !user.Can(domain.PermissionSubmissionStatusWrite) {
		return validation.Failure("status", validation.CodeForbidden,
			"user is not allowed to change the submission status")
	}
	if next == submission.StatusValid && sub.ProgressStatus.StatusValidBlocked() {
		return validation.Failure("status", validation.CodeForbidden,
			fmt.Sprintf("the submission cannot be declared valid while in progress status %s", sub.ProgressStatus))
	}
	return validation.Success()
}

// guardProgressChange checks the progress half of a patch. Permission and
// submission validity are dependent pre-checks; the transition rule and the
// change-date monotonicity rule are independent and reported together.
func (s *SubmissionService) guardProgressChange(
	ctx context.Context,
	user domain.User,
	sub *submission.Submission,
	next submission.ProgressStatus,
	changeDate time.Time,
) (validation.Result, error) {
	if !user.Can(domain.PermissionSubmissionProgressStatusWrite) {
		return validation.Failure("progressStatus", validation.CodeForbidden,
			"user is not allowed to change the submission progress status"), nil
	}
	if sub.Status != submission.StatusValid {
		return validation.Failure("status", validation.CodeForbidden,
			"the progress status of an invalid submission cannot change"), nil
	}

	authorized, err := s.authorizedNext(ctx, sub.ProgressStatus)
	if err != nil {
		return validation.Result{}, err
	}

	var results []validation.Result
	if !containsStatus(authorized, next) {
		results = append(results, validation.Failure("progressStatus", validation.CodeForbidden,
			fmt.Sprintf("transition from %s to %s is not authorized; authorized: %s",
				sub.ProgressStatus, next, joinStatuses(authorized))))
	}
	if !changeDate.After(sub.LastProgressAt()) {
		results = append(results, validation.Failure("progressStatusChangeDate", validation.CodeInvalidInput,
			"progressStatusChangeDate must be after the most recent progress change"))
	}
	return validation.Combine(results...), nil
}

// authorizedNext resolves the allowed successor set of a progress status.
// The taxonomy entry for the current stage may carry an authorizedNext
// property overriding the default order; with no entry or no property the
// immediate successor from the documented order applies.
func (s *SubmissionService) authorizedNext(ctx context.Context, current submission.ProgressStatus) ([]submission.ProgressStatus, error) {
	tax, err := s.taxonomies.Get(ctx, ports.TaxonomyGroupProgressStatus, current.String())
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("resolving authorized transitions for %s: %w", current, err)
	}
	if tax != nil {
		if raw := tax.Properties[ports.TaxonomyPropertyAuthorizedNext]; raw != "" {
			codes := strings.Split(raw, ",")
			statuses := make([]submission.ProgressStatus, 0, len(codes))
			for _, code := range codes {
				statuses = append(statuses, submission.ProgressStatus(strings.TrimSpace(code)))
			}
			return statuses, nil
		}
	}
	if next, ok := current.Next(); ok {
		return []submission.ProgressStatus{next}, nil
	}
	return nil, nil
}

// syncPlanningRequirements mirrors the planning requirements of a newly
// added project onto the submission. Existing mirror entries are merged
// without duplication; new entries are created in discovery order.
func (s *SubmissionService) syncPlanningRequirements(ctx context.Context, sub *submission.Submission, projectID string, at time.Time, by domain.Author) error {
	planningReqs, err := s.planning.ListPlanningRequirements(ctx, projectID)
	if err != nil {
		return fmt.Errorf("listing planning requirements of project %s: %w", projectID, err)
	}

	for _, pr := range planningReqs {
		typeID, err := resolveRequirementTypeID(ctx, s.taxonomies, pr.SubtypeID)
		if err != nil {
			return err
		}
		sub.SyncPlanningRequirement(uuid.NewString(), pr.ID, typeID, pr.SubtypeID, pr.Text, projectID, at, by)
	}
	return nil
}

// nextClaimant returns the number of the most recent submission other than
// the excluded one that references the project, or "" when none does.
func (s *SubmissionService) nextClaimant(ctx context.Context, projectID, excluding string) (string, error) {
	subs, err := s.submissions.FindByProject(ctx, projectID)
	if err != nil {
		return "", fmt.Errorf("listing submissions referencing project %s: %w", projectID, err)
	}
	for _, other := range subs {
		if other.SubmissionNumber != excluding {
			return other.SubmissionNumber, nil
		}
	}
	return "", nil
}

// getSubmission fetches a submission through the request-scoped cache so one
// workflow call never loads the same aggregate twice.
func (s *SubmissionService) getSubmission(rc *appctx.RequestContext, number string) (*submission.Submission, error) {
	return appctx.GetOrFetch(rc, "submission:"+number, func(ctx context.Context) (*submission.Submission, error) {
		return s.submissions.FindByNumber(ctx, number)
	})
}

// stageSave queues the submission's persistence and refreshes the
// request-scoped cache entry, so later reads in the same request observe the
// mutated aggregate before Commit runs.
func (s *SubmissionService) stageSave(rc *appctx.RequestContext, sub *submission.Submission) error {
	return rc.Stage("submission:"+sub.SubmissionNumber, sub,
		&saveSubmissionAction{submissions: s.submissions, submission: sub})
}

// guardProjectsEligible checks each project's individual eligibility for the
// given program book: ordered status, a DRM number, and membership of the
// program book. Failures of every project are combined.
func guardProjectsEligible(projects []*project.Project, programBookID string) validation.Result {
	var results []validation.Result
	for _, p := range projects {
		if !p.Orderable() {
			results = append(results, validation.Failure("projectIds", validation.CodeInvalidInput,
				fmt.Sprintf("project %s is not in an ordered status", p.ID)))
		}
		if p.DrmNumber == "" {
			results = append(results, validation.Failure("projectIds", validation.CodeInvalidInput,
				fmt.Sprintf("project %s has no drmNumber", p.ID)))
		}
		if p.ProgramBookID != programBookID {
			results = append(results, validation.Failure("projectIds", validation.CodeInvalidInput,
				fmt.Sprintf("project %s does not belong to program book %s", p.ID, programBookID)))
		}
	}
	return validation.Combine(results...)
}

// resolveRequirementTypeID maps a requirement subtype to its type through
// the taxonomy. An unknown subtype or a subtype entry without a typeId
// property is a taxonomy failure.
func resolveRequirementTypeID(ctx context.Context, taxonomies ports.TaxonomyService, subtypeID string) (string, error) {
	tax, err := taxonomies.Get(ctx, ports.TaxonomyGroupRequirementSubtype, subtypeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", validation.Failure("subtypeId", validation.CodeTaxonomy,
				fmt.Sprintf("subtypeId %s is not a known requirement subtype", subtypeID)).Err()
		}
		return "", fmt.Errorf("resolving requirement subtype %s: %w", subtypeID, err)
	}
	typeID := tax.Properties[ports.TaxonomyPropertyTypeID]
	if typeID == "" {
		return "", validation.Failure("subtypeId", validation.CodeTaxonomy,
			fmt.Sprintf("requirement subtype %s has no typeId", subtypeID)).Err()
	}
	return typeID, nil
}

func containsStatus(statuses []submission.ProgressStatus, status submission.ProgressStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func joinStatuses(statuses []submission.ProgressStatus) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}
