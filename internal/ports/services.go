package ports

import (
	"context"

	"github.com/civiplan/submission-service/internal/domain/submission"
)

// SubmissionService defines the service port for the submission workflows.
// Implemented by the application layer; called by inbound adapters
// (handlers). Every method validates its command with the guard framework
// and then runs the cross-entity business rules; failures are returned as a
// *validation.Error carrying the combined field-level results.
type SubmissionService interface {
	// Create bundles the commanded projects into a new submission.
	// Validates project eligibility (ordered status, DRM number, program
	// book membership) and cross-project compatibility, generates the
	// submission number, and claims every member project's back-pointer.
	Create(ctx context.Context, cmd submission.CreateCommand) (*submission.Submission, error)

	// Get returns the submission with the given number.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, submissionNumber string) (*submission.Submission, error)

	// Search returns submissions matching the criteria, most recent first.
	Search(ctx context.Context, criteria SubmissionCriteria) ([]submission.Submission, error)

	// Patch applies status and/or progress-status changes, enforcing the
	// authorized-transition table, the audit-trail monotonicity rule, and
	// the acting user's permissions.
	Patch(ctx context.Context, cmd submission.PatchCommand) (*submission.Submission, error)

	// AddProject adds a project to the submission, claims its back-pointer,
	// and synchronizes the project's planning requirements onto the
	// submission (idempotent merge, no duplicates).
	AddProject(ctx context.Context, cmd submission.AddProjectCommand) (*submission.Submission, error)

	// RemoveProject removes a project from the submission and repoints the
	// project's back-pointer to the most recent other submission
	// referencing it, or clears it. Removing the last member or a project
	// still referenced by a requirement fails.
	RemoveProject(ctx context.Context, cmd submission.RemoveProjectCommand) (*submission.Submission, error)
}

// RequirementService defines the service port for requirement CRUD on a
// submission. All three operations share the drafting-phase rule set:
// submission invalid, progress before realization, requirement not
// deprecated.
type RequirementService interface {
	// CreateRequirement authors a new requirement directly on the
	// submission. Supplied project ids must already be members.
	CreateRequirement(ctx context.Context, cmd submission.CreateRequirementCommand) (*submission.Requirement, error)

	// UpdateRequirement updates an existing requirement.
	UpdateRequirement(ctx context.Context, cmd submission.UpdateRequirementCommand) (*submission.Requirement, error)

	// DeleteRequirement removes a requirement from the submission.
	DeleteRequirement(ctx context.Context, cmd submission.DeleteRequirementCommand) error
}

// SubmissionCriteria holds optional search criteria for listing submissions.
// Zero-value fields mean "no filter" for that dimension.
type SubmissionCriteria struct {
	DrmNumber     string
	ProjectID     string
	ProgramBookID string
	Status        submission.Status
}
