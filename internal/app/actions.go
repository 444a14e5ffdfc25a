package app

import (
	"context"
	"fmt"

	"github.com/civiplan/submission-service/internal/domain/project"
	"github.com/civiplan/submission-service/internal/domain/submission"
	"github.com/civiplan/submission-service/internal/ports"
)

// repointProjectAction writes a project's submission-number back-pointer.
// Rollback restores the pointer the project carried before the operation,
// compensating a partially executed multi-store write.
type repointProjectAction struct {
	planning ports.PlanningClient
	project  *project.Project
	to       string
	previous string
}

func (a *repointProjectAction) Execute(ctx context.Context) error {
	a.project.SubmissionNumber = a.to
	return a.planning.SaveProject(ctx, a.project)
}

func (a *repointProjectAction) Rollback(ctx context.Context) error {
	a.project.SubmissionNumber = a.previous
	return a.planning.SaveProject(ctx, a.project)
}

func (a *repointProjectAction) Description() string {
	if a.to == "" {
		return fmt.Sprintf("clear back-pointer of project %s", a.project.ID)
	}
	return fmt.Sprintf("repoint project %s to submission %s", a.project.ID, a.to)
}

// saveSubmissionAction persists the submission aggregate. It is always the
// final staged action of a workflow, so a failed save rolls back the project
// back-pointer writes staged before it; its own Rollback never runs.
type saveSubmissionAction struct {
	submissions ports.SubmissionRepository
	submission  *submission.Submission
}

func (a *saveSubmissionAction) Execute(ctx context.Context) error {
	return a.submissions.Save(ctx, a.submission)
}

func (a *saveSubmissionAction) Rollback(context.Context) error {
	return nil
}

func (a *saveSubmissionAction) Description() string {
	return fmt.Sprintf("save submission %s", a.submission.SubmissionNumber)
}
