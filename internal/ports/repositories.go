package ports

import (
	"context"

	"github.com/civiplan/submission-service/internal/domain/submission"
)

// SubmissionRepository is the persistence port for the Submission aggregate.
// Implemented by the storage adapter; called by the application layer.
//
// Save is last-write-wins at the document level but checks the aggregate's
// Version token: saving a stale version returns domain.ErrConflict, closing
// the race between concurrent add/remove-project operations on the same
// submission.
type SubmissionRepository interface {
	// FindByNumber returns the submission with the given number.
	// Returns domain.ErrNotFound if it does not exist.
	FindByNumber(ctx context.Context, submissionNumber string) (*submission.Submission, error)

	// FindNumbersByDrm returns every existing submission number sharing the
	// DRM number; used by the numbering policy.
	FindNumbersByDrm(ctx context.Context, drmNumber string) ([]string, error)

	// FindByProject returns the submissions whose member set contains the
	// project, most recently created first.
	FindByProject(ctx context.Context, projectID string) ([]submission.Submission, error)

	// Search returns submissions matching the criteria, most recently
	// created first.
	Search(ctx context.Context, criteria SubmissionCriteria) ([]submission.Submission, error)

	// Save inserts or updates the submission, incrementing its Version.
	// Returns domain.ErrConflict when the stored version is newer than the
	// one being saved.
	Save(ctx context.Context, s *submission.Submission) error
}
