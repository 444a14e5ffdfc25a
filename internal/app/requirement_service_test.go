package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civiplan/submission-service/internal/domain"
	"github.com/civiplan/submission-service/internal/domain/submission"
	"github.com/civiplan/submission-service/internal/domain/validation"
)

func newRequirementService(repo *fakeSubmissionRepo, taxonomies *fakeTaxonomies) *RequirementService {
	s := NewRequirementService(repo, taxonomies, testLogger())
	s.now = func() time.Time { return testTime }
	return s
}

// draftingSubmission is a submission in the phase where requirement edits
// are allowed: invalidated, still in design.
func draftingSubmission(projectIDs ...string) *submission.Submission {
	sub := draftSubmission("737301", projectIDs...)
	sub.Status = submission.StatusInvalid
	sub.ProgressStatus = submission.ProgressDesign
	return sub
}

func repoWith(sub *submission.Submission) *fakeSubmissionRepo {
	return &fakeSubmissionRepo{
		findByNumber: func(_ context.Context, _ string) (*submission.Submission, error) {
			return sub, nil
		},
	}
}

func TestCreateRequirement(t *testing.T) {
	t.Parallel()

	t.Run("creates a requirement with its type resolved from the taxonomy", func(t *testing.T) {
		t.Parallel()

		sub := draftingSubmission("p1")
		repo := repoWith(sub)
		svc := newRequirementService(repo, subtypeTaxonomies())

		req, err := svc.CreateRequirement(testContext(), submission.CreateRequirementCommand{
			SubmissionNumber: "737301",
			SubtypeID:        "espBefore",
			Text:             "protect the esplanade",
			ProjectIDs:       []string{"p1"},
		})
		require.NoError(t, err)

		assert.NotEmpty(t, req.ID)
		assert.Equal(t, "programmation", req.TypeID)
		assert.Equal(t, submission.MentionBeforeTender, req.Mention)
		assert.Empty(t, req.PlanningRequirementID)
		require.Len(t, repo.saved, 1)
	})

	t.Run("defaults to afterTender past the design stage", func(t *testing.T) {
		t.Parallel()

		sub := draftingSubmission("p1")
		sub.ProgressStatus = submission.ProgressCallForTender
		svc := newRequirementService(repoWith(sub), subtypeTaxonomies())

		req, err := svc.CreateRequirement(testContext(), submission.CreateRequirementCommand{
			SubmissionNumber: "737301",
			SubtypeID:        "espBefore",
			Text:             "protect the esplanade",
		})
		require.NoError(t, err)
		assert.Equal(t, submission.MentionAfterTender, req.Mention)
	})

	t.Run("fails regardless of payload once realization has started", func(t *testing.T) {
		t.Parallel()

		sub := draftingSubmission("p1")
		sub.ProgressStatus = submission.ProgressRealization
		svc := newRequirementService(repoWith(sub), subtypeTaxonomies())

		_, err := svc.CreateRequirement(testContext(), submission.CreateRequirementCommand{
			SubmissionNumber: "737301",
			SubtypeID:        "espBefore",
			Text:             "protect the esplanade",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrUnprocessable))
	})

	t.Run("rejects edits on a valid submission", func(t *testing.T) {
		t.Parallel()

		sub := draftingSubmission("p1")
		sub.Status = submission.StatusValid
		svc := newRequirementService(repoWith(sub), subtypeTaxonomies())

		_, err := svc.CreateRequirement(testContext(), submission.CreateRequirementCommand{
			SubmissionNumber: "737301",
			SubtypeID:        "espBefore",
			Text:             "protect the esplanade",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrUnprocessable))
	})

	t.Run("reports each project that is not a member", func(t *testing.T) {
		t.Parallel()

		svc := newRequirementService(repoWith(draftingSubmission("p1")), subtypeTaxonomies())

		_, err := svc.CreateRequirement(testContext(), submission.CreateRequirementCommand{
			SubmissionNumber: "737301",
			SubtypeID:        "espBefore",
			Text:             "protect the esplanade",
			ProjectIDs:       []string{"p1", "p8", "p9"},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		leaves := leavesOf(t, err)
		assert.Len(t, leaves, 2)
	})

	t.Run("fails on an unknown requirement subtype", func(t *testing.T) {
		t.Parallel()

		svc := newRequirementService(repoWith(draftingSubmission("p1")), newFakeTaxonomies())

		_, err := svc.CreateRequirement(testContext(), submission.CreateRequirementCommand{
			SubmissionNumber: "737301",
			SubtypeID:        "unknownSubtype",
			Text:             "protect the esplanade",
		})
		require.Error(t, err)

		leaves := leavesOf(t, err)
		require.Len(t, leaves, 1)
		assert.Equal(t, validation.CodeTaxonomy, leaves[0].Code)
	})
}

func TestUpdateRequirement(t *testing.T) {
	t.Parallel()

	seeded := func() *submission.Submission {
		sub := draftingSubmission("p1", "p2")
		sub.Requirements = append(sub.Requirements, submission.Requirement{
			ID:         "r1",
			ProjectIDs: []string{"p1"},
			Mention:    submission.MentionBeforeTender,
			TypeID:     "programmation",
			SubtypeID:  "espBefore",
			Text:       "protect the esplanade",
			Audit:      domain.NewAudit(testTime.Add(-time.Hour), testUser().Author()),
		})
		return sub
	}

	t.Run("updates fields and audit stamp", func(t *testing.T) {
		t.Parallel()

		sub := seeded()
		svc := newRequirementService(repoWith(sub), subtypeTaxonomies())

		req, err := svc.UpdateRequirement(testContext(), submission.UpdateRequirementCommand{
			SubmissionNumber: "737301",
			ID:               "r1",
			SubtypeID:        "coordinationObstacles",
			Text:             "coordinate with transit",
			ProjectIDs:       []string{"p1", "p2"},
		})
		require.NoError(t, err)

		assert.Equal(t, "planification", req.TypeID)
		assert.Equal(t, "coordinate with transit", req.Text)
		assert.Equal(t, []string{"p1", "p2"}, req.ProjectIDs)
		assert.Equal(t, testTime, req.Audit.LastModifiedAt)
	})

	t.Run("fails notFound for an unknown requirement id", func(t *testing.T) {
		t.Parallel()

		svc := newRequirementService(repoWith(seeded()), subtypeTaxonomies())

		_, err := svc.UpdateRequirement(testContext(), submission.UpdateRequirementCommand{
			SubmissionNumber: "737301",
			ID:               "r9",
			SubtypeID:        "espBefore",
			Text:             "x",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("rejects a deprecated requirement", func(t *testing.T) {
		t.Parallel()

		sub := seeded()
		sub.Requirements[0].IsDeprecated = true
		svc := newRequirementService(repoWith(sub), subtypeTaxonomies())

		_, err := svc.UpdateRequirement(testContext(), submission.UpdateRequirementCommand{
			SubmissionNumber: "737301",
			ID:               "r1",
			SubtypeID:        "espBefore",
			Text:             "x",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrUnprocessable))
	})

	t.Run("rejects editing a beforeTender requirement past the design stage", func(t *testing.T) {
		t.Parallel()

		sub := seeded()
		sub.ProgressStatus = submission.ProgressCallForTender
		svc := newRequirementService(repoWith(sub), subtypeTaxonomies())

		_, err := svc.UpdateRequirement(testContext(), submission.UpdateRequirementCommand{
			SubmissionNumber: "737301",
			ID:               "r1",
			SubtypeID:        "espBefore",
			Text:             "x",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrUnprocessable))
	})
}

func TestDeleteRequirement(t *testing.T) {
	t.Parallel()

	t.Run("removes the requirement", func(t *testing.T) {
		t.Parallel()

		sub := draftingSubmission("p1")
		sub.Requirements = append(sub.Requirements, submission.Requirement{
			ID:        "r1",
			Mention:   submission.MentionAfterTender,
			SubtypeID: "espBefore",
			Text:      "protect the esplanade",
		})
		repo := repoWith(sub)
		svc := newRequirementService(repo, subtypeTaxonomies())

		err := svc.DeleteRequirement(testContext(), submission.DeleteRequirementCommand{
			SubmissionNumber: "737301",
			ID:               "r1",
		})
		require.NoError(t, err)
		assert.Empty(t, sub.Requirements)
		require.Len(t, repo.saved, 1)
	})

	t.Run("fails notFound for an unknown requirement id", func(t *testing.T) {
		t.Parallel()

		svc := newRequirementService(repoWith(draftingSubmission("p1")), subtypeTaxonomies())

		err := svc.DeleteRequirement(testContext(), submission.DeleteRequirementCommand{
			SubmissionNumber: "737301",
			ID:               "r1",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}
