package planning

import (
	"testing"

	"github.com/civiplan/submission-service/internal/domain/project"
)

func TestToDomainProject_FieldMapping(t *testing.T) {
	t.Parallel()

	dto := ProjectDTO{
		ID:               "p1",
		Status:           "preliminaryOrdered",
		DrmNumber:        "7373",
		SubmissionNumber: "737301",
		ProgramBookID:    "pb-2025",
	}

	got := ToDomainProject(dto)

	if got.ID != "p1" {
		t.Errorf("ID = %q, want %q", got.ID, "p1")
	}
	if got.Status != project.StatusPreliminaryOrdered {
		t.Errorf("Status = %q, want %q", got.Status, project.StatusPreliminaryOrdered)
	}
	if got.DrmNumber != "7373" {
		t.Errorf("DrmNumber = %q, want %q", got.DrmNumber, "7373")
	}
	if got.SubmissionNumber != "737301" {
		t.Errorf("SubmissionNumber = %q, want %q", got.SubmissionNumber, "737301")
	}
	if got.ProgramBookID != "pb-2025" {
		t.Errorf("ProgramBookID = %q, want %q", got.ProgramBookID, "pb-2025")
	}
}

func TestToUpdateProjectRequest(t *testing.T) {
	t.Parallel()

	p := &project.Project{ID: "p1", SubmissionNumber: "737302"}

	got := ToUpdateProjectRequest(p)

	if got.SubmissionNumber != "737302" {
		t.Errorf("SubmissionNumber = %q, want %q", got.SubmissionNumber, "737302")
	}
}

func TestToDomainRequirements(t *testing.T) {
	t.Parallel()

	dto := RequirementListResponseDTO{
		Requirements: []RequirementDTO{
			{ID: "pr-1", ProjectID: "p1", SubtypeID: "espBefore", Text: "coordinate excavation"},
			{ID: "pr-2", ProjectID: "p1", SubtypeID: "coordinationObstacles", Text: "gas main crossing"},
		},
		Count: 2,
	}

	got := ToDomainRequirements(dto)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "pr-1" || got[0].SubtypeID != "espBefore" {
		t.Errorf("first = %+v, want pr-1/espBefore", got[0])
	}
	if got[1].Text != "gas main crossing" {
		t.Errorf("second text = %q", got[1].Text)
	}
}

func TestToDomainRequirements_Empty(t *testing.T) {
	t.Parallel()

	got := ToDomainRequirements(RequirementListResponseDTO{})

	if got != nil {
		t.Errorf("got %v, want nil", got)
	}
}
