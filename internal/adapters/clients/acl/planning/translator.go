package planning

import (
	"github.com/civiplan/submission-service/internal/domain/project"
)

// ToDomainProject converts a downstream ProjectDTO to the domain Project
// view.
func ToDomainProject(dto ProjectDTO) project.Project {
	return project.Project{
		ID:               dto.ID,
		Status:           project.Status(dto.Status),
		DrmNumber:        dto.DrmNumber,
		SubmissionNumber: dto.SubmissionNumber,
		ProgramBookID:    dto.ProgramBookID,
	}
}

// ToUpdateProjectRequest builds the back-pointer update payload for a domain
// Project.
func ToUpdateProjectRequest(p *project.Project) UpdateProjectRequestDTO {
	return UpdateProjectRequestDTO{SubmissionNumber: p.SubmissionNumber}
}

// ToDomainRequirements converts a downstream requirement list to domain
// planning requirements.
func ToDomainRequirements(dto RequirementListResponseDTO) []project.PlanningRequirement {
	if len(dto.Requirements) == 0 {
		return nil
	}
	reqs := make([]project.PlanningRequirement, len(dto.Requirements))
	for i, r := range dto.Requirements {
		reqs[i] = project.PlanningRequirement{
			ID:        r.ID,
			ProjectID: r.ProjectID,
			SubtypeID: r.SubtypeID,
			Text:      r.Text,
		}
	}
	return reqs
}
