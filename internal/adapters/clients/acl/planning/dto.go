// Package planning implements the Anti-Corruption Layer translators for the
// downstream planning API's project resources.
package planning

// ProjectDTO matches the downstream Project schema.
type ProjectDTO struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DrmNumber        string `json:"drmNumber"`
	SubmissionNumber string `json:"submissionNumber"`
	ProgramBookID    string `json:"programBookId"`
}

// UpdateProjectRequestDTO matches the downstream UpdateProjectRequest
// schema. Only the submission back-pointer is writable from this service.
type UpdateProjectRequestDTO struct {
	SubmissionNumber string `json:"submissionNumber"`
}

// RequirementDTO matches the downstream ProjectRequirement schema.
type RequirementDTO struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	SubtypeID string `json:"subtypeId"`
	Text      string `json:"text"`
}

// RequirementListResponseDTO matches the downstream RequirementListResponse
// schema.
type RequirementListResponseDTO struct {
	Requirements []RequirementDTO `json:"requirements"`
	Count        int64            `json:"count"`
}
