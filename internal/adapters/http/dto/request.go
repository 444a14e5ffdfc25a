package dto

import (
	"net/http"
	"time"

	"github.com/civiplan/submission-service/internal/domain/submission"
	"github.com/civiplan/submission-service/internal/ports"
)

// Request DTOs map JSON bodies onto the application's command objects. Shape
// and format validation lives in the commands' Guard methods, so the DTOs
// here stay thin: decode, carry, convert.

// CreateSubmissionRequest represents the JSON body for creating a submission.
type CreateSubmissionRequest struct {
	ProgramBookID string   `json:"programBookId"`
	ProjectIDs    []string `json:"projectIds"`
}

// ToCommand converts the request to a CreateCommand.
func (r *CreateSubmissionRequest) ToCommand() submission.CreateCommand {
	return submission.CreateCommand{
		ProgramBookID: r.ProgramBookID,
		ProjectIDs:    r.ProjectIDs,
	}
}

// PatchSubmissionRequest represents the JSON body for patching a
// submission's status and/or progress status. Absent fields stay nil.
type PatchSubmissionRequest struct {
	Status                   *string    `json:"status,omitempty"`
	ProgressStatus           *string    `json:"progressStatus,omitempty"`
	Comment                  *string    `json:"comment,omitempty"`
	ProgressStatusChangeDate *time.Time `json:"progressStatusChangeDate,omitempty"`
}

// ToCommand converts the request to a PatchCommand for the given submission
// number.
func (r *PatchSubmissionRequest) ToCommand(submissionNumber string) submission.PatchCommand {
	cmd := submission.PatchCommand{
		SubmissionNumber:         submissionNumber,
		Comment:                  r.Comment,
		ProgressStatusChangeDate: r.ProgressStatusChangeDate,
	}
	if r.Status != nil {
		status := submission.Status(*r.Status)
		cmd.Status = &status
	}
	if r.ProgressStatus != nil {
		progress := submission.ProgressStatus(*r.ProgressStatus)
		cmd.ProgressStatus = &progress
	}
	return cmd
}

// CreateRequirementRequest represents the JSON body for authoring a
// requirement on a submission.
type CreateRequirementRequest struct {
	SubtypeID  string   `json:"subtypeId"`
	Text       string   `json:"text"`
	ProjectIDs []string `json:"projectIds,omitempty"`
	Mention    *string  `json:"mentionId,omitempty"`
}

// ToCommand converts the request to a CreateRequirementCommand.
func (r *CreateRequirementRequest) ToCommand(submissionNumber string) submission.CreateRequirementCommand {
	return submission.CreateRequirementCommand{
		SubmissionNumber: submissionNumber,
		SubtypeID:        r.SubtypeID,
		Text:             r.Text,
		ProjectIDs:       r.ProjectIDs,
		Mention:          toMention(r.Mention),
	}
}

// UpdateRequirementRequest represents the JSON body for updating a
// requirement.
type UpdateRequirementRequest struct {
	SubtypeID  string   `json:"subtypeId"`
	Text       string   `json:"text"`
	ProjectIDs []string `json:"projectIds,omitempty"`
	Mention    *string  `json:"mentionId,omitempty"`
}

// ToCommand converts the request to an UpdateRequirementCommand for the
// given submission number and requirement id.
func (r *UpdateRequirementRequest) ToCommand(submissionNumber, id string) submission.UpdateRequirementCommand {
	return submission.UpdateRequirementCommand{
		SubmissionNumber: submissionNumber,
		ID:               id,
		SubtypeID:        r.SubtypeID,
		Text:             r.Text,
		ProjectIDs:       r.ProjectIDs,
		Mention:          toMention(r.Mention),
	}
}

// SearchCriteriaFromQuery reads the supported search filters from the
// request's query string. Absent parameters leave the zero value, meaning
// "no filter".
func SearchCriteriaFromQuery(r *http.Request) ports.SubmissionCriteria {
	q := r.URL.Query()
	return ports.SubmissionCriteria{
		DrmNumber:     q.Get("drmNumber"),
		ProjectID:     q.Get("projectId"),
		ProgramBookID: q.Get("programBookId"),
		Status:        submission.Status(q.Get("status")),
	}
}

func toMention(s *string) *submission.Mention {
	if s == nil {
		return nil
	}
	mention := submission.Mention(*s)
	return &mention
}
