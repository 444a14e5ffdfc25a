// Package dto provides HTTP request/response data transfer objects and
// RFC 9457 Problem Details error responses for the inbound HTTP adapter layer.
package dto

import (
	"time"

	"github.com/civiplan/submission-service/internal/domain"
	"github.com/civiplan/submission-service/internal/domain/submission"
)

// AuthorResponse identifies the user on an audit stamp.
type AuthorResponse struct {
	UserName    string `json:"userName"`
	DisplayName string `json:"displayName"`
}

// AuditResponse carries creation and last-modification metadata.
type AuditResponse struct {
	CreatedAt      string          `json:"createdAt"`
	CreatedBy      AuthorResponse  `json:"createdBy"`
	LastModifiedAt string          `json:"lastModifiedAt,omitempty"`
	LastModifiedBy *AuthorResponse `json:"lastModifiedBy,omitempty"`
}

// RequirementResponse represents a submission requirement in HTTP responses.
type RequirementResponse struct {
	ID                    string        `json:"id"`
	PlanningRequirementID string        `json:"planningRequirementId,omitempty"`
	ProjectIDs            []string      `json:"projectIds"`
	MentionID             string        `json:"mentionId"`
	TypeID                string        `json:"typeId"`
	SubtypeID             string        `json:"subtypeId"`
	Text                  string        `json:"text"`
	IsDeprecated          bool          `json:"isDeprecated"`
	Audit                 AuditResponse `json:"audit"`
}

// StatusHistoryItemResponse represents one accepted status change.
type StatusHistoryItemResponse struct {
	Status    string         `json:"status"`
	Comment   string         `json:"comment"`
	CreatedAt string         `json:"createdAt"`
	CreatedBy AuthorResponse `json:"createdBy"`
}

// ProgressHistoryItemResponse represents one accepted progress transition.
type ProgressHistoryItemResponse struct {
	ProgressStatus string         `json:"progressStatus"`
	ChangeDate     string         `json:"progressStatusChangeDate"`
	CreatedAt      string         `json:"createdAt"`
	CreatedBy      AuthorResponse `json:"createdBy"`
}

// SubmissionResponse represents a submission in HTTP responses.
type SubmissionResponse struct {
	SubmissionNumber string                        `json:"submissionNumber"`
	DrmNumber        string                        `json:"drmNumber"`
	Status           string                        `json:"status"`
	ProgressStatus   string                        `json:"progressStatus"`
	ProgramBookID    string                        `json:"programBookId"`
	ProjectIDs       []string                      `json:"projectIds"`
	Requirements     []RequirementResponse         `json:"requirements"`
	StatusHistory    []StatusHistoryItemResponse   `json:"statusHistory"`
	ProgressHistory  []ProgressHistoryItemResponse `json:"progressHistory"`
	Audit            AuditResponse                 `json:"audit"`
}

// SubmissionListResponse represents a list of submissions in HTTP responses.
type SubmissionListResponse struct {
	Submissions []SubmissionResponse `json:"submissions"`
	Count       int                  `json:"count"`
}

// ToSubmissionResponse converts a domain Submission aggregate to an HTTP
// response DTO.
func ToSubmissionResponse(s *submission.Submission) SubmissionResponse {
	requirements := make([]RequirementResponse, len(s.Requirements))
	for i := range s.Requirements {
		requirements[i] = ToRequirementResponse(&s.Requirements[i])
	}

	statusHistory := make([]StatusHistoryItemResponse, len(s.StatusHistory))
	for i, item := range s.StatusHistory {
		statusHistory[i] = StatusHistoryItemResponse{
			Status:    item.Status.String(),
			Comment:   item.Comment,
			CreatedAt: item.CreatedAt.Format(time.RFC3339),
			CreatedBy: toAuthorResponse(item.CreatedBy),
		}
	}

	progressHistory := make([]ProgressHistoryItemResponse, len(s.ProgressHistory))
	for i, item := range s.ProgressHistory {
		progressHistory[i] = ProgressHistoryItemResponse{
			ProgressStatus: item.ProgressStatus.String(),
			ChangeDate:     item.ChangeDate.Format(time.RFC3339),
			CreatedAt:      item.CreatedAt.Format(time.RFC3339),
			CreatedBy:      toAuthorResponse(item.CreatedBy),
		}
	}

	return SubmissionResponse{
		SubmissionNumber: s.SubmissionNumber,
		DrmNumber:        s.DrmNumber,
		Status:           s.Status.String(),
		ProgressStatus:   s.ProgressStatus.String(),
		ProgramBookID:    s.ProgramBookID,
		ProjectIDs:       s.ProjectIDs,
		Requirements:     requirements,
		StatusHistory:    statusHistory,
		ProgressHistory:  progressHistory,
		Audit:            toAuditResponse(s.Audit),
	}
}

// ToSubmissionListResponse converts a slice of submissions to an HTTP list
// response DTO.
func ToSubmissionListResponse(submissions []submission.Submission) SubmissionListResponse {
	items := make([]SubmissionResponse, len(submissions))
	for i := range submissions {
		items[i] = ToSubmissionResponse(&submissions[i])
	}
	return SubmissionListResponse{
		Submissions: items,
		Count:       len(items),
	}
}

// ToRequirementResponse converts a domain Requirement to an HTTP response DTO.
func ToRequirementResponse(req *submission.Requirement) RequirementResponse {
	return RequirementResponse{
		ID:                    req.ID,
		PlanningRequirementID: req.PlanningRequirementID,
		ProjectIDs:            req.ProjectIDs,
		MentionID:             string(req.Mention),
		TypeID:                req.TypeID,
		SubtypeID:             req.SubtypeID,
		Text:                  req.Text,
		IsDeprecated:          req.IsDeprecated,
		Audit:                 toAuditResponse(req.Audit),
	}
}

func toAuthorResponse(a domain.Author) AuthorResponse {
	return AuthorResponse{UserName: a.UserName, DisplayName: a.DisplayName}
}

func toAuditResponse(a domain.Audit) AuditResponse {
	resp := AuditResponse{
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
		CreatedBy: toAuthorResponse(a.CreatedBy),
	}
	if !a.LastModifiedAt.IsZero() {
		resp.LastModifiedAt = a.LastModifiedAt.Format(time.RFC3339)
		by := toAuthorResponse(a.LastModifiedBy)
		resp.LastModifiedBy = &by
	}
	return resp
}
