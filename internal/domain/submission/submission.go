// Package submission contains the Submission aggregate: a bundle of
// construction projects submitted together for tendering, identified by a
// sequential number derived from the shared DRM number. The aggregate owns
// its requirements and its status/progress history; the projects it bundles
// are external aggregates referenced by id.
package submission

import (
	"time"

	"github.com/civiplan/submission-service/internal/domain"
)

// Number formats. The submission number is the DRM number followed by a
// two-digit sequence, so both inherit the leading [5-9] of the DRM range.
const (
	NumberPattern    = `^[5-9]\d{5}$`
	DrmNumberPattern = `^[5-9]\d{3}$`
)

// StatusHistoryItem records one accepted status change with its mandatory
// comment.
type StatusHistoryItem struct {
	Status    Status
	Comment   string
	CreatedAt time.Time
	CreatedBy domain.Author
}

// ProgressHistoryItem records one accepted progress transition. ChangeDate
// is the caller-provided effective date; CreatedAt is the audit timestamp
// the monotonicity rule compares against.
type ProgressHistoryItem struct {
	ProgressStatus ProgressStatus
	ChangeDate     time.Time
	CreatedAt      time.Time
	CreatedBy      domain.Author
}

// Submission is the aggregate root. SubmissionNumber doubles as the
// persistence key. ProjectIDs must never become empty while the submission
// exists; ProgressHistory is append-only. Version is the optimistic
// concurrency token checked and incremented by the store on save.
type Submission struct {
	SubmissionNumber string
	DrmNumber        string
	Status           Status
	ProgressStatus   ProgressStatus
	ProgramBookID    string
	ProjectIDs       []string
	Requirements     []Requirement
	StatusHistory    []StatusHistoryItem
	ProgressHistory  []ProgressHistoryItem
	Audit            domain.Audit
	Version          int64
}

// New creates a submission in its initial state: valid, preliminary draft,
// empty histories.
func New(number, drmNumber, programBookID string, projectIDs []string, at time.Time, by domain.Author) *Submission {
	ids := make([]string, len(projectIDs))
	copy(ids, projectIDs)
	return &Submission{
		SubmissionNumber: number,
		DrmNumber:        drmNumber,
		Status:           StatusValid,
		ProgressStatus:   ProgressPreliminaryDraft,
		ProgramBookID:    programBookID,
		ProjectIDs:       ids,
		Audit:            domain.NewAudit(at, by),
	}
}

// HasProject reports whether the project is a member of the submission.
func (s *Submission) HasProject(projectID string) bool {
	for _, id := range s.ProjectIDs {
		if id == projectID {
			return true
		}
	}
	return false
}

// AddProject appends the project id. The caller is responsible for the
// duplicate-membership business rule; AddProject itself is idempotent.
func (s *Submission) AddProject(projectID string) {
	if !s.HasProject(projectID) {
		s.ProjectIDs = append(s.ProjectIDs, projectID)
	}
}

// RemoveProject removes the project id, returning false if it was not a
// member. Removing the last member is a business-rule violation enforced by
// the workflow, not here.
func (s *Submission) RemoveProject(projectID string) bool {
	for i, id := range s.ProjectIDs {
		if id == projectID {
			s.ProjectIDs = append(s.ProjectIDs[:i], s.ProjectIDs[i+1:]...)
			return true
		}
	}
	return false
}

// RequirementByID returns the requirement with the given id, or nil.
func (s *Submission) RequirementByID(id string) *Requirement {
	for i := range s.Requirements {
		if s.Requirements[i].ID == id {
			return &s.Requirements[i]
		}
	}
	return nil
}

// RequirementByPlanningID returns the requirement mirroring the given
// planning requirement, or nil. At most one such entry exists per
// submission.
func (s *Submission) RequirementByPlanningID(planningRequirementID string) *Requirement {
	if planningRequirementID == "" {
		return nil
	}
	for i := range s.Requirements {
		if s.Requirements[i].PlanningRequirementID == planningRequirementID {
			return &s.Requirements[i]
		}
	}
	return nil
}

// RequirementsReferencingProject returns the requirements whose ProjectIDs
// include the given project.
func (s *Submission) RequirementsReferencingProject(projectID string) []Requirement {
	var refs []Requirement
	for _, r := range s.Requirements {
		if r.HasProject(projectID) {
			refs = append(refs, r)
		}
	}
	return refs
}

// RemoveRequirement deletes the requirement with the given id, returning
// false if no such requirement exists.
func (s *Submission) RemoveRequirement(id string) bool {
	for i := range s.Requirements {
		if s.Requirements[i].ID == id {
			s.Requirements = append(s.Requirements[:i], s.Requirements[i+1:]...)
			return true
		}
	}
	return false
}

// SyncPlanningRequirement mirrors one planning requirement onto the
// submission for the given member project. If no requirement references it
// yet, a new beforeTender entry is created in discovery order; if one
// exists, the project id is merged into its ProjectIDs without duplication.
// The returned flag is true when a new entry was created. The operation is
// idempotent: re-running it for the same project and planning requirement
// changes nothing.
func (s *Submission) SyncPlanningRequirement(id, planningRequirementID, typeID, subtypeID, text, projectID string, at time.Time, by domain.Author) bool {
	if existing := s.RequirementByPlanningID(planningRequirementID); existing != nil {
		if existing.AddProject(projectID) {
			existing.Audit.Touch(at, by)
		}
		return false
	}
	s.Requirements = append(s.Requirements, Requirement{
		ID:                    id,
		PlanningRequirementID: planningRequirementID,
		ProjectIDs:            []string{projectID},
		Mention:               MentionBeforeTender,
		TypeID:                typeID,
		SubtypeID:             subtypeID,
		Text:                  text,
		Audit:                 domain.NewAudit(at, by),
	})
	return true
}

// LastProgressAt returns the reference instant for the progress-date
// monotonicity rule: the audit timestamp of the last progress entry, or the
// submission's creation date when the history is empty.
func (s *Submission) LastProgressAt() time.Time {
	if n := len(s.ProgressHistory); n > 0 {
		return s.ProgressHistory[n-1].CreatedAt
	}
	return s.Audit.CreatedAt
}

// ApplyProgress sets the progress status and appends the history entry.
// Validity of the transition is the workflow's concern.
func (s *Submission) ApplyProgress(next ProgressStatus, changeDate, at time.Time, by domain.Author) {
	s.ProgressStatus = next
	s.ProgressHistory = append(s.ProgressHistory, ProgressHistoryItem{
		ProgressStatus: next,
		ChangeDate:     changeDate,
		CreatedAt:      at,
		CreatedBy:      by,
	})
	s.Audit.Touch(at, by)
}

// ApplyStatus sets the status and appends the history entry with its
// mandatory comment.
func (s *Submission) ApplyStatus(next Status, comment string, at time.Time, by domain.Author) {
	s.Status = next
	s.StatusHistory = append(s.StatusHistory, StatusHistoryItem{
		Status:    next,
		Comment:   comment,
		CreatedAt: at,
		CreatedBy: by,
	})
	s.Audit.Touch(at, by)
}
