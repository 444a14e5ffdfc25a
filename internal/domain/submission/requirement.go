package submission

import "github.com/civiplan/submission-service/internal/domain"

// Mention situates a requirement relative to the call for tender.
type Mention string

const (
	MentionBeforeTender Mention = "beforeTender"
	MentionAfterTender  Mention = "afterTender"
)

// IsValid returns true if the mention is one of the defined constants.
func (m Mention) IsValid() bool {
	switch m {
	case MentionBeforeTender, MentionAfterTender:
		return true
	default:
		return false
	}
}

// Requirement is a planning or design constraint attached to one or more
// member projects of a submission. A requirement mirrored from the planning
// inventory keeps a back-reference in PlanningRequirementID; at most one
// requirement per submission references a given planning requirement, and
// repeated synchronization merges into that entry's ProjectIDs instead of
// duplicating it. Requirements authored directly on the submission have an
// empty PlanningRequirementID.
type Requirement struct {
	ID                    string
	PlanningRequirementID string
	ProjectIDs            []string
	Mention               Mention
	TypeID                string
	SubtypeID             string
	Text                  string
	IsDeprecated          bool
	Audit                 domain.Audit
}

// HasProject reports whether the requirement references the project.
func (r *Requirement) HasProject(projectID string) bool {
	for _, id := range r.ProjectIDs {
		if id == projectID {
			return true
		}
	}
	return false
}

// AddProject appends the project id if not already present. Returns true
// when the id was added.
func (r *Requirement) AddProject(projectID string) bool {
	if r.HasProject(projectID) {
		return false
	}
	r.ProjectIDs = append(r.ProjectIDs, projectID)
	return true
}
