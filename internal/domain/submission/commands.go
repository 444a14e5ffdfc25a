package submission

import (
	"fmt"
	"time"

	"github.com/civiplan/submission-service/internal/domain/validation"
)

// Commands are the plain inbound objects of the submission workflows. Each
// command carries a Guard method performing the static shape/format
// validation; on success the workflow constructs or mutates the aggregate
// and runs the cross-entity business rules.

// CreateCommand requests creation of a submission bundling the given
// projects under a program book.
type CreateCommand struct {
	ProgramBookID string
	ProjectIDs    []string
}

// Guard validates shape and format of the command fields. A project id may
// appear at most once; letting a repeat through would double-claim the
// project on create.
func (c CreateCommand) Guard() validation.Result {
	results := validation.GuardBulk([]validation.Argument{
		{
			Value: optString(c.ProgramBookID),
			Name:  "programBookId",
			Rules: []validation.RuleKind{validation.RuleNullOrUndefined, validation.RuleEmptyString},
		},
		{
			Value: c.ProjectIDs,
			Name:  "projectIds",
			Rules: []validation.RuleKind{validation.RuleNullOrUndefined, validation.RuleEmptyArray},
		},
	})
	results = append(results, guardUniqueProjectIDs(c.ProjectIDs))
	return validation.Combine(results...)
}

func guardUniqueProjectIDs(ids []string) validation.Result {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return validation.Failure("projectIds", validation.CodeDuplicate,
				fmt.Sprintf("project %s appears more than once", id))
		}
		seen[id] = struct{}{}
	}
	return validation.Success()
}

// PatchCommand requests status and/or progress-status changes. Optional
// fields are pointers; a nil field was not supplied.
type PatchCommand struct {
	SubmissionNumber         string
	Status                   *Status
	ProgressStatus           *ProgressStatus
	Comment                  *string
	ProgressStatusChangeDate *time.Time
}

// Guard validates shape and format: a well-formed submission number, at
// least one patched field, enum membership of the supplied values, a
// non-empty comment whenever the status is changed, and a change date
// accompanying any progress change. A comment on its own is allowed; it
// only becomes mandatory once a status is supplied.
func (c PatchCommand) Guard() validation.Result {
	record := map[string]any{
		"status":                   opt(c.Status),
		"progressStatus":           opt(c.ProgressStatus),
		"progressStatusChangeDate": opt(c.ProgressStatusChangeDate),
	}

	args := []validation.Argument{
		guardSubmissionNumber(c.SubmissionNumber),
		{
			Value:  record,
			Name:   "patch",
			Rules:  []validation.RuleKind{validation.RuleAtLeastOne},
			Values: []any{"status", "progressStatus"},
		},
		{
			Value:  opt(c.Status),
			Name:   "status",
			Rules:  []validation.RuleKind{validation.RuleIsOneOf},
			Values: []any{string(StatusValid), string(StatusInvalid)},
		},
		{
			Value:  opt(c.ProgressStatus),
			Name:   "progressStatus",
			Rules:  []validation.RuleKind{validation.RuleIsOneOf},
			Values: progressStatusValues(),
		},
		{
			Value:  record,
			Name:   "progressChange",
			Rules:  []validation.RuleKind{validation.RuleConditionalMandatory},
			Values: []any{"progressStatus", "progressStatusChangeDate"},
		},
		{
			Value: opt(c.ProgressStatusChangeDate),
			Name:  "progressStatusChangeDate",
			Rules: []validation.RuleKind{validation.RuleValidDate},
		},
	}
	if c.Status != nil {
		args = append(args, validation.Argument{
			Value: opt(c.Comment),
			Name:  "comment",
			Rules: []validation.RuleKind{validation.RuleNullOrUndefined, validation.RuleEmptyString},
		})
	}

	return validation.Combine(validation.GuardBulk(args)...)
}

// AddProjectCommand requests adding a project to an existing submission.
type AddProjectCommand struct {
	SubmissionNumber string
	ProjectID        string
}

// Guard validates shape and format of the command fields.
func (c AddProjectCommand) Guard() validation.Result {
	return validation.Combine(validation.GuardBulk([]validation.Argument{
		guardSubmissionNumber(c.SubmissionNumber),
		guardProjectID(c.ProjectID),
	})...)
}

// RemoveProjectCommand requests removing a project from a submission.
type RemoveProjectCommand struct {
	SubmissionNumber string
	ProjectID        string
}

// Guard validates shape and format of the command fields.
func (c RemoveProjectCommand) Guard() validation.Result {
	return validation.Combine(validation.GuardBulk([]validation.Argument{
		guardSubmissionNumber(c.SubmissionNumber),
		guardProjectID(c.ProjectID),
	})...)
}

// CreateRequirementCommand requests a new requirement authored directly on
// the submission. ProjectIDs is optional; supplied ids must already be
// members of the submission.
type CreateRequirementCommand struct {
	SubmissionNumber string
	SubtypeID        string
	Text             string
	ProjectIDs       []string
	Mention          *Mention
}

// Guard validates shape and format of the command fields.
func (c CreateRequirementCommand) Guard() validation.Result {
	return validation.Combine(validation.GuardBulk(append(
		requirementPayloadArguments(c.SubtypeID, c.Text, c.Mention),
		guardSubmissionNumber(c.SubmissionNumber),
	))...)
}

// UpdateRequirementCommand requests changes to an existing requirement.
type UpdateRequirementCommand struct {
	SubmissionNumber string
	ID               string
	SubtypeID        string
	Text             string
	ProjectIDs       []string
	Mention          *Mention
}

// Guard validates shape and format of the command fields.
func (c UpdateRequirementCommand) Guard() validation.Result {
	return validation.Combine(validation.GuardBulk(append(
		requirementPayloadArguments(c.SubtypeID, c.Text, c.Mention),
		guardSubmissionNumber(c.SubmissionNumber),
		validation.Argument{
			Value: optString(c.ID),
			Name:  "id",
			Rules: []validation.RuleKind{validation.RuleNullOrUndefined, validation.RuleEmptyString},
		},
	))...)
}

// DeleteRequirementCommand requests deletion of a requirement.
type DeleteRequirementCommand struct {
	SubmissionNumber string
	ID               string
}

// Guard validates shape and format of the command fields.
func (c DeleteRequirementCommand) Guard() validation.Result {
	return validation.Combine(validation.GuardBulk([]validation.Argument{
		guardSubmissionNumber(c.SubmissionNumber),
		{
			Value: optString(c.ID),
			Name:  "id",
			Rules: []validation.RuleKind{validation.RuleNullOrUndefined, validation.RuleEmptyString},
		},
	})...)
}

func guardSubmissionNumber(number string) validation.Argument {
	return validation.Argument{
		Value: optString(number),
		Name:  "submissionNumber",
		Rules: []validation.RuleKind{
			validation.RuleNullOrUndefined,
			validation.RuleEmptyString,
			validation.RuleMatchesRegex,
		},
		Values: []any{NumberPattern},
	}
}

func guardProjectID(id string) validation.Argument {
	return validation.Argument{
		Value: optString(id),
		Name:  "projectId",
		Rules: []validation.RuleKind{validation.RuleNullOrUndefined, validation.RuleEmptyString},
	}
}

func requirementPayloadArguments(subtypeID, text string, mention *Mention) []validation.Argument {
	return []validation.Argument{
		{
			Value: optString(subtypeID),
			Name:  "subtypeId",
			Rules: []validation.RuleKind{validation.RuleNullOrUndefined, validation.RuleEmptyString},
		},
		{
			Value: optString(text),
			Name:  "text",
			Rules: []validation.RuleKind{validation.RuleNullOrUndefined, validation.RuleEmptyString},
		},
		{
			Value:  opt(mention),
			Name:   "mentionId",
			Rules:  []validation.RuleKind{validation.RuleIsOneOf},
			Values: []any{string(MentionBeforeTender), string(MentionAfterTender)},
		},
	}
}

func progressStatusValues() []any {
	stages := ProgressStatuses()
	values := make([]any, len(stages))
	for i, stage := range stages {
		values[i] = string(stage)
	}
	return values
}

// opt converts an optional pointer field to the guard's any-typed value:
// untyped nil when absent, the dereferenced value when present.
func opt[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// optString maps the empty string to untyped nil so required-field rules
// treat an unset plain string field as absent.
func optString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
