package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/civiplan/submission-service/internal/domain"
	"github.com/civiplan/submission-service/internal/domain/submission"
	"github.com/civiplan/submission-service/internal/domain/validation"
	"github.com/civiplan/submission-service/internal/ports"
)

// Compile-time check that RequirementService implements ports.RequirementService.
var _ ports.RequirementService = (*RequirementService)(nil)

// RequirementService implements ports.RequirementService: requirement CRUD
// on a submission. All three operations share the drafting-phase rule set:
// the submission must be invalid, its progress before realization, and the
// requirement not deprecated.
type RequirementService struct {
	submissions ports.SubmissionRepository
	taxonomies  ports.TaxonomyService
	logger      *slog.Logger
	now         func() time.Time
}

// NewRequirementService creates a RequirementService.
func NewRequirementService(
	submissions ports.SubmissionRepository,
	taxonomies ports.TaxonomyService,
	logger *slog.Logger,
) *RequirementService {
	return &RequirementService{
		submissions: submissions,
		taxonomies:  taxonomies,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateRequirement authors a new requirement directly on the submission.
func (s *RequirementService) CreateRequirement(ctx context.Context, cmd submission.CreateRequirementCommand) (*submission.Requirement, error) {
	s.logger.InfoContext(ctx, "creating submission requirement",
		slog.String("submission_number", cmd.SubmissionNumber),
		slog.String("subtype_id", cmd.SubtypeID),
	)

	if res := cmd.Guard(); !res.Succeeded {
		return nil, res.Err()
	}

	sub, err := s.submissions.FindByNumber(ctx, cmd.SubmissionNumber)
	if err != nil {
		return nil, err
	}

	if res := validation.Combine(
		guardRequirementStage(sub),
		guardRequirementProjects(sub, cmd.ProjectIDs),
	); !res.Succeeded {
		return nil, res.Err()
	}

	mention := defaultMention(sub, cmd.Mention)
	if res := guardMentionEditable(sub, mention); !res.Succeeded {
		return nil, res.Err()
	}

	typeID, err := resolveRequirementTypeID(ctx, s.taxonomies, cmd.SubtypeID)
	if err != nil {
		return nil, err
	}

	user, _ := domain.UserFromContext(ctx)
	now := s.now()

	req := submission.Requirement{
		ID:         uuid.NewString(),
		ProjectIDs: append([]string(nil), cmd.ProjectIDs...),
		Mention:    mention,
		TypeID:     typeID,
		SubtypeID:  cmd.SubtypeID,
		Text:       cmd.Text,
		Audit:      domain.NewAudit(now, user.Author()),
	}
	sub.Requirements = append(sub.Requirements, req)
	sub.Audit.Touch(now, user.Author())

	if err := s.save(ctx, "CreateRequirement", sub); err != nil {
		return nil, err
	}
	return sub.RequirementByID(req.ID), nil
}

// UpdateRequirement updates an existing requirement on the submission.
func (s *RequirementService) UpdateRequirement(ctx context.Context, cmd submission.UpdateRequirementCommand) (*submission.Requirement, error) {
	s.logger.InfoContext(ctx, "updating submission requirement",
		slog.String("submission_number", cmd.SubmissionNumber),
		slog.String("requirement_id", cmd.ID),
	)

	if res := cmd.Guard(); !res.Succeeded {
		return nil, res.Err()
	}

	sub, err := s.submissions.FindByNumber(ctx, cmd.SubmissionNumber)
	if err != nil {
		return nil, err
	}

	if res := validation.Combine(
		guardRequirementStage(sub),
		guardRequirementProjects(sub, cmd.ProjectIDs),
	); !res.Succeeded {
		return nil, res.Err()
	}

	req := sub.RequirementByID(cmd.ID)
	if req == nil {
		return nil, validation.Failure("id", validation.CodeNotFound,
			fmt.Sprintf("requirement %s was not found on submission %s", cmd.ID, sub.SubmissionNumber)).Err()
	}
	if res := guardRequirementEditable(sub, req); !res.Succeeded {
		return nil, res.Err()
	}

	mention := req.Mention
	if cmd.Mention != nil {
		mention = *cmd.Mention
	}
	if res := guardMentionEditable(sub, mention); !res.Succeeded {
		return nil, res.Err()
	}

	typeID, err := resolveRequirementTypeID(ctx, s.taxonomies, cmd.SubtypeID)
	if err != nil {
		return nil, err
	}

	user, _ := domain.UserFromContext(ctx)
	now := s.now()

	req.SubtypeID = cmd.SubtypeID
	req.TypeID = typeID
	req.Text = cmd.Text
	req.Mention = mention
	req.ProjectIDs = append([]string(nil), cmd.ProjectIDs...)
	req.Audit.Touch(now, user.Author())
	sub.Audit.Touch(now, user.Author())

	if err := s.save(ctx, "UpdateRequirement", sub); err != nil {
		return nil, err
	}
	return req, nil
}

// DeleteRequirement removes a requirement from the submission.
func (s *RequirementService) DeleteRequirement(ctx context.Context, cmd submission.DeleteRequirementCommand) error {
	s.logger.InfoContext(ctx, "deleting submission requirement",
		slog.String("submission_number", cmd.SubmissionNumber),
		slog.String("requirement_id", cmd.ID),
	)

	if res := cmd.Guard(); !res.Succeeded {
		return res.Err()
	}

	sub, err := s.submissions.FindByNumber(ctx, cmd.SubmissionNumber)
	if err != nil {
		return err
	}

	if res := guardRequirementStage(sub); !res.Succeeded {
		return res.Err()
	}

	req := sub.RequirementByID(cmd.ID)
	if req == nil {
		return validation.Failure("id", validation.CodeNotFound,
			fmt.Sprintf("requirement %s was not found on submission %s", cmd.ID, sub.SubmissionNumber)).Err()
	}
	if res := guardRequirementEditable(sub, req); !res.Succeeded {
		return res.Err()
	}

	user, _ := domain.UserFromContext(ctx)
	sub.RemoveRequirement(cmd.ID)
	sub.Audit.Touch(s.now(), user.Author())

	return s.save(ctx, "DeleteRequirement", sub)
}

func (s *RequirementService) save(ctx context.Context, operation string, sub *submission.Submission) error {
	if err := s.submissions.Save(ctx, sub); err != nil {
		s.logger.ErrorContext(ctx, "failed to save submission",
			slog.String("operation", operation),
			slog.String("submission_number", sub.SubmissionNumber),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

// guardRequirementStage enforces the drafting-phase rule shared by every
// requirement operation: edits are only allowed while the submission is in
// its pre-tender invalid phase. Both violations are reported together.
func guardRequirementStage(sub *submission.Submission) validation.Result {
	var results []validation.Result
	if sub.Status == submission.StatusValid {
		results = append(results, validation.Failure("status", validation.CodeUnprocessableEntity,
			"the requirements of a valid submission cannot be edited"))
	}
	if sub.ProgressStatus.RequirementEditsBlocked() {
		results = append(results, validation.Failure("progressStatus", validation.CodeUnprocessableEntity,
			fmt.Sprintf("requirements cannot be edited while the submission is in progress status %s", sub.ProgressStatus)))
	}
	return validation.Combine(results...)
}

// guardRequirementProjects checks that every supplied project id is a member
// of the submission, reporting one notFound failure per missing id.
func guardRequirementProjects(sub *submission.Submission, projectIDs []string) validation.Result {
	var results []validation.Result
	for _, id := range projectIDs {
		if !sub.HasProject(id) {
			results = append(results, validation.Failure("projectIds", validation.CodeNotFound,
				fmt.Sprintf("project %s is not part of submission %s", id, sub.SubmissionNumber)))
		}
	}
	return validation.Combine(results...)
}

// guardRequirementEditable rejects edits to a deprecated requirement.
func guardRequirementEditable(sub *submission.Submission, req *submission.Requirement) validation.Result {
	if req.IsDeprecated {
		return validation.Failure("id", validation.CodeUnprocessableEntity,
			fmt.Sprintf("requirement %s is deprecated and cannot be edited", req.ID))
	}
	if req.Mention == submission.MentionBeforeTender && !sub.ProgressStatus.BeforeTenderEditable() {
		return validation.Failure("mentionId", validation.CodeUnprocessableEntity,
			fmt.Sprintf("a beforeTender requirement cannot be edited while the submission is in progress status %s", sub.ProgressStatus))
	}
	return validation.Success()
}

// guardMentionEditable rejects writing a beforeTender mention once the
// submission has moved past the design stage.
func guardMentionEditable(sub *submission.Submission, mention submission.Mention) validation.Result {
	if mention == submission.MentionBeforeTender && !sub.ProgressStatus.BeforeTenderEditable() {
		return validation.Failure("mentionId", validation.CodeUnprocessableEntity,
			fmt.Sprintf("a beforeTender requirement cannot be created while the submission is in progress status %s", sub.ProgressStatus))
	}
	return validation.Success()
}

// defaultMention returns the requirement mention: the commanded one when
// supplied, otherwise beforeTender during the drafting stages and
// afterTender from the call for tender onward.
func defaultMention(sub *submission.Submission, commanded *submission.Mention) submission.Mention {
	if commanded != nil {
		return *commanded
	}
	if sub.ProgressStatus.BeforeTenderEditable() {
		return submission.MentionBeforeTender
	}
	return submission.MentionAfterTender
}
