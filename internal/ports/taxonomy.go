package ports

import "context"

// Taxonomy is a single entry from the reference-data service: a code within
// a group plus free-form properties. The workflow reads two groups:
// "submissionProgressStatus" entries may carry an "authorizedNext" property
// (comma separated codes) overriding the default stage order, and
// "requirementSubtype" entries carry a "typeId" property used to resolve a
// requirement's type from its subtype.
type Taxonomy struct {
	Group      string
	Code       string
	Label      string
	Properties map[string]string
}

// TaxonomyService resolves reference data by group and code.
// Returns domain.ErrNotFound when the code is not part of the group.
type TaxonomyService interface {
	Get(ctx context.Context, group, code string) (*Taxonomy, error)
}

// Taxonomy groups consumed by the submission workflow.
const (
	TaxonomyGroupProgressStatus     = "submissionProgressStatus"
	TaxonomyGroupRequirementSubtype = "requirementSubtype"
)

// Taxonomy property keys.
const (
	TaxonomyPropertyAuthorizedNext = "authorizedNext"
	TaxonomyPropertyTypeID         = "typeId"
)
