package ports

import (
	"context"

	"github.com/civiplan/submission-service/internal/domain/project"
)

// PlanningClient defines the client port for the downstream planning API,
// which owns the Project aggregate and the planning requirement inventory.
// Implemented by the ACL adapter; called by the application layer. The ACL
// translates between the downstream representation and domain types.
type PlanningClient interface {
	// GetProject returns a single project by id.
	// Returns domain.ErrNotFound if the project does not exist.
	GetProject(ctx context.Context, id string) (*project.Project, error)

	// SaveProject writes the project back, including its submission-number
	// back-pointer. Returns domain.ErrNotFound if the project does not
	// exist downstream.
	SaveProject(ctx context.Context, p *project.Project) error

	// ListPlanningRequirements returns the planning requirements authored
	// on the given project, in authoring order.
	ListPlanningRequirements(ctx context.Context, projectID string) ([]project.PlanningRequirement, error)
}
