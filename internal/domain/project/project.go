// Package project holds the service's view of the Project aggregate, which
// is owned by the downstream planning API and referenced here by id. The ACL
// adapter translates between the downstream representation and these types.
package project

// Statuses a project can hold in the planning API. Only the ordered statuses
// make a project eligible for submission.
type Status string

const (
	StatusPlanned            Status = "planned"
	StatusProgrammed         Status = "programmed"
	StatusPreliminaryOrdered Status = "preliminaryOrdered"
	StatusFinalOrdered       Status = "finalOrdered"
	StatusPostponed          Status = "postponed"
	StatusCanceled           Status = "canceled"
)

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// Project is the external construction-project aggregate. SubmissionNumber
// is the back-pointer to the submission currently claiming the project;
// exactly one submission may claim a project at a time, and the pointer is
// empty when no submission references it.
type Project struct {
	ID               string
	Status           Status
	DrmNumber        string
	SubmissionNumber string
	ProgramBookID    string
}

// Orderable reports whether the project status allows it to be bundled into
// a submission.
func (p *Project) Orderable() bool {
	return p.Status == StatusPreliminaryOrdered || p.Status == StatusFinalOrdered
}

// PlanningRequirement is a design/coordination constraint authored on a
// project independently of any submission. Adding the project to a
// submission mirrors these onto the submission's own requirement list.
type PlanningRequirement struct {
	ID        string
	ProjectID string
	SubtypeID string
	Text      string
}
