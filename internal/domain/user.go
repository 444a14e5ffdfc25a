package domain

import "context"

// Permission names checked by the submission workflows. Permission
// enforcement middleware is upstream of this service; the workflows only
// re-check the grants the acting user arrived with.
const (
	PermissionSubmissionStatusWrite         = "SUBMISSION_STATUS_WRITE"
	PermissionSubmissionProgressStatusWrite = "SUBMISSION_PROGRESS_STATUS_WRITE"
)

// User is the acting user on whose behalf a request executes. It provides
// identity for audit stamping and the permission grants relevant to the
// submission workflows.
type User struct {
	UserName    string
	DisplayName string
	Permissions []string
}

// Can reports whether the user holds the named permission.
func (u User) Can(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// Author returns the audit author identity for this user.
func (u User) Author() Author {
	return Author{UserName: u.UserName, DisplayName: u.DisplayName}
}

type userContextKey struct{}

// WithUser returns a new context carrying the acting user.
// The user-context HTTP middleware calls this once per request.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// UserFromContext extracts the acting user from the context. The second
// return value is false when no user was attached (e.g. internal callers).
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userContextKey{}).(User)
	return u, ok
}
