package middleware

import (
	"net/http"
	"strings"

	"github.com/civiplan/submission-service/internal/domain"
)

// Headers populated by the gateway's authentication layer. Authentication
// itself happens upstream of this service; here the asserted identity is
// only lifted into the request context for audit stamping and permission
// re-checks in the workflows.
const (
	HeaderUserName        = "X-User-Name"
	HeaderUserDisplayName = "X-User-Display-Name"
	HeaderUserPermissions = "X-User-Permissions"
)

// UserContext returns middleware that extracts the acting user from the
// gateway headers and attaches it to the request context via
// domain.WithUser. Requests without an identity header pass through with no
// user attached; permission-guarded operations then fail with forbidden.
func UserContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userName := r.Header.Get(HeaderUserName)
			if userName == "" {
				next.ServeHTTP(w, r)
				return
			}

			user := domain.User{
				UserName:    userName,
				DisplayName: r.Header.Get(HeaderUserDisplayName),
				Permissions: splitPermissions(r.Header.Get(HeaderUserPermissions)),
			}

			ctx := domain.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func splitPermissions(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	permissions := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			permissions = append(permissions, trimmed)
		}
	}
	return permissions
}
