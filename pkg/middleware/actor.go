package middleware

import (
	"net/http"
	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/model"
	"strings"
)

const (
	ActorIDHeader   = "X-Actor-ID"
	ActorRoleHeader = "X-Actor-Role"
)

// Actor trusts the identity headers set by the upstream gateway and places a
// model.Actor on the request context. Requests without headers pass through
// anonymous; handlers that need a caller reject them.
func Actor() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(ActorIDHeader))
			role := model.Role(strings.ToLower(strings.TrimSpace(r.Header.Get(ActorRoleHeader))))

			if id == "" && role == "" {
				next.ServeHTTP(w, r)
				return
			}
			if id == "" || (role != model.RoleCustomer && role != model.RoleProvider) {
				_ = httputil.WriteError(w, apperrors.Unauthorized("invalid actor identity headers"))
				return
			}

			ctx := httputil.WithActor(r.Context(), model.Actor{ID: id, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
