package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
)

// Recovery turns a handler panic into a 500 and logs the stack with the
// request and actor that triggered it.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				actorID := ""
				if actor, ok := httputil.ActorFrom(r.Context()); ok {
					actorID = actor.ID
				}
				log.Error("Panic recovered",
					"request_id", RequestIDFrom(r.Context()),
					"actor_id", actorID,
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				_ = httputil.WriteError(w, apperrors.Internal("Unexpected server error", fmt.Errorf("panic: %v", rec)))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
