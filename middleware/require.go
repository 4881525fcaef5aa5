package middleware

import (
	"net/http"

	"github.com/medtrack/sessiongate"
)

// RequireSession guards a handler chain behind a verified session. The
// principal is re-verified here regardless of what the gate decided and
// stored in the request context for [sessiongate.PrincipalFromContext].
func RequireSession(engine *sessiongate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			p := engine.Session(r)
			if p == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := sessiongate.WithPrincipal(r.Context(), p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
