package middleware

import (
	"context"
	"net/http"

	"slotly/pkg/auth"
	"slotly/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

const CallerEmailKey contextKey = "caller_email"

// RequireIdentity guards a route with a bearer JWT. The email claim of a valid token is
// stored in the request context for the handler to pass on as the caller identity.
func RequireIdentity(secret string, log *logger.Logger) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			raw, ok := auth.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
				return
			}

			claims, err := auth.ParseToken(raw, secret)
			if err != nil {
				logger.FromContext(r.Context(), log).Info("Rejected bearer token",
					"path", r.URL.Path,
					"error", err,
				)
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid bearer token")
				return
			}

			ctx := context.WithValue(r.Context(), CallerEmailKey, claims.Email)
			next(w, r.WithContext(ctx), ps)
		}
	}
}

func CallerEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(CallerEmailKey).(string)
	return email, ok && email != ""
}
