package middleware

import (
	"net/http"

	"parkproof/pkg/auth"
	apperrors "parkproof/pkg/errors"
	"parkproof/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

// OptionalIdentity attaches the caller identity when a valid bearer token
// is present and ignores it otherwise. Rate limiting keys off the result.
func OptionalIdentity(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := auth.BearerToken(r.Header.Get("Authorization")); raw != "" {
				if id, err := verifier.Verify(raw); err == nil {
					r = r.WithContext(auth.WithIdentity(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireIdentity guards a single route: the request must carry a valid
// bearer token.
func RequireIdentity(verifier *auth.Verifier, log *logger.Logger, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if _, ok := auth.FromContext(r.Context()); ok {
			next(w, r, ps)
			return
		}

		id, err := verifier.Verify(auth.BearerToken(r.Header.Get("Authorization")))
		if err != nil {
			log.Warn("Rejected unauthenticated request",
				"request_id", RequestID(r.Context()),
				"path", r.URL.Path,
				"error", err,
			)
			reject(w, log, r, apperrors.Unauthorized("Authentication required"))
			return
		}

		next(w, r.WithContext(auth.WithIdentity(r.Context(), id)), ps)
	}
}

// RequireRole is RequireIdentity plus a role check.
func RequireRole(verifier *auth.Verifier, log *logger.Logger, role string, next httprouter.Handle) httprouter.Handle {
	return RequireIdentity(verifier, log, func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, _ := auth.FromContext(r.Context())
		if id.Role != role {
			log.Warn("Rejected request for missing role",
				"request_id", RequestID(r.Context()),
				"path", r.URL.Path,
				"user_id", id.UserID,
				"role", id.Role,
				"required_role", role,
			)
			reject(w, log, r, apperrors.Forbidden("Insufficient permissions"))
			return
		}
		next(w, r, ps)
	})
}
