package middleware

import (
	"context"
	"net/http"

	"github.com/portal-acara/server/internal/api/problem"
	"github.com/portal-acara/server/internal/auth"
	"github.com/portal-acara/server/internal/domain/approval"
)

type contextKeyAuth string

const actorKey contextKeyAuth = "actor"

// ActorFromContext returns the authenticated actor, if any.
func ActorFromContext(ctx context.Context) (approval.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(approval.Actor)
	return actor, ok
}

// WithActor stores the actor in ctx. Exposed for handler tests.
func WithActor(ctx context.Context, actor approval.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// BearerAuth validates the Authorization header and stores the actor in
// the request context. Requests without a valid token are rejected.
func BearerAuth(tokens *auth.JWTManager, environment string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", problem.ErrUnauthorized, environment)
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", problem.ErrUnauthorized, environment)
				return
			}

			actor := approval.Actor{
				ID:   claims.Subject,
				Role: auth.NormalizeRole(claims.Role),
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireAdmin rejects non-admin actors. It must run after BearerAuth.
func RequireAdmin(environment string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", problem.ErrUnauthorized, environment)
				return
			}
			if actor.Role != auth.RoleAdmin {
				problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Forbidden", problem.ErrForbidden, environment)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
