package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/portal-acara/server/internal/api/middleware"
	"github.com/portal-acara/server/internal/api/problem"
	"github.com/portal-acara/server/internal/domain/approval"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func pathParam(r *http.Request, key string) string {
	if r == nil {
		return ""
	}
	return r.PathValue(key)
}

// requireActor pulls the authenticated actor from context, writing a 401
// problem when the auth middleware did not run.
func requireActor(w http.ResponseWriter, r *http.Request, env string) (approval.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", problem.ErrUnauthorized, env)
		return approval.Actor{}, false
	}
	return actor, true
}
