package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/portal-acara/server/internal/api/problem"
	"github.com/portal-acara/server/internal/domain/events"
)

// AdminEventsHandler serves event management after review: the managed
// listing, retraction of published events and hard deletion.
type AdminEventsHandler struct {
	Events *events.AdminService
	Assets AssetURLs
	Env    string
}

func NewAdminEventsHandler(adminEvents *events.AdminService, assets AssetURLs, env string) *AdminEventsHandler {
	return &AdminEventsHandler{Events: adminEvents, Assets: assets, Env: env}
}

func (h *AdminEventsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Events.ListManaged(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, eventListResponse{Items: newEventViews(items, h.Assets), Total: len(items)})
}

type retractRequest struct {
	Reason string `json:"reason"`
}

// Retract takes a published event off the public surface with a mandatory
// reason. The poster asset is disposed of best-effort.
func (h *AdminEventsHandler) Retract(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.Env)
	if !ok {
		return
	}

	eventID, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	var req retractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	event, err := h.Events.Retract(r.Context(), actor.ID, eventID, req.Reason)
	if err != nil {
		var verr events.ValidationError
		switch {
		case errors.As(err, &verr):
			writeFieldProblem(w, r, verr.Field, verr.Message, err, h.Env)
		case errors.Is(err, events.ErrNotFound):
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, h.Env)
		case errors.Is(err, events.ErrInvalidTransition):
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Only published events can be retracted", err, h.Env)
		default:
			problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		}
		return
	}

	writeJSON(w, http.StatusOK, newEventView(event, h.Assets))
}

func (h *AdminEventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.Env)
	if !ok {
		return
	}

	eventID, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	if err := h.Events.HardDelete(r.Context(), actor.ID, eventID); err != nil {
		if errors.Is(err, events.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
