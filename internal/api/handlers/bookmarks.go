package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/portal-acara/server/internal/api/problem"
	"github.com/portal-acara/server/internal/domain/bookmarks"
)

// BookmarksHandler serves the saved-events surface. Saving and removing
// are directional and idempotent: repeating a request converges on the
// same state instead of flip-flopping.
type BookmarksHandler struct {
	Service *bookmarks.Service
	Assets  AssetURLs
	Env     string
}

func NewBookmarksHandler(service *bookmarks.Service, assets AssetURLs, env string) *BookmarksHandler {
	return &BookmarksHandler{Service: service, Assets: assets, Env: env}
}

type saveBookmarkRequest struct {
	EventID string `json:"event_id" validate:"required"`
}

type bookmarkStateResponse struct {
	EventID string `json:"event_id"`
	Saved   bool   `json:"saved"`
}

func (h *BookmarksHandler) Save(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.Env)
	if !ok {
		return
	}

	var req saveBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationProblem(w, r, err, h.Env)
		return
	}

	outcome, err := h.Service.Toggle(r.Context(), actor.ID, req.EventID, true)
	if err != nil {
		h.writeToggleProblem(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bookmarkStateResponse{EventID: req.EventID, Saved: outcome == bookmarks.OutcomeSaved})
}

func (h *BookmarksHandler) Remove(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.Env)
	if !ok {
		return
	}

	eventID, ok := ValidateAndExtractULID(w, r, "eventId", h.Env)
	if !ok {
		return
	}

	if _, err := h.Service.Toggle(r.Context(), actor.ID, eventID, false); err != nil {
		h.writeToggleProblem(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bookmarkStateResponse{EventID: eventID, Saved: false})
}

func (h *BookmarksHandler) Check(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.Env)
	if !ok {
		return
	}

	eventID, ok := ValidateAndExtractULID(w, r, "eventId", h.Env)
	if !ok {
		return
	}

	saved, err := h.Service.IsSaved(r.Context(), actor.ID, eventID)
	if err != nil {
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, bookmarkStateResponse{EventID: eventID, Saved: saved})
}

func (h *BookmarksHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.Env)
	if !ok {
		return
	}

	result, err := h.Service.ListSaved(r.Context(), actor.ID, parsePagination(r))
	if err != nil {
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, eventListResponse{Items: newEventViews(result.Events, h.Assets), Total: result.Total})
}

func (h *BookmarksHandler) writeToggleProblem(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, bookmarks.ErrEventNotFound) {
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Event not found", err, h.Env)
		return
	}
	problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
}
