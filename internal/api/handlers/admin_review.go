package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/portal-acara/server/internal/api/problem"
	"github.com/portal-acara/server/internal/domain/events"
	"github.com/portal-acara/server/internal/domain/organizers"
)

// AdminReviewHandler serves the two validation queues: organizer
// registrations and event proposals. Decisions are terminal; a decided
// item rejects a second decision with 409.
type AdminReviewHandler struct {
	Organizers *organizers.Service
	Events     *events.AdminService
	Assets     AssetURLs
	Env        string
}

func NewAdminReviewHandler(organizersService *organizers.Service, adminEvents *events.AdminService, assets AssetURLs, env string) *AdminReviewHandler {
	return &AdminReviewHandler{
		Organizers: organizersService,
		Events:     adminEvents,
		Assets:     assets,
		Env:        env,
	}
}

type decisionRequest struct {
	Outcome string `json:"outcome" validate:"required"`
	Note    string `json:"note"`
}

func (h *AdminReviewHandler) PendingOrganizers(w http.ResponseWriter, r *http.Request) {
	links, err := h.Organizers.ListPending(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	views := make([]linkView, 0, len(links))
	for i := range links {
		views = append(views, newLinkView(&links[i], h.Assets))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": views, "total": len(views)})
}

func (h *AdminReviewHandler) DecideOrganizer(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.Env)
	if !ok {
		return
	}

	linkID, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	outcome, valid := organizers.ParseLinkStatus(req.Outcome)
	if !valid || outcome == organizers.StatusPending {
		writeFieldProblem(w, r, "outcome", "must be approved or rejected", FilterError{Field: "outcome", Message: "must be approved or rejected"}, h.Env)
		return
	}

	link, err := h.Organizers.Decide(r.Context(), actor.ID, linkID, outcome, req.Note)
	if err != nil {
		var verr organizers.ValidationError
		switch {
		case errors.As(err, &verr):
			writeFieldProblem(w, r, verr.Field, verr.Message, err, h.Env)
		case errors.Is(err, organizers.ErrNotFound):
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, h.Env)
		case errors.Is(err, organizers.ErrInvalidTransition):
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Submission already decided", err, h.Env)
		default:
			problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		}
		return
	}

	writeJSON(w, http.StatusOK, newLinkView(link, h.Assets))
}

func (h *AdminReviewHandler) PendingEvents(w http.ResponseWriter, r *http.Request) {
	items, err := h.Events.ListPending(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, eventListResponse{Items: newEventViews(items, h.Assets), Total: len(items)})
}

func (h *AdminReviewHandler) DecideEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.Env)
	if !ok {
		return
	}

	eventID, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	outcome, valid := events.ParseStatus(req.Outcome)
	if !valid || outcome == events.StatusPending {
		writeFieldProblem(w, r, "outcome", "must be published or rejected", FilterError{Field: "outcome", Message: "must be published or rejected"}, h.Env)
		return
	}

	event, err := h.Events.Decide(r.Context(), actor.ID, eventID, outcome, req.Note)
	if err != nil {
		writeEventDecisionProblem(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, newEventView(event, h.Assets))
}

func writeEventDecisionProblem(w http.ResponseWriter, r *http.Request, err error, env string) {
	var verr events.ValidationError
	switch {
	case errors.As(err, &verr):
		writeFieldProblem(w, r, verr.Field, verr.Message, err, env)
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, env)
	case errors.Is(err, events.ErrInvalidTransition):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Event already decided", err, env)
	default:
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, env)
	}
}
