package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/portal-acara/server/internal/api/problem"
	"github.com/portal-acara/server/internal/domain/events"
)

// PublicEventsHandler serves the anonymous browsing surface: published
// events only, pending and rejected are invisible here.
type PublicEventsHandler struct {
	Service *events.Service
	Assets  AssetURLs
	Env     string
}

func NewPublicEventsHandler(service *events.Service, assets AssetURLs, env string) *PublicEventsHandler {
	return &PublicEventsHandler{Service: service, Assets: assets, Env: env}
}

func (h *PublicEventsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := events.Filters{
		CategorySlug: strings.TrimSpace(r.URL.Query().Get("kategori")),
		Query:        strings.TrimSpace(r.URL.Query().Get("q")),
	}

	result, err := h.Service.ListPublished(r.Context(), filters, parsePagination(r))
	if err != nil {
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, eventListResponse{
		Items: newEventViews(result.Events, h.Assets),
		Total: result.Total,
	})
}

func (h *PublicEventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(pathParam(r, "slug"))
	if slug == "" {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", FilterError{Field: "slug", Message: "missing"}, h.Env)
		return
	}

	event, err := h.Service.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, newEventView(event, h.Assets))
}
