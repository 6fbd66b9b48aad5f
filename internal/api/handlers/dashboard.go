package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/portal-acara/server/internal/api/problem"
	"github.com/portal-acara/server/internal/domain/reporting"
)

type DashboardHandler struct {
	Service *reporting.Service
	Env     string
}

func NewDashboardHandler(service *reporting.Service, env string) *DashboardHandler {
	return &DashboardHandler{Service: service, Env: env}
}

// Stats returns the admin dashboard snapshot. The range query parameter
// selects the registration-trend window, defaulting to one month.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	trendRange := reporting.Range1Month
	if raw := strings.TrimSpace(r.URL.Query().Get("range")); raw != "" {
		trendRange = reporting.TrendRange(raw)
	}

	stats, err := h.Service.Dashboard(r.Context(), trendRange)
	if err != nil {
		if errors.Is(err, reporting.ErrUnknownRange) {
			writeFieldProblem(w, r, "range", "must be one of: 1w, 1m, 3m, 6m, 1y", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
