package handlers

import (
	"net/http"

	"github.com/architeacher/markets/services/svc-markets/internal/usecases"
	"github.com/architeacher/markets/services/svc-markets/internal/usecases/queries"
)

type HealthHandler struct {
	app *usecases.Application
}

func NewHealthHandler(app *usecases.Application) *HealthHandler {
	return &HealthHandler{app: app}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchLiveness.Execute(r.Context(), queries.FetchLivenessQuery{})
	if err != nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, err.Error())

		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchReadiness.Execute(r.Context(), queries.FetchReadinessQuery{})
	if err != nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, err.Error())

		return
	}

	status := http.StatusOK
	if !result.Ready {
		status = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, status, result)
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchHealthReport.Execute(r.Context(), queries.FetchHealthReportQuery{})
	if err != nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, err.Error())

		return
	}

	status := http.StatusOK
	if result.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, status, result)
}
