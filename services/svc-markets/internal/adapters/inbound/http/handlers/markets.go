package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/architeacher/markets/pkg/circuitbreaker"
	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
	"github.com/architeacher/markets/services/svc-markets/internal/usecases"
	"github.com/architeacher/markets/services/svc-markets/internal/usecases/commands"
	"github.com/architeacher/markets/services/svc-markets/internal/usecases/queries"
	"github.com/go-chi/chi/v5"
)

const (
	PathParamID           = "id"
	PathParamRegistryCode = "registryCode"

	msgInvalidRequestBody = "invalid request body"
	msgInternalError      = "internal server error"
	msgUnavailable        = "market store temporarily unavailable"
)

type MarketsHandler struct {
	app       *usecases.Application
	validator *requestValidator
	logger    logger.Logger
	basePath  string
}

func NewMarketsHandler(app *usecases.Application, basePath string, log logger.Logger) *MarketsHandler {
	return &MarketsHandler{
		app:       app,
		validator: newRequestValidator(),
		logger:    log.WithComponent("markets-handler"),
		basePath:  basePath,
	}
}

// CreateMarket always answers 201, also when the registry code was already
// known and the stored market is returned.
func (h *MarketsHandler) CreateMarket(w http.ResponseWriter, r *http.Request) {
	var req CreateMarketRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.app.Commands.CreateMarket.Handle(r.Context(), commands.CreateMarketCommand{Market: req.toModel()})
	if err != nil {
		h.writeServiceError(w, r, err, "")

		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/markets/%s", h.basePath, result.Market.ID))
	writeJSONResponse(w, http.StatusCreated, toMarketResponse(result.Market))
}

func (h *MarketsHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, PathParamID)

	id, err := model.ParseMarketID(rawID)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, fmt.Sprintf("market with id %s not found", rawID))

		return
	}

	market, err := h.app.Queries.GetMarket.Execute(r.Context(), queries.GetMarketQuery{ID: id})
	if err != nil {
		h.writeServiceError(w, r, err, fmt.Sprintf("market with id %s not found", id))

		return
	}

	writeJSONResponse(w, http.StatusOK, toMarketResponse(market))
}

func (h *MarketsHandler) UpdateMarket(w http.ResponseWriter, r *http.Request) {
	registryCode := chi.URLParam(r, PathParamRegistryCode)

	var req UpdateMarketRequest
	if !h.decode(w, r, &req) {
		return
	}

	market, err := h.app.Commands.UpdateMarket.Handle(r.Context(), commands.UpdateMarketCommand{
		RegistryCode: registryCode,
		Payload:      req.toModel(),
	})
	if err != nil {
		h.writeServiceError(w, r, err, registryCodeNotFound(registryCode))

		return
	}

	writeJSONResponse(w, http.StatusOK, toMarketResponse(market))
}

func (h *MarketsHandler) DeleteMarket(w http.ResponseWriter, r *http.Request) {
	registryCode := chi.URLParam(r, PathParamRegistryCode)

	_, err := h.app.Commands.DeleteMarket.Handle(r.Context(), commands.DeleteMarketCommand{RegistryCode: registryCode})
	if err != nil {
		h.writeServiceError(w, r, err, registryCodeNotFound(registryCode))

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MarketsHandler) SearchMarkets(w http.ResponseWriter, r *http.Request) {
	criteria, page, err := parseSearchParams(r.URL.Query())
	if err != nil {
		h.writeServiceError(w, r, err, "")

		return
	}

	result, err := h.app.Queries.SearchMarkets.Execute(r.Context(), queries.SearchMarketsQuery{
		Criteria: criteria,
		Page:     page,
	})
	if err != nil {
		h.writeServiceError(w, r, err, "")

		return
	}

	writeJSONResponse(w, http.StatusOK, toPageResponse(result))
}

// decode reads and validates the JSON body into dst, answering 400 itself on failure.
func (h *MarketsHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, msgInvalidRequestBody)

		return false
	}

	if err := h.validator.Validate(dst); err != nil {
		h.writeServiceError(w, r, err, "")

		return false
	}

	return true
}

func (h *MarketsHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMessage string) {
	var validationErrs *model.ValidationErrors

	switch {
	case errors.As(err, &validationErrs):
		writeJSONResponse(w, http.StatusBadRequest, toValidationErrorResponse(validationErrs))
	case errors.Is(err, model.ErrMarketNotFound):
		writeErrorResponse(w, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, circuitbreaker.ErrCircuitOpen),
		errors.Is(err, circuitbreaker.ErrTooManyRequests),
		errors.Is(err, model.ErrDatabaseConnection):
		log := h.logger.WithContext(r.Context())
		log.Warn().Err(err).Msg("market store unavailable")
		writeErrorResponse(w, http.StatusServiceUnavailable, msgUnavailable)
	default:
		log := h.logger.WithContext(r.Context())
		log.Error().Err(err).Msg("request failed")
		writeErrorResponse(w, http.StatusInternalServerError, msgInternalError)
	}
}

func registryCodeNotFound(registryCode string) string {
	return fmt.Sprintf("market with registry code %s not found", registryCode)
}
