package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
)

const (
	contentTypeHeader = "Content-Type"
	applicationJSON   = "application/json"
)

type (
	MarketResponse struct {
		ID               string     `json:"id"`
		LegacyIdentifier int        `json:"legacyIdentifier"`
		Longitude        int64      `json:"longitude"`
		Latitude         int64      `json:"latitude"`
		SetCens          int64      `json:"setCens"`
		Area             int64      `json:"area"`
		DistrictCode     int        `json:"districtCode"`
		District         string     `json:"district"`
		TownCode         int        `json:"townCode"`
		Town             string     `json:"town"`
		FirstZone        string     `json:"firstZone"`
		SecondZone       string     `json:"secondZone"`
		Name             string     `json:"name"`
		RegistryCode     string     `json:"registryCode"`
		PublicArea       string     `json:"publicArea"`
		Number           *string    `json:"number,omitempty"`
		Neighborhood     string     `json:"neighborhood"`
		Reference        *string    `json:"reference,omitempty"`
		CreatedAt        time.Time  `json:"createdAt"`
		UpdatedAt        *time.Time `json:"updatedAt,omitempty"`
	}

	PageResponse struct {
		Content          []MarketResponse `json:"content"`
		TotalElements    uint             `json:"totalElements"`
		TotalPages       uint             `json:"totalPages"`
		NumberOfElements uint             `json:"numberOfElements"`
		// Number is 1-indexed, as requested.
		Number uint `json:"number"`
		Size   uint `json:"size"`
	}

	ErrorResponse struct {
		Message string `json:"message"`
	}

	FieldError struct {
		Field   string `json:"field"`
		Value   any    `json:"value"`
		Message string `json:"message"`
	}

	ValidationErrorResponse struct {
		Errors []FieldError `json:"errors"`
	}
)

func toMarketResponse(market *model.Market) MarketResponse {
	return MarketResponse{
		ID:               market.ID.String(),
		LegacyIdentifier: market.LegacyIdentifier,
		Longitude:        market.Longitude,
		Latitude:         market.Latitude,
		SetCens:          market.SetCens,
		Area:             market.Area,
		DistrictCode:     market.DistrictCode,
		District:         market.District,
		TownCode:         market.TownCode,
		Town:             market.Town,
		FirstZone:        market.FirstZone,
		SecondZone:       market.SecondZone,
		Name:             market.Name,
		RegistryCode:     market.RegistryCode,
		PublicArea:       market.PublicArea,
		Number:           market.Number,
		Neighborhood:     market.Neighborhood,
		Reference:        market.Reference,
		CreatedAt:        market.CreatedAt,
		UpdatedAt:        market.UpdatedAt,
	}
}

func toPageResponse(page *model.Page[*model.Market]) PageResponse {
	content := make([]MarketResponse, 0, len(page.Content))
	for _, market := range page.Content {
		content = append(content, toMarketResponse(market))
	}

	return PageResponse{
		Content:          content,
		TotalElements:    page.TotalElements,
		TotalPages:       page.TotalPages,
		NumberOfElements: page.NumberOfElements,
		Number:           page.Number + 1,
		Size:             page.Size,
	}
}

func toValidationErrorResponse(errs *model.ValidationErrors) ValidationErrorResponse {
	fieldErrs := make([]FieldError, 0, len(errs.Errors))
	for _, err := range errs.Errors {
		fieldErrs = append(fieldErrs, FieldError{
			Field:   err.Field,
			Value:   err.Value,
			Message: err.Message,
		})
	}

	return ValidationErrorResponse{Errors: fieldErrs}
}

func writeJSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set(contentTypeHeader, applicationJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeErrorResponse(w http.ResponseWriter, status int, message string) {
	writeJSONResponse(w, status, ErrorResponse{Message: message})
}
