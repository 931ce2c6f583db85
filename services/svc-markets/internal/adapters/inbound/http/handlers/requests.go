package handlers

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
	"github.com/go-playground/validator/v10"
)

type (
	// MarketFields are the mutable market attributes shared by create and update payloads.
	MarketFields struct {
		LegacyIdentifier int     `json:"legacyIdentifier" validate:"gt=0"`
		Longitude        *int64  `json:"longitude" validate:"required"`
		Latitude         *int64  `json:"latitude" validate:"required"`
		SetCens          *int64  `json:"setCens" validate:"required"`
		Area             int64   `json:"area" validate:"gt=0"`
		DistrictCode     int     `json:"districtCode" validate:"gt=0"`
		District         string  `json:"district" validate:"required"`
		TownCode         int     `json:"townCode" validate:"gt=0"`
		Town             string  `json:"town" validate:"required"`
		FirstZone        string  `json:"firstZone" validate:"required"`
		SecondZone       string  `json:"secondZone" validate:"required"`
		Name             string  `json:"name" validate:"required"`
		PublicArea       string  `json:"publicArea" validate:"required"`
		Number           *string `json:"number,omitempty"`
		Neighborhood     string  `json:"neighborhood" validate:"required"`
		Reference        *string `json:"reference,omitempty"`
	}

	CreateMarketRequest struct {
		MarketFields
		RegistryCode string `json:"registryCode" validate:"required"`
	}

	// UpdateMarketRequest carries no registry code; the path supplies it.
	UpdateMarketRequest struct {
		MarketFields
	}

	requestValidator struct {
		validate *validator.Validate
	}
)

func newRequestValidator() *requestValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return &requestValidator{validate: validate}
}

// Validate returns *model.ValidationErrors with one entry per violated rule.
func (v *requestValidator) Validate(request any) error {
	err := v.validate.Struct(request)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	validationErrs := model.NewValidationErrors()
	for _, fieldErr := range fieldErrs {
		validationErrs.Add(fieldErr.Field(), fieldValue(fieldErr.Value()), ruleMessage(fieldErr))
	}

	return validationErrs
}

func fieldValue(value any) any {
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}

		return rv.Elem().Interface()
	}

	return value
}

func ruleMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		if fieldErr.Kind() == reflect.String {
			return "must not be empty"
		}

		return "must not be null"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fieldErr.Param())
	default:
		return fmt.Sprintf("failed the %q rule", fieldErr.Tag())
	}
}

func (f MarketFields) toModel() *model.Market {
	return &model.Market{
		LegacyIdentifier: f.LegacyIdentifier,
		Longitude:        derefInt64(f.Longitude),
		Latitude:         derefInt64(f.Latitude),
		SetCens:          derefInt64(f.SetCens),
		Area:             f.Area,
		DistrictCode:     f.DistrictCode,
		District:         f.District,
		TownCode:         f.TownCode,
		Town:             f.Town,
		FirstZone:        f.FirstZone,
		SecondZone:       f.SecondZone,
		Name:             f.Name,
		PublicArea:       f.PublicArea,
		Number:           f.Number,
		Neighborhood:     f.Neighborhood,
		Reference:        f.Reference,
	}
}

func (r CreateMarketRequest) toModel() *model.Market {
	market := r.MarketFields.toModel()
	market.RegistryCode = r.RegistryCode

	return market
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}

	return *v
}
