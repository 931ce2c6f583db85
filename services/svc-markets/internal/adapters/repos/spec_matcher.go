package repos

import (
	"cmp"
	"reflect"
	"time"

	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
)

// satisfies evaluates spec against market in process.
func satisfies(spec model.Specification, market *model.Market) bool {
	if spec == nil {
		return true
	}

	switch spec.Operator() {
	case model.SpecOpAll:
		return true

	case model.SpecOpEq:
		return equalValues(fieldValue(market, spec.Field()), spec.Value())

	case model.SpecOpIn:
		values, _ := spec.Value().([]any)
		actual := fieldValue(market, spec.Field())

		for _, value := range values {
			if equalValues(actual, value) {
				return true
			}
		}

		return false

	case model.SpecOpMust:
		for _, child := range spec.Children() {
			if !satisfies(child, market) {
				return false
			}
		}

		return true

	case model.SpecOpShould:
		for _, child := range spec.Children() {
			if satisfies(child, market) {
				return true
			}
		}

		return false

	case model.SpecOpMustNot:
		for _, child := range spec.Children() {
			if satisfies(child, market) {
				return false
			}
		}

		return true
	}

	return false
}

// fieldValue returns the named field normalised to string, int64 or time.Time.
// Absent optional fields yield nil.
func fieldValue(market *model.Market, field string) any {
	switch field {
	case model.FieldID:
		return market.ID.String()
	case model.FieldLegacyIdentifier:
		return int64(market.LegacyIdentifier)
	case model.FieldLongitude:
		return market.Longitude
	case model.FieldLatitude:
		return market.Latitude
	case model.FieldSetCens:
		return market.SetCens
	case model.FieldArea:
		return market.Area
	case model.FieldDistrictCode:
		return int64(market.DistrictCode)
	case model.FieldDistrict:
		return market.District
	case model.FieldTownCode:
		return int64(market.TownCode)
	case model.FieldTown:
		return market.Town
	case model.FieldFirstZone:
		return market.FirstZone
	case model.FieldSecondZone:
		return market.SecondZone
	case model.FieldName:
		return market.Name
	case model.FieldRegistryCode:
		return market.RegistryCode
	case model.FieldPublicArea:
		return market.PublicArea
	case model.FieldNumber:
		return derefString(market.Number)
	case model.FieldNeighborhood:
		return market.Neighborhood
	case model.FieldReference:
		return derefString(market.Reference)
	case model.FieldCreatedAt:
		return market.CreatedAt
	case model.FieldUpdatedAt:
		if market.UpdatedAt == nil {
			return nil
		}

		return *market.UpdatedAt
	}

	return nil
}

func derefString(s *string) any {
	if s == nil {
		return nil
	}

	return *s
}

func equalValues(actual, expected any) bool {
	return compareValues(actual, normalise(expected)) == 0
}

func normalise(value any) any {
	switch v := value.(type) {
	case model.MarketID:
		return v.String()
	case *string:
		return derefString(v)
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	}

	return value
}

// compareValues orders nil first, then values of the same kind naturally.
// Values of different kinds compare by kind name.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y)
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	}

	return cmp.Compare(reflect.TypeOf(a).String(), reflect.TypeOf(b).String())
}
