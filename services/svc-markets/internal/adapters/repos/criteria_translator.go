package repos

import (
	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const idField = "_id"

var fieldMapping = map[string]string{
	model.FieldID:               idField,
	model.FieldLegacyIdentifier: "legacyIdentifier",
	model.FieldLongitude:        "longitude",
	model.FieldLatitude:         "latitude",
	model.FieldSetCens:          "setCens",
	model.FieldArea:             "area",
	model.FieldDistrictCode:     "districtCode",
	model.FieldDistrict:         "district",
	model.FieldTownCode:         "townCode",
	model.FieldTown:             "town",
	model.FieldFirstZone:        "firstZone",
	model.FieldSecondZone:       "secondZone",
	model.FieldName:             "name",
	model.FieldRegistryCode:     "registryCode",
	model.FieldPublicArea:       "publicArea",
	model.FieldNumber:           "number",
	model.FieldNeighborhood:     "neighborhood",
	model.FieldReference:        "reference",
	model.FieldCreatedAt:        "createdAt",
	model.FieldUpdatedAt:        "updatedAt",
}

// CriteriaTranslator renders domain criteria as MongoDB filters and find options.
type CriteriaTranslator struct {
	logger *logger.Logger
}

func NewCriteriaTranslator(log *logger.Logger) *CriteriaTranslator {
	return &CriteriaTranslator{logger: log}
}

// Filter renders the criteria spec. MatchAll and a nil spec yield the empty document.
func (t *CriteriaTranslator) Filter(criteria model.Criteria) bson.D {
	if criteria.Spec() == nil {
		return bson.D{}
	}

	return t.translateSpec(criteria.Spec())
}

// FindOptions applies ordering and the page window. Results are always
// ordered by _id last so pages are stable.
func (t *CriteriaTranslator) FindOptions(criteria model.Criteria) *options.FindOptions {
	return options.Find().
		SetSort(t.sort(criteria)).
		SetSkip(int64(criteria.Offset())).
		SetLimit(int64(criteria.Size()))
}

func (t *CriteriaTranslator) translateSpec(spec model.Specification) bson.D {
	switch spec.Operator() {
	case model.SpecOpAll:
		return bson.D{}

	case model.SpecOpEq:
		field := t.field(spec.Field())

		return bson.D{{Key: field, Value: t.value(field, spec.Value())}}

	case model.SpecOpIn:
		field := t.field(spec.Field())

		values, _ := spec.Value().([]any)
		converted := make(bson.A, 0, len(values))

		for _, value := range values {
			converted = append(converted, t.value(field, value))
		}

		return bson.D{{Key: field, Value: bson.D{{Key: "$in", Value: converted}}}}

	case model.SpecOpMust:
		return bson.D{{Key: "$and", Value: t.translateChildren(spec)}}

	case model.SpecOpShould:
		return bson.D{{Key: "$or", Value: t.translateChildren(spec)}}

	case model.SpecOpMustNot:
		return bson.D{{Key: "$nor", Value: t.translateChildren(spec)}}
	}

	if t.logger != nil {
		t.logger.Warn().
			Str("operator", string(spec.Operator())).
			Msg("unsupported specification operator, matching nothing")
	}

	return bson.D{{Key: idField, Value: bson.D{{Key: "$exists", Value: false}}}}
}

func (t *CriteriaTranslator) translateChildren(spec model.Specification) bson.A {
	children := spec.Children()
	translated := make(bson.A, 0, len(children))

	for _, child := range children {
		translated = append(translated, t.translateSpec(child))
	}

	return translated
}

func (t *CriteriaTranslator) field(name string) string {
	if mapped, ok := fieldMapping[name]; ok {
		return mapped
	}

	return name
}

func (t *CriteriaTranslator) value(field string, value any) any {
	if field != idField {
		return value
	}

	var hex string

	switch v := value.(type) {
	case string:
		hex = v
	case model.MarketID:
		hex = v.String()
	default:
		return value
	}

	if oid, err := primitive.ObjectIDFromHex(hex); err == nil {
		return oid
	}

	return value
}

func (t *CriteriaTranslator) sort(criteria model.Criteria) bson.D {
	sort := make(bson.D, 0, len(criteria.Sorting())+1)
	sortedByID := false

	for _, s := range criteria.Sorting() {
		field, ok := fieldMapping[s.Field]
		if !ok {
			if t.logger != nil {
				t.logger.Warn().
					Str("field", s.Field).
					Str("fallback", idField).
					Msg("unknown sort field requested, falling back to default")
			}

			continue
		}

		direction := 1
		if s.Direction == model.SortDesc {
			direction = -1
		}

		sort = append(sort, bson.E{Key: field, Value: direction})
		sortedByID = sortedByID || field == idField
	}

	if !sortedByID {
		sort = append(sort, bson.E{Key: idField, Value: 1})
	}

	return sort
}
