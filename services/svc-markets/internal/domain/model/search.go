package model

import "strings"

// Store field names that search criteria and sorting refer to.
const (
	FieldID               = "id"
	FieldLegacyIdentifier = "legacyIdentifier"
	FieldLongitude        = "longitude"
	FieldLatitude         = "latitude"
	FieldSetCens          = "setCens"
	FieldArea             = "area"
	FieldDistrictCode     = "districtCode"
	FieldDistrict         = "district"
	FieldTownCode         = "townCode"
	FieldTown             = "town"
	FieldFirstZone        = "firstZone"
	FieldSecondZone       = "secondZone"
	FieldName             = "name"
	FieldRegistryCode     = "registryCode"
	FieldPublicArea       = "publicArea"
	FieldNumber           = "number"
	FieldNeighborhood     = "neighborhood"
	FieldReference        = "reference"
	FieldCreatedAt        = "createdAt"
	FieldUpdatedAt        = "updatedAt"
)

// SortableFields lists the properties a search may be ordered by.
var SortableFields = map[string]struct{}{
	FieldID: {}, FieldLegacyIdentifier: {}, FieldLongitude: {}, FieldLatitude: {},
	FieldSetCens: {}, FieldArea: {}, FieldDistrictCode: {}, FieldDistrict: {},
	FieldTownCode: {}, FieldTown: {}, FieldFirstZone: {}, FieldSecondZone: {},
	FieldName: {}, FieldRegistryCode: {}, FieldPublicArea: {}, FieldNumber: {},
	FieldNeighborhood: {}, FieldReference: {}, FieldCreatedAt: {}, FieldUpdatedAt: {},
}

// SearchCriteria is a sparse filter. Nil or blank fields are ignored and the
// remaining ones must all match.
type SearchCriteria struct {
	District     *string
	FirstZone    *string
	Name         *string
	Neighborhood *string
}

func (c SearchCriteria) IsEmpty() bool {
	return isBlank(c.District) && isBlank(c.FirstZone) && isBlank(c.Name) && isBlank(c.Neighborhood)
}

const (
	DefaultPageSize uint = 10
	// MaxPageSize matches the largest page the legacy catalog served.
	MaxPageSize uint = 2000
)

// PageRequest addresses a zero-indexed page.
type PageRequest struct {
	Number uint
	Size   uint
	Sort   []SortField
}

func DefaultPageRequest() PageRequest {
	return PageRequest{Size: DefaultPageSize}
}

type Page[T any] struct {
	Content          []T
	TotalElements    uint
	TotalPages       uint
	NumberOfElements uint
	Number           uint
	Size             uint
}

func NewPage[T any](content []T, totalElements uint, request PageRequest) *Page[T] {
	if content == nil {
		content = make([]T, 0)
	}

	size := request.Size
	if size == 0 {
		size = DefaultPageSize
	}

	return &Page[T]{
		Content:          content,
		TotalElements:    totalElements,
		TotalPages:       (totalElements + size - 1) / size,
		NumberOfElements: uint(len(content)),
		Number:           request.Number,
		Size:             size,
	}
}

// FromSearchCriteria translates a sparse filter and page request into Criteria.
func FromSearchCriteria(criteria SearchCriteria, page PageRequest) Criteria {
	builder := NewCriteria().
		WhereNotBlank(FieldDistrict, criteria.District).
		WhereNotBlank(FieldFirstZone, criteria.FirstZone).
		WhereNotBlank(FieldName, criteria.Name).
		WhereNotBlank(FieldNeighborhood, criteria.Neighborhood)

	for _, sort := range page.Sort {
		builder.OrderBy(sort.Field, sort.Direction)
	}

	builder.Paginate(page.Number, page.Size)

	return builder.Build()
}

func isBlank(value *string) bool {
	return value == nil || strings.TrimSpace(*value) == ""
}
