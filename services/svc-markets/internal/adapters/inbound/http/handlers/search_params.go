package handlers

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
)

const (
	paramPage = "page"
	paramSize = "size"
	paramSort = "sort"
)

// parseSearchParams reads filters, the 1-indexed page, size and sort from
// query. Sort values look like "name" or "name,desc".
func parseSearchParams(query url.Values) (model.SearchCriteria, model.PageRequest, error) {
	criteria := model.SearchCriteria{
		District:     optionalParam(query, model.FieldDistrict),
		FirstZone:    optionalParam(query, model.FieldFirstZone),
		Name:         optionalParam(query, model.FieldName),
		Neighborhood: optionalParam(query, model.FieldNeighborhood),
	}

	page := model.DefaultPageRequest()
	errs := model.NewValidationErrors()

	if raw := query.Get(paramPage); raw != "" {
		number, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || number < 1 {
			errs.Add(paramPage, raw, "must be a positive integer")
		} else {
			page.Number = uint(number) - 1
		}
	}

	if raw := query.Get(paramSize); raw != "" {
		size, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || size < 1 || uint(size) > model.MaxPageSize {
			errs.Add(paramSize, raw, "must be between 1 and "+strconv.FormatUint(uint64(model.MaxPageSize), 10))
		} else {
			page.Size = uint(size)
		}
	}

	for _, raw := range query[paramSort] {
		sortField, ok := parseSort(raw)
		if !ok {
			errs.Add(paramSort, raw, "must be a market property optionally followed by ,asc or ,desc")

			continue
		}

		page.Sort = append(page.Sort, sortField)
	}

	if errs.HasErrors() {
		return model.SearchCriteria{}, model.PageRequest{}, errs
	}

	return criteria, page, nil
}

func parseSort(raw string) (model.SortField, bool) {
	property, direction, hasDirection := strings.Cut(raw, ",")
	property = strings.TrimSpace(property)

	if _, ok := model.SortableFields[property]; !ok {
		return model.SortField{}, false
	}

	sortField := model.SortField{Field: property, Direction: model.SortAsc}
	if !hasDirection {
		return sortField, true
	}

	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "asc":
	case "desc":
		sortField.Direction = model.SortDesc
	default:
		return model.SortField{}, false
	}

	return sortField, true
}

func optionalParam(query url.Values, name string) *string {
	if !query.Has(name) {
		return nil
	}

	value := query.Get(name)

	return &value
}
