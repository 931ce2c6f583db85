package model

type CriteriaBuilder struct {
	specs   []Specification
	sorting []SortField
	page    uint
	size    uint
}

func NewCriteria() *CriteriaBuilder {
	return &CriteriaBuilder{
		specs: make([]Specification, 0),
		size:  DefaultPageSize,
	}
}

func (b *CriteriaBuilder) Where(field string, value any) *CriteriaBuilder {
	b.specs = append(b.specs, Eq(field, value))

	return b
}

// WhereNotBlank adds an equality predicate only when value is set and not blank.
func (b *CriteriaBuilder) WhereNotBlank(field string, value *string) *CriteriaBuilder {
	if isBlank(value) {
		return b
	}

	return b.Where(field, *value)
}

func (b *CriteriaBuilder) WhereIn(field string, values ...any) *CriteriaBuilder {
	b.specs = append(b.specs, In(field, values...))

	return b
}

func (b *CriteriaBuilder) WhereSpec(spec Specification) *CriteriaBuilder {
	b.specs = append(b.specs, spec)

	return b
}

func (b *CriteriaBuilder) OrderBy(field string, direction SortDirection) *CriteriaBuilder {
	b.sorting = append(b.sorting, SortField{Field: field, Direction: direction})

	return b
}

// Paginate sets the zero-indexed page window. A zero size keeps the default.
func (b *CriteriaBuilder) Paginate(page, size uint) *CriteriaBuilder {
	b.page = page

	if size > 0 {
		b.size = size
	}

	return b
}

// Build never yields a nil spec: no predicates means MatchAll.
func (b *CriteriaBuilder) Build() Criteria {
	var rootSpec Specification

	switch len(b.specs) {
	case 0:
		rootSpec = MatchAll()
	case 1:
		rootSpec = b.specs[0]
	default:
		rootSpec = Must(b.specs...)
	}

	return Criteria{
		spec:    rootSpec,
		sorting: b.sorting,
		page:    b.page,
		size:    b.size,
	}
}
