package model

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

type (
	SortField struct {
		Field     string
		Direction SortDirection
	}

	// Criteria is a built query: a predicate tree plus ordering and a
	// zero-indexed page window.
	Criteria struct {
		spec    Specification
		sorting []SortField
		page    uint
		size    uint
	}
)

func (c Criteria) Spec() Specification  { return c.spec }
func (c Criteria) Sorting() []SortField { return c.sorting }
func (c Criteria) Page() uint           { return c.page }
func (c Criteria) Size() uint           { return c.size }
func (c Criteria) Offset() uint         { return c.page * c.size }
func (c Criteria) HasSorting() bool     { return len(c.sorting) > 0 }
