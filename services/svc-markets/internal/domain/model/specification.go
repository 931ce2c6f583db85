package model

type SpecOperator string

const (
	SpecOpAll     SpecOperator = "all"
	SpecOpEq      SpecOperator = "eq"
	SpecOpIn      SpecOperator = "in"
	SpecOpMust    SpecOperator = "must"
	SpecOpShould  SpecOperator = "should"
	SpecOpMustNot SpecOperator = "must_not"
)

// Specification is a store-agnostic predicate tree. Adapters translate it
// into their native query language.
type Specification interface {
	Must(other Specification) Specification
	Should(other Specification) Specification
	MustNot() Specification
	IsComposite() bool
	Children() []Specification
	Operator() SpecOperator
	Field() string
	Value() any
}
