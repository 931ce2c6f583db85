package model

type baseSpec struct {
	self Specification
}

func (b *baseSpec) setSelf(s Specification) { b.self = s }

func (b *baseSpec) Must(other Specification) Specification {
	return &mustSpec{specs: []Specification{b.self, other}}
}
func (b *baseSpec) Should(other Specification) Specification {
	return &shouldSpec{specs: []Specification{b.self, other}}
}
func (b *baseSpec) MustNot() Specification    { return &mustNotSpec{spec: b.self} }
func (b *baseSpec) IsComposite() bool         { return false }
func (b *baseSpec) Children() []Specification { return nil }

type allSpec struct {
	baseSpec
}

// MatchAll is satisfied by every market.
func MatchAll() Specification {
	s := &allSpec{}
	s.setSelf(s)

	return s
}

// Must drops the always-true side, so MatchAll().Must(x) is just x.
func (s *allSpec) Must(other Specification) Specification { return other }
func (s *allSpec) Operator() SpecOperator                 { return SpecOpAll }
func (s *allSpec) Field() string                          { return "" }
func (s *allSpec) Value() any                             { return nil }

type eqSpec struct {
	baseSpec
	field string
	value any
}

func Eq(field string, value any) Specification {
	s := &eqSpec{field: field, value: value}
	s.setSelf(s)

	return s
}

func (s *eqSpec) Operator() SpecOperator { return SpecOpEq }
func (s *eqSpec) Field() string          { return s.field }
func (s *eqSpec) Value() any             { return s.value }

type inSpec struct {
	baseSpec
	field  string
	values []any
}

func In(field string, values ...any) Specification {
	s := &inSpec{field: field, values: values}
	s.setSelf(s)

	return s
}

func (s *inSpec) Operator() SpecOperator { return SpecOpIn }
func (s *inSpec) Field() string          { return s.field }
func (s *inSpec) Value() any             { return s.values }
