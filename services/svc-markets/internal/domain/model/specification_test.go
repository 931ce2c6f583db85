package model_test

import (
	"testing"

	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
	"github.com/stretchr/testify/require"
)

func TestLeafSpecs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		spec          model.Specification
		expectedOp    model.SpecOperator
		expectedField string
		expectedValue any
	}{
		{
			name:          "equality on text",
			spec:          model.Eq(model.FieldDistrict, "VILA FORMOSA"),
			expectedOp:    model.SpecOpEq,
			expectedField: model.FieldDistrict,
			expectedValue: "VILA FORMOSA",
		},
		{
			name:          "equality on code",
			spec:          model.Eq(model.FieldDistrictCode, 87),
			expectedOp:    model.SpecOpEq,
			expectedField: model.FieldDistrictCode,
			expectedValue: 87,
		},
		{
			name:          "membership",
			spec:          model.In(model.FieldFirstZone, "Leste", "Sul"),
			expectedOp:    model.SpecOpIn,
			expectedField: model.FieldFirstZone,
			expectedValue: []any{"Leste", "Sul"},
		},
		{
			name:       "match all",
			spec:       model.MatchAll(),
			expectedOp: model.SpecOpAll,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expectedOp, tc.spec.Operator())
			require.Equal(t, tc.expectedField, tc.spec.Field())
			require.Equal(t, tc.expectedValue, tc.spec.Value())
			require.False(t, tc.spec.IsComposite())
			require.Nil(t, tc.spec.Children())
		})
	}
}

func TestMustSpec_FlattensNestedConjunctions(t *testing.T) {
	t.Parallel()

	district := model.Eq(model.FieldDistrict, "VILA FORMOSA")
	zone := model.Eq(model.FieldFirstZone, "Leste")
	name := model.Eq(model.FieldName, "VILA FORMOSA")

	spec := model.Must(model.Must(district, zone), name)

	require.Equal(t, model.SpecOpMust, spec.Operator())
	require.True(t, spec.IsComposite())
	require.Equal(t, []model.Specification{district, zone, name}, spec.Children())
}

func TestMustSpec_ChainingDoesNotAlias(t *testing.T) {
	t.Parallel()

	base := model.Must(
		model.Eq(model.FieldDistrict, "VILA FORMOSA"),
		model.Eq(model.FieldFirstZone, "Leste"),
	)

	left := base.Must(model.Eq(model.FieldName, "A"))
	right := base.Must(model.Eq(model.FieldName, "B"))

	require.Len(t, left.Children(), 3)
	require.Len(t, right.Children(), 3)
	require.Equal(t, "A", left.Children()[2].Value())
	require.Equal(t, "B", right.Children()[2].Value())
}

func TestShouldSpec(t *testing.T) {
	t.Parallel()

	leste := model.Eq(model.FieldFirstZone, "Leste")
	sul := model.Eq(model.FieldFirstZone, "Sul")

	spec := leste.Should(sul)

	require.Equal(t, model.SpecOpShould, spec.Operator())
	require.Equal(t, []model.Specification{leste, sul}, spec.Children())

	norte := model.Eq(model.FieldFirstZone, "Norte")
	extended := spec.Should(norte)

	require.Len(t, extended.Children(), 3)
	require.Len(t, spec.Children(), 2)
}

func TestMustNotSpec(t *testing.T) {
	t.Parallel()

	leste := model.Eq(model.FieldFirstZone, "Leste")

	negated := leste.MustNot()
	require.Equal(t, model.SpecOpMustNot, negated.Operator())
	require.Equal(t, []model.Specification{leste}, negated.Children())

	require.Same(t, leste, negated.MustNot())
	require.Same(t, leste, model.MustNot(leste).MustNot())
}

func TestMatchAll_IsIdentityForMust(t *testing.T) {
	t.Parallel()

	leste := model.Eq(model.FieldFirstZone, "Leste")

	require.Same(t, leste, model.MatchAll().Must(leste))
}

func TestLeafChaining(t *testing.T) {
	t.Parallel()

	district := model.Eq(model.FieldDistrict, "VILA FORMOSA")
	zone := model.Eq(model.FieldFirstZone, "Leste")

	spec := district.Must(zone)

	require.Equal(t, model.SpecOpMust, spec.Operator())
	require.Equal(t, []model.Specification{district, zone}, spec.Children())
}
