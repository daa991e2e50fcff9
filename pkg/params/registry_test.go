package params

import (
	"testing"

	"github.com/mtc-analytics/patlens/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yearParam(name string) types.ParameterDefinition {
	return types.ParameterDefinition{
		Name:   name,
		Kind:   types.ParameterNumber,
		Bounds: &types.Bounds{Min: 1990, Max: 2024},
	}
}

func TestCoerceNumber_Bounds(t *testing.T) {
	def := yearParam("year_start")

	v, err := Coerce(def, 2015)
	require.NoError(t, err)
	assert.Equal(t, types.Number(2015), v)

	_, err = Coerce(def, 1800)
	var validation *types.ErrParameterValidation
	assert.True(t, validation.From(err))

	_, err = Coerce(def, 2030)
	assert.True(t, validation.From(err))
}

func TestCoerceNumber_AcceptsStringAndFloat(t *testing.T) {
	def := yearParam("year_end")

	v, err := Coerce(def, "2020")
	require.NoError(t, err)
	assert.Equal(t, types.Number(2020), v)

	v, err = Coerce(def, float64(2020))
	require.NoError(t, err)
	assert.Equal(t, types.Number(2020), v)

	_, err = Coerce(def, "twenty")
	var validation *types.ErrParameterValidation
	assert.True(t, validation.From(err))
}

func TestCoerceRange_Ordering(t *testing.T) {
	def := types.ParameterDefinition{
		Name:   "period",
		Kind:   types.ParameterRange,
		Bounds: &types.Bounds{Min: 1990, Max: 2024},
	}

	v, err := Coerce(def, []any{2015, 2024})
	require.NoError(t, err)
	assert.Equal(t, types.Span{Lo: 2015, Hi: 2024}, v)

	// Inverted pair is rejected, not silently swapped
	_, err = Coerce(def, []any{2024, 2015})
	var validation *types.ErrParameterValidation
	require.True(t, validation.From(err))

	// CLI form
	v, err = Coerce(def, "2000:2010")
	require.NoError(t, err)
	assert.Equal(t, types.Span{Lo: 2000, Hi: 2010}, v)
}

func TestCoerceSingleSelect_NumericEquivalence(t *testing.T) {
	def := types.ParameterDefinition{
		Name:       "tech_field",
		Kind:       types.ParameterSingleSelect,
		OptionsRef: OptionSetTechFields,
	}

	// 13, "13" and 13.0 all match the same option
	for _, raw := range []any{13, "13", float64(13)} {
		v, err := Coerce(def, raw)
		require.NoError(t, err, "raw %v", raw)
		choice, ok := v.(types.Choice)
		require.True(t, ok)
		assert.Equal(t, "13", choice.Literal())
	}

	_, err := Coerce(def, 99)
	var validation *types.ErrParameterValidation
	assert.True(t, validation.From(err))
}

func TestCoerceMultiSelect_Shapes(t *testing.T) {
	def := types.ParameterDefinition{
		Name:       "jurisdictions",
		Kind:       types.ParameterMultiSelect,
		OptionsRef: OptionSetJurisdictions,
	}

	for _, raw := range []any{
		[]any{"EP", "US"},
		[]string{"EP", "US"},
		"EP,US",
	} {
		v, err := Coerce(def, raw)
		require.NoError(t, err, "raw %v", raw)
		assert.Equal(t, "('EP','US')", v.Literal())
	}

	_, err := Coerce(def, []any{"EP", "XX"})
	var validation *types.ErrParameterValidation
	assert.True(t, validation.From(err))
}

func TestBuildValueSet_DefaultsAndRequired(t *testing.T) {
	def := &types.QueryDefinition{
		Id: "Q01",
		Parameters: []types.ParameterDefinition{
			{Name: "year_start", Kind: types.ParameterNumber, Default: 2015},
			{Name: "applicant", Kind: types.ParameterText, Required: true},
			{Name: "tech_field", Kind: types.ParameterSingleSelect, OptionsRef: OptionSetTechFields},
		},
	}

	vals, err := BuildValueSet(def, map[string]any{"applicant": "SIEMENS"})
	require.NoError(t, err)
	assert.Equal(t, types.Number(2015), vals["year_start"])
	assert.Equal(t, types.Text("SIEMENS"), vals["applicant"])

	// Optional unset parameter stays absent
	assert.False(t, vals.Has("tech_field"))

	// Missing required value blocks execution
	_, err = BuildValueSet(def, nil)
	var validation *types.ErrParameterValidation
	require.True(t, validation.From(err))
	assert.Contains(t, err.Error(), "applicant")
}

func TestBuildValueSet_EmptyMultiSelectBehavesAsUnset(t *testing.T) {
	def := &types.QueryDefinition{
		Id: "Q02",
		Parameters: []types.ParameterDefinition{
			{Name: "jurisdictions", Kind: types.ParameterMultiSelect, OptionsRef: OptionSetJurisdictions, Default: []any{"EP", "US"}},
			{Name: "tech_fields", Kind: types.ParameterMultiSelect, OptionsRef: OptionSetTechFields},
		},
	}

	// Clearing a defaulted multi-select falls back to the default
	for _, raw := range []any{[]any{}, []string{}, ""} {
		vals, err := BuildValueSet(def, map[string]any{"jurisdictions": raw})
		require.NoError(t, err, "raw %#v", raw)
		assert.Equal(t, "('EP','US')", vals["jurisdictions"].Literal())
	}

	// Clearing one without a default leaves it absent, so its clause
	// toggles off and no empty IN-list can reach the display SQL
	vals, err := BuildValueSet(def, map[string]any{"tech_fields": []any{}})
	require.NoError(t, err)
	assert.False(t, vals.Has("tech_fields"))
}

func TestValidateDefinition(t *testing.T) {
	err := ValidateDefinition(types.ParameterDefinition{Name: "x", Kind: "enumish"})
	var invalid *types.ErrInvalidParameterDefinition
	assert.True(t, invalid.From(err))

	err = ValidateDefinition(types.ParameterDefinition{Name: "x", Kind: types.ParameterSingleSelect})
	assert.True(t, invalid.From(err), "select without options")

	err = ValidateDefinition(types.ParameterDefinition{
		Name: "x", Kind: types.ParameterNumber,
		Bounds: &types.Bounds{Min: 10, Max: 1},
	})
	assert.True(t, invalid.From(err), "inverted bounds")

	err = ValidateDefinition(types.ParameterDefinition{
		Name: "x", Kind: types.ParameterNumber,
		Bounds:  &types.Bounds{Min: 1990, Max: 2024},
		Default: 1234,
	})
	assert.True(t, invalid.From(err), "default outside bounds")

	err = ValidateDefinition(yearParam("year_start"))
	assert.NoError(t, err)
}

func TestOptionSets(t *testing.T) {
	sets := OptionSets()
	require.Contains(t, sets, OptionSetJurisdictions)
	require.Contains(t, sets, OptionSetTechFields)

	assert.Len(t, sets[OptionSetTechFields], 35)
	assert.Len(t, sets[OptionSetJurisdictions], 9)
}
