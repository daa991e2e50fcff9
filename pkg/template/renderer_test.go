package template

import (
	"testing"

	"github.com/mtc-analytics/patlens/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trendDefinition() *types.QueryDefinition {
	return &types.QueryDefinition{
		Id:       "Q01",
		Title:    "Patent filings trend",
		Template: "SELECT COUNT(*) AS n FROM t WHERE yr BETWEEN @year_start AND @year_end AND auth IN UNNEST(@jurisdictions)",
		Parameters: []types.ParameterDefinition{
			{Name: "year_start", Kind: types.ParameterNumber},
			{Name: "year_end", Kind: types.ParameterNumber},
			{Name: "jurisdictions", Kind: types.ParameterMultiSelect, Options: []types.Option{
				{Label: "EPO", Value: "EP"},
				{Label: "USPTO", Value: "US"},
				{Label: "CNIPA", Value: "CN"},
			}},
		},
	}
}

func TestRender_BindsAndEffectiveSQL(t *testing.T) {
	def := trendDefinition()
	vals := types.ValueSet{
		"year_start":    types.Number(2018),
		"year_end":      types.Number(2020),
		"jurisdictions": types.MultiChoice{Vs: []any{"US", "EP"}},
	}

	rendered, err := Render(def, vals)
	require.NoError(t, err)

	// Executable form keeps tokens intact
	assert.Equal(t, def.Template, rendered.Query)

	require.Len(t, rendered.Binds, 3)
	assert.Equal(t, types.BindParameter{Name: "year_start", Value: int64(2018)}, rendered.Binds[0])
	assert.Equal(t, types.BindParameter{Name: "year_end", Value: int64(2020)}, rendered.Binds[1])
	assert.Equal(t, "jurisdictions", rendered.Binds[2].Name)
	assert.True(t, rendered.Binds[2].Array)
	assert.Equal(t, []any{"EP", "US"}, rendered.Binds[2].Value)

	// Display form: literals substituted, UNNEST collapsed, elements sorted
	assert.Equal(t,
		"SELECT COUNT(*) AS n FROM t WHERE yr BETWEEN 2018 AND 2020 AND auth IN ('EP','US')",
		rendered.EffectiveSQL)
}

func TestRender_OptionalClauseToggling(t *testing.T) {
	def := &types.QueryDefinition{
		Id:       "Q02",
		Template: "SELECT 1 FROM t WHERE yr = @year {AND field = @tech_field}",
		Parameters: []types.ParameterDefinition{
			{Name: "year", Kind: types.ParameterNumber},
			{Name: "tech_field", Kind: types.ParameterSingleSelect, Options: []types.Option{{Label: "Medical technology", Value: 13}}},
		},
	}

	// Unset optional parameter drops the clause
	rendered, err := Render(def, types.ValueSet{"year": types.Number(2020)})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 FROM t WHERE yr = 2020", rendered.EffectiveSQL)
	require.Len(t, rendered.Binds, 1)

	// Set optional parameter keeps it
	rendered, err = Render(def, types.ValueSet{
		"year":       types.Number(2020),
		"tech_field": types.Choice{V: 13},
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 FROM t WHERE yr = 2020 AND field = 13", rendered.EffectiveSQL)
	require.Len(t, rendered.Binds, 2)
	assert.Equal(t, 13, rendered.Binds[1].Value)
}

func TestRender_RangeParameterTokens(t *testing.T) {
	def := &types.QueryDefinition{
		Id:       "Q03",
		Template: "SELECT 1 FROM t WHERE yr BETWEEN @period_start AND @period_end",
		Parameters: []types.ParameterDefinition{
			{Name: "period", Kind: types.ParameterRange},
		},
	}

	rendered, err := Render(def, types.ValueSet{"period": types.Span{Lo: 2015, Hi: 2024}})
	require.NoError(t, err)

	require.Len(t, rendered.Binds, 2)
	assert.Equal(t, types.BindParameter{Name: "period_start", Value: int64(2015)}, rendered.Binds[0])
	assert.Equal(t, types.BindParameter{Name: "period_end", Value: int64(2024)}, rendered.Binds[1])
	assert.Equal(t, "SELECT 1 FROM t WHERE yr BETWEEN 2015 AND 2024", rendered.EffectiveSQL)
}

func TestRender_TextLiteralQuoting(t *testing.T) {
	def := &types.QueryDefinition{
		Id:       "Q04",
		Template: "SELECT 1 FROM t WHERE name LIKE @applicant",
		Parameters: []types.ParameterDefinition{
			{Name: "applicant", Kind: types.ParameterText},
		},
	}

	rendered, err := Render(def, types.ValueSet{"applicant": types.Text("L'OREAL")})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 FROM t WHERE name LIKE 'L''OREAL'", rendered.EffectiveSQL)
	assert.Equal(t, "L'OREAL", rendered.Binds[0].Value)
}

func TestRender_MissingValueIsUnresolved(t *testing.T) {
	def := trendDefinition()
	_, err := Render(def, types.ValueSet{"year_start": types.Number(2018)})

	var unresolved *types.ErrUnresolvedPlaceholder
	assert.True(t, unresolved.From(err))
}

func TestRender_SharedPrefixTokensSubstitutedIndependently(t *testing.T) {
	def := &types.QueryDefinition{
		Id:       "Q05",
		Template: "SELECT 1 FROM t WHERE a = @year AND b = @year_start",
		Parameters: []types.ParameterDefinition{
			{Name: "year", Kind: types.ParameterNumber},
			{Name: "year_start", Kind: types.ParameterNumber},
		},
	}

	rendered, err := Render(def, types.ValueSet{
		"year":       types.Number(1999),
		"year_start": types.Number(2001),
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 FROM t WHERE a = 1999 AND b = 2001", rendered.EffectiveSQL)
}

func TestRender_TokensInsideStringsAndCommentsStayVerbatim(t *testing.T) {
	def := &types.QueryDefinition{
		Id: "Q06",
		Template: "SELECT '@note' AS marker, @note AS v -- compare against @note\n" +
			"FROM t WHERE auth IN UNNEST(@jurisdictions)",
		Parameters: []types.ParameterDefinition{
			{Name: "note", Kind: types.ParameterText},
			{Name: "jurisdictions", Kind: types.ParameterMultiSelect, Options: []types.Option{
				{Label: "EPO", Value: "EP"},
				{Label: "USPTO", Value: "US"},
			}},
		},
	}

	rendered, err := Render(def, types.ValueSet{
		"note":          types.Text("hi"),
		"jurisdictions": types.MultiChoice{Vs: []any{"EP"}},
	})
	require.NoError(t, err)

	// Quoted and commented occurrences survive literal substitution intact
	assert.Equal(t,
		"SELECT '@note' AS marker, 'hi' AS v -- compare against @note\n"+
			"FROM t WHERE auth IN ('EP')",
		rendered.EffectiveSQL)

	require.Len(t, rendered.Binds, 2)
	assert.Equal(t, "hi", rendered.Binds[0].Value)
}

func TestDeclaredTokens_RangeExpansion(t *testing.T) {
	tokens := DeclaredTokens([]types.ParameterDefinition{
		{Name: "period", Kind: types.ParameterRange},
		{Name: "year", Kind: types.ParameterNumber},
	})

	assert.Equal(t, map[string]string{
		"period_start": "period",
		"period_end":   "period",
		"year":         "year",
	}, tokens)
}
