package presentation

import (
	"testing"

	"github.com/mtc-analytics/patlens/pkg/types"
	"github.com/stretchr/testify/assert"
)

func applicantTable() *types.ResultTable {
	return &types.ResultTable{
		Columns: []types.Column{
			{Name: "applicant", Type: types.ColumnTypeString},
			{Name: "filings", Type: types.ColumnTypeInteger},
		},
		Rows: [][]any{
			{"SIEMENS", int64(1234)},
			{"BOSCH", int64(900)},
			{"BASF", int64(609)},
		},
	}
}

func TestSummarize_LeaderHeadline(t *testing.T) {
	s := Summarize(applicantTable())

	assert.Equal(t, "SIEMENS leads with 1,234 (45.0% of total)", s.Headline)
	assert.Equal(t, 3, s.RowCount)
	assert.False(t, s.Empty)
}

func TestSummarize_RowCountFallback(t *testing.T) {
	// No label column, only metrics
	table := &types.ResultTable{
		Columns: []types.Column{
			{Name: "yr_count", Type: types.ColumnTypeInteger},
			{Name: "grant_count", Type: types.ColumnTypeInteger},
		},
		Rows: [][]any{{int64(10), int64(4)}, {int64(12), int64(5)}},
	}

	s := Summarize(table)
	assert.Equal(t, "2 results found", s.Headline)
	assert.Equal(t, 2, s.RowCount)
}

func TestSummarize_Empty(t *testing.T) {
	table := &types.ResultTable{
		Columns: []types.Column{{Name: "n", Type: types.ColumnTypeInteger}},
	}

	s := Summarize(table)
	assert.True(t, s.Empty)
	assert.Equal(t, NoDataRemedy, s.Headline)
	assert.Equal(t, 0, s.RowCount)

	assert.True(t, Summarize(nil).Empty)
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "0", groupThousands(0))
	assert.Equal(t, "999", groupThousands(999))
	assert.Equal(t, "1,000", groupThousands(1000))
	assert.Equal(t, "1,234,567", groupThousands(1234567))
	assert.Equal(t, "-12,345", groupThousands(-12345))
}

func TestBuildChartSpec_LineForYearAxis(t *testing.T) {
	table := &types.ResultTable{
		Columns: []types.Column{
			{Name: "filing_year", Type: types.ColumnTypeInteger},
			{Name: "n", Type: types.ColumnTypeInteger},
		},
		Rows: [][]any{{int64(2018), int64(10)}, {int64(2019), int64(12)}},
	}

	spec := BuildChartSpec(table, "Patent filings trend")
	assert.Equal(t, "line", spec.Type)
	assert.Equal(t, "filing_year", spec.XColumn)
	assert.Equal(t, "n", spec.YColumn)
	assert.Equal(t, "Patent filings trend", spec.Title)
	assert.Equal(t, "#C8102E", spec.Palette[0])
}

func TestBuildChartSpec_BarForCategoricalLabels(t *testing.T) {
	spec := BuildChartSpec(applicantTable(), "Top applicants")
	assert.Equal(t, "bar", spec.Type)
	assert.Equal(t, "applicant", spec.XColumn)
	assert.Equal(t, "filings", spec.YColumn)
}

func TestBuildChartSpec_YearValuedIntegerColumn(t *testing.T) {
	// Column not named like a year, but every value sits in the year window
	table := &types.ResultTable{
		Columns: []types.Column{
			{Name: "period", Type: types.ColumnTypeInteger},
			{Name: "n", Type: types.ColumnTypeInteger},
		},
		Rows: [][]any{{int64(2015), int64(3)}, {int64(2016), int64(4)}},
	}
	assert.Equal(t, "line", BuildChartSpec(table, "t").Type)

	table.Rows = [][]any{{int64(13), int64(3)}, {int64(25), int64(4)}}
	assert.Equal(t, "bar", BuildChartSpec(table, "t").Type)
}

func TestBuildChartSpec_NilCases(t *testing.T) {
	assert.Nil(t, BuildChartSpec(nil, "t"))

	empty := &types.ResultTable{Columns: []types.Column{{Name: "n", Type: types.ColumnTypeInteger}}}
	assert.Nil(t, BuildChartSpec(empty, "t"))

	noMetric := &types.ResultTable{
		Columns: []types.Column{{Name: "name", Type: types.ColumnTypeString}},
		Rows:    [][]any{{"a"}},
	}
	assert.Nil(t, BuildChartSpec(noMetric, "t"))
}
