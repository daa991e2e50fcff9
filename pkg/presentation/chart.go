package presentation

import (
	"strings"

	"github.com/mtc-analytics/patlens/pkg/types"
)

// EPO brand palette, primary red first.
var EPOPalette = []string{"#C8102E", "#6D6E71", "#A6093D", "#8B8D8E", "#D4495B", "#B0B1B3"}

// ChartSpec tells a frontend how to plot a result table. It is data, not a
// rendered image; clients draw it with whatever charting library they use.
type ChartSpec struct {
	Type    string   `json:"type"`
	XColumn string   `json:"x_column"`
	YColumn string   `json:"y_column"`
	Title   string   `json:"title"`
	Palette []string `json:"palette"`
}

// BuildChartSpec proposes a chart for the table, or nil when the table has
// no numeric column to plot. Year sequences get a line chart, categorical
// labels a bar chart.
func BuildChartSpec(table *types.ResultTable, title string) *ChartSpec {
	if table == nil || table.Empty() {
		return nil
	}

	metricIdx, labelIdx := primaryColumns(table)
	if metricIdx < 0 {
		return nil
	}

	spec := &ChartSpec{
		Type:    "bar",
		YColumn: table.Columns[metricIdx].Name,
		Title:   title,
		Palette: EPOPalette,
	}

	// A numeric-only table still plots: the metric doubles as its own axis.
	xIdx := labelIdx
	if xIdx < 0 {
		for i := range table.Columns {
			if i != metricIdx {
				xIdx = i
				break
			}
		}
	}
	if xIdx < 0 {
		xIdx = metricIdx
	}
	spec.XColumn = table.Columns[xIdx].Name

	if isYearAxis(table, xIdx) {
		spec.Type = "line"
	}
	return spec
}

// isYearAxis reports whether a column holds a year sequence: a year-ish name
// or integer values that all fall in a plausible year window.
func isYearAxis(table *types.ResultTable, idx int) bool {
	col := table.Columns[idx]
	name := strings.ToLower(col.Name)
	if strings.Contains(name, "year") || name == "yr" || strings.Contains(name, "filing_date") {
		return true
	}
	if col.Type != types.ColumnTypeInteger && col.Type != types.ColumnTypeString {
		return col.Type == types.ColumnTypeDate || col.Type == types.ColumnTypeTimestamp
	}

	for _, row := range table.Rows {
		f, ok := cellFloat(row[idx])
		if !ok || f != float64(int64(f)) || f < 1900 || f > 2100 {
			return false
		}
	}
	return true
}
