// Package presentation derives user-facing output from result tables: a
// one-sentence headline, a chart specification, and CSV export bytes.
package presentation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mtc-analytics/patlens/pkg/types"
)

// NoDataRemedy is shown whenever a run produces zero rows. An empty result
// is a recognized outcome, so the message tells the user what to change.
const NoDataRemedy = "No data for the current filters. Try widening the year range or selecting more jurisdictions."

// Summary is the headline block rendered above a result table.
type Summary struct {
	Headline string `json:"headline"`
	RowCount int    `json:"row_count"`
	Empty    bool   `json:"empty"`
}

// Summarize builds the headline for a table. The first numeric column is
// the metric and the first non-numeric column is the label. When the top
// label's share of the metric total is computable the headline names it;
// otherwise it falls back to a plain row count.
func Summarize(table *types.ResultTable) Summary {
	if table == nil || table.Empty() {
		return Summary{Headline: NoDataRemedy, Empty: true}
	}

	n := table.NumRows()
	s := Summary{RowCount: n}

	metricIdx, labelIdx := primaryColumns(table)
	if metricIdx < 0 || labelIdx < 0 {
		s.Headline = fmt.Sprintf("%s results found", groupThousands(int64(n)))
		return s
	}

	var total, top float64
	topRow := -1
	for i, row := range table.Rows {
		v, ok := cellFloat(row[metricIdx])
		if !ok {
			continue
		}
		total += v
		if topRow < 0 || v > top {
			top, topRow = v, i
		}
	}
	if topRow < 0 || total <= 0 {
		s.Headline = fmt.Sprintf("%s results found", groupThousands(int64(n)))
		return s
	}

	label := strings.TrimSpace(fmt.Sprintf("%v", table.Rows[topRow][labelIdx]))
	share := top / total * 100
	s.Headline = fmt.Sprintf("%s leads with %s (%.1f%% of total)", label, formatMetric(top), share)
	return s
}

// primaryColumns returns the indices of the first numeric and the first
// non-numeric column, or -1 when absent.
func primaryColumns(table *types.ResultTable) (metric, label int) {
	metric, label = -1, -1
	for i, col := range table.Columns {
		if col.Type.Numeric() {
			if metric < 0 {
				metric = i
			}
		} else if label < 0 {
			label = i
		}
	}
	return metric, label
}

func cellFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func formatMetric(f float64) string {
	if f == float64(int64(f)) {
		return groupThousands(int64(f))
	}
	return strconv.FormatFloat(f, 'f', 1, 64)
}

// groupThousands renders 1234567 as "1,234,567".
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
