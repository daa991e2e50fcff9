package presentation

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mtc-analytics/patlens/pkg/types"
)

// WriteCSV streams the full table, header row first. Dates render as
// 2006-01-02, timestamps as RFC 3339, floats with trailing zeros trimmed.
func WriteCSV(w io.Writer, table *types.ResultTable) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col.Name
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = cellString(row[i])
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// CSVFilename builds the download name for a query result. The id is kept
// verbatim; the title is lowercased with separators flattened, so Q01
// "Patent Filings Trend" becomes Q01_patent_filings_trend.csv.
func CSVFilename(queryId, title string) string {
	name := strings.ToLower(title)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	return fmt.Sprintf("%s_%s.csv", queryId, name)
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", t)
	}
}
