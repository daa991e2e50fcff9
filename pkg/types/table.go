package types

import "time"

// ColumnType classifies result columns for presentation and export.
type ColumnType string

const (
	ColumnTypeString    ColumnType = "string"
	ColumnTypeInteger   ColumnType = "integer"
	ColumnTypeFloat     ColumnType = "float"
	ColumnTypeBool      ColumnType = "bool"
	ColumnTypeDate      ColumnType = "date"
	ColumnTypeTimestamp ColumnType = "timestamp"
)

// Numeric reports whether the column holds a numeric metric.
func (t ColumnType) Numeric() bool {
	return t == ColumnTypeInteger || t == ColumnTypeFloat
}

// Column describes one result column.
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// ResultTable is a rectangular table of typed columns returned by the query
// backend. Row cells are positionally aligned with Columns.
type ResultTable struct {
	Columns []Column `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Empty reports whether the table has zero rows. An empty table is a
// recognized outcome, not an error.
func (t *ResultTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// NumRows returns the row count.
func (t *ResultTable) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *ResultTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// CachedResult is one execution-cache entry: the result table plus the time
// it was computed. At most one entry exists per fingerprint.
type CachedResult struct {
	Table    *ResultTable  `json:"table"`
	CachedAt time.Time     `json:"cached_at"`
	Duration time.Duration `json:"duration"`
}
