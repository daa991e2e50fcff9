package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Value is a validated, typed parameter value. The set of implementations is
// closed: one variant per ParameterKind, so downstream code dispatches on an
// explicit set of shapes instead of duck-typing a generic map.
type Value interface {
	Kind() ParameterKind

	// Literal renders the value as a SQL literal for the effective-SQL
	// display path. The executable path uses Bind instead.
	Literal() string

	// Bind returns the value in the shape expected by the backend client.
	Bind() any

	// Canonical returns a normalized string used for cache fingerprinting.
	// Multi-select elements are sorted and deduplicated so value-order
	// differences do not cause spurious cache misses.
	Canonical() string
}

// ValueSet binds parameter names to values for one execution attempt.
// It is constructed once per run and never mutated afterwards.
type ValueSet map[string]Value

// Has reports whether a value is present for the given parameter name.
func (vs ValueSet) Has(name string) bool {
	_, ok := vs[name]
	return ok
}

// Text is a text parameter value.
type Text string

func (Text) Kind() ParameterKind { return ParameterText }
func (t Text) Literal() string   { return quoteSQL(string(t)) }
func (t Text) Bind() any         { return string(t) }
func (t Text) Canonical() string { return "t:" + string(t) }

// Number is a numeric parameter value.
type Number float64

func (Number) Kind() ParameterKind { return ParameterNumber }
func (n Number) Literal() string   { return formatNumber(float64(n)) }
func (n Number) Bind() any         { return bindNumber(float64(n)) }
func (n Number) Canonical() string { return "n:" + formatNumber(float64(n)) }

// Choice is a single-select value holding the chosen option's underlying
// value (string or number).
type Choice struct {
	V any
}

func (Choice) Kind() ParameterKind { return ParameterSingleSelect }
func (c Choice) Literal() string   { return literalOf(c.V) }
func (c Choice) Bind() any         { return bindOf(c.V) }
func (c Choice) Canonical() string { return "c:" + literalOf(c.V) }

// MultiChoice is a multi-select value holding a subset of an option set's
// underlying values.
type MultiChoice struct {
	Vs []any
}

func (MultiChoice) Kind() ParameterKind { return ParameterMultiSelect }

// sorted returns the elements deduplicated and ordered by literal form.
func (m MultiChoice) sorted() []any {
	seen := make(map[string]bool, len(m.Vs))
	out := make([]any, 0, len(m.Vs))
	for _, v := range m.Vs {
		key := literalOf(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return literalOf(out[i]) < literalOf(out[j]) })
	return out
}

func (m MultiChoice) Literal() string {
	parts := make([]string, 0, len(m.Vs))
	for _, v := range m.sorted() {
		parts = append(parts, literalOf(v))
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func (m MultiChoice) Bind() any {
	vals := m.sorted()
	out := make([]any, 0, len(vals))
	for _, v := range vals {
		out = append(out, bindOf(v))
	}
	return out
}

func (m MultiChoice) Canonical() string { return "m:" + m.Literal() }

// Span is a range value, an ordered (lo, hi) pair with lo <= hi.
type Span struct {
	Lo float64
	Hi float64
}

func (Span) Kind() ParameterKind { return ParameterRange }

// Literal renders the BETWEEN form. Templates normally reference a range
// parameter through its _start/_end tokens, which the renderer substitutes
// with the lo and hi literals individually.
func (s Span) Literal() string {
	return formatNumber(s.Lo) + " AND " + formatNumber(s.Hi)
}

func (s Span) Bind() any { return []any{bindNumber(s.Lo), bindNumber(s.Hi)} }

func (s Span) Canonical() string {
	return "r:" + formatNumber(s.Lo) + ".." + formatNumber(s.Hi)
}

// LoLiteral and HiLiteral render the two sides for _start/_end substitution.
func (s Span) LoLiteral() string { return formatNumber(s.Lo) }
func (s Span) HiLiteral() string { return formatNumber(s.Hi) }

func quoteSQL(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// bindNumber narrows integral floats back to int64 so the backend receives
// INT64 parameters for year-style values.
func bindNumber(f float64) any {
	if f == float64(int64(f)) {
		return int64(f)
	}
	return f
}

func literalOf(v any) string {
	switch t := v.(type) {
	case string:
		return quoteSQL(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return formatNumber(t)
	default:
		return quoteSQL(fmt.Sprintf("%v", t))
	}
}

func bindOf(v any) any {
	if f, ok := v.(float64); ok {
		return bindNumber(f)
	}
	return v
}
