package template

import "strings"

// Optional clause fragments are author-written segments wrapped in braces,
// e.g. `{AND field = @tech_field}`. A fragment is included verbatim (braces
// stripped) when every parameter it references has a value, and omitted
// entirely otherwise. Nesting is not supported; braces inside string
// literals and comments are left alone.

// resolveFragments performs the renderer's first pass: clause-inclusion
// resolution. keep reports whether the tokens referenced inside a fragment
// are all set.
func resolveFragments(sql string, keep func(tokens []string) bool) string {
	var out strings.Builder
	out.Grow(len(sql))

	i := 0
	n := len(sql)
	for i < n {
		c := sql[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			end := skipQuoted(sql, i, c)
			out.WriteString(sql[i:end])
			i = end
		case c == '#' || (c == '-' && i+1 < n && sql[i+1] == '-'):
			end := skipLine(sql, i)
			out.WriteString(sql[i:end])
			i = end
		case c == '/' && i+1 < n && sql[i+1] == '*':
			end := skipBlockComment(sql, i)
			out.WriteString(sql[i:end])
			i = end
		case c == '{':
			end := findFragmentEnd(sql, i)
			if end < 0 {
				// Unbalanced brace: pass through untouched.
				out.WriteByte(c)
				i++
				continue
			}
			inner := sql[i+1 : end]
			if keep(Scan(inner)) {
				out.WriteString(inner)
			}
			i = end + 1
		default:
			out.WriteByte(c)
			i++
		}
	}

	return out.String()
}

// findFragmentEnd locates the closing brace of a fragment opened at open,
// skipping strings and comments inside the fragment. Returns -1 when the
// fragment never closes.
func findFragmentEnd(sql string, open int) int {
	i := open + 1
	n := len(sql)
	for i < n {
		c := sql[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(sql, i, c)
		case c == '#' || (c == '-' && i+1 < n && sql[i+1] == '-'):
			i = skipLine(sql, i)
		case c == '/' && i+1 < n && sql[i+1] == '*':
			i = skipBlockComment(sql, i)
		case c == '}':
			return i
		default:
			i++
		}
	}
	return -1
}
