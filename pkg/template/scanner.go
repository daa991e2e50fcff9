// Package template implements the placeholder layer for query templates:
// a lexical scanner for @name tokens and a two-pass renderer that resolves
// optional clause fragments and substitutes parameter values.
package template

import "strings"

// Placeholder syntax: '@' followed by one or more identifier characters
// ([A-Za-z0-9_]), case-sensitive. This is a wire-format contract; exported
// SQL must either preserve tokens verbatim (template form) or contain zero
// of them (literal-substituted form).

// Scan returns the distinct placeholder tokens in the template, in first-
// appearance order. Tokens inside string literals ('...', "...", `...`),
// line comments (-- and #), and block comments (/* */) are ignored, so an
// '@' in an email address or comment never produces a false positive.
func Scan(sql string) []string {
	var tokens []string
	seen := make(map[string]bool)

	forEachToken(sql, func(name string, start, end int) {
		if !seen[name] {
			seen[name] = true
			tokens = append(tokens, name)
		}
	})

	return tokens
}

// forEachToken walks the template with a small lexer and invokes fn for each
// @name token found outside strings and comments. start/end delimit the full
// token including the '@'.
func forEachToken(sql string, fn func(name string, start, end int)) {
	i := 0
	n := len(sql)
	for i < n {
		c := sql[i]
		switch {
		case c == '\'':
			i = skipQuoted(sql, i, '\'')
		case c == '"':
			i = skipQuoted(sql, i, '"')
		case c == '`':
			i = skipQuoted(sql, i, '`')
		case c == '#':
			i = skipLine(sql, i)
		case c == '-' && i+1 < n && sql[i+1] == '-':
			i = skipLine(sql, i)
		case c == '/' && i+1 < n && sql[i+1] == '*':
			i = skipBlockComment(sql, i)
		case c == '@':
			j := i + 1
			for j < n && isIdentChar(sql[j]) {
				j++
			}
			if j > i+1 {
				fn(sql[i+1:j], i, j)
			}
			i = j
		default:
			i++
		}
	}
}

// skipQuoted advances past a quoted region. Both doubled quotes ('') and
// backslash escapes are honored; an unterminated literal runs to the end.
func skipQuoted(sql string, start int, quote byte) int {
	i := start + 1
	n := len(sql)
	for i < n {
		switch sql[i] {
		case '\\':
			i += 2
		case quote:
			if i+1 < n && sql[i+1] == quote {
				i += 2
				continue
			}
			return i + 1
		default:
			i++
		}
	}
	return n
}

func skipLine(sql string, start int) int {
	if idx := strings.IndexByte(sql[start:], '\n'); idx >= 0 {
		return start + idx + 1
	}
	return len(sql)
}

func skipBlockComment(sql string, start int) int {
	if idx := strings.Index(sql[start+2:], "*/"); idx >= 0 {
		return start + 2 + idx + 2
	}
	return len(sql)
}

func isIdentChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
