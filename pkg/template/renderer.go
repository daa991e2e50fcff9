package template

import (
	"strings"

	"github.com/mtc-analytics/patlens/pkg/types"
)

const (
	rangeStartSuffix = "_start"
	rangeEndSuffix   = "_end"
)

// Rendered is the output of rendering a query against a value set.
type Rendered struct {
	// Query is the fragment-resolved template with @name tokens left
	// intact: the executable form, sent to the backend together with
	// Binds. Values are never spliced into this text.
	Query string

	// Binds carries one named parameter per distinct token in Query.
	Binds []types.BindParameter

	// EffectiveSQL is the literal-substituted, human-readable rendering
	// used for transparency display and export. It contains zero
	// placeholder tokens.
	EffectiveSQL string
}

// DeclaredTokens maps every placeholder token a parameter list can satisfy
// to its owning parameter name. A range parameter `period` satisfies
// `period_start` and `period_end`; referencing a range parameter through its
// bare name is not supported.
func DeclaredTokens(defs []types.ParameterDefinition) map[string]string {
	tokens := make(map[string]string, len(defs))
	for _, p := range defs {
		if p.Kind == types.ParameterRange {
			tokens[p.Name+rangeStartSuffix] = p.Name
			tokens[p.Name+rangeEndSuffix] = p.Name
			continue
		}
		tokens[p.Name] = p.Name
	}
	return tokens
}

// Render produces the executable query plus the effective-SQL display string
// for a validated value set. It assumes the definition passed registration
// cross-validation; any token left without a value indicates an internal
// invariant violation and fails with ErrUnresolvedPlaceholder.
func Render(def *types.QueryDefinition, vals types.ValueSet) (*Rendered, error) {
	declared := DeclaredTokens(def.Parameters)

	// Pass 1: clause-inclusion resolution. A fragment survives only when
	// every parameter it references has a value.
	resolved := resolveFragments(def.Template, func(tokens []string) bool {
		for _, tok := range tokens {
			owner, ok := declared[tok]
			if !ok || !vals.Has(owner) {
				return false
			}
		}
		return true
	})
	resolved = strings.TrimSpace(resolved)

	// Pass 2: placeholder substitution over the resolved text.
	tokens := Scan(resolved)

	var missing []string
	binds := make([]types.BindParameter, 0, len(tokens))
	for _, tok := range tokens {
		owner, ok := declared[tok]
		if !ok || !vals.Has(owner) {
			missing = append(missing, tok)
			continue
		}
		binds = append(binds, bindFor(tok, owner, vals[owner]))
	}
	if len(missing) > 0 {
		return nil, &types.ErrUnresolvedPlaceholder{QueryId: def.Id, Tokens: missing}
	}

	effective, err := substituteLiterals(def.Id, resolved, declared, vals)
	if err != nil {
		return nil, err
	}

	return &Rendered{
		Query:        resolved,
		Binds:        binds,
		EffectiveSQL: effective,
	}, nil
}

func bindFor(token, owner string, v types.Value) types.BindParameter {
	if span, ok := v.(types.Span); ok {
		if strings.HasSuffix(token, rangeEndSuffix) && token == owner+rangeEndSuffix {
			return types.BindParameter{Name: token, Value: types.Number(span.Hi).Bind()}
		}
		return types.BindParameter{Name: token, Value: types.Number(span.Lo).Bind()}
	}
	return types.BindParameter{
		Name:  token,
		Value: v.Bind(),
		Array: v.Kind() == types.ParameterMultiSelect,
	}
}

// substituteLiterals builds the effective SQL: every token occurrence is
// replaced by the value's SQL literal at the lexer's offsets, so an '@'
// inside a string literal or comment stays untouched in the display form
// just as it does in the executable form. Multi-select tokens wrapped in
// UNNEST(...) collapse to a plain IN-list so the display reads naturally.
func substituteLiterals(queryId, sql string, declared map[string]string, vals types.ValueSet) (string, error) {
	var b strings.Builder
	var missing []string
	seen := make(map[string]bool)
	last := 0

	forEachToken(sql, func(name string, start, end int) {
		owner, ok := declared[name]
		if !ok || !vals.Has(owner) {
			if !seen[name] {
				seen[name] = true
				missing = append(missing, name)
			}
			return
		}
		v := vals[owner]

		from, to := start, end
		if v.Kind() == types.ParameterMultiSelect {
			u := start - len("UNNEST(")
			if u >= 0 && strings.EqualFold(sql[u:start], "UNNEST(") && to < len(sql) && sql[to] == ')' {
				from, to = u, to+1
			}
		}

		b.WriteString(sql[last:from])
		b.WriteString(literalFor(name, owner, v))
		last = to
	})

	if len(missing) > 0 {
		return "", &types.ErrUnresolvedPlaceholder{QueryId: queryId, Tokens: missing}
	}
	b.WriteString(sql[last:])
	return b.String(), nil
}

func literalFor(token, owner string, v types.Value) string {
	if span, ok := v.(types.Span); ok {
		if token == owner+rangeEndSuffix {
			return span.HiLiteral()
		}
		return span.LoLiteral()
	}
	return v.Literal()
}
