package catalog

import (
	"sort"

	"github.com/mtc-analytics/patlens/pkg/template"
	"github.com/mtc-analytics/patlens/pkg/types"
)

// CrossValidate reconciles a template's placeholder tokens against the
// declared parameters.
//
// undefined lists tokens present in the SQL but never declared. That is a
// hard error, since execution would send a literal unresolved token to the
// backend. unused lists parameters never referenced in the template text,
// a warning only, because a parameter may be consumed by optional-clause
// logic rather than direct substitution.
func CrossValidate(tmpl string, defs []types.ParameterDefinition) (undefined, unused []string) {
	declared := template.DeclaredTokens(defs)

	present := make(map[string]bool)
	for _, tok := range template.Scan(tmpl) {
		owner, ok := declared[tok]
		if !ok {
			undefined = append(undefined, tok)
			continue
		}
		present[owner] = true
	}

	for _, p := range defs {
		if !present[p.Name] {
			unused = append(unused, p.Name)
		}
	}

	sort.Strings(undefined)
	sort.Strings(unused)
	return undefined, unused
}
