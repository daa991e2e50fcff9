// Package params is the single source of truth for how each parameter kind
// validates and coerces raw input into a typed value. Coercion is a pure
// function of (definition, raw input) with no side effects.
package params

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mtc-analytics/patlens/pkg/types"
)

// ValidateDefinition checks that a parameter definition is well-formed:
// recognized kind, options present for select kinds, ordered bounds, and a
// default whose shape matches the kind.
func ValidateDefinition(def types.ParameterDefinition) error {
	if def.Name == "" {
		return &types.ErrInvalidParameterDefinition{Parameter: def.Name, Reason: "name is required"}
	}
	if !def.Kind.Valid() {
		return &types.ErrInvalidParameterDefinition{Parameter: def.Name, Reason: fmt.Sprintf("unknown kind %q", def.Kind)}
	}

	switch def.Kind {
	case types.ParameterSingleSelect, types.ParameterMultiSelect:
		opts, err := resolveOptions(def)
		if err != nil {
			return &types.ErrInvalidParameterDefinition{Parameter: def.Name, Reason: err.Error()}
		}
		if len(opts) == 0 {
			return &types.ErrInvalidParameterDefinition{Parameter: def.Name, Reason: "select parameter has no options"}
		}
	case types.ParameterNumber, types.ParameterRange:
		if def.Bounds != nil && def.Bounds.Min > def.Bounds.Max {
			return &types.ErrInvalidParameterDefinition{Parameter: def.Name, Reason: "bounds min exceeds max"}
		}
	}

	if def.Default != nil {
		if _, err := Coerce(def, def.Default); err != nil {
			return &types.ErrInvalidParameterDefinition{Parameter: def.Name, Reason: fmt.Sprintf("default value invalid: %v", err)}
		}
	}

	return nil
}

// Coerce validates raw input against the definition and produces a typed
// value. Raw input may come from JSON (float64, []any), YAML defaults
// (int, []any), or CLI strings; each kind accepts the shapes that can
// faithfully represent it.
func Coerce(def types.ParameterDefinition, raw any) (types.Value, error) {
	switch def.Kind {
	case types.ParameterText:
		return coerceText(def, raw)
	case types.ParameterNumber:
		return coerceNumber(def, raw)
	case types.ParameterSingleSelect:
		return coerceSingleSelect(def, raw)
	case types.ParameterMultiSelect:
		return coerceMultiSelect(def, raw)
	case types.ParameterRange:
		return coerceRange(def, raw)
	default:
		return nil, &types.ErrParameterValidation{Parameter: def.Name, Reason: fmt.Sprintf("unknown kind %q", def.Kind)}
	}
}

// BuildValueSet constructs the value set for one execution attempt: supplied
// values are coerced, absent values fall back to declared defaults, and a
// missing required value blocks execution. Optional parameters without a
// value are simply absent, which toggles their template clause off.
func BuildValueSet(def *types.QueryDefinition, raw map[string]any) (types.ValueSet, error) {
	vals := make(types.ValueSet, len(def.Parameters))
	for _, p := range def.Parameters {
		in, supplied := raw[p.Name]
		if supplied && p.Kind == types.ParameterMultiSelect && emptySelection(in) {
			// An explicitly cleared multi-select behaves exactly like an
			// absent one: the default applies, and without a default the
			// clause toggles off instead of rendering an empty IN-list.
			supplied = false
		}
		if !supplied || in == nil {
			if p.Default != nil {
				in = p.Default
			} else if p.Required {
				return nil, &types.ErrParameterValidation{Parameter: p.Name, Reason: "required value missing"}
			} else {
				continue
			}
		}
		v, err := Coerce(p, in)
		if err != nil {
			return nil, err
		}
		vals[p.Name] = v
	}
	return vals, nil
}

func coerceText(def types.ParameterDefinition, raw any) (types.Value, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, &types.ErrParameterValidation{Parameter: def.Name, Reason: fmt.Sprintf("expected text, got %T", raw)}
	}
	if def.Required && strings.TrimSpace(s) == "" {
		return nil, &types.ErrParameterValidation{Parameter: def.Name, Reason: "required value missing"}
	}
	return types.Text(s), nil
}

func coerceNumber(def types.ParameterDefinition, raw any) (types.Value, error) {
	f, err := toFloat(raw)
	if err != nil {
		return nil, &types.ErrParameterValidation{Parameter: def.Name, Reason: err.Error()}
	}
	if def.Bounds != nil && !def.Bounds.Contains(f) {
		return nil, &types.ErrParameterValidation{
			Parameter: def.Name,
			Reason:    fmt.Sprintf("value %s out of bounds [%s, %s]", trimFloat(f), trimFloat(def.Bounds.Min), trimFloat(def.Bounds.Max)),
		}
	}
	return types.Number(f), nil
}

func coerceSingleSelect(def types.ParameterDefinition, raw any) (types.Value, error) {
	opts, err := resolveOptions(def)
	if err != nil {
		return nil, &types.ErrParameterValidation{Parameter: def.Name, Reason: err.Error()}
	}
	match, ok := matchOption(opts, raw)
	if !ok {
		return nil, &types.ErrParameterValidation{Parameter: def.Name, Reason: fmt.Sprintf("%v is not one of the allowed options", raw)}
	}
	return types.Choice{V: match}, nil
}

func coerceMultiSelect(def types.ParameterDefinition, raw any) (types.Value, error) {
	opts, err := resolveOptions(def)
	if err != nil {
		return nil, &types.ErrParameterValidation{Parameter: def.Name, Reason: err.Error()}
	}

	elems, err := toSlice(raw)
	if err != nil {
		return nil, &types.ErrParameterValidation{Parameter: def.Name, Reason: err.Error()}
	}
	if len(elems) == 0 && def.Required {
		return nil, &types.ErrParameterValidation{Parameter: def.Name, Reason: "select at least one option"}
	}

	matched := make([]any, 0, len(elems))
	for _, e := range elems {
		m, ok := matchOption(opts, e)
		if !ok {
			return nil, &types.ErrParameterValidation{Parameter: def.Name, Reason: fmt.Sprintf("%v is not one of the allowed options", e)}
		}
		matched = append(matched, m)
	}
	return types.MultiChoice{Vs: matched}, nil
}

func coerceRange(def types.ParameterDefinition, raw any) (types.Value, error) {
	lo, hi, err := toPair(raw)
	if err != nil {
		return nil, &types.ErrParameterValidation{Parameter: def.Name, Reason: err.Error()}
	}
	if lo > hi {
		return nil, &types.ErrParameterValidation{
			Parameter: def.Name,
			Reason:    fmt.Sprintf("range start %s exceeds end %s", trimFloat(lo), trimFloat(hi)),
		}
	}
	if def.Bounds != nil && (!def.Bounds.Contains(lo) || !def.Bounds.Contains(hi)) {
		return nil, &types.ErrParameterValidation{
			Parameter: def.Name,
			Reason:    fmt.Sprintf("range [%s, %s] out of bounds [%s, %s]", trimFloat(lo), trimFloat(hi), trimFloat(def.Bounds.Min), trimFloat(def.Bounds.Max)),
		}
	}
	return types.Span{Lo: lo, Hi: hi}, nil
}

// matchOption finds the option whose underlying value corresponds to raw,
// returning the option's own (typed) value so downstream rendering is
// independent of the input encoding.
func matchOption(opts []types.Option, raw any) (any, bool) {
	key := optionKey(raw)
	for _, o := range opts {
		if optionKey(o.Value) == key {
			return o.Value, true
		}
	}
	return nil, false
}

// optionKey normalizes an option value for membership comparison. Numeric
// values compare numerically regardless of encoding (13, 13.0, "13").
func optionKey(v any) string {
	switch t := v.(type) {
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return "#" + trimFloat(f)
		}
		return "s" + t
	case int:
		return "#" + strconv.Itoa(t)
	case int64:
		return "#" + strconv.FormatInt(t, 10)
	case float64:
		return "#" + trimFloat(t)
	default:
		return fmt.Sprintf("?%v", t)
	}
}

func toFloat(raw any) (float64, error) {
	switch t := raw.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", raw)
	}
}

func emptySelection(raw any) bool {
	elems, err := toSlice(raw)
	return err == nil && len(elems) == 0
}

func toSlice(raw any) ([]any, error) {
	switch t := raw.(type) {
	case []any:
		return t, nil
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
		parts := strings.Split(t, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.TrimSpace(p))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list, got %T", raw)
	}
}

func toPair(raw any) (float64, float64, error) {
	elems, err := toSlice(raw)
	if err != nil {
		return 0, 0, err
	}
	// CLI form: "2015:2024"
	if s, ok := raw.(string); ok && strings.Contains(s, ":") {
		parts := strings.SplitN(s, ":", 2)
		elems = []any{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])}
	}
	if len(elems) != 2 {
		return 0, 0, fmt.Errorf("expected an ordered (start, end) pair")
	}
	lo, err := toFloat(elems[0])
	if err != nil {
		return 0, 0, err
	}
	hi, err := toFloat(elems[1])
	if err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
