package param

import (
	"reflect"

	"github.com/reoring/typeconv"
)

type required struct{ spec any }

// Required marks a spec entry as mandatory even when it is a literal, which
// otherwise doubles as the default value: Required(1.0) is a float without a
// default.
func Required(spec any) any { return required{spec: spec} }

func unwrapRequired(spec any) (any, bool) {
	if r, ok := spec.(required); ok {
		return r.spec, true
	}
	return spec, false
}

// isLiteral reports whether spec holds only default values: no types,
// validators, built converters or functions anywhere in it.
func isLiteral(spec any) bool {
	switch s := spec.(type) {
	case nil, *typeconv.Type, typeconv.Validator, required:
		return false
	case typeconv.Tuple:
		return allLiteral([]any(s))
	case map[string]any:
		for _, v := range s {
			if !isLiteral(v) {
				return false
			}
		}
		return true
	}
	rv := reflect.ValueOf(spec)
	switch rv.Kind() {
	case reflect.Func:
		return false
	case reflect.Slice, reflect.Array:
		if _, isBytes := spec.([]byte); isBytes {
			return true
		}
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return allLiteral(items)
	}
	return true
}

func allLiteral(items []any) bool {
	for _, it := range items {
		if !isLiteral(it) {
			return false
		}
	}
	return true
}

// splitSpec separates a mapping spec into the spec to build (Required
// wrappers removed), the literal defaults converted through conv, and the
// keys without a default.
func splitSpec(spec map[string]any) (clean map[string]any, literal map[string]any, mandatory map[string]bool) {
	clean = make(map[string]any, len(spec))
	literal = map[string]any{}
	mandatory = map[string]bool{}
	for k, v := range spec {
		inner, req := unwrapRequired(v)
		clean[k] = inner
		if !req && isLiteral(inner) {
			literal[k] = inner
		} else {
			mandatory[k] = true
		}
	}
	return clean, literal, mandatory
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
