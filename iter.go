package typeconv

import "reflect"

// asSequence returns the elements of an iterable input. Strings, byte slices
// and mappings are not sequences. Arrays iterate over their first axis,
// yielding nested []any rows for multi-dimensional data.
func asSequence(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil, string, []byte:
		return nil, false
	case []any:
		return t, true
	case Tuple:
		return []any(t), true
	case *Array:
		if t.NDim() == 0 {
			return nil, false
		}
		nested, ok := t.ToNested().([]any)
		return nested, ok
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	}
	return nil, false
}

// asMapping returns the entries of a string-keyed mapping input. A map with
// interface keys qualifies when every key is a string.
func asMapping(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return t, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	keyKind := rv.Type().Key().Kind()
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		if keyKind == reflect.Interface {
			k = k.Elem()
		}
		if !k.IsValid() || k.Kind() != reflect.String {
			return nil, false
		}
		out[k.String()] = iter.Value().Interface()
	}
	return out, true
}
