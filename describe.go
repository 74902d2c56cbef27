package typeconv

import (
	"github.com/reoring/typeconv/jsonschema"
)

// JSONSchema describes the values accepted by v as a JSON Schema document.
// Custom rules without a schema counterpart are described by name only.
func JSONSchema(v Validator) *jsonschema.Schema {
	switch t := v.(type) {
	case *Value:
		return JSONSchema(t.rule)
	case *Sequence:
		if len(t.children) == 1 {
			return &jsonschema.Schema{Type: "array", Items: JSONSchema(t.children[0])}
		}
		alts := make([]*jsonschema.Schema, len(t.children))
		for i, c := range t.children {
			alts[i] = JSONSchema(c)
		}
		return &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{OneOf: alts}, Description: "elements cycle through the item schemas"}
	case *FixedSequence:
		items := make([]*jsonschema.Schema, len(t.children))
		for i, c := range t.children {
			items[i] = JSONSchema(c)
		}
		n := len(items)
		return &jsonschema.Schema{Type: "array", PrefixItems: items, MinItems: jsonschema.Ptr(n), MaxItems: jsonschema.Ptr(n)}
	case *Mapping:
		props := make(map[string]*jsonschema.Schema, len(t.registry))
		for k, c := range t.registry {
			props[k] = JSONSchema(c)
		}
		return &jsonschema.Schema{Type: "object", Properties: props, AdditionalProperties: true}
	case *TypeCheck:
		var s *jsonschema.Schema
		if len(t.types) == 1 {
			s = typeSchema(t.types[0])
		} else {
			s = &jsonschema.Schema{}
			for _, ty := range t.types {
				s.OneOf = append(s.OneOf, typeSchema(ty))
			}
		}
		return nullable(s, t.cfg)
	case *Membership:
		return nullable(&jsonschema.Schema{Enum: t.Options()}, t.cfg)
	case *Alternatives:
		s := &jsonschema.Schema{}
		for _, a := range t.alts {
			s.OneOf = append(s.OneOf, JSONSchema(a))
		}
		return nullable(s, t.cfg)
	case *ArrayCheck:
		s := typeSchema(t.dtype)
		for i := len(t.shape) - 1; i >= 0; i-- {
			s = &jsonschema.Schema{Type: "array", Items: s}
			if d := t.shape[i]; d != AnyDim {
				s.MinItems, s.MaxItems = jsonschema.Ptr(d), jsonschema.Ptr(d)
			}
		}
		return nullable(s, t.cfg)
	case *Once:
		t.mu.Lock()
		rule := t.rule
		t.mu.Unlock()
		if rule == nil {
			return &jsonschema.Schema{ReadOnly: true, Description: "already set"}
		}
		return JSONSchema(rule)
	case realCheck:
		if t.strictlyPositive {
			return &jsonschema.Schema{Type: "number", ExclusiveMinimum: jsonschema.Ptr(0.0)}
		}
		return &jsonschema.Schema{Type: "number", Minimum: jsonschema.Ptr(0.0)}
	case *Predicate:
		return nullable(&jsonschema.Schema{Description: t.String()}, t.cfg)
	}
	return &jsonschema.Schema{Description: describe(v)}
}

func typeSchema(t *Type) *jsonschema.Schema {
	switch t {
	case Int:
		return &jsonschema.Schema{Type: "integer"}
	case Float:
		return &jsonschema.Schema{Type: "number"}
	case Bool:
		return &jsonschema.Schema{Type: "boolean"}
	case String:
		return &jsonschema.Schema{Type: "string"}
	case ArrayType:
		return &jsonschema.Schema{Type: "array"}
	}
	return &jsonschema.Schema{Description: t.Name()}
}

func nullable(s *jsonschema.Schema, cfg leafConfig) *jsonschema.Schema {
	if cfg.allowNone {
		return jsonschema.Nullable(s)
	}
	return s
}
