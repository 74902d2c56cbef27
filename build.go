package typeconv

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"sync"
)

type special struct {
	base *Type
	rule Validator
}

// Builder turns specifications into converter trees. It owns the special-type
// table: an ordered list of (type, rule) entries consulted before the generic
// type dispatch, where more derived types precede their bases.
type Builder struct {
	mu       sync.RWMutex
	specials []special
}

// NewBuilder returns a Builder whose special table holds the defaults: String
// is strict and ArrayType converts to float arrays with one axis of any extent.
func NewBuilder() *Builder {
	b := &Builder{}
	b.RegisterSpecial(String, OnlyTypes([]*Type{String}, Strict()))
	b.RegisterSpecial(ArrayType, NDArray(Float, []int{AnyDim}, OrderK))
	return b
}

var defaultBuilder = NewBuilder()

// Default returns the process-wide Builder used by Build and RegisterSpecial.
func Default() *Builder { return defaultBuilder }

// RegisterSpecial registers rule for base in the default Builder.
func RegisterSpecial(base *Type, rule Validator) { defaultBuilder.RegisterSpecial(base, rule) }

// Build builds spec with the default Builder.
func Build(spec any) (Converter, error) { return defaultBuilder.Build(spec) }

// MustBuild is like Build but panics on a malformed specification. It is meant
// for package-level converter variables.
func MustBuild(spec any) Converter {
	c, err := Build(spec)
	if err != nil {
		panic(err)
	}
	return c
}

// RegisterSpecial associates rule with base. An existing entry for base is
// replaced in place; otherwise the entry is inserted ahead of the first entry
// whose type base derives from, so subtypes always win over their bases.
func (b *Builder) RegisterSpecial(base *Type, rule Validator) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.specials {
		if e.base == base {
			b.specials[i].rule = rule
			slog.Debug("typeconv: special type replaced", "type", base.Name(), "position", i)
			return
		}
	}
	pos := len(b.specials)
	for i, e := range b.specials {
		if base.SubtypeOf(e.base) {
			pos = i
			break
		}
	}
	b.specials = append(b.specials, special{})
	copy(b.specials[pos+1:], b.specials[pos:])
	b.specials[pos] = special{base: base, rule: rule}
	slog.Debug("typeconv: special type registered", "type", base.Name(), "position", pos)
}

// Specials returns the special types in precedence order.
func (b *Builder) Specials() []*Type {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Type, len(b.specials))
	for i, e := range b.specials {
		out[i] = e.base
	}
	return out
}

// Build resolves spec into a converter tree:
//
//   - a Tuple or Go array becomes a FixedSequence of its element specs;
//   - a slice becomes a Sequence cycling over its element specs;
//   - a map with string keys becomes a Mapping;
//   - a built Converter is used as is;
//   - anything else becomes a Value leaf (see leafRule).
//
// Malformed specifications fail with an invalid_spec issue pointing at the
// offending element.
func (b *Builder) Build(spec any) (Converter, error) {
	return b.build(spec)
}

func (b *Builder) build(spec any) (Converter, error) {
	switch s := spec.(type) {
	case nil:
		return nil, invalidSpec("none is not a specification")
	case Converter:
		return s, nil
	case Tuple:
		children, err := b.buildAll([]any(s))
		if err != nil {
			return nil, err
		}
		return &FixedSequence{children: children}, nil
	case []byte:
		return b.leaf(spec)
	}
	rv := reflect.ValueOf(spec)
	switch rv.Kind() {
	case reflect.Array:
		children, err := b.buildAll(elements(rv))
		if err != nil {
			return nil, err
		}
		return &FixedSequence{children: children}, nil
	case reflect.Slice:
		if rv.Len() == 0 {
			return nil, invalidSpec("empty sequence specification")
		}
		children, err := b.buildAll(elements(rv))
		if err != nil {
			return nil, err
		}
		return &Sequence{children: children}, nil
	case reflect.Map:
		m, ok := asMapping(spec)
		if !ok {
			return nil, invalidSpec(fmt.Sprintf("mapping specification %T needs string keys", spec))
		}
		out := newMapping(b)
		for _, k := range sortedKeys(m) {
			if err := out.SetSpec(k, m[k]); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return b.leaf(spec)
}

func (b *Builder) buildAll(specs []any) ([]Converter, error) {
	out := make([]Converter, len(specs))
	for i, s := range specs {
		c, err := b.build(s)
		if err != nil {
			return nil, rebase(err, strconv.Itoa(i))
		}
		out[i] = c
	}
	return out, nil
}

func elements(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func (b *Builder) leaf(spec any) (Converter, error) {
	rule, err := b.leafRule(spec)
	if err != nil {
		return nil, err
	}
	slog.Debug("typeconv: leaf resolved", "spec", typeLabel(spec), "rule", describe(rule))
	return &Value{rule: rule}, nil
}

// leafRule picks the rule of a leaf spec, first match wins:
//
//  1. a *Type with a special entry for it or one of its bases uses that entry;
//     other types become OnlyTypes of the type;
//  2. an instance of a special type uses that entry, the value being a default;
//  3. a Validator or func(any) (any, error) is the rule itself;
//  4. any other literal is a default value: OnlyTypes of its type.
func (b *Builder) leafRule(spec any) (Validator, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if t, ok := spec.(*Type); ok {
		for _, e := range b.specials {
			if t.SubtypeOf(e.base) {
				return e.rule, nil
			}
		}
		return OnlyTypes([]*Type{t}), nil
	}
	for _, e := range b.specials {
		if e.base.IsInstance(spec) {
			return e.rule, nil
		}
	}
	switch f := spec.(type) {
	case Validator:
		return f, nil
	case func(any) (any, error):
		return Func(f), nil
	}
	if rv := reflect.ValueOf(spec); rv.Kind() == reflect.Func {
		return nil, invalidSpec(fmt.Sprintf("function %T is not a validator", spec))
	}
	return OnlyTypes([]*Type{TypeOf(spec)}), nil
}

func invalidSpec(reason string) Issues {
	return fail(CodeInvalidSpec, nil, "reason", Text(reason))
}
