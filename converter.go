package typeconv

import (
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"strconv"
	"strings"
)

// Kind tags the converter node variants.
type Kind int

const (
	KindValue Kind = iota
	KindSequence
	KindFixedSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindSequence:
		return "sequence"
	case KindFixedSequence:
		return "fixed_sequence"
	case KindMapping:
		return "mapping"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Converter is a node of a converter tree built from a specification. Convert
// returns a freshly built value of the matching shape (a []any, Tuple,
// map[string]any or leaf result) and never mutates its input.
type Converter interface {
	Validator
	Kind() Kind
	String() string
}

// Tuple is a fixed-length ordered specification and the result of converting
// through a FixedSequence.
type Tuple []any

func (t Tuple) String() string {
	parts := make([]string, len(t))
	for i, e := range t {
		parts[i] = render(e)
	}
	if len(t) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ---- Value ----

// Value wraps a single leaf rule.
type Value struct {
	rule Validator
}

func (c *Value) Kind() Kind { return KindValue }

// Rule returns the wrapped leaf rule.
func (c *Value) Rule() Validator { return c.rule }

func (c *Value) Convert(v any) (any, error) {
	out, err := c.rule.Convert(v)
	if err != nil {
		return nil, asValidationError(v, err)
	}
	return out, nil
}

func (c *Value) String() string { return "Value(" + describe(c.rule) + ")" }

// ---- Sequence ----

// Sequence converts a variable-length sequence. Element i goes through child
// i modulo the number of children, so a single child applies to every element.
type Sequence struct {
	children []Converter
}

func (c *Sequence) Kind() Kind { return KindSequence }

// Children returns the child converters in cycle order.
func (c *Sequence) Children() []Converter { return append([]Converter(nil), c.children...) }

func (c *Sequence) Convert(v any) (any, error) {
	elems, ok := asSequence(v)
	if !ok {
		return nil, structural("a sequence", v)
	}
	out := make([]any, len(elems))
	for i, e := range elems {
		r, err := c.children[i%len(c.children)].Convert(e)
		if err != nil {
			return nil, rebase(err, strconv.Itoa(i))
		}
		out[i] = r
	}
	return out, nil
}

func (c *Sequence) String() string { return "Sequence[" + joinConverters(c.children) + "]" }

// ---- FixedSequence ----

// FixedSequence converts a sequence of exactly len(children) elements
// positionally and returns a Tuple.
type FixedSequence struct {
	children []Converter
}

func (c *FixedSequence) Kind() Kind { return KindFixedSequence }

// Children returns the positional child converters.
func (c *FixedSequence) Children() []Converter { return append([]Converter(nil), c.children...) }

func (c *FixedSequence) Convert(v any) (any, error) {
	elems, ok := asSequence(v)
	if !ok {
		return nil, structural("a sequence", v)
	}
	if len(elems) != len(c.children) {
		return nil, fail(CodeArityMismatch, ErrArity, "expected", len(c.children), "got", len(elems))
	}
	out := make(Tuple, len(elems))
	for i, e := range elems {
		r, err := c.children[i].Convert(e)
		if err != nil {
			return nil, rebase(err, strconv.Itoa(i))
		}
		out[i] = r
	}
	return out, nil
}

func (c *FixedSequence) String() string { return "FixedSequence(" + joinConverters(c.children) + ")" }

// ---- Mapping ----

// Mapping converts a string-keyed mapping. Keys with a registered converter are
// converted; other keys are copied unchanged. Keys are visited in sorted order
// so the first reported failure is deterministic.
//
// The registry may be edited with Set, SetSpec and Delete. Edits are meant for
// setup time; a Mapping must not be edited while it converts concurrently.
type Mapping struct {
	registry map[string]Converter
	builder  *Builder
}

func newMapping(b *Builder) *Mapping {
	return &Mapping{registry: map[string]Converter{}, builder: b}
}

func (c *Mapping) Kind() Kind { return KindMapping }

func (c *Mapping) Convert(v any) (any, error) {
	m, ok := asMapping(v)
	if !ok {
		return nil, structural("a mapping", v)
	}
	out := make(map[string]any, len(m))
	for _, k := range sortedKeys(m) {
		val := m[k]
		child, ok := c.registry[k]
		if !ok {
			out[k] = val
			continue
		}
		r, err := child.Convert(val)
		if err != nil {
			return nil, rebase(err, k)
		}
		out[k] = r
	}
	return out, nil
}

// Lookup returns the converter registered under key.
func (c *Mapping) Lookup(key string) (Converter, bool) {
	child, ok := c.registry[key]
	return child, ok
}

// Set registers conv under key, replacing any previous entry.
func (c *Mapping) Set(key string, conv Converter) { c.registry[key] = conv }

// SetSpec builds spec with the Mapping's builder and registers it under key.
func (c *Mapping) SetSpec(key string, spec any) error {
	conv, err := c.builder.build(spec)
	if err != nil {
		return rebase(err, key)
	}
	c.registry[key] = conv
	return nil
}

// Delete removes key from the registry.
func (c *Mapping) Delete(key string) { delete(c.registry, key) }

// Keys returns the registered keys, sorted.
func (c *Mapping) Keys() []string {
	keys := make([]string, 0, len(c.registry))
	for k := range c.registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of registered keys.
func (c *Mapping) Len() int { return len(c.registry) }

// Clone returns a Mapping with a copy of the registry. Child converters are
// shared.
func (c *Mapping) Clone() *Mapping {
	out := newMapping(c.builder)
	for k, v := range c.registry {
		out.registry[k] = v
	}
	return out
}

// Extend returns a clone of c with every entry of spec built and registered.
// c is left untouched; on error no Mapping is returned.
func (c *Mapping) Extend(spec map[string]any) (*Mapping, error) {
	out := c.Clone()
	for _, k := range sortedKeys(spec) {
		if err := out.SetSpec(k, spec[k]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Mapping) String() string {
	parts := make([]string, 0, len(c.registry))
	for _, k := range c.Keys() {
		parts = append(parts, strconv.Quote(k)+": "+c.registry[k].String())
	}
	return "Mapping{" + strings.Join(parts, ", ") + "}"
}

// ---- helpers ----

func structural(expected string, v any) Issues {
	return fail(CodeStructuralMismatch, nil, "expected", Text(expected), "value", v, "type", Text(typeLabel(v)))
}

func typeLabel(v any) string {
	if v == nil {
		return "none"
	}
	return fmt.Sprintf("%T", v)
}

func joinConverters(cs []Converter) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func funcName(f any) string {
	rv := reflect.ValueOf(f)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return "func"
	}
	if fn := runtime.FuncForPC(rv.Pointer()); fn != nil {
		name := fn.Name()
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		return name
	}
	return "func"
}
