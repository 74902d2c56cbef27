// Package specfile reads converter specifications written in YAML.
//
// Plain YAML maps onto specifications directly: sequences become cycling
// sequence specs, mappings become mapping specs and plain scalars are default
// values whose type is enforced. Tags select the other rules:
//
//	kT: !type positive_real
//	box: !tuple [1.0, 1.0, 1.0]
//	mode: !from [fast, slow]
//	size: !oneof [!tuple [1.0, 1.0], 1.0]
//	positions: !array {dtype: float, shape: [null, 3], order: C}
//	seed: !once int
//	label: !optional str
//
// Names used with !type, !once and !optional are the built-in type names plus
// any registered with Register. !once also takes a sequence or mapping spec.
package specfile

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/reoring/typeconv"
)

var (
	namesMu sync.RWMutex
	names   = map[string]any{
		"int":              typeconv.Int,
		"float":            typeconv.Float,
		"str":              typeconv.String,
		"string":           typeconv.String,
		"bool":             typeconv.Bool,
		"any":              typeconv.Any,
		"array":            typeconv.ArrayType,
		"positive_real":    typeconv.PositiveReal,
		"nonnegative_real": typeconv.NonnegativeReal,
	}
)

// Register makes spec available under name to !type and !optional. spec is
// usually a *typeconv.Type or a typeconv.Validator.
func Register(name string, spec any) {
	namesMu.Lock()
	defer namesMu.Unlock()
	names[name] = spec
}

// Lookup returns the spec registered under name.
func Lookup(name string) (any, bool) {
	namesMu.RLock()
	defer namesMu.RUnlock()
	s, ok := names[name]
	return s, ok
}

// Names lists the registered names, sorted.
func Names() []string {
	namesMu.RLock()
	defer namesMu.RUnlock()
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Parse reads the first YAML document of data into a specification for
// typeconv.Build.
func Parse(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, typeconv.Issues{typeconv.IssueAt("/", typeconv.CodeParseError, err, "reason", typeconv.Text(err.Error()))}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, typeconv.Issues{typeconv.IssueAt("/", typeconv.CodeInvalidSpec, nil, "reason", typeconv.Text("empty specification"))}
	}
	return spec(doc.Content[0], "")
}

// Load reads and parses the specification file at path.
func Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("specfile: read %s: %w", path, err)
	}
	return Parse(data)
}

// Build parses data and builds the converter with the default builder.
func Build(data []byte) (typeconv.Converter, error) {
	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return typeconv.Build(s)
}

// BuildFile loads path and builds the converter with the default builder.
func BuildFile(path string) (typeconv.Converter, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	return typeconv.Build(s)
}

func invalid(n *yaml.Node, pointer, format string, args ...any) error {
	reason := fmt.Sprintf("line %d, column %d: ", n.Line, n.Column) + fmt.Sprintf(format, args...)
	return typeconv.Issues{typeconv.IssueAt(pointer, typeconv.CodeInvalidSpec, nil, "reason", typeconv.Text(reason))}
}

func spec(n *yaml.Node, pointer string) (any, error) {
	if n.Kind == yaml.AliasNode {
		return spec(n.Alias, pointer)
	}
	switch n.Tag {
	case "!type":
		return named(n, pointer)
	case "!tuple":
		items, err := children(n, pointer)
		if err != nil {
			return nil, err
		}
		return typeconv.Tuple(items), nil
	case "!oneof":
		return oneOf(n, pointer)
	case "!from":
		return from(n, pointer)
	case "!array":
		return array(n, pointer)
	case "!once":
		return once(n, pointer)
	case "!optional":
		return optional(n, pointer)
	}
	if strings.HasPrefix(n.Tag, "!") && !strings.HasPrefix(n.Tag, "!!") {
		return nil, invalid(n, pointer, "unknown tag %s", n.Tag)
	}
	switch n.Kind {
	case yaml.SequenceNode:
		return children(n, pointer)
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, vn := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, invalid(k, pointer, "mapping keys must be scalars")
			}
			if _, dup := out[k.Value]; dup {
				return nil, invalid(k, pointer, "duplicate key %q", k.Value)
			}
			v, err := spec(vn, pointer+"/"+escape(k.Value))
			if err != nil {
				return nil, err
			}
			out[k.Value] = v
		}
		return out, nil
	case yaml.ScalarNode:
		return scalar(n, pointer)
	}
	return nil, invalid(n, pointer, "unsupported node")
}

func children(n *yaml.Node, pointer string) ([]any, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, invalid(n, pointer, "%s needs a sequence", tagOr(n, "value"))
	}
	out := make([]any, len(n.Content))
	for i, c := range n.Content {
		v, err := spec(c, pointer+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func scalar(n *yaml.Node, pointer string) (any, error) {
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, invalid(n, pointer, "%v", err)
	}
	if v == nil {
		return nil, invalid(n, pointer, "null is not a specification")
	}
	return v, nil
}

func named(n *yaml.Node, pointer string) (any, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, invalid(n, pointer, "!type needs a name")
	}
	s, ok := Lookup(n.Value)
	if !ok {
		return nil, invalid(n, pointer, "unknown type name %q", n.Value)
	}
	return s, nil
}

func built(n *yaml.Node, pointer string) (typeconv.Converter, error) {
	s, err := spec(n, pointer)
	if err != nil {
		return nil, err
	}
	c, err := typeconv.Build(s)
	if err != nil {
		return nil, prefix(err, pointer)
	}
	return c, nil
}

func oneOf(n *yaml.Node, pointer string) (any, error) {
	if n.Kind != yaml.SequenceNode || len(n.Content) == 0 {
		return nil, invalid(n, pointer, "!oneof needs a non-empty sequence")
	}
	alts := make([]typeconv.Validator, len(n.Content))
	for i, c := range n.Content {
		conv, err := built(c, pointer+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		alts[i] = conv
	}
	return typeconv.Either(alts), nil
}

func from(n *yaml.Node, pointer string) (any, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, invalid(n, pointer, "!from needs a sequence")
	}
	opts := make([]any, len(n.Content))
	for i, c := range n.Content {
		if c.Kind != yaml.ScalarNode {
			return nil, invalid(c, pointer, "!from options must be scalars")
		}
		var v any
		if err := c.Decode(&v); err != nil {
			return nil, invalid(c, pointer, "%v", err)
		}
		opts[i] = v
	}
	return typeconv.OnlyFrom(opts), nil
}

type arrayNode struct {
	DType string `yaml:"dtype"`
	Shape []*int `yaml:"shape"`
	Order string `yaml:"order"`
}

func array(n *yaml.Node, pointer string) (any, error) {
	var a arrayNode
	if n.Kind != yaml.MappingNode {
		return nil, invalid(n, pointer, "!array needs a mapping")
	}
	plain := *n
	plain.Tag = ""
	if err := plain.Decode(&a); err != nil {
		return nil, invalid(n, pointer, "%v", err)
	}
	dtype := typeconv.Float
	if a.DType != "" {
		s, ok := Lookup(a.DType)
		t, isType := s.(*typeconv.Type)
		if !ok || !isType {
			return nil, invalid(n, pointer, "unknown dtype %q", a.DType)
		}
		dtype = t
	}
	var shape []int
	if a.Shape != nil {
		shape = make([]int, len(a.Shape))
		for i, d := range a.Shape {
			shape[i] = typeconv.AnyDim
			if d != nil {
				shape[i] = *d
			}
		}
	}
	order := typeconv.Order(strings.ToUpper(a.Order))
	switch order {
	case "", typeconv.OrderC, typeconv.OrderF, typeconv.OrderK, typeconv.OrderA:
	default:
		return nil, invalid(n, pointer, "unknown order %q", a.Order)
	}
	return typeconv.NDArray(dtype, shape, order), nil
}

func once(n *yaml.Node, pointer string) (any, error) {
	inner := *n
	inner.Tag = ""
	if n.Kind == yaml.ScalarNode {
		inner.Tag = "!type"
	}
	conv, err := built(&inner, pointer)
	if err != nil {
		return nil, err
	}
	return typeconv.SetOnce(conv), nil
}

func optional(n *yaml.Node, pointer string) (any, error) {
	var items []*yaml.Node
	switch n.Kind {
	case yaml.ScalarNode:
		items = []*yaml.Node{n}
	case yaml.SequenceNode:
		items = n.Content
	default:
		return nil, invalid(n, pointer, "!optional needs a type name or a sequence of names")
	}
	types := make([]*typeconv.Type, len(items))
	strict := false
	for i, it := range items {
		s, ok := Lookup(it.Value)
		t, isType := s.(*typeconv.Type)
		if it.Kind != yaml.ScalarNode || !ok || !isType {
			return nil, invalid(it, pointer, "!optional needs type names, got %q", it.Value)
		}
		types[i] = t
		strict = strict || t == typeconv.String
	}
	opts := []typeconv.Option{typeconv.AllowNone()}
	if strict {
		opts = append(opts, typeconv.Strict())
	}
	return typeconv.OnlyTypes(types, opts...), nil
}

func tagOr(n *yaml.Node, fallback string) string {
	if strings.HasPrefix(n.Tag, "!") && !strings.HasPrefix(n.Tag, "!!") {
		return n.Tag
	}
	return fallback
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escape(token string) string { return pointerEscaper.Replace(token) }

// prefix moves issue paths of an error raised while building the subtree at
// pointer under that pointer.
func prefix(err error, pointer string) error {
	iss, ok := err.(typeconv.Issues)
	if !ok || pointer == "" {
		return err
	}
	out := make(typeconv.Issues, len(iss))
	for i, it := range iss {
		if it.Path == "/" || it.Path == "" {
			it.Path = pointer
		} else {
			it.Path = pointer + it.Path
		}
		out[i] = it
	}
	return out
}
