package param

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/reoring/typeconv"
)

// DefaultKey is the State entry holding a TypeParameterDict's defaults.
const DefaultKey = "__default__"

// ErrTypeKey reports a key that does not name one type (or an unordered pair
// of types for pair dictionaries).
var ErrTypeKey = errors.New("param: invalid type key")

// TypeParameterDict holds one validated value per type, or per unordered pair
// of types. When the spec is a mapping, values are partial mappings filled
// from the defaults on read.
type TypeParameterDict struct {
	mu      sync.RWMutex
	lenKeys int
	conv    typeconv.Converter
	mapping bool

	// mapping specs
	defaults  map[string]any
	mandatory map[string]bool

	// scalar specs
	def        any
	hasDefault bool

	values map[string]any
}

// NewTypeDict builds a dictionary keyed by single types (lenKeys 1) or by
// unordered type pairs (lenKeys 2).
func NewTypeDict(lenKeys int, spec any) (*TypeParameterDict, error) {
	if lenKeys != 1 && lenKeys != 2 {
		return nil, fmt.Errorf("param: lenKeys must be 1 or 2, got %d", lenKeys)
	}
	d := &TypeParameterDict{lenKeys: lenKeys, values: map[string]any{}}
	if m, ok := spec.(map[string]any); ok {
		clean, literal, mandatory := splitSpec(m)
		conv, err := typeconv.Build(clean)
		if err != nil {
			return nil, err
		}
		defaults, err := conv.Convert(literal)
		if err != nil {
			return nil, fmt.Errorf("param: invalid default: %w", err)
		}
		d.conv, d.mapping = conv, true
		d.defaults, d.mandatory = defaults.(map[string]any), mandatory
		return d, nil
	}
	inner, req := unwrapRequired(spec)
	conv, err := typeconv.Build(inner)
	if err != nil {
		return nil, err
	}
	d.conv = conv
	if !req && isLiteral(inner) {
		def, err := conv.Convert(inner)
		if err != nil {
			return nil, fmt.Errorf("param: invalid default: %w", err)
		}
		d.def, d.hasDefault = def, true
	}
	return d, nil
}

// LenKeys returns the number of types in a key.
func (d *TypeParameterDict) LenKeys() int { return d.lenKeys }

// Key returns the canonical form of key: the type name itself, or "(A, B)"
// with the pair sorted.
func (d *TypeParameterDict) Key(key any) (string, error) {
	var names []string
	switch k := key.(type) {
	case string:
		names = []string{k}
	case []string:
		names = k
	case [2]string:
		names = k[:]
	case typeconv.Tuple:
		for _, e := range k {
			s, ok := e.(string)
			if !ok {
				return "", fmt.Errorf("%w: %v", ErrTypeKey, key)
			}
			names = append(names, s)
		}
	default:
		return "", fmt.Errorf("%w: %v", ErrTypeKey, key)
	}
	if len(names) != d.lenKeys {
		return "", fmt.Errorf("%w: %v has %d types, want %d", ErrTypeKey, key, len(names), d.lenKeys)
	}
	return canonical(names), nil
}

func canonical(names []string) string {
	if len(names) == 1 {
		return names[0]
	}
	pair := []string{names[0], names[1]}
	sort.Strings(pair)
	return "(" + pair[0] + ", " + pair[1] + ")"
}

// Set validates v and stores it for key.
func (d *TypeParameterDict) Set(key any, v any) error {
	k, err := d.Key(key)
	if err != nil {
		return err
	}
	out, err := d.conv.Convert(v)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.values[k] = out
	d.mu.Unlock()
	return nil
}

// SetMany validates v once and stores it for every key of the cartesian
// product of groups, one group per key position.
func (d *TypeParameterDict) SetMany(v any, groups ...[]string) error {
	if len(groups) != d.lenKeys {
		return fmt.Errorf("%w: %d type groups, want %d", ErrTypeKey, len(groups), d.lenKeys)
	}
	out, err := d.conv.Convert(v)
	if err != nil {
		return err
	}
	keys := map[string]bool{}
	for _, a := range groups[0] {
		if d.lenKeys == 1 {
			keys[a] = true
			continue
		}
		for _, b := range groups[1] {
			keys[canonical([]string{a, b})] = true
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for k := range keys {
		if m, ok := out.(map[string]any); ok {
			d.values[k] = copyMap(m)
		} else {
			d.values[k] = out
		}
	}
	return nil
}

// Get returns the value for key with defaults filled in. A scalar key
// without a value or default is a required issue.
func (d *TypeParameterDict) Get(key any) (any, error) {
	k, err := d.Key(key)
	if err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.get(k)
	if !ok {
		return nil, typeconv.Issues{typeconv.IssueAt("/"+k, typeconv.CodeRequired, nil, "key", k)}
	}
	return v, nil
}

func (d *TypeParameterDict) get(k string) (any, bool) {
	v, ok := d.values[k]
	if !d.mapping {
		if ok {
			return v, true
		}
		return d.def, d.hasDefault
	}
	out := copyMap(d.defaults)
	if m, isMap := v.(map[string]any); ok && isMap {
		for f, fv := range m {
			out[f] = fv
		}
	}
	return out, true
}

// Default returns a copy of the defaults.
func (d *TypeParameterDict) Default() any {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.mapping {
		return copyMap(d.defaults)
	}
	return d.def
}

// SetDefault validates v and makes it the default. For mapping specs v may be
// partial and is merged into the current defaults.
func (d *TypeParameterDict) SetDefault(v any) error {
	out, err := d.conv.Convert(v)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.mapping {
		d.def, d.hasDefault = out, true
		return nil
	}
	for f, fv := range out.(map[string]any) {
		d.defaults[f] = fv
	}
	return nil
}

// Keys returns the keys with an explicit value, sorted.
func (d *TypeParameterDict) Keys() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	keys := make([]string, 0, len(d.values))
	for k := range d.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Missing lists, for every key over types, the values that are still unset:
// "A" for a scalar key, "A/field" for a mapping field without a value.
func (d *TypeParameterDict) Missing(types []string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []string
	for _, k := range d.keysOver(types) {
		v, ok := d.get(k)
		if !ok {
			out = append(out, k)
			continue
		}
		if !d.mapping {
			continue
		}
		m := v.(map[string]any)
		for f := range d.mandatory {
			if _, set := m[f]; !set {
				out = append(out, k+"/"+f)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Validate reports a required issue for every entry Missing returns.
func (d *TypeParameterDict) Validate(types []string) error {
	var iss typeconv.Issues
	for _, m := range d.Missing(types) {
		iss = typeconv.AppendIssues(iss, typeconv.IssueAt("/"+m, typeconv.CodeRequired, nil, "key", m))
	}
	if len(iss) == 0 {
		return nil
	}
	return iss
}

// keysOver returns the keys spanned by types: each type, or each unordered
// pair including a type paired with itself.
func (d *TypeParameterDict) keysOver(types []string) []string {
	var out []string
	for i, a := range types {
		if d.lenKeys == 1 {
			out = append(out, a)
			continue
		}
		for _, b := range types[i:] {
			out = append(out, canonical([]string{a, b}))
		}
	}
	return out
}

// State returns every explicitly set key with defaults filled in, plus the
// defaults under DefaultKey.
func (d *TypeParameterDict) State() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]any, len(d.values)+1)
	for k := range d.values {
		v, _ := d.get(k)
		out[k] = v
	}
	if d.mapping {
		out[DefaultKey] = copyMap(d.defaults)
	} else {
		out[DefaultKey] = d.def
	}
	return out
}

func (d *TypeParameterDict) String() string {
	return fmt.Sprintf("TypeParameterDict(%d, %s)", d.lenKeys, strings.Join(d.Keys(), ", "))
}
