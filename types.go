package typeconv

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Type is a named value class usable as a specification. It knows how to
// recognize its instances and, optionally, how to construct an instance from
// an arbitrary value. Types form a single-inheritance hierarchy through Base,
// which drives the special-table precedence scan.
type Type struct {
	name      string
	base      *Type
	instance  func(v any) bool
	construct func(v any) (any, error)
}

// NewType declares a type. base may be nil. construct may be nil, in which case
// the type cannot be coerced into and only its instances are accepted.
func NewType(name string, base *Type, instance func(v any) bool, construct func(v any) (any, error)) *Type {
	if instance == nil {
		panic("typeconv: NewType requires an instance predicate")
	}
	return &Type{name: name, base: base, instance: instance, construct: construct}
}

// Name returns the type name.
func (t *Type) Name() string { return t.name }

// Base returns the parent type or nil.
func (t *Type) Base() *Type { return t.base }

func (t *Type) String() string { return t.name }

// IsInstance reports whether v is an instance of t. Instances of subtypes are
// not instances of t unless t's predicate accepts them.
func (t *Type) IsInstance(v any) bool { return t.instance(v) }

// SubtypeOf reports whether t is u or derives from u.
func (t *Type) SubtypeOf(u *Type) bool {
	for cur := t; cur != nil; cur = cur.base {
		if cur == u {
			return true
		}
	}
	return false
}

// Construct builds an instance of t from v.
func (t *Type) Construct(v any) (any, error) {
	if t.construct == nil {
		return nil, fmt.Errorf("%s cannot be constructed from %T", t.name, v)
	}
	return t.construct(v)
}

var errNotNumeric = errors.New("not a number")

// Built-in types. Int, Float, Bool and String map onto the Go kinds produced by
// the value sources (int, float64, bool, string); other integer and float kinds
// and json.Number are coerced.
var (
	Int = NewType("int", nil,
		is[int],
		constructInt)
	Float = NewType("float", nil,
		is[float64],
		constructFloat)
	Bool = NewType("bool", nil,
		is[bool],
		constructBool)
	String = NewType("str", nil,
		is[string],
		func(v any) (any, error) { return fmt.Sprint(v), nil })
	// Any accepts every non-nil value.
	Any = NewType("any", nil, func(v any) bool { return v != nil }, nil)
)

func is[T any](v any) bool {
	_, ok := v.(T)
	return ok
}

func constructInt(v any) (any, error) {
	switch t := v.(type) {
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return constructInt(f)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return nil, err
		}
		return int(i), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("%d overflows int", u)
		}
		return int(u), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("cannot convert %v to int", f)
		}
		return int(math.Trunc(f)), nil
	}
	return nil, fmt.Errorf("cannot convert %T to int", v)
}

func constructFloat(v any) (any, error) {
	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// toFloat converts numeric values, numeric strings and booleans to float64.
func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return t.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return 0, errNotNumeric
}

func constructBool(v any) (any, error) {
	switch t := v.(type) {
	case string:
		return strconv.ParseBool(strings.TrimSpace(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return f != 0, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %T to bool", v)
	}
	return f != 0, nil
}

var (
	reflectTypesMu sync.Mutex
	reflectTypes   = map[reflect.Type]*Type{}
)

// TypeFor returns the Type describing Go type rt. Instances are values whose
// dynamic type is assignable to rt (or implements it, for interfaces).
// Construction uses reflect conversion, excluding numeric-to-string
// conversions. The same *Type is returned for repeated calls.
func TypeFor(rt reflect.Type) *Type {
	switch rt {
	case reflect.TypeOf(0):
		return Int
	case reflect.TypeOf(0.0):
		return Float
	case reflect.TypeOf(false):
		return Bool
	case reflect.TypeOf(""):
		return String
	}
	reflectTypesMu.Lock()
	defer reflectTypesMu.Unlock()
	if t, ok := reflectTypes[rt]; ok {
		return t
	}
	t := NewType(rt.String(), nil,
		func(v any) bool { return v != nil && reflect.TypeOf(v).AssignableTo(rt) },
		func(v any) (any, error) {
			if v == nil {
				return nil, fmt.Errorf("cannot convert none to %s", rt)
			}
			rv := reflect.ValueOf(v)
			if rt.Kind() == reflect.String && rv.Kind() != reflect.String {
				return nil, fmt.Errorf("cannot convert %T to %s", v, rt)
			}
			if !rv.Type().ConvertibleTo(rt) {
				return nil, fmt.Errorf("cannot convert %T to %s", v, rt)
			}
			return rv.Convert(rt).Interface(), nil
		})
	reflectTypes[rt] = t
	return t
}

// TypeOf returns the Type of a literal value, as used when a literal is given
// as a specification.
func TypeOf(v any) *Type {
	if v == nil {
		return nil
	}
	return TypeFor(reflect.TypeOf(v))
}
