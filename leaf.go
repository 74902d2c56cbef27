package typeconv

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// ---- OnlyTypes ----

// TypeCheck accepts instances of its types and otherwise tries to construct
// each type from the value, in order.
type TypeCheck struct {
	types []*Type
	cfg   leafConfig
}

// OnlyTypes returns a validator that only allows instances of types. Unless
// Strict is given, conversions are attempted in the order of types.
func OnlyTypes(types []*Type, opts ...Option) *TypeCheck {
	return &TypeCheck{types: append([]*Type(nil), types...), cfg: newLeafConfig(opts)}
}

// Types returns the accepted types in coercion order.
func (c *TypeCheck) Types() []*Type { return append([]*Type(nil), c.types...) }

func (c *TypeCheck) Convert(v any) (any, error) { return c.cfg.helpValidate(v, c.validate) }

func (c *TypeCheck) validate(v any) (any, error) {
	for _, d := range c.cfg.disallow {
		if d.IsInstance(v) {
			return nil, fail(CodeDisallowedType, nil, "value", v, "type", d)
		}
	}
	for _, t := range c.types {
		if t.IsInstance(v) {
			return v, nil
		}
	}
	if c.cfg.strict {
		return nil, fail(CodeInvalidType, nil, "value", v, "types", typeNames(c.types))
	}
	var errs []error
	for _, t := range c.types {
		out, err := t.Construct(v)
		if err == nil {
			return out, nil
		}
		errs = append(errs, fmt.Errorf("%s(%s): %w", t.Name(), render(v), err))
	}
	return nil, fail(CodeCoercionFailed, errors.Join(errs...), "value", v, "types", typeNames(c.types))
}

func (c *TypeCheck) String() string {
	return "OnlyTypes(" + strings.Join(typeNames(c.types), ", ") + ")"
}

func typeNames(types []*Type) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.Name()
	}
	return out
}

// ---- OnlyFrom ----

// Membership accepts values from a fixed set of options.
type Membership struct {
	options []any
	set     map[any]struct{}
	cfg     leafConfig
}

// OnlyFrom returns a validator accepting only the given options. Numeric
// options compare by value across int, float and json.Number; strings compare
// in Unicode NFC form. It panics if an option is not comparable.
func OnlyFrom(options []any, opts ...Option) *Membership {
	m := &Membership{set: make(map[any]struct{}, len(options)), cfg: newLeafConfig(opts)}
	for _, o := range options {
		k, ok := memberKey(o)
		if !ok {
			panic(fmt.Sprintf("typeconv: OnlyFrom option %v (%T) is not comparable", o, o))
		}
		if _, dup := m.set[k]; dup {
			continue
		}
		m.set[k] = struct{}{}
		m.options = append(m.options, o)
	}
	return m
}

// Contains reports whether v is one of the options.
func (m *Membership) Contains(v any) bool {
	k, ok := memberKey(v)
	if !ok {
		return false
	}
	_, found := m.set[k]
	return found
}

// Options returns the distinct options in declaration order.
func (m *Membership) Options() []any { return append([]any(nil), m.options...) }

func (m *Membership) Convert(v any) (any, error) { return m.cfg.helpValidate(v, m.validate) }

func (m *Membership) validate(v any) (any, error) {
	if m.Contains(v) {
		return v, nil
	}
	return nil, fail(CodeInvalidEnum, ErrNotMember, "value", v, "options", m.renderOptions())
}

func (m *Membership) renderOptions() []string {
	out := make([]string, len(m.options))
	for i, o := range m.options {
		out[i] = render(o)
	}
	sort.Strings(out)
	return out
}

func (m *Membership) String() string {
	return "OnlyFrom[" + strings.Join(m.renderOptions(), ", ") + "]"
}

type numberKey float64

func memberKey(v any) (any, bool) {
	if v == nil {
		return nil, true
	}
	if s, ok := v.(string); ok {
		return norm.NFC.String(s), true
	}
	if _, isBool := v.(bool); !isBool {
		if f, err := toFloat(v); err == nil {
			return numberKey(f), true
		}
	}
	if !reflect.ValueOf(v).Comparable() {
		return nil, false
	}
	return v, true
}

// ---- OnlyIf ----

// Predicate wraps a validation function with the common leaf contract.
type Predicate struct {
	cond func(any) (any, error)
	cfg  leafConfig
}

// OnlyIf returns a validator that returns cond(v). An error from cond is a
// validation failure.
func OnlyIf(cond func(any) (any, error), opts ...Option) *Predicate {
	return &Predicate{cond: cond, cfg: newLeafConfig(opts)}
}

func (p *Predicate) Convert(v any) (any, error) {
	return p.cfg.helpValidate(v, func(v any) (any, error) {
		out, err := p.cond(v)
		if err != nil {
			return nil, asValidationError(v, err)
		}
		return out, nil
	})
}

func (p *Predicate) String() string { return "OnlyIf(" + funcName(p.cond) + ")" }

// ---- Either ----

// Alternatives tries several validators and keeps the first success.
type Alternatives struct {
	alts []Validator
	cfg  leafConfig
}

// Either returns a validator over equally valid alternatives, typically built
// converters: for instance Either([]Validator{MustBuild(Tuple{Float, Float}),
// MustBuild(Float)}).
func Either(alts []Validator, opts ...Option) *Alternatives {
	return &Alternatives{alts: append([]Validator(nil), alts...), cfg: newLeafConfig(opts)}
}

// Alternatives returns the alternatives in the order they are tried.
func (e *Alternatives) Alternatives() []Validator { return append([]Validator(nil), e.alts...) }

func (e *Alternatives) Convert(v any) (any, error) { return e.cfg.helpValidate(v, e.validate) }

func (e *Alternatives) validate(v any) (any, error) {
	var errs []error
	for _, alt := range e.alts {
		out, err := alt.Convert(v)
		if err == nil {
			return out, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", describe(alt), err))
	}
	return nil, fail(CodeNoAlternative, errors.Join(errs...), "value", v, "alternatives", e.names())
}

func (e *Alternatives) names() []string {
	out := make([]string, len(e.alts))
	for i, a := range e.alts {
		out[i] = describe(a)
	}
	return out
}

func (e *Alternatives) String() string { return "Either(" + strings.Join(e.names(), ", ") + ")" }

// ---- SetOnce ----

// OnceState is the state of a SetOnce validator.
type OnceState int

const (
	OnceUnset OnceState = iota // the rule has not accepted a value yet
	OnceSet                    // terminal: every call is rejected
)

func (s OnceState) String() string {
	if s == OnceSet {
		return "set"
	}
	return "unset"
}

// Once accepts exactly one successful value and is read-only afterwards.
type Once struct {
	mu    sync.Mutex
	state OnceState
	rule  Validator
}

// SetOnce wraps rule so that it validates a single value. A failed first
// attempt leaves the validator unset.
func SetOnce(rule Validator) *Once { return &Once{rule: rule} }

// State reports whether a value has been accepted.
func (o *Once) State() OnceState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Once) Convert(v any) (any, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == OnceSet {
		return nil, fail(CodeReadOnly, ErrReadOnly)
	}
	out, err := o.rule.Convert(v)
	if err != nil {
		return nil, err
	}
	o.state = OnceSet
	o.rule = nil
	return out, nil
}

func (o *Once) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == OnceSet {
		return "SetOnce(set)"
	}
	return "SetOnce(" + describe(o.rule) + ")"
}

// ---- range-checked reals ----

type realCheck struct{ strictlyPositive bool }

// PositiveReal coerces to float64 and rejects values <= 0.
var PositiveReal Validator = realCheck{strictlyPositive: true}

// NonnegativeReal coerces to float64 and rejects values < 0.
var NonnegativeReal Validator = realCheck{}

func (r realCheck) Convert(v any) (any, error) {
	f, err := toFloat(v)
	if err != nil {
		return nil, fail(CodeCoercionFailed, err, "value", v, "types", []string{Float.Name()})
	}
	if r.strictlyPositive && f <= 0 {
		return nil, fail(CodeOutOfRange, nil, "value", f, "constraint", Text("positive"))
	}
	if !r.strictlyPositive && f < 0 {
		return nil, fail(CodeOutOfRange, nil, "value", f, "constraint", Text("nonnegative"))
	}
	return f, nil
}

func (r realCheck) String() string {
	if r.strictlyPositive {
		return "PositiveReal"
	}
	return "NonnegativeReal"
}

// describe names a validator for messages.
func describe(v Validator) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", v)
}
