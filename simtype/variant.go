package simtype

import (
	"fmt"

	"github.com/reoring/typeconv"
)

// Variant is a scalar that varies with the timestep.
type Variant interface {
	Value(step int) float64
}

// Constant is a Variant with a fixed value.
type Constant struct{ V float64 }

func (c Constant) Value(int) float64 { return c.V }

func (c Constant) String() string { return fmt.Sprintf("Constant(%g)", c.V) }

// Ramp holds A until TStart, moves linearly to B over TRamp steps and holds
// B afterwards.
type Ramp struct {
	A, B          float64
	TStart, TRamp int
}

func (r Ramp) Value(step int) float64 {
	switch {
	case step <= r.TStart:
		return r.A
	case step >= r.TStart+r.TRamp:
		return r.B
	}
	frac := float64(step-r.TStart) / float64(r.TRamp)
	return r.A + (r.B-r.A)*frac
}

func (r Ramp) String() string {
	return fmt.Sprintf("Ramp(A=%g, B=%g, t_start=%d, t_ramp=%d)", r.A, r.B, r.TStart, r.TRamp)
}

// VariantType is the special type of Variant values. Numbers convert to
// Constant variants.
var VariantType = typeconv.NewType("variant", nil, func(v any) bool {
	_, ok := v.(Variant)
	return ok
}, nil)

// VariantRule is the rule registered for VariantType.
var VariantRule = typeconv.OnlyTypes([]*typeconv.Type{VariantType}, typeconv.WithPreprocess(toVariant))

func toVariant(v any) (any, error) {
	if vr, ok := v.(Variant); ok {
		return vr, nil
	}
	if m, ok := v.(map[string]any); ok {
		r, err := rampFromMap(m)
		if err != nil {
			return nil, notConvertible(v, err, VariantType, typeconv.Float)
		}
		return r, nil
	}
	f, err := typeconv.Float.Construct(v)
	if err != nil {
		return nil, notConvertible(v, err, VariantType, typeconv.Float)
	}
	return Constant{V: f.(float64)}, nil
}
