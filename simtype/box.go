package simtype

import (
	"errors"
	"fmt"

	"github.com/reoring/typeconv"
)

// Box is a triclinic simulation box: edge lengths and tilt factors. Lz is 0
// for two-dimensional boxes.
type Box struct {
	Lx float64 `json:"Lx"`
	Ly float64 `json:"Ly"`
	Lz float64 `json:"Lz"`
	XY float64 `json:"xy"`
	XZ float64 `json:"xz"`
	YZ float64 `json:"yz"`
}

// Cube returns the cubic box of edge l.
func Cube(l float64) Box { return Box{Lx: l, Ly: l, Lz: l} }

// Is2D reports whether the box is two-dimensional.
func (b Box) Is2D() bool { return b.Lz == 0 }

// Volume returns the volume, or the area of a two-dimensional box.
func (b Box) Volume() float64 {
	if b.Is2D() {
		return b.Lx * b.Ly
	}
	return b.Lx * b.Ly * b.Lz
}

func (b Box) String() string {
	return fmt.Sprintf("Box(Lx=%g, Ly=%g, Lz=%g, xy=%g, xz=%g, yz=%g)", b.Lx, b.Ly, b.Lz, b.XY, b.XZ, b.YZ)
}

func (b Box) validate() error {
	if b.Lx <= 0 || b.Ly <= 0 || b.Lz < 0 {
		return fmt.Errorf("box lengths must be positive, got %s", b)
	}
	return nil
}

var errBoxShape = errors.New("expected a number, 2, 3 or 6 numbers, or a mapping of Lx, Ly, Lz, xy, xz, yz")

// FromBox builds a Box from a Box, a number (cube), a sequence of 2 (Lx, Ly),
// 3 (Lx, Ly, Lz) or 6 (Lx, Ly, Lz, xy, xz, yz) numbers, or a mapping with
// those keys where Lz and the tilts default to 0.
func FromBox(v any) (Box, error) {
	var b Box
	switch t := v.(type) {
	case Box:
		b = t
	case *Box:
		if t == nil {
			return Box{}, errBoxShape
		}
		b = *t
	default:
		var err error
		b, err = boxFromValue(v)
		if err != nil {
			return Box{}, err
		}
	}
	if err := b.validate(); err != nil {
		return Box{}, err
	}
	return b, nil
}

var boxFields = typeconv.MustBuild(map[string]any{
	"Lx": typeconv.Float, "Ly": typeconv.Float, "Lz": typeconv.Float,
	"xy": typeconv.Float, "xz": typeconv.Float, "yz": typeconv.Float,
})

var boxLengths = typeconv.MustBuild([]any{typeconv.Float})

func boxFromValue(v any) (Box, error) {
	if f, err := typeconv.Float.Construct(v); err == nil {
		if _, isString := v.(string); !isString {
			return Cube(f.(float64)), nil
		}
	}
	if out, err := boxFields.Convert(v); err == nil {
		m := out.(map[string]any)
		if _, ok := m["Lx"]; !ok {
			return Box{}, errBoxShape
		}
		if _, ok := m["Ly"]; !ok {
			return Box{}, errBoxShape
		}
		get := func(k string) float64 {
			f, _ := m[k].(float64)
			return f
		}
		return Box{Lx: get("Lx"), Ly: get("Ly"), Lz: get("Lz"), XY: get("xy"), XZ: get("xz"), YZ: get("yz")}, nil
	}
	out, err := boxLengths.Convert(v)
	if err != nil {
		return Box{}, fmt.Errorf("%w: %v", errBoxShape, err)
	}
	l := out.([]any)
	f := func(i int) float64 { return l[i].(float64) }
	switch len(l) {
	case 2:
		return Box{Lx: f(0), Ly: f(1)}, nil
	case 3:
		return Box{Lx: f(0), Ly: f(1), Lz: f(2)}, nil
	case 6:
		return Box{Lx: f(0), Ly: f(1), Lz: f(2), XY: f(3), XZ: f(4), YZ: f(5)}, nil
	}
	return Box{}, errBoxShape
}

// BoxType is the special type of Box values.
var BoxType = typeconv.NewType("box", nil, func(v any) bool {
	_, ok := v.(Box)
	return ok
}, nil)

// BoxRule is the rule registered for BoxType.
var BoxRule = typeconv.OnlyTypes([]*typeconv.Type{BoxType}, typeconv.WithPreprocess(toBox))

func toBox(v any) (any, error) {
	b, err := FromBox(v)
	if err != nil {
		return nil, notConvertible(v, err, BoxType)
	}
	return b, nil
}
