package typeconv

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Order is the memory layout of an Array.
type Order string

const (
	OrderC Order = "C" // row-major
	OrderF Order = "F" // column-major
	OrderK Order = "K" // keep the input layout
	OrderA Order = "A" // like K
)

// AnyDim is a shape wildcard matching any extent along its axis.
const AnyDim = -1

// Shape lists the extent of each axis.
type Shape []int

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		if d == AnyDim {
			parts[i] = "*"
		} else {
			parts[i] = strconv.Itoa(d)
		}
	}
	if len(s) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Matches reports whether s fits the pattern p, where AnyDim matches any
// extent.
func (s Shape) Matches(p Shape) bool {
	if len(s) != len(p) {
		return false
	}
	for i, d := range p {
		if d != AnyDim && d != s[i] {
			return false
		}
	}
	return true
}

// Array is a dense n-dimensional array with a single element type. Data is
// stored flat in C or F order.
type Array struct {
	dtype *Type
	shape Shape
	order Order
	data  []any
}

// ArrayType is the type of *Array values. It is a special type: using it as a
// specification yields an NDArray of floats with one axis of any extent.
var ArrayType = NewType("array", nil, is[*Array], nil)

var errRagged = errors.New("inhomogeneous shape")

// NewArray builds an Array of dtype elements from nested sequences, a scalar
// (zero dimensions) or another Array. order selects the storage layout; K and
// A keep the layout of an Array input and use C order otherwise.
func NewArray(dtype *Type, v any, order Order) (*Array, error) {
	var (
		shape Shape
		flat  []any
		from  = OrderC
	)
	if src, ok := v.(*Array); ok {
		shape, flat, from = src.Shape(), src.Data(), src.order
	} else {
		s, f, err := inferShape(v)
		if err != nil {
			return nil, err
		}
		shape, flat = s, f
	}
	for i, e := range flat {
		if dtype.IsInstance(e) {
			continue
		}
		c, err := dtype.Construct(e)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		flat[i] = c
	}
	to := from
	if order == OrderC || order == OrderF {
		to = order
	}
	return &Array{dtype: dtype, shape: shape, order: to, data: relayout(flat, shape, from, to)}, nil
}

func inferShape(v any) (Shape, []any, error) {
	elems, ok := asSequence(v)
	if !ok {
		return Shape{}, []any{v}, nil
	}
	if len(elems) == 0 {
		return Shape{0}, nil, nil
	}
	var (
		sub  Shape
		flat []any
	)
	for i, e := range elems {
		s, f, err := inferShape(e)
		if err != nil {
			return nil, nil, err
		}
		if i == 0 {
			sub = s
		} else if !sameShape(s, sub) {
			return nil, nil, fmt.Errorf("%w: element %d has shape %s, expected %s", errRagged, i, s, sub)
		}
		flat = append(flat, f...)
	}
	return append(Shape{len(elems)}, sub...), flat, nil
}

func sameShape(a, b Shape) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func strides(shape Shape, o Order) []int {
	st := make([]int, len(shape))
	acc := 1
	if o == OrderF {
		for i := 0; i < len(shape); i++ {
			st[i] = acc
			acc *= shape[i]
		}
		return st
	}
	for i := len(shape) - 1; i >= 0; i-- {
		st[i] = acc
		acc *= shape[i]
	}
	return st
}

func relayout(data []any, shape Shape, from, to Order) []any {
	out := make([]any, len(data))
	if from == to || len(shape) < 2 {
		copy(out, data)
		return out
	}
	fs, ts := strides(shape, from), strides(shape, to)
	idx := make([]int, len(shape))
	for n := 0; n < len(data); n++ {
		src, dst := 0, 0
		for d, i := range idx {
			src += i * fs[d]
			dst += i * ts[d]
		}
		out[dst] = data[src]
		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < shape[d] {
				break
			}
			idx[d] = 0
		}
	}
	return out
}

// DType returns the element type.
func (a *Array) DType() *Type { return a.dtype }

// Shape returns a copy of the shape.
func (a *Array) Shape() Shape { return append(Shape{}, a.shape...) }

// NDim returns the number of axes.
func (a *Array) NDim() int { return len(a.shape) }

// Size returns the number of elements.
func (a *Array) Size() int { return len(a.data) }

// Order returns the storage layout, C or F.
func (a *Array) Order() Order { return a.order }

// Data returns a copy of the flat data in storage order.
func (a *Array) Data() []any { return append([]any(nil), a.data...) }

// At returns the element at the given multi-index. It panics when the index
// does not address an element.
func (a *Array) At(idx ...int) any {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("typeconv: index of %d axes for array of %d", len(idx), len(a.shape)))
	}
	st := strides(a.shape, a.order)
	off := 0
	for d, i := range idx {
		if i < 0 || i >= a.shape[d] {
			panic(fmt.Sprintf("typeconv: index %d out of range for axis %d of extent %d", i, d, a.shape[d]))
		}
		off += i * st[d]
	}
	return a.data[off]
}

// ToNested returns the elements as nested []any, row-major; a zero-dimensional
// array yields its only element.
func (a *Array) ToNested() any {
	idx := make([]int, 0, len(a.shape))
	var walk func() any
	walk = func() any {
		d := len(idx)
		if d == len(a.shape) {
			return a.At(idx...)
		}
		out := make([]any, a.shape[d])
		for i := range out {
			idx = append(idx, i)
			out[i] = walk()
			idx = idx[:d]
		}
		return out
	}
	return walk()
}

// MarshalJSON encodes the array as its nested lists.
func (a *Array) MarshalJSON() ([]byte, error) { return json.Marshal(a.ToNested()) }

// Equal reports whether b has the same element type, shape and elements,
// regardless of storage order.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.dtype == b.dtype && sameShape(a.shape, b.shape) && reflect.DeepEqual(a.ToNested(), b.ToNested())
}

func (a *Array) String() string {
	return "array(" + render(a.ToNested()) + ", dtype=" + a.dtype.Name() + ")"
}

// ArrayCheck validates and coerces values into Arrays.
type ArrayCheck struct {
	dtype *Type
	shape Shape
	order Order
	cfg   leafConfig
}

// NDArray returns a validator converting values into Arrays of dtype whose
// shape matches shape, AnyDim entries matching any extent. A nil shape means a
// single axis of any extent and an empty order means OrderK.
func NDArray(dtype *Type, shape []int, order Order, opts ...Option) *ArrayCheck {
	if shape == nil {
		shape = []int{AnyDim}
	}
	if order == "" {
		order = OrderK
	}
	return &ArrayCheck{dtype: dtype, shape: append(Shape{}, shape...), order: order, cfg: newLeafConfig(opts)}
}

// DType returns the element type.
func (c *ArrayCheck) DType() *Type { return c.dtype }

// Shape returns the shape pattern.
func (c *ArrayCheck) Shape() Shape { return append(Shape{}, c.shape...) }

// Order returns the requested layout.
func (c *ArrayCheck) Order() Order { return c.order }

func (c *ArrayCheck) Convert(v any) (any, error) { return c.cfg.helpValidate(v, c.validate) }

func (c *ArrayCheck) validate(v any) (any, error) {
	arr, err := NewArray(c.dtype, v, c.order)
	if err != nil {
		return nil, fail(CodeCoercionFailed, err, "value", v, "types", []string{"array[" + c.dtype.Name() + "]"})
	}
	if !arr.shape.Matches(c.shape) {
		return nil, fail(CodeShapeMismatch, ErrShape, "expected", c.shape, "got", arr.shape)
	}
	return arr, nil
}

func (c *ArrayCheck) String() string {
	return "NDArray(" + c.dtype.Name() + ", " + c.shape.String() + ", " + string(c.order) + ")"
}
