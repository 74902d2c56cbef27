package typeconv_test

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/typeconv"
)

func TestNDArray_ShapeWildcard(t *testing.T) {
	v := typeconv.NDArray(typeconv.Float, []int{typeconv.AnyDim, 3}, typeconv.OrderC)
	out, err := v.Convert([]any{[]any{1, 2, 3}, []any{4, 5, "6"}})
	require.NoError(t, err)
	arr := out.(*typeconv.Array)
	assert.Equal(t, typeconv.Shape{2, 3}, arr.Shape())
	assert.Equal(t, 6.0, arr.At(1, 2))
	assert.Equal(t, 2, arr.NDim())
	assert.Equal(t, 6, arr.Size())
	assert.Equal(t, []any{[]any{1.0, 2.0, 3.0}, []any{4.0, 5.0, 6.0}}, arr.ToNested())
}

func TestNDArray_ShapeMismatch(t *testing.T) {
	v := typeconv.NDArray(typeconv.Float, []int{3}, typeconv.OrderK)
	_, err := v.Convert([]any{1, 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, typeconv.ErrShape))
	assert.Equal(t, "shape_mismatch at /: array of shape (2,) does not match shape (3,)", err.Error())

	_, err = typeconv.NDArray(typeconv.Float, nil, "").Convert(5)
	iss, _ := typeconv.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, "array of shape () does not match shape (*,)", iss[0].Message)
}

func TestNDArray_RaggedAndUncoercible(t *testing.T) {
	v := typeconv.NDArray(typeconv.Float, []int{typeconv.AnyDim, typeconv.AnyDim}, typeconv.OrderC)
	_, err := v.Convert([]any{[]any{1, 2}, []any{3}})
	iss, ok := typeconv.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, typeconv.CodeCoercionFailed, iss[0].Code)
	assert.Contains(t, iss[0].Cause.Error(), "inhomogeneous shape")

	_, err = v.Convert([]any{[]any{"a"}})
	iss, ok = typeconv.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, typeconv.CodeCoercionFailed, iss[0].Code)
}

func TestNDArray_Order(t *testing.T) {
	f := typeconv.NDArray(typeconv.Int, []int{2, 2}, typeconv.OrderF)
	out, err := f.Convert([]any{[]any{1, 2}, []any{3, 4}})
	require.NoError(t, err)
	arr := out.(*typeconv.Array)
	assert.Equal(t, typeconv.OrderF, arr.Order())
	assert.Equal(t, []any{1, 3, 2, 4}, arr.Data())
	assert.Equal(t, 2, arr.At(0, 1))

	// K keeps the layout of an array input; C relays it out.
	kept, err := typeconv.NDArray(typeconv.Int, []int{2, 2}, typeconv.OrderK).Convert(arr)
	require.NoError(t, err)
	assert.Equal(t, typeconv.OrderF, kept.(*typeconv.Array).Order())

	c, err := typeconv.NDArray(typeconv.Int, []int{2, 2}, typeconv.OrderC).Convert(arr)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3, 4}, c.(*typeconv.Array).Data())
	assert.True(t, arr.Equal(c.(*typeconv.Array)))
}

func TestArrayType_DefaultSpecial(t *testing.T) {
	conv := typeconv.MustBuild(typeconv.ArrayType)
	out, err := conv.Convert([]any{1, 2})
	require.NoError(t, err)
	arr := out.(*typeconv.Array)
	assert.Equal(t, typeconv.Float, arr.DType())
	assert.Equal(t, []any{1.0, 2.0}, arr.Data())
	assert.Equal(t, "array([1, 2], dtype=float)", arr.String())

	// an array literal is a default for the same rule
	def, err := typeconv.NewArray(typeconv.Float, []any{0}, typeconv.OrderC)
	require.NoError(t, err)
	conv = typeconv.MustBuild(map[string]any{"a": def})
	out, err = conv.Convert(map[string]any{"a": []any{3, 4, 5}})
	require.NoError(t, err)
	assert.Equal(t, typeconv.Shape{3}, out.(map[string]any)["a"].(*typeconv.Array).Shape())
}

func TestSequence_IteratesArrays(t *testing.T) {
	arr, err := typeconv.NewArray(typeconv.Float, []any{1, 2}, typeconv.OrderC)
	require.NoError(t, err)
	out, err := typeconv.MustBuild([]any{typeconv.Int}).Convert(arr)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, out)
}

func TestArray_MarshalJSON(t *testing.T) {
	a, err := typeconv.NewArray(typeconv.Float, []any{[]any{1, 2}, []any{3, 4}}, typeconv.OrderF)
	require.NoError(t, err)
	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `[[1, 2], [3, 4]]`, string(data))
}
