package typeconv_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/typeconv"
)

func TestSequence_SingleChildAppliesToEveryElement(t *testing.T) {
	conv := typeconv.MustBuild([]any{typeconv.Int})
	out, err := conv.Convert([]any{1, "2", 3.0})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, out)
	assert.Equal(t, typeconv.KindSequence, conv.Kind())
}

func TestSequence_CyclesThroughChildren(t *testing.T) {
	conv := typeconv.MustBuild([]any{typeconv.Int, typeconv.String})
	out, err := conv.Convert([]any{1, "a", 2, "b", 3})
	require.NoError(t, err)
	assert.Equal(t, []any{1, "a", 2, "b", 3}, out)

	_, err = conv.Convert([]any{1, 2})
	iss, ok := typeconv.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, "/1", iss[0].Path)
	assert.Equal(t, typeconv.CodeInvalidType, iss[0].Code)
}

func TestSequence_AcceptsTypedSlicesAndArrays(t *testing.T) {
	conv := typeconv.MustBuild([]any{typeconv.Float})
	out, err := conv.Convert([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 2.0}, out)

	out, err = conv.Convert([2]int{3, 4})
	require.NoError(t, err)
	assert.Equal(t, []any{3.0, 4.0}, out)

	out, err = conv.Convert([]any{})
	require.NoError(t, err)
	assert.Equal(t, []any{}, out)
}

func TestSequence_RejectsNonSequences(t *testing.T) {
	conv := typeconv.MustBuild([]any{typeconv.String})
	for _, in := range []any{"abc", 5, map[string]any{"a": 1}, nil} {
		_, err := conv.Convert(in)
		iss, ok := typeconv.AsIssues(err)
		require.True(t, ok, "input %#v", in)
		assert.Equal(t, typeconv.CodeStructuralMismatch, iss[0].Code)
		assert.Equal(t, "/", iss[0].Path)
	}
}

func TestFixedSequence_PositionalAndArity(t *testing.T) {
	conv := typeconv.MustBuild(typeconv.Tuple{typeconv.Float, typeconv.Int})
	assert.Equal(t, typeconv.KindFixedSequence, conv.Kind())

	out, err := conv.Convert([]any{1, "2"})
	require.NoError(t, err)
	assert.Equal(t, typeconv.Tuple{1.0, 2}, out)

	_, err = conv.Convert([]any{1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, typeconv.ErrArity))
	assert.Equal(t, "arity_mismatch at /: expected exactly 2 items, received 1", err.Error())
}

func TestFixedSequence_ArityTable(t *testing.T) {
	for arity := 1; arity <= 3; arity++ {
		spec := make(typeconv.Tuple, arity)
		for i := range spec {
			spec[i] = typeconv.Int
		}
		conv := typeconv.MustBuild(spec)

		for n := 0; n <= 4; n++ {
			in := make([]any, n)
			want := make(typeconv.Tuple, n)
			for i := range in {
				in[i] = strconv.Itoa(i)
				want[i] = i
			}
			out, err := conv.Convert(in)
			if n == arity {
				require.NoError(t, err, "arity %d, length %d", arity, n)
				assert.Equal(t, want, out)
				continue
			}
			require.ErrorIs(t, err, typeconv.ErrArity, "arity %d, length %d", arity, n)
			iss, ok := typeconv.AsIssues(err)
			require.True(t, ok)
			assert.Equal(t, typeconv.CodeArityMismatch, iss[0].Code)
			assert.Equal(t, arity, iss[0].Params["expected"])
			assert.Equal(t, n, iss[0].Params["got"])
		}
	}
}

func TestSequence_SingleChildAnyLength(t *testing.T) {
	conv := typeconv.MustBuild([]any{typeconv.Int})
	cases := []struct {
		in   []any
		want []any
	}{
		{in: []any{}, want: []any{}},
		{in: []any{"7"}, want: []any{7}},
		{in: []any{1, "2", 3.0, true, "5"}, want: []any{1, 2, 3, 1, 5}},
	}
	for _, tc := range cases {
		out, err := conv.Convert(tc.in)
		require.NoError(t, err, "length %d", len(tc.in))
		assert.Equal(t, tc.want, out, "length %d", len(tc.in))
	}
}

func TestSequence_TwoChildrenCycle(t *testing.T) {
	conv := typeconv.MustBuild([]any{typeconv.Int, typeconv.Float})
	out, err := conv.Convert([]any{1, 2.0, 3, 4.0, 5})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2.0, 3, 4.0, 5}, out)
}

func TestFixedSequence_GoArraySpec(t *testing.T) {
	conv := typeconv.MustBuild([3]any{typeconv.Int, typeconv.Int, typeconv.Int})
	out, err := conv.Convert(typeconv.Tuple{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, typeconv.Tuple{1, 2, 3}, out)
	assert.Equal(t, "(1, 2, 3)", out.(typeconv.Tuple).String())
}

func TestMapping_ConvertsKnownKeysAndCopiesUnknown(t *testing.T) {
	conv := typeconv.MustBuild(map[string]any{
		"a": typeconv.Int,
		"b": map[string]any{"c": typeconv.Float},
	})
	in := map[string]any{
		"a": "3",
		"b": map[string]any{"c": 1},
		"x": "keep",
	}
	out, err := conv.Convert(in)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": 3,
		"b": map[string]any{"c": 1.0},
		"x": "keep",
	}, out)

	// input untouched
	assert.Equal(t, "3", in["a"])
	assert.Equal(t, 1, in["b"].(map[string]any)["c"])
}

func TestMapping_MissingKeysAreNotAdded(t *testing.T) {
	conv := typeconv.MustBuild(map[string]any{"a": typeconv.Int, "b": typeconv.Int})
	out, err := conv.Convert(map[string]any{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, out)
}

func TestMapping_NestedErrorPath(t *testing.T) {
	conv := typeconv.MustBuild(map[string]any{
		"b": map[string]any{"c/d": []any{typeconv.Float}},
	})
	_, err := conv.Convert(map[string]any{"b": map[string]any{"c/d": []any{1, "nope"}}})
	iss, ok := typeconv.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "/b/c~1d/1", iss[0].Path)
	assert.Equal(t, typeconv.CodeCoercionFailed, iss[0].Code)
	assert.Equal(t, `value "nope" is not convertible into any of [float]`, iss[0].Message)
}

func TestMapping_AcceptsInterfaceKeyedMaps(t *testing.T) {
	conv := typeconv.MustBuild(map[string]any{"n": typeconv.Int})
	out, err := conv.Convert(map[any]any{"n": 2.0})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": 2}, out)

	_, err = conv.Convert(map[any]any{1: 2})
	iss, _ := typeconv.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, typeconv.CodeStructuralMismatch, iss[0].Code)
}

func TestConvert_Idempotent(t *testing.T) {
	conv := typeconv.MustBuild(map[string]any{
		"pair": typeconv.Tuple{typeconv.Float, typeconv.Float},
		"list": []any{typeconv.Int},
		"name": "default",
	})
	first, err := conv.Convert(map[string]any{"pair": []any{1, 2}, "list": []any{"1"}, "name": "x"})
	require.NoError(t, err)
	second, err := conv.Convert(first)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMapping_RegistryEditing(t *testing.T) {
	conv := typeconv.MustBuild(map[string]any{"a": typeconv.Int}).(*typeconv.Mapping)
	assert.Equal(t, []string{"a"}, conv.Keys())

	require.NoError(t, conv.SetSpec("b", typeconv.Float))
	child, ok := conv.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, typeconv.KindValue, child.Kind())

	conv.Set("c", typeconv.MustBuild([]any{typeconv.Int}))
	assert.Equal(t, 3, conv.Len())

	clone := conv.Clone()
	conv.Delete("a")
	assert.Equal(t, []string{"b", "c"}, conv.Keys())
	assert.Equal(t, []string{"a", "b", "c"}, clone.Keys())

	err := conv.SetSpec("bad", nil)
	iss, ok := typeconv.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "/bad", iss[0].Path)
	assert.Equal(t, typeconv.CodeInvalidSpec, iss[0].Code)
	_, ok = conv.Lookup("bad")
	assert.False(t, ok)
}

func TestMapping_Extend(t *testing.T) {
	base := typeconv.MustBuild(map[string]any{"a": typeconv.Int}).(*typeconv.Mapping)
	ext, err := base.Extend(map[string]any{"b": typeconv.Tuple{typeconv.Int}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ext.Keys())
	assert.Equal(t, []string{"a"}, base.Keys())

	_, err = base.Extend(map[string]any{"z": []any{}})
	require.Error(t, err)
	assert.Equal(t, []string{"a"}, base.Keys())
}

func TestValue_WrapsForeignRuleErrors(t *testing.T) {
	conv := typeconv.MustBuild(func(v any) (any, error) {
		return nil, errors.New("boom")
	})
	_, err := conv.Convert(1)
	iss, ok := typeconv.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, typeconv.CodeRejected, iss[0].Code)
	assert.Equal(t, "value 1 rejected: boom", iss[0].Message)
}

func TestValue_RawFuncSeesNone(t *testing.T) {
	var seen []any
	conv := typeconv.MustBuild(func(v any) (any, error) {
		seen = append(seen, v)
		return v, nil
	})
	out, err := conv.Convert(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Equal(t, []any{nil}, seen)
}
