package simtype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/typeconv"
	"github.com/reoring/typeconv/simtype"
	"github.com/reoring/typeconv/specfile"
)

func TestSpecialsRegistered(t *testing.T) {
	specials := typeconv.Default().Specials()
	for _, ty := range []*typeconv.Type{simtype.TriggerType, simtype.VariantType, simtype.FilterType, simtype.BoxType} {
		assert.Contains(t, specials, ty)
		_, ok := specfile.Lookup(ty.Name())
		assert.True(t, ok, ty.Name())
	}
}

func TestConvert_IntegratorParameters(t *testing.T) {
	conv := typeconv.MustBuild(map[string]any{
		"trigger": simtype.TriggerType,
		"kT":      simtype.Constant{V: 1},
		"filter":  simtype.All{},
		"box":     simtype.BoxType,
	})
	out, err := conv.Convert(map[string]any{
		"trigger": 100,
		"kT":      1.5,
		"filter":  simtype.Tags{Names: []string{"A"}},
		"box":     []any{10, 10, 10},
	})
	require.NoError(t, err)
	got := out.(map[string]any)
	assert.Equal(t, simtype.Periodic{Period: 100}, got["trigger"])
	assert.Equal(t, simtype.Constant{V: 1.5}, got["kT"])
	assert.Equal(t, simtype.Tags{Names: []string{"A"}}, got["filter"])
	assert.Equal(t, simtype.Cube(10), got["box"])

	ramp := simtype.Ramp{A: 1, B: 2, TStart: 0, TRamp: 10}
	out, err = conv.Convert(map[string]any{"kT": ramp, "trigger": simtype.On{Step: 5}})
	require.NoError(t, err)
	assert.Equal(t, ramp, out.(map[string]any)["kT"])
	assert.Equal(t, simtype.On{Step: 5}, out.(map[string]any)["trigger"])
}

func TestConvert_Failures(t *testing.T) {
	conv := typeconv.MustBuild(map[string]any{
		"trigger": simtype.TriggerType,
		"filter":  simtype.FilterType,
		"box":     simtype.BoxType,
	})
	cases := map[string]struct {
		in   any
		code string
	}{
		"trigger": {in: "often", code: typeconv.CodeCoercionFailed},
		"filter":  {in: "all", code: typeconv.CodeInvalidType},
		"box":     {in: []any{1, 2, 3, 4}, code: typeconv.CodeCoercionFailed},
	}
	for key, tc := range cases {
		_, err := conv.Convert(map[string]any{key: tc.in})
		iss, ok := typeconv.AsIssues(err)
		require.True(t, ok, key)
		assert.Equal(t, tc.code, iss[0].Code, key)
		assert.Equal(t, "/"+key, iss[0].Path, key)
	}

	_, err := conv.Convert(map[string]any{"trigger": 0})
	iss, ok := typeconv.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, `value 0 is not convertible into any of [trigger, int]`, iss[0].Message)
}

func TestCustomFilterIsAccepted(t *testing.T) {
	conv := typeconv.MustBuild(simtype.FilterType)
	odd := simtype.CustomFilter(func(tags []string) []int {
		var out []int
		for i := range tags {
			if i%2 == 1 {
				out = append(out, i)
			}
		}
		return out
	})
	out, err := conv.Convert(odd)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, out.(simtype.Filter).Select([]string{"A", "B", "A", "B"}))
}

func TestTriggers(t *testing.T) {
	p := simtype.Periodic{Period: 10, Phase: 5}
	assert.False(t, p.Compute(0))
	assert.True(t, p.Compute(5))
	assert.True(t, p.Compute(25))
	assert.False(t, p.Compute(26))
	assert.True(t, simtype.Before{Step: 3}.Compute(2))
	assert.False(t, simtype.Before{Step: 3}.Compute(3))
	assert.True(t, simtype.After{Step: 3}.Compute(4))
	assert.True(t, simtype.On{Step: 3}.Compute(3))
	assert.True(t, simtype.Periodic{Phase: 2}.Compute(2))
	assert.False(t, simtype.Periodic{Phase: 2}.Compute(4))
}

func TestRamp(t *testing.T) {
	r := simtype.Ramp{A: 0, B: 10, TStart: 100, TRamp: 10}
	assert.Equal(t, 0.0, r.Value(50))
	assert.Equal(t, 5.0, r.Value(105))
	assert.Equal(t, 10.0, r.Value(110))
	assert.Equal(t, 10.0, r.Value(1000))
}

func TestFilters(t *testing.T) {
	tags := []string{"A", "B", "A"}
	assert.Equal(t, []int{0, 1, 2}, simtype.All{}.Select(tags))
	assert.Equal(t, []int{0, 2}, simtype.Tags{Names: []string{"A"}}.Select(tags))
	assert.Equal(t, []int{}, simtype.Tags{Names: []string{"C"}}.Select(tags))
}

func TestFromBox(t *testing.T) {
	cases := []struct {
		in   any
		want simtype.Box
	}{
		{in: 5, want: simtype.Cube(5)},
		{in: []any{2, 3}, want: simtype.Box{Lx: 2, Ly: 3}},
		{in: []any{2, 3, 4}, want: simtype.Box{Lx: 2, Ly: 3, Lz: 4}},
		{in: []float64{2, 3, 4, 0.1, 0.2, 0.3}, want: simtype.Box{Lx: 2, Ly: 3, Lz: 4, XY: 0.1, XZ: 0.2, YZ: 0.3}},
		{in: map[string]any{"Lx": 1, "Ly": 2, "xy": 0.5}, want: simtype.Box{Lx: 1, Ly: 2, XY: 0.5}},
		{in: simtype.Box{Lx: 1, Ly: 1}, want: simtype.Box{Lx: 1, Ly: 1}},
	}
	for _, tc := range cases {
		got, err := simtype.FromBox(tc.in)
		require.NoError(t, err, "%v", tc.in)
		assert.Equal(t, tc.want, got)
	}
	assert.True(t, simtype.Box{Lx: 2, Ly: 3}.Is2D())
	assert.Equal(t, 24.0, simtype.Box{Lx: 2, Ly: 3, Lz: 4}.Volume())

	for _, bad := range []any{"5", []any{1}, map[string]any{"Ly": 1}, -1, []any{1, 0}, nil} {
		_, err := simtype.FromBox(bad)
		assert.Error(t, err, "%v", bad)
	}
}

func TestSpecfileNames(t *testing.T) {
	conv, err := specfile.Build([]byte("run: !type trigger\nbox: !type box\n"))
	require.NoError(t, err)
	out, err := conv.Convert(map[string]any{"run": 10, "box": 3})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"run": simtype.Periodic{Period: 10}, "box": simtype.Cube(3)}, out)
}
