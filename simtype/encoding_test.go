package simtype_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/typeconv"
	"github.com/reoring/typeconv/simtype"
)

func TestJSONRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		spec *typeconv.Type
		in   any
	}{
		{"periodic", simtype.TriggerType, simtype.Periodic{Period: 100, Phase: 3}},
		{"before", simtype.TriggerType, simtype.Before{Step: 10}},
		{"after", simtype.TriggerType, simtype.After{Step: 10}},
		{"on", simtype.TriggerType, simtype.On{Step: 7}},
		{"constant", simtype.VariantType, simtype.Constant{V: 1.5}},
		{"ramp", simtype.VariantType, simtype.Ramp{A: 1, B: 2, TStart: 5, TRamp: 100}},
		{"all", simtype.FilterType, simtype.All{}},
		{"tags", simtype.FilterType, simtype.Tags{Names: []string{"A", "B"}}},
		{"triclinic box", simtype.BoxType, simtype.Box{Lx: 10, Ly: 10, Lz: 10, XY: 0.5, XZ: 0.25, YZ: 0.125}},
		{"2d box", simtype.BoxType, simtype.Box{Lx: 4, Ly: 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.in)
			require.NoError(t, err)
			var decoded any
			require.NoError(t, json.Unmarshal(data, &decoded))

			out, err := typeconv.MustBuild(tc.spec).Convert(decoded)
			require.NoError(t, err, spew.Sdump(decoded))
			assert.Equal(t, tc.in, out, spew.Sdump(decoded))
		})
	}
}

func TestJSONForms(t *testing.T) {
	data, err := json.Marshal(map[string]any{
		"trigger": simtype.Periodic{Period: 100},
		"kT":      simtype.Constant{V: 1.5},
		"box":     simtype.Box{Lx: 1, Ly: 2, Lz: 3, XY: 0.5},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"trigger": {"type": "periodic", "period": 100, "phase": 0},
		"kT": 1.5,
		"box": {"Lx": 1, "Ly": 2, "Lz": 3, "xy": 0.5, "xz": 0, "yz": 0}
	}`, string(data))
}

func TestMappingFormErrors(t *testing.T) {
	cases := []struct {
		spec *typeconv.Type
		in   map[string]any
	}{
		{simtype.TriggerType, map[string]any{"type": "weekly", "period": 1}},
		{simtype.TriggerType, map[string]any{"type": "periodic"}},
		{simtype.TriggerType, map[string]any{"period": 10}},
		{simtype.VariantType, map[string]any{"type": "ramp", "A": 1}},
		{simtype.FilterType, map[string]any{"type": "tags"}},
		{simtype.FilterType, map[string]any{"type": "tags", "names": []any{1}}},
	}
	for _, tc := range cases {
		_, err := typeconv.MustBuild(tc.spec).Convert(tc.in)
		iss, ok := typeconv.AsIssues(err)
		require.True(t, ok, spew.Sdump(tc.in))
		assert.Equal(t, typeconv.CodeCoercionFailed, iss[0].Code, spew.Sdump(tc.in))
	}
}
