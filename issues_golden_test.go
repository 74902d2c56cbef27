package typeconv_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/reoring/typeconv"
	"github.com/reoring/typeconv/i18n"
)

func TestIssues_Golden(t *testing.T) {
	type tcase struct {
		name string
		run  func() error
	}
	convert := func(spec, in any) func() error {
		return func() error {
			_, err := typeconv.MustBuild(spec).Convert(in)
			return err
		}
	}
	cases := []tcase{
		{"arity", convert(typeconv.Tuple{typeconv.Int, typeconv.Int}, []any{1})},
		{"nested coercion", convert(
			map[string]any{"box": typeconv.Tuple{typeconv.Float, typeconv.Float, typeconv.Float}},
			map[string]any{"box": []any{1, 2, "z"}})},
		{"structural", convert([]any{typeconv.Int}, 7)},
		{"enum", convert(
			map[string]any{"mode": typeconv.OnlyFrom([]any{"fast", "slow"})},
			map[string]any{"mode": "medium"})},
		{"none", convert(map[string]any{"n": typeconv.Int}, map[string]any{"n": nil})},
		{"range", convert(map[string]any{"kT": typeconv.PositiveReal}, map[string]any{"kT": -1})},
		{"shape", convert(
			[]any{typeconv.NDArray(typeconv.Float, []int{3}, typeconv.OrderC)},
			[]any{[]any{1, 2}})},
		{"invalid spec", func() error {
			_, err := typeconv.Build(map[string]any{"a": nil})
			return err
		}},
		{"summary", func() error {
			return typeconv.Issues{
				{Path: "/a", Code: "x", Message: "m1"},
				{Path: "/b", Code: "y", Message: "m2"},
				{Path: "", Code: "z", Message: "m3"},
				{Path: "/d", Code: "w", Message: "m4"},
			}
		}},
		{"japanese", func() error {
			i18n.SetLanguage("ja-JP")
			defer i18n.SetLanguage("en")
			_, err := typeconv.MustBuild(typeconv.Tuple{typeconv.Int, typeconv.Int}).Convert([]any{1})
			return err
		}},
	}

	var b strings.Builder
	for _, tc := range cases {
		fmt.Fprintf(&b, "%s: %v\n", tc.name, tc.run())
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "issues", []byte(b.String()))
}
