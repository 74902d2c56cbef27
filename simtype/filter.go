package simtype

import (
	"slices"

	"github.com/reoring/typeconv"
)

// Filter selects particles, given the type tag of every particle, and
// returns the selected indices in increasing order.
type Filter interface {
	Select(tags []string) []int
}

// All selects every particle.
type All struct{}

func (All) Select(tags []string) []int {
	out := make([]int, len(tags))
	for i := range tags {
		out[i] = i
	}
	return out
}

func (All) String() string { return "All()" }

// Tags selects particles whose type tag is one of Names.
type Tags struct{ Names []string }

func (f Tags) Select(tags []string) []int {
	out := []int{}
	for i, t := range tags {
		if slices.Contains(f.Names, t) {
			out = append(out, i)
		}
	}
	return out
}

// CustomFilter adapts a function to Filter.
type CustomFilter func(tags []string) []int

func (f CustomFilter) Select(tags []string) []int { return f(tags) }

// FilterType is the special type of Filter values. Filters are never
// coerced; only their encoded mapping form converts back.
var FilterType = typeconv.NewType("filter", nil, func(v any) bool {
	_, ok := v.(Filter)
	return ok
}, nil)

// FilterRule is the rule registered for FilterType.
var FilterRule = typeconv.OnlyTypes([]*typeconv.Type{FilterType}, typeconv.Strict(), typeconv.WithPreprocess(toFilter))

func toFilter(v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return v, nil
	}
	f, err := filterFromMap(m)
	if err != nil {
		return nil, notConvertible(v, err, FilterType)
	}
	return f, nil
}
