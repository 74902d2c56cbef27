// Package simtype provides the simulation value types used in parameter
// specifications: triggers, variants, particle filters and boxes.
//
// Importing the package registers each type as a special type of the default
// typeconv builder and under its name ("trigger", "variant", "filter", "box")
// for specification files, so a spec may name TriggerType or hold a Trigger
// default and get the conversions below:
//
//	trigger:  int n          -> Periodic{Period: n}
//	variant:  number x       -> Constant{V: x}
//	filter:   Filter values only
//	box:      number, [Lx, Ly], [Lx, Ly, Lz], 6 numbers or {Lx: .., ...} -> Box
package simtype

import (
	"github.com/reoring/typeconv"
	"github.com/reoring/typeconv/specfile"
)

func init() {
	for _, e := range []struct {
		t    *typeconv.Type
		rule typeconv.Validator
	}{
		{TriggerType, TriggerRule},
		{VariantType, VariantRule},
		{FilterType, FilterRule},
		{BoxType, BoxRule},
	} {
		typeconv.RegisterSpecial(e.t, e.rule)
		specfile.Register(e.t.Name(), e.t)
	}
}
