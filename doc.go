// Package typeconv validates and converts untyped, nested user data
// (sequences, fixed-length tuples, string-keyed mappings and scalars) against
// a declarative specification.
//
// A specification is an ordinary value whose shape mirrors the data:
//
//   - a slice converts variable-length sequences, cycling over its elements;
//   - a Tuple (or Go array) converts fixed-length sequences positionally;
//   - a map[string]any converts mappings, leaving unknown keys untouched;
//   - a *Type, a Validator, a func(any) (any, error) or a literal default value
//     becomes a leaf rule.
//
// Build turns a specification into a Converter tree once; Convert then
// returns a freshly built value and reports failures as Issues whose paths are
// JSON Pointers into the input:
//
//	conv := typeconv.MustBuild(map[string]any{
//		"kT":    typeconv.PositiveReal,
//		"tags":  []any{typeconv.String},
//		"box":   typeconv.Tuple{typeconv.Float, typeconv.Float, typeconv.Float},
//	})
//	out, err := conv.Convert(input)
//	if iss, ok := typeconv.AsIssues(err); ok {
//		fmt.Println(iss[0].Path) // e.g. /box/2
//	}
//
// Leaf rules are OnlyTypes, OnlyFrom, OnlyIf, Either, SetOnce, NDArray,
// PositiveReal and NonnegativeReal. Domain packages add their own rules for
// special types with RegisterSpecial.
//
// Preprocess and postprocess hook failures are returned as *HookError and are
// not validation issues. Converters are safe for concurrent use as long as
// their Mapping registries are not edited at the same time; SetOnce is
// serialized internally.
package typeconv
