package source

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// CUE evaluates a CUE document, which must be concrete, and decodes its JSON
// export.
func CUE(data []byte, opts Options) (any, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data)
	if err := v.Err(); err != nil {
		return nil, parseIssue("/", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, parseIssue("/", fmt.Errorf("not concrete: %w", err))
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return nil, parseIssue("/", err)
	}
	return JSON(b, opts)
}
