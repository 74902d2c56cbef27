package typeconv

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeCoercionFailed     = "coercion_failed"
	CodeDisallowedType     = "disallowed_type"
	CodeInvalidType        = "invalid_type"
	CodeInvalidEnum        = "invalid_enum"
	CodeArityMismatch      = "arity_mismatch"
	CodeStructuralMismatch = "structural_mismatch"
	CodeShapeMismatch      = "shape_mismatch"
	CodeReadOnly           = "read_only"
	CodeNullNotAllowed     = "null_not_allowed"
	CodeOutOfRange         = "out_of_range"
	CodeNoAlternative      = "no_alternative"
	CodeRejected           = "rejected"
	CodeInvalidSpec        = "invalid_spec"
	// Used by collaborators (param, source) that share the error model.
	CodeRequired     = "required"
	CodeParseError   = "parse_error"
	CodeDuplicateKey = "duplicate_key"
)

// Sentinel causes attached to issues whose failure has no underlying error of
// its own. They make errors.Is usable across the nested error chain.
var (
	ErrNullNotAllowed = errors.New("typeconv: none is not allowed")
	ErrReadOnly       = errors.New("typeconv: attribute is read-only")
	ErrArity          = errors.New("typeconv: arity mismatch")
	ErrShape          = errors.New("typeconv: shape mismatch")
	ErrNotMember      = errors.New("typeconv: value not in options")
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/epsilon).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	// Params carries structured parameters (e.g., {"expected":3, "got":2})
	// for i18n and rendering.
	Params map[string]any
}

// Issues is the single error kind returned by converters.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_enum at /mode: value "x" not in options [...]
		fmt.Fprintf(b, "%s at %s: %s", it.Code, pathOrRoot(it.Path), it.Message)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes so errors.Is and errors.As see through Issues.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// Codes lists the issue codes in order.
func (iss Issues) Codes() []string {
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.Code
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HookError carries an error raised by a preprocess or postprocess hook. Hook
// failures are not validation failures: they are never turned into Issues and
// never receive path context.
type HookError struct {
	Stage string // "preprocess" or "postprocess"
	Err   error
}

func (e *HookError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *HookError) Unwrap() error { return e.Err }

func pathOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
