package typeconv

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/reoring/typeconv/i18n"
)

// PathRef builds JSON Pointer paths in a chain-safe way and creates Issues.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	Pointer() string
	Issue(code string, cause error, kv ...any) Issue
}

// Root returns the empty path.
func Root() PathRef { return &pathRef{} }

type pathRef struct {
	parts []string
}

func (p *pathRef) Field(name string) PathRef {
	return &pathRef{parts: append(append([]string{}, p.parts...), escapeToken(name))}
}

func (p *pathRef) Index(i int) PathRef {
	return &pathRef{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

func (p *pathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

// Issue builds an Issue at p whose message comes from the i18n catalogue. kv
// holds alternating param names and values.
func (p *pathRef) Issue(code string, cause error, kv ...any) Issue {
	params := map[string]any{}
	for i := 0; i+1 < len(kv); i += 2 {
		params[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return Issue{Path: p.Pointer(), Code: code, Message: i18n.T(code, renderParams(params)), Cause: cause, Params: params}
}

// IssueAt builds an Issue at an already formed JSON Pointer, for collaborators
// that track paths themselves (loaders, parameter dictionaries).
func IssueAt(pointer, code string, cause error, kv ...any) Issue {
	it := Root().Issue(code, cause, kv...)
	it.Path = pathOrRoot(pointer)
	return it
}

// escapeToken escapes '~' -> '~0', '/' -> '~1' per RFC6901.
func escapeToken(name string) string {
	return strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
}

// fail is shorthand for a root-level single issue.
func fail(code string, cause error, kv ...any) Issues {
	return Issues{Root().Issue(code, cause, kv...)}
}

// rebase prefixes every issue path of err with the given segment. Errors that
// are not Issues (hook errors, foreign errors) are returned unchanged.
func rebase(err error, seg string) error {
	iss, ok := err.(Issues)
	if !ok {
		return err
	}
	base := "/" + escapeToken(seg)
	out := make(Issues, 0, len(iss))
	for _, it := range iss {
		p := it.Path
		if p == "" || p == "/" {
			p = base
		} else if p[0] == '/' {
			p = base + p
		} else {
			p = base + "/" + p
		}
		it.Path = p
		out = append(out, it)
	}
	return out
}

// Text is an issue parameter rendered verbatim, without the quoting applied to
// string values.
type Text string

func (t Text) String() string { return string(t) }

func renderParams(params map[string]any) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = render(v)
	}
	return out
}

// render formats values for messages: strings quoted, collections in order.
func render(v any) string {
	switch t := v.(type) {
	case nil:
		return "none"
	case string:
		return strconv.Quote(t)
	case fmt.Stringer:
		return t.String()
	case []string:
		return "[" + strings.Join(t, ", ") + "]"
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = render(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = strconv.Quote(k) + ": " + render(t[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(v)
	}
}
