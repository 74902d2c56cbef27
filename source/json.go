package source

import (
	"bytes"
	"errors"
	"io"

	"github.com/reoring/typeconv"
	eng "github.com/reoring/typeconv/internal/engine"
)

// JSON decodes a single JSON document.
func JSON(data []byte, opts Options) (any, error) {
	return JSONReader(bytes.NewReader(data), opts)
}

// JSONReader decodes a single JSON document from r. Input after the first
// value is a parse error.
func JSONReader(r io.Reader, opts Options) (any, error) {
	src := eng.WrapWithEnforcement(eng.NewGoJSONReader(r), eng.EnforceOptions{
		OnDuplicate: opts.engineDup(),
		MaxDepth:    opts.maxDepth(),
		IssueSink: func(si eng.SimpleIssue) {
			opts.warn(duplicateIssue(si.Path, si.Key, ErrDuplicateKey))
		},
	})
	v, err := eng.Decode(src, numberFunc(opts.Numbers))
	if err != nil {
		return nil, jsonError(err)
	}
	return v, nil
}

func jsonError(err error) error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		if ie.Code == typeconv.CodeDuplicateKey {
			return typeconv.Issues{duplicateIssue(ie.Path, ie.Key, ErrDuplicateKey)}
		}
		return parseIssue(ie.Path, ErrMaxDepth)
	}
	return parseIssue("/", err)
}
