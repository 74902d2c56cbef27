// Package source loads untyped value trees (map[string]any, []any and
// scalars) from JSON, YAML and CUE documents, ready to be converted by a
// typeconv converter.
//
// Loaders enforce a duplicate-key policy and a maximum nesting depth and
// report failures as typeconv.Issues with the parse_error or duplicate_key
// codes.
package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/reoring/typeconv"
	eng "github.com/reoring/typeconv/internal/engine"
)

// DuplicatePolicy controls what happens when a mapping repeats a key.
type DuplicatePolicy int

const (
	DupError  DuplicatePolicy = iota // fail with a duplicate_key issue
	DupWarn                          // report through Options.Warn, last value wins
	DupIgnore                        // last value wins silently
)

// NumberMode controls how JSON numbers are decoded.
type NumberMode int

const (
	// NumberNative decodes integral literals as int and others as float64.
	NumberNative NumberMode = iota
	// NumberJSON keeps numbers as json.Number.
	NumberJSON
)

// DefaultMaxDepth is the nesting limit applied when Options.MaxDepth is zero.
const DefaultMaxDepth = 512

// Options configures the loaders. The zero value rejects duplicate keys,
// limits nesting to DefaultMaxDepth and decodes numbers natively.
type Options struct {
	OnDuplicate DuplicatePolicy
	// MaxDepth limits nesting; negative disables the limit.
	MaxDepth int
	Numbers  NumberMode
	// Warn receives duplicate_key issues under DupWarn.
	Warn func(typeconv.Issue)
}

func (o Options) maxDepth() int {
	switch {
	case o.MaxDepth < 0:
		return 0
	case o.MaxDepth == 0:
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

func (o Options) engineDup() eng.DuplicateStrictness {
	switch o.OnDuplicate {
	case DupWarn:
		return eng.DupWarn
	case DupIgnore:
		return eng.DupIgnore
	}
	return eng.DupError
}

func (o Options) warn(it typeconv.Issue) {
	if o.Warn != nil {
		o.Warn(it)
	}
}

// Format names a document format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("source: unsupported file extension %q", ext)
	}
}

// Parse loads data in the given format.
func Parse(format Format, data []byte, opts Options) (any, error) {
	switch format {
	case FormatJSON:
		return JSON(data, opts)
	case FormatYAML:
		return YAML(data, opts)
	case FormatCUE:
		return CUE(data, opts)
	}
	return nil, fmt.Errorf("source: unknown format %q", format)
}

// File reads path and loads it according to its extension.
func File(path string, opts Options) (any, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", path, err)
	}
	return Parse(format, data, opts)
}

func numberFunc(mode NumberMode) eng.NumberFunc {
	if mode == NumberJSON {
		return func(lit string) (any, error) { return json.Number(lit), nil }
	}
	return func(lit string) (any, error) {
		if !strings.ContainsAny(lit, ".eE") {
			if i, err := strconv.ParseInt(lit, 10, 0); err == nil {
				return int(i), nil
			}
		}
		return strconv.ParseFloat(lit, 64)
	}
}

// parseIssue reports a syntax-level failure at pointer.
func parseIssue(pointer string, err error) typeconv.Issues {
	return typeconv.Issues{typeconv.IssueAt(pointer, typeconv.CodeParseError, err, "reason", typeconv.Text(err.Error()))}
}

func duplicateIssue(pointer, key string, cause error) typeconv.Issue {
	return typeconv.IssueAt(pointer, typeconv.CodeDuplicateKey, cause, "key", key)
}

// ErrMaxDepth is the cause of issues raised when nesting exceeds the limit.
var ErrMaxDepth = errors.New("source: max depth exceeded")

// ErrDuplicateKey is the cause of duplicate_key issues.
var ErrDuplicateKey = errors.New("source: duplicate key")
