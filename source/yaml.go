package source

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/reoring/typeconv"
)

// YAML decodes the first document of a YAML stream. Scalars resolve to int,
// float64, bool, string or nil; mapping keys must be scalars. An empty
// document yields nil.
func YAML(data []byte, opts Options) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, parseIssue("/", err)
	}
	w := yamlWalker{opts: opts, maxDepth: opts.maxDepth()}
	return w.value(&doc, "", 0)
}

type yamlWalker struct {
	opts     Options
	maxDepth int
}

// nodeError builds a parse issue carrying the node position.
func nodeError(n *yaml.Node, pointer string, cause error) typeconv.Issues {
	return parseIssue(pointer, fmt.Errorf("line %d, column %d: %w", n.Line, n.Column, cause))
}

func (w yamlWalker) value(n *yaml.Node, pointer string, depth int) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return w.value(n.Content[0], pointer, depth)
	case yaml.AliasNode:
		return w.value(n.Alias, pointer, depth)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, nodeError(n, pointer, err)
		}
		return v, nil
	}
	if w.maxDepth > 0 && depth+1 > w.maxDepth {
		return nil, nodeError(n, pointer, ErrMaxDepth)
	}
	switch n.Kind {
	case yaml.SequenceNode:
		out := make([]any, len(n.Content))
		for i, c := range n.Content {
			v, err := w.value(c, fmt.Sprintf("%s/%d", pointer, i), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, vn := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, nodeError(k, pointer, fmt.Errorf("mapping keys must be scalars"))
			}
			child := pointer + "/" + escape(k.Value)
			if _, dup := out[k.Value]; dup {
				switch w.opts.OnDuplicate {
				case DupError:
					it := duplicateIssue(child, k.Value, fmt.Errorf("line %d, column %d: %w", k.Line, k.Column, ErrDuplicateKey))
					return nil, typeconv.Issues{it}
				case DupWarn:
					w.opts.warn(duplicateIssue(child, k.Value, ErrDuplicateKey))
				}
			}
			v, err := w.value(vn, child, depth+1)
			if err != nil {
				return nil, err
			}
			out[k.Value] = v
		}
		return out, nil
	}
	return nil, nodeError(n, pointer, fmt.Errorf("unsupported node kind %d", n.Kind))
}
