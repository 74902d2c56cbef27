// Package param holds validated parameter dictionaries: a ParameterDict of
// named parameters and a TypeParameterDict of per-type or per-type-pair
// parameters. Both validate every write through a typeconv converter and
// treat literal values in their specification as defaults.
package param

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/reoring/typeconv"
)

// ParameterDict is a set of named, validated parameters. Spec entries that are
// literal values are defaults; other entries (types, validators, Required)
// must be set before the dictionary is complete. Keys outside the spec are
// stored unvalidated.
type ParameterDict struct {
	mu        sync.RWMutex
	conv      *typeconv.Mapping
	values    map[string]any
	mandatory map[string]bool
}

// New builds a ParameterDict from a mapping spec.
func New(spec map[string]any) (*ParameterDict, error) {
	d := &ParameterDict{values: map[string]any{}, mandatory: map[string]bool{}}
	conv, err := typeconv.Build(map[string]any{})
	if err != nil {
		return nil, err
	}
	d.conv = conv.(*typeconv.Mapping)
	if err := d.extend(spec); err != nil {
		return nil, err
	}
	return d, nil
}

// Extend adds spec entries to the dictionary. Existing values of re-declared
// keys are dropped in favour of the new defaults.
func (d *ParameterDict) Extend(spec map[string]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.extend(spec)
}

func (d *ParameterDict) extend(spec map[string]any) error {
	clean, literal, mandatory := splitSpec(spec)
	conv, err := d.conv.Extend(clean)
	if err != nil {
		return err
	}
	defaults, err := conv.Convert(literal)
	if err != nil {
		return fmt.Errorf("param: invalid default: %w", err)
	}
	d.conv = conv
	for k := range clean {
		delete(d.values, k)
		delete(d.mandatory, k)
	}
	for k, v := range defaults.(map[string]any) {
		d.values[k] = v
	}
	for k := range mandatory {
		d.mandatory[k] = true
	}
	return nil
}

// Set validates v and stores it under key.
func (d *ParameterDict) Set(key string, v any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	out, err := d.conv.Convert(map[string]any{key: v})
	if err != nil {
		return err
	}
	d.values[key] = out.(map[string]any)[key]
	return nil
}

// Get returns the value of key, which may be its default.
func (d *ParameterDict) Get(key string) (any, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.values[key]
	return v, ok
}

// Update validates every entry of values and stores them all, or none when
// any entry fails.
func (d *ParameterDict) Update(values map[string]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	out, err := d.conv.Convert(values)
	if err != nil {
		return err
	}
	for k, v := range out.(map[string]any) {
		d.values[k] = v
	}
	slog.Debug("param: dictionary updated", "keys", len(values))
	return nil
}

// Keys returns every key with a value, sorted.
func (d *ParameterDict) Keys() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	keys := make([]string, 0, len(d.values))
	for k := range d.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Missing lists the mandatory keys without a value, sorted.
func (d *ParameterDict) Missing() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []string
	for k := range d.mandatory {
		if _, ok := d.values[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Validate reports a required issue for every missing mandatory key.
func (d *ParameterDict) Validate() error {
	var iss typeconv.Issues
	for _, k := range d.Missing() {
		iss = typeconv.AppendIssues(iss, typeconv.IssueAt("/"+k, typeconv.CodeRequired, nil, "key", k))
	}
	if len(iss) == 0 {
		return nil
	}
	return iss
}

// State returns a copy of the current values.
func (d *ParameterDict) State() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return copyMap(d.values)
}

// Converter returns the mapping converter validating the dictionary.
func (d *ParameterDict) Converter() *typeconv.Mapping {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.conv
}
