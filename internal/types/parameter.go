package types

import (
	"hash/fnv"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/rxtech-lab/argo-sweep/pkg/errors"
)

// ParameterSet is an immutable set of named strategy parameters. Values are
// either float64 or string; integer inputs are normalized to float64.
type ParameterSet struct {
	values map[string]any
}

// NewParameterSet validates and copies values into a ParameterSet.
func NewParameterSet(values map[string]any) (ParameterSet, error) {
	normalized := make(map[string]any, len(values))

	for name, raw := range values {
		if name == "" {
			return ParameterSet{}, errors.New(errors.ErrCodeInvalidParameter, "parameter name must not be empty")
		}

		v, err := normalizeParameter(raw)
		if err != nil {
			return ParameterSet{}, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "parameter %q", name)
		}

		normalized[name] = v
	}

	return ParameterSet{values: normalized}, nil
}

// MustParameterSet is NewParameterSet that panics on error. Intended for literals.
func MustParameterSet(values map[string]any) ParameterSet {
	p, err := NewParameterSet(values)
	if err != nil {
		panic(err)
	}

	return p
}

func normalizeParameter(raw any) (any, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported value type %T", raw)
	}
}

// Len returns the number of parameters.
func (p ParameterSet) Len() int {
	return len(p.values)
}

// Names returns the parameter names in sorted order.
func (p ParameterSet) Names() []string {
	return slices.Sorted(maps.Keys(p.values))
}

// Get returns the raw value of a parameter.
func (p ParameterSet) Get(name string) (any, bool) {
	v, ok := p.values[name]

	return v, ok
}

// Float returns a numeric parameter.
func (p ParameterSet) Float(name string) (float64, bool) {
	v, ok := p.values[name].(float64)

	return v, ok
}

// Text returns a string parameter.
func (p ParameterSet) Text(name string) (string, bool) {
	v, ok := p.values[name].(string)

	return v, ok
}

// Map returns a copy of the underlying values.
func (p ParameterSet) Map() map[string]any {
	return maps.Clone(p.values)
}

// Merge returns a new set holding p overridden by other.
func (p ParameterSet) Merge(other ParameterSet) ParameterSet {
	merged := make(map[string]any, len(p.values)+len(other.values))
	maps.Copy(merged, p.values)
	maps.Copy(merged, other.values)

	return ParameterSet{values: merged}
}

// Key is the canonical form "a=1,b=x" with names sorted. Equal sets have equal keys.
func (p ParameterSet) Key() string {
	var sb strings.Builder

	for i, name := range p.Names() {
		if i > 0 {
			sb.WriteByte(',')
		}

		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(FormatParameter(p.values[name]))
	}

	return sb.String()
}

// Hash is the 64-bit FNV-1a hash of Key.
func (p ParameterSet) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(p.Key()))

	return h.Sum64()
}

// FormatParameter renders a parameter value the way Key does.
func FormatParameter(v any) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case string:
		return val
	default:
		return ""
	}
}
