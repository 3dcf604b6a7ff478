package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Properties is an open property map whose values are restricted to
// nil, string, bool, int64, float64, []any and map[string]any.
type Properties map[string]any

// Clone returns a deep copy of the map
func (p Properties) Clone() Properties {
	if p == nil {
		return Properties{}
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = cloneValue(x)
		}
		return out
	default:
		return v
	}
}

// Merge copies every key of patch into p, overwriting existing keys. A nil
// value removes the key, as a graph store does for a null property.
func (p Properties) Merge(patch Properties) {
	for k, v := range patch {
		if v == nil {
			delete(p, k)
			continue
		}
		p[k] = cloneValue(v)
	}
}

// Without returns a copy of p with the given keys removed
func (p Properties) Without(keys ...string) Properties {
	out := p.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// HasNested reports whether any value is a map. Graph stores only accept
// scalars and homogeneous lists as property values.
func (p Properties) HasNested() (string, bool) {
	for k, v := range p {
		switch t := v.(type) {
		case map[string]any:
			return k, true
		case []any:
			for _, x := range t {
				switch x.(type) {
				case map[string]any, []any:
					return k, true
				}
			}
		}
	}
	return "", false
}

// NormalizeProperties converts decoded JSON values into the closed value set.
// Numbers decoded as json.Number become int64 when integral, float64 otherwise.
func NormalizeProperties(in map[string]any) (Properties, error) {
	out := make(Properties, len(in))
	for k, v := range in {
		nv, err := NormalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

// NormalizeValue maps a single value onto the closed value set
func NormalizeValue(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, int64, float64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case float32:
		return float64(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedValue, t.String())
		}
		return f, nil
	case []any:
		out := make([]any, len(t))
		for i := range t {
			x, err := NormalizeValue(t[i])
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	case []string:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			nx, err := NormalizeValue(x)
			if err != nil {
				return nil, err
			}
			out[k] = nx
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// SearchCandidates returns the values a raw search string may equal. The raw
// string always matches; a numeric or boolean literal also matches its typed form.
func SearchCandidates(raw string) []any {
	out := []any{raw}
	s := strings.TrimSpace(raw)
	if s == "" {
		return out
	}
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return append(out, b)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return append(out, i, float64(i))
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return append(out, f)
	}
	return out
}

// ValueEqual compares two values of the closed set. Integers and floats
// with the same numeric value are equal.
func ValueEqual(a, b any) bool {
	switch x := a.(type) {
	case int64:
		switch y := b.(type) {
		case int64:
			return x == y
		case float64:
			return float64(x) == y
		}
		return false
	case float64:
		switch y := b.(type) {
		case int64:
			return x == float64(y)
		case float64:
			return x == y
		}
		return false
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !ValueEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			if !ValueEqual(v, y[k]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
