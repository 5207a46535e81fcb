package model

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/bytedance/sonic"
)

// Values maps field names to their current value.
type Values map[string]any

// Clone returns a deep copy in JSON shape. Nested maps and slices are copied
// so the result never aliases the receiver. A nil receiver yields an empty
// map.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for key, value := range v {
		out[key] = cloneValue(value)
	}
	return out
}

// Has reports whether name is present.
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// Names returns the keys in sorted order.
func (v Values) Names() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValuesFromConfig derives form values from a config payload. Each field takes
// its server value, or its default when the value is absent or the empty
// string. Values are stored in JSON shape.
func ValuesFromConfig(fields []ConfigField) Values {
	out := make(Values, len(fields))
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		out[field.Name] = cloneValue(resolveValue(field))
	}
	return out
}

func resolveValue(field ConfigField) any {
	switch value := field.Value.(type) {
	case nil:
		return field.DefaultValue
	case string:
		if value == "" {
			return field.DefaultValue
		}
	}
	return field.Value
}

// Equal reports structural equality between two value maps. Map ordering is
// irrelevant, a nil map equals an empty one, and numbers compare by value
// regardless of their Go kind.
func Equal(a, b Values) bool {
	if len(a) != len(b) {
		return false
	}
	for key, av := range a {
		bv, ok := b[key]
		if !ok {
			return false
		}
		if !ValueEqual(av, bv) {
			return false
		}
	}
	return true
}

// ValueEqual applies the Equal rules to a single pair of values.
func ValueEqual(a, b any) bool {
	a, b = normalizeShape(a), normalizeShape(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && (af == bf || (math.IsNaN(af) && math.IsNaN(bf)))
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !ValueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		return ok && Equal(av, bv)
	default:
		return false
	}
}

// normalizeShape folds typed containers into the shapes produced by JSON
// decoding. Values that cannot be encoded are returned unchanged.
func normalizeShape(v any) any {
	shaped, err := Normalize(v)
	if err != nil {
		return v
	}
	return shaped
}

// Normalize returns a deep copy of value in decoded JSON shape: nil, string,
// bool, numbers, []any and map[string]any. Typed slices, maps and structs are
// converted through a JSON round trip, so []int{1} becomes []any{1.0}.
func Normalize(value any) (any, error) {
	switch typed := value.(type) {
	case nil, string, bool, json.Number,
		float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return typed, nil
	case map[string]any:
		return normalizeMap(typed)
	case Values:
		return normalizeMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			shaped, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = shaped
		}
		return out, nil
	case []string:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out, nil
	}

	switch reflect.TypeOf(value).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return nil, fmt.Errorf("model: value of type %T is not JSON encodable", value)
	}
	raw, err := sonic.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("model: value of type %T is not JSON encodable: %w", value, err)
	}
	var out any
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("model: decode %T value: %w", value, err)
	}
	return out, nil
}

func normalizeMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, item := range in {
		shaped, err := Normalize(item)
		if err != nil {
			return nil, err
		}
		out[key] = shaped
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func cloneValue(value any) any {
	return normalizeShape(value)
}
