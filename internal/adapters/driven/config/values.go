// Package config holds the value handling shared by the config store adapters.
package config

import (
	"reflect"
	"strings"
)

// Values maps dotted keys to normalised configuration values.
// Integers are held as int64 and string lists as []string, matching what a
// TOML decode produces, so values compare equal across a save and load.
type Values map[string]any

// Normalize converts v to the representation Values stores.
func Normalize(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return x
			}
			out = append(out, s)
		}
		return out
	default:
		return v
	}
}

// String returns the string at key, or "".
func (v Values) String(key string) string {
	s, _ := v[key].(string)
	return s
}

// Int returns the integer at key, or 0.
func (v Values) Int(key string) int {
	switch n := v[key].(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

// Bool returns the boolean at key, or false.
func (v Values) Bool(key string) bool {
	b, _ := v[key].(bool)
	return b
}

// StringSlice returns the string list at key, or nil. Non-string items of a
// mixed list are skipped.
func (v Values) StringSlice(key string) []string {
	switch x := v[key].(type) {
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Apply merges changes into v, deleting keys whose change is nil, and reports
// whether anything differs afterwards.
func (v Values) Apply(changes map[string]any) bool {
	changed := false
	for key, value := range changes {
		old, exists := v[key]
		if value == nil {
			if exists {
				delete(v, key)
				changed = true
			}
			continue
		}
		value = Normalize(value)
		if exists && reflect.DeepEqual(old, value) {
			continue
		}
		v[key] = value
		changed = true
	}
	return changed
}

// Nest turns dotted keys into nested tables: {"a.b": 1} becomes {"a": {"b": 1}}.
func (v Values) Nest() map[string]any {
	result := make(map[string]any)
	for key, value := range v {
		parts := strings.Split(key, ".")
		node := result
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return result
}

// Flatten is the inverse of Nest. Leaf values are normalised.
func Flatten(nested map[string]any) Values {
	result := make(Values)
	flattenInto(result, nested, "")
	return result
}

func flattenInto(dst Values, m map[string]any, prefix string) {
	for key, value := range m {
		if prefix != "" {
			key = prefix + "." + key
		}
		if table, ok := value.(map[string]any); ok {
			flattenInto(dst, table, key)
			continue
		}
		dst[key] = Normalize(value)
	}
}
