// Package flat holds configuration as dot-notation keys with typed reads.
//
// Both config stores keep their values in a Values map. TOML tables are
// flattened into dotted keys on load and nested again on save, so
// "corpus.root" reads the same whether it came from a [corpus] table or
// from a Set call.
package flat

import (
	"sort"
	"strings"
)

// Values maps dotted keys to scalar or slice values.
type Values map[string]any

// String returns the string at key, or "" for missing keys and other types.
func (v Values) String(key string) string {
	s, _ := v[key].(string)
	return s
}

// Int returns the integer at key. TOML integers decode as int64; floats
// are truncated.
func (v Values) Int(key string) int {
	switch n := v[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// Float returns the number at key as float64.
func (v Values) Float(key string) float64 {
	switch n := v[key].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// Bool returns the boolean at key.
func (v Values) Bool(key string) bool {
	b, _ := v[key].(bool)
	return b
}

// Strings returns the string list at key. Decoded TOML arrays are []any;
// non-string items are skipped.
func (v Values) Strings(key string) []string {
	switch list := v[key].(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// StringMap returns the string values directly or indirectly under
// prefix, keyed by the remainder of their key.
func (v Values) StringMap(prefix string) map[string]string {
	out := make(map[string]string)
	for key, val := range v {
		rest, ok := strings.CutPrefix(key, prefix+".")
		if !ok || rest == "" {
			continue
		}
		if s, ok := val.(string); ok {
			out[rest] = s
		}
	}
	return out
}

// Flatten turns nested tables into dotted keys: {"a": {"b": 1}} becomes
// {"a.b": 1}.
func Flatten(nested map[string]any) Values {
	out := make(Values)
	flattenInto(out, nested, "")
	return out
}

func flattenInto(out Values, m map[string]any, prefix string) {
	for key, val := range m {
		if prefix != "" {
			key = prefix + "." + key
		}
		if table, ok := val.(map[string]any); ok {
			flattenInto(out, table, key)
			continue
		}
		out[key] = val
	}
}

// Nest is the inverse of Flatten. A key whose prefix already holds a
// scalar stays dotted at the top level and is written as a quoted key.
func (v Values) Nest() map[string]any {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	// Shallow keys first so scalars claim their names before tables do
	sort.Slice(keys, func(i, j int) bool {
		di, dj := strings.Count(keys[i], "."), strings.Count(keys[j], ".")
		if di != dj {
			return di < dj
		}
		return keys[i] < keys[j]
	})

	root := make(map[string]any)
	for _, key := range keys {
		if !place(root, strings.Split(key, "."), v[key]) {
			root[key] = v[key]
		}
	}
	return root
}

// place stores val at path inside root, creating tables on the way. It
// reports false when a scalar or table is already in the way.
func place(root map[string]any, path []string, val any) bool {
	node := root
	for _, part := range path[:len(path)-1] {
		child, exists := node[part]
		if !exists {
			table := make(map[string]any)
			node[part] = table
			node = table
			continue
		}
		table, ok := child.(map[string]any)
		if !ok {
			return false
		}
		node = table
	}
	leaf := path[len(path)-1]
	if _, isTable := node[leaf].(map[string]any); isTable {
		return false
	}
	node[leaf] = val
	return true
}
