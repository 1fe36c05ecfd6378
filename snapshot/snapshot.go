// Package snapshot captures form values at a point in time, keyed by the
// JSON pointer of each field.
package snapshot

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// decoder keeps numbers in their JSON spelling so large integers survive.
var decoder = sonic.Config{UseNumber: true}.Froze()

// Snapshot is an immutable view of form values. The zero value is an empty
// snapshot.
type Snapshot struct {
	values map[string]string
}

// Of copies values into a new Snapshot.
func Of(values map[string]string) Snapshot {
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return Snapshot{values: cp}
}

// FromValue serializes v and flattens every scalar leaf into a pointer keyed
// entry. Strings are kept verbatim, numbers and booleans use their JSON
// spelling and null becomes the empty string.
func FromValue[T any](v T) (Snapshot, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return Snapshot{}, fmt.Errorf("marshal form state: %w", err)
	}
	var doc any
	if err := decoder.Unmarshal(data, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal form state: %w", err)
	}
	values := make(map[string]string)
	flatten("", doc, values)
	return Snapshot{values: values}, nil
}

func flatten(prefix string, node any, out map[string]string) {
	switch val := node.(type) {
	case map[string]any:
		for key, child := range val {
			flatten(prefix+"/"+EscapePointerToken(key), child, out)
		}
	case []any:
		for i, child := range val {
			flatten(prefix+"/"+strconv.Itoa(i), child, out)
		}
	case nil:
		if prefix != "" {
			out[prefix] = ""
		}
	default:
		if prefix != "" {
			out[prefix] = formatScalar(val)
		}
	}
}

func formatScalar(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// Get returns the value recorded for name.
func (s Snapshot) Get(name string) (string, bool) {
	v, ok := s.values[name]
	return v, ok
}

func (s Snapshot) Len() int {
	return len(s.values)
}

// Keys returns the recorded names in sorted order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s Snapshot) Equal(other Snapshot) bool {
	if len(s.values) != len(other.values) {
		return false
	}
	for k, v := range s.values {
		if ov, ok := other.values[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// EscapePointerToken escapes a single reference token per RFC 6901.
func EscapePointerToken(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}
