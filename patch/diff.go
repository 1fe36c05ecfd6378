package patch

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/tbxark/formdirty/snapshot"
)

// Diff returns the operations that turn current into next. Objects present on
// both sides are compared key by key; keys only present in current are
// removed.
func Diff[T any](current, next T) ([]Operation, error) {
	currentMap, err := toMap(current)
	if err != nil {
		return nil, fmt.Errorf("failed to convert current state: %w", err)
	}
	nextMap, err := toMap(next)
	if err != nil {
		return nil, fmt.Errorf("failed to convert next state: %w", err)
	}
	ops := make([]Operation, 0)
	diffMap("", currentMap, nextMap, &ops)
	return ops, nil
}

func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func diffMap(prefix string, current, next map[string]any, ops *[]Operation) {
	keys := make([]string, 0, len(next)+len(current))
	for key := range next {
		keys = append(keys, key)
	}
	for key := range current {
		if _, ok := next[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		path := prefix + "/" + snapshot.EscapePointerToken(key)
		currentValue, exists := current[key]
		nextValue, kept := next[key]
		if !kept {
			*ops = append(*ops, Operation{Op: OperationRemove, Path: path})
			continue
		}

		if nextChild, ok := nextValue.(map[string]any); ok {
			if currentChild, ok := currentValue.(map[string]any); ok {
				diffMap(path, currentChild, nextChild, ops)
				continue
			}
		}

		switch {
		case !exists:
			*ops = append(*ops, Operation{Op: OperationAdd, Path: path, Value: nextValue})
		case !reflect.DeepEqual(currentValue, nextValue):
			*ops = append(*ops, Operation{Op: OperationReplace, Path: path, Value: nextValue})
		}
	}
}
