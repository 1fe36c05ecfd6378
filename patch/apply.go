package patch

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ApplyRFC6902 applies ops to current and returns the patched value together
// with the paths the applied operations touched, in op order.
func ApplyRFC6902[T any](current T, ops []Operation) (T, []string, error) {
	var zero T

	if len(ops) == 0 {
		return current, nil, nil
	}

	currentJSON, err := json.Marshal(current)
	if err != nil {
		return zero, nil, fmt.Errorf("failed to marshal current state: %w", err)
	}

	ops = FixOperation(currentJSON, ops)
	if len(ops) == 0 {
		return current, nil, nil
	}

	patchJSON, err := json.Marshal(ops)
	if err != nil {
		return zero, nil, fmt.Errorf("failed to marshal patch operations: %w", err)
	}

	p, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return zero, nil, fmt.Errorf("failed to decode patch: %w", err)
	}

	modifiedJSON, err := p.Apply(currentJSON)
	if err != nil {
		return zero, nil, fmt.Errorf("failed to apply patch: %w", err)
	}

	var result T
	if err := json.Unmarshal(modifiedJSON, &result); err != nil {
		return zero, nil, fmt.Errorf("type mismatch: patch would result in invalid form state: %w", err)
	}

	touched := make([]string, 0, len(ops))
	seen := make(map[string]bool, len(ops))
	for _, op := range ops {
		if !seen[op.Path] {
			seen[op.Path] = true
			touched = append(touched, op.Path)
		}
	}
	return result, touched, nil
}

// FixOperation downgrades replace to add for missing paths and drops removes
// of paths that do not exist.
func FixOperation(currentJSON []byte, ops []Operation) []Operation {
	var doc any
	if err := json.Unmarshal(currentJSON, &doc); err != nil {
		return ops
	}

	fixed := make([]Operation, 0, len(ops))
	for _, op := range ops {
		switch op.Op {
		case OperationReplace:
			if !pathExists(doc, op.Path) {
				op.Op = OperationAdd
			}
			fixed = append(fixed, op)
		case OperationRemove:
			if pathExists(doc, op.Path) {
				fixed = append(fixed, op)
			}
		default:
			fixed = append(fixed, op)
		}
	}

	return fixed
}

func pathExists(doc any, path string) bool {
	if path == "" {
		return true
	}
	if !strings.HasPrefix(path, "/") {
		return false
	}

	tokens := strings.Split(path[1:], "/")
	cur := doc
	for _, token := range tokens {
		token = strings.ReplaceAll(token, "~1", "/")
		token = strings.ReplaceAll(token, "~0", "~")
		switch node := cur.(type) {
		case map[string]any:
			value, ok := node[token]
			if !ok {
				return false
			}
			cur = value
		case []any:
			index, err := strconv.Atoi(token)
			if err != nil || index < 0 || index >= len(node) {
				return false
			}
			cur = node[index]
		default:
			return false
		}
	}

	return true
}
