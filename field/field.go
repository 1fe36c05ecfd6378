// Package field holds the predicates used to classify a form field before
// its dirtiness is decided.
package field

import "github.com/tbxark/formdirty/types"

// IsEmpty reports whether the field carries no value.
func IsEmpty(f types.Field) bool {
	return f.Value == ""
}

// IsDefault reports whether the field still holds its declared default.
func IsDefault(f types.Field) bool {
	return f.Value == f.DefaultValue
}

// IsDisabled reports whether the field or its enclosing fieldset is disabled.
func IsDisabled(f types.Field) bool {
	return f.Disabled || f.InDisabledFieldset
}

// ShouldSkip reports whether the field is excluded from dirtiness checks:
// untracked types, unnamed, hidden and disabled fields are all skipped.
func ShouldSkip(f types.Field) bool {
	if !f.Type.Tracked() {
		return true
	}
	return f.Name == "" || f.Hidden || IsDisabled(f)
}
