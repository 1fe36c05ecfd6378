package types

import (
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

// FormatFields renders fields as a markdown table. It returns an empty string
// for an empty slice.
func FormatFields(fields []FieldInfo) string {
	if len(fields) == 0 {
		return ""
	}
	var buf strings.Builder
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Pointer", "Type", "Value", "Dirty")
	for _, field := range fields {
		dirty := "no"
		if field.Dirty {
			dirty = "yes"
		}
		_ = table.Append(field.DisplayName, field.JSONPointer, string(field.Type), field.Value, dirty)
	}
	_ = table.Render()
	return buf.String()
}
