package agent

import "github.com/tbxark/formdirty/types"

type Response struct {
	Message     string            `json:"message,omitempty"`
	Phase       types.Phase       `json:"phase"`
	Dirty       bool              `json:"dirty"`
	DirtyFields []string          `json:"dirty_fields,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
