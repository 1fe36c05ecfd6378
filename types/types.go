package types

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
)

// FieldType is the control kind of a form field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldEmail    FieldType = "email"
	FieldPassword FieldType = "password"
	FieldNumber   FieldType = "number"
	FieldSearch   FieldType = "search"
	FieldTel      FieldType = "tel"
	FieldURL      FieldType = "url"
	FieldCheckbox FieldType = "checkbox"
	FieldRadio    FieldType = "radio"
	FieldSelect   FieldType = "select"
	FieldHidden   FieldType = "hidden"
)

// Tracked reports whether edits to fields of this type take part in
// dirtiness tracking.
func (t FieldType) Tracked() bool {
	switch t {
	case FieldText, FieldTextarea:
		return true
	default:
		return false
	}
}

// Field is a point-in-time view of a single form control.
type Field struct {
	Name               string    `json:"name"`
	Type               FieldType `json:"type"`
	Value              string    `json:"value"`
	DefaultValue       string    `json:"default_value,omitempty"`
	Hidden             bool      `json:"hidden,omitempty"`
	Disabled           bool      `json:"disabled,omitempty"`
	InDisabledFieldset bool      `json:"in_disabled_fieldset,omitempty"`
}

type FieldInfo struct {
	JSONPointer string    `json:"json_pointer"`
	DisplayName string    `json:"display_name"`
	Type        FieldType `json:"type"`
	Value       string    `json:"value"`
	Dirty       bool      `json:"dirty"`
}
