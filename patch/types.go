package patch

import (
	"context"

	"github.com/tbxark/formdirty/types"
)

const (
	OperationAdd     = "add"
	OperationRemove  = "remove"
	OperationReplace = "replace"
)

type Operation struct {
	Op    string `json:"op" jsonschema:"required,enum=add,enum=remove,enum=replace,description=RFC6902 operation"`
	Path  string `json:"path" jsonschema:"required,description=JSON pointer of the form field"`
	Value any    `json:"value,omitempty" jsonschema:"description=New field value"`
}

type UpdateFormArgs struct {
	Ops []Operation `json:"ops" jsonschema:"description=Edits to apply to the form"`
}

type Request struct {
	UserInput    string
	Fields       []types.FieldInfo
	AllowedPaths []string
	StateSchema  string
}

// Generator turns free-form user input into form edits.
type Generator interface {
	GeneratePatch(ctx context.Context, req *Request) (*UpdateFormArgs, error)
}
