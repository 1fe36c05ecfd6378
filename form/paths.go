package form

import (
	"reflect"
	"strings"

	"github.com/tbxark/formdirty/snapshot"
	"github.com/tbxark/formdirty/types"
)

// SpecsFor derives a text field for every exported string leaf reachable
// through nested structs of T. Slices and maps are not expanded.
func SpecsFor[T any]() []Spec {
	var zero T
	typ := reflect.TypeOf(zero)
	if typ == nil {
		return nil
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil
	}

	specs := make([]Spec, 0)
	collectSpecs(typ, "", &specs, map[reflect.Type]bool{})
	return specs
}

func collectSpecs(typ reflect.Type, prefix string, specs *[]Spec, visited map[reflect.Type]bool) {
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	switch typ.Kind() {
	case reflect.Struct:
		if visited[typ] {
			return
		}
		visited[typ] = true
		defer delete(visited, typ)

		for i := 0; i < typ.NumField(); i++ {
			f := typ.Field(i)
			if !f.IsExported() {
				continue
			}
			jsonName := jsonFieldName(f)
			if jsonName == "-" {
				continue
			}
			path := prefix + "/" + snapshot.EscapePointerToken(jsonName)
			if f.Type.Kind() == reflect.String {
				*specs = append(*specs, Spec{Name: path, Label: f.Name, Type: types.FieldText})
				continue
			}
			collectSpecs(f.Type, path, specs, visited)
		}
	default:
	}
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" {
		return f.Name
	}
	return name
}
