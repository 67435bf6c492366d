// Package coerce converts query literals and variable values into the Go
// representation expected for a GraphQL input type.
package coerce

import (
	"fmt"
	"strconv"
	"strings"

	language "github.com/hanpama/polygraph/internal/language"
	schema "github.com/hanpama/polygraph/internal/schema"
)

// Value coerces value to the input type described by target. types is used to
// look up enums and input objects; it may be nil, in which case named types
// other than the built-in scalars pass through unchanged.
func Value(value any, target *schema.TypeRef, types map[string]*schema.Type) (any, error) {
	switch {
	case schema.IsNonNull(target):
		if value == nil {
			return nil, fmt.Errorf("cannot provide null for non-null type")
		}
		return Value(value, schema.Unwrap(target), types)
	case value == nil:
		return nil, nil
	case schema.IsList(target):
		return list(value, schema.Unwrap(target), types)
	}

	name := schema.GetNamedType(target)
	if f, ok := builtinScalars[name]; ok {
		return f(value)
	}
	t := types[name]
	if t == nil {
		return value, nil
	}
	switch t.Kind {
	case schema.TypeKindEnum:
		return enum(value, t)
	case schema.TypeKindInputObject:
		return inputObject(value, t, types)
	}
	return value, nil
}

// list coerces each item; a non-list value becomes a list of one.
func list(value any, item *schema.TypeRef, types map[string]*schema.Type) (any, error) {
	items, ok := value.([]any)
	if !ok {
		items = []any{value}
	}
	out := make([]any, len(items))
	for i, v := range items {
		cv, err := Value(v, item, types)
		if err != nil {
			return nil, err
		}
		out[i] = cv
	}
	return out, nil
}

func enum(value any, t *schema.Type) (any, error) {
	name, ok := value.(string)
	if !ok {
		return nil, mismatch(value, "enum "+t.Name)
	}
	for _, ev := range t.EnumValues {
		if ev.Name == name {
			return name, nil
		}
	}
	return nil, fmt.Errorf("value %q does not exist in enum %s", name, t.Name)
}

func inputObject(value any, t *schema.Type, types map[string]*schema.Type) (any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, mismatch(value, "input "+t.Name)
	}
	known := make(map[string]bool, len(t.InputFields))
	out := make(map[string]any, len(t.InputFields))
	for _, f := range t.InputFields {
		known[f.Name] = true
		v, present := m[f.Name]
		switch {
		case present:
			cv, err := Value(v, f.Type, types)
			if err != nil {
				return nil, fmt.Errorf("field '%s' of input %s: %w", f.Name, t.Name, err)
			}
			out[f.Name] = cv
		case f.DefaultValue != nil:
			out[f.Name] = f.DefaultValue
		case schema.IsNonNull(f.Type):
			return nil, fmt.Errorf("required field '%s' of input %s was not provided", f.Name, t.Name)
		}
	}
	for k := range m {
		if !known[k] {
			return nil, fmt.Errorf("unknown field '%s' for input %s", k, t.Name)
		}
	}
	if t.OneOf && len(out) != 1 {
		return nil, fmt.Errorf("exactly one field must be provided for @oneOf input %s", t.Name)
	}
	return out, nil
}

// FromAST converts a literal to a Go value, substituting variables. Unbound
// variables become nil.
func FromAST(value *language.Value, variables map[string]any) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.Variable:
		if v, ok := variables[value.Raw]; ok {
			return v
		}
		return variables[strings.TrimPrefix(value.Raw, "$")]
	case language.IntValue:
		n, _ := strconv.Atoi(value.Raw)
		return n
	case language.FloatValue:
		f, _ := strconv.ParseFloat(value.Raw, 64)
		return f
	case language.BooleanValue:
		return value.Raw == "true"
	case language.StringValue, language.BlockValue, language.EnumValue:
		return value.Raw
	case language.ListValue:
		out := make([]any, 0, len(value.Children))
		for _, c := range value.Children {
			out = append(out, FromAST(c.Value, variables))
		}
		return out
	case language.ObjectValue:
		out := make(map[string]any, len(value.Children))
		for _, c := range value.Children {
			out[c.Name] = FromAST(c.Value, variables)
		}
		return out
	}
	return nil
}
