package introspection

import (
	"context"
	"fmt"
	"sort"
	"strings"

	executor "github.com/hanpama/polygraph/internal/executor"
	language "github.com/hanpama/polygraph/internal/language"
	schema "github.com/hanpama/polygraph/internal/schema"
)

// Wrapper holds a runtime that answers introspection fields and the
// schema extended with the introspection types.
type Wrapper struct {
	Runtime executor.Runtime
	Schema  *schema.Schema
}

// Wrap returns base extended with __schema and __type. Interfaces and unions
// report the possible types recorded in sch, including types reached through
// flattened members, and objects report the interfaces they were marked as
// implementing.
func Wrap(base executor.Runtime, sch *schema.Schema) (*Wrapper, error) {
	extended, err := extend(sch)
	if err != nil {
		return nil, err
	}
	rt := &runtime{base: base, schema: extended, queryType: sch.QueryType}
	return &Wrapper{Runtime: rt, Schema: extended}, nil
}

type runtime struct {
	base      executor.Runtime
	schema    *schema.Schema
	queryType string
}

var _ executor.Runtime = (*runtime)(nil)

func (r *runtime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	if objectType == r.queryType {
		switch field {
		case "__schema":
			return r.schema, nil
		case "__type":
			name, _ := args["name"].(string)
			if t := r.schema.Types[name]; t != nil {
				return t, nil
			}
			return nil, nil
		}
	}
	if !strings.HasPrefix(objectType, "__") {
		return r.base.ResolveSync(ctx, objectType, field, source, args)
	}

	includeDeprecated, _ := args["includeDeprecated"].(bool)
	switch src := source.(type) {
	case *schema.Schema:
		return r.schemaField(src, field)
	case *schema.Type:
		return r.typeField(src, field, includeDeprecated)
	case *schema.TypeRef:
		return r.typeRefField(src, field, includeDeprecated)
	case *schema.Field:
		return r.fieldField(src, field, includeDeprecated)
	case *schema.InputValue:
		return inputValueField(src, field)
	case *schema.EnumValue:
		return deprecatable(field, src.Name, src.Description, src.IsDeprecated, src.DeprecationReason)
	case *schema.Directive:
		return directiveField(src, field, includeDeprecated)
	}
	return nil, fmt.Errorf("%s.%s: unexpected source %T", objectType, field, source)
}

func (r *runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	return r.base.BatchResolveAsync(ctx, tasks)
}

func (r *runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	return r.base.ResolveType(ctx, abstractType, value)
}

func (r *runtime) ResolveUnionConcreteValue(ctx context.Context, unionTypeName string, value any) (any, error) {
	return r.base.ResolveUnionConcreteValue(ctx, unionTypeName, value)
}

func (r *runtime) ResolveInterfaceConcreteValue(ctx context.Context, interfaceTypeName string, value any) (any, error) {
	return r.base.ResolveInterfaceConcreteValue(ctx, interfaceTypeName, value)
}

func (r *runtime) SerializeLeafValue(ctx context.Context, typ string, value any) (any, error) {
	if strings.HasPrefix(typ, "__") {
		return fmt.Sprint(value), nil
	}
	return r.base.SerializeLeafValue(ctx, typ, value)
}

// CollectAbstractFields forwards to base when it collects abstract fields
// itself.
func (r *runtime) CollectAbstractFields(ctx context.Context, objectType string, value any, sel language.SelectionSet, generic *executor.Collector, out *executor.FieldSet) error {
	if afc, ok := r.base.(executor.AbstractFieldCollector); ok {
		return afc.CollectAbstractFields(ctx, objectType, value, sel, generic, out)
	}
	return generic.CollectFields(objectType, sel, out)
}

func (r *runtime) schemaField(s *schema.Schema, field string) (any, error) {
	switch field {
	case "description":
		return nullable(s.Description), nil
	case "types":
		return sortedTypes(s), nil
	case "queryType":
		return s.GetQueryType(), nil
	case "mutationType":
		return s.GetMutationType(), nil
	case "subscriptionType":
		return s.GetSubscriptionType(), nil
	case "directives":
		names := make([]string, 0, len(s.Directives))
		for name := range s.Directives {
			names = append(names, name)
		}
		sort.Strings(names)
		out := make([]*schema.Directive, len(names))
		for i, name := range names {
			out[i] = s.Directives[name]
		}
		return out, nil
	}
	return nil, fmt.Errorf("__Schema has no field %q", field)
}

func (r *runtime) typeField(t *schema.Type, field string, includeDeprecated bool) (any, error) {
	switch field {
	case "kind":
		return string(t.Kind), nil
	case "name":
		return t.Name, nil
	case "description":
		return nullable(t.Description), nil
	case "specifiedByURL":
		if t.SpecifiedByURL == nil {
			return nil, nil
		}
		return *t.SpecifiedByURL, nil
	case "fields":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil, nil
		}
		out := make([]*schema.Field, 0, len(t.Fields))
		for _, f := range t.Fields {
			if includeDeprecated || !f.IsDeprecated {
				out = append(out, f)
			}
		}
		return out, nil
	case "interfaces":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil, nil
		}
		return r.namedTypes(t.Interfaces), nil
	case "possibleTypes":
		if t.Kind != schema.TypeKindInterface && t.Kind != schema.TypeKindUnion {
			return nil, nil
		}
		return r.namedTypes(t.PossibleTypes), nil
	case "enumValues":
		if t.Kind != schema.TypeKindEnum {
			return nil, nil
		}
		out := make([]*schema.EnumValue, 0, len(t.EnumValues))
		for _, v := range t.EnumValues {
			if includeDeprecated || !v.IsDeprecated {
				out = append(out, v)
			}
		}
		return out, nil
	case "inputFields":
		if t.Kind != schema.TypeKindInputObject {
			return nil, nil
		}
		return filterInputValues(t.InputFields, includeDeprecated), nil
	case "ofType":
		return nil, nil
	case "isOneOf":
		if t.Kind != schema.TypeKindInputObject {
			return nil, nil
		}
		return t.OneOf, nil
	}
	return nil, fmt.Errorf("__Type has no field %q", field)
}

// typeRefField serves __Type fields of a field or argument type. Named
// references resolve to the schema type they name.
func (r *runtime) typeRefField(tr *schema.TypeRef, field string, includeDeprecated bool) (any, error) {
	if tr.Kind == schema.TypeRefKindNamed {
		t := r.schema.Types[tr.Named]
		if t == nil {
			return nil, fmt.Errorf("unknown type %q", tr.Named)
		}
		return r.typeField(t, field, includeDeprecated)
	}
	switch field {
	case "kind":
		return string(tr.Kind), nil
	case "ofType":
		return tr.OfType, nil
	}
	return nil, nil
}

func (r *runtime) fieldField(f *schema.Field, field string, includeDeprecated bool) (any, error) {
	switch field {
	case "args":
		return filterInputValues(f.Arguments, includeDeprecated), nil
	case "type":
		return f.Type, nil
	}
	return deprecatable(field, f.Name, f.Description, f.IsDeprecated, f.DeprecationReason)
}

func inputValueField(v *schema.InputValue, field string) (any, error) {
	switch field {
	case "type":
		return v.Type, nil
	case "defaultValue":
		if v.DefaultValue == nil {
			return nil, nil
		}
		return schema.RenderValue(v.DefaultValue), nil
	}
	return deprecatable(field, v.Name, v.Description, v.IsDeprecated, v.DeprecationReason)
}

func directiveField(d *schema.Directive, field string, includeDeprecated bool) (any, error) {
	switch field {
	case "name":
		return d.Name, nil
	case "description":
		return nullable(d.Description), nil
	case "isRepeatable":
		return d.IsRepeatable, nil
	case "locations":
		return d.Locations, nil
	case "args":
		return filterInputValues(d.Arguments, includeDeprecated), nil
	}
	return nil, fmt.Errorf("__Directive has no field %q", field)
}

// deprecatable serves the fields shared by __Field, __InputValue and
// __EnumValue.
func deprecatable(field, name, description string, deprecated bool, reason string) (any, error) {
	switch field {
	case "name":
		return name, nil
	case "description":
		return nullable(description), nil
	case "isDeprecated":
		return deprecated, nil
	case "deprecationReason":
		if !deprecated {
			return nil, nil
		}
		return reason, nil
	}
	return nil, fmt.Errorf("no introspection field %q", field)
}

func (r *runtime) namedTypes(names []string) []*schema.Type {
	out := make([]*schema.Type, 0, len(names))
	for _, name := range names {
		if t := r.schema.Types[name]; t != nil {
			out = append(out, t)
		}
	}
	return out
}

func sortedTypes(s *schema.Schema) []*schema.Type {
	out := make([]*schema.Type, 0, len(s.Types))
	for _, t := range s.Types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func filterInputValues(values []*schema.InputValue, includeDeprecated bool) []*schema.InputValue {
	out := make([]*schema.InputValue, 0, len(values))
	for _, v := range values {
		if includeDeprecated || !v.IsDeprecated {
			out = append(out, v)
		}
	}
	return out
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
