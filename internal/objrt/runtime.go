package objrt

import (
	"context"
	"fmt"
	"sync"

	coerce "github.com/hanpama/polygraph/internal/coerce"
	executor "github.com/hanpama/polygraph/internal/executor"
	language "github.com/hanpama/polygraph/internal/language"
	poly "github.com/hanpama/polygraph/internal/poly"
	schema "github.com/hanpama/polygraph/internal/schema"
)

// Runtime implements executor.Runtime over poly.Objects.
// Invariants and boundaries:
//   - Sources: object fields are resolved against a poly.Object, a
//     *poly.Value or a map[string]any. Any other source is an error.
//   - Polymorphic values: fields of a *poly.Value go through the dispatcher
//     when the value's interface declares them, so interface arguments are
//     bound against the interface's argument descriptors. Fields the
//     concrete type adds on top of the interface go straight to the object.
//   - Abstract completion: values returned for an interface or union field
//     may be a *poly.Value of that type, a *poly.Value of one of its
//     flattened members, or a bare poly.Object. The latter two are wrapped
//     through the registered descriptor.
//   - Concurrency: BatchResolveAsync resolves every task in its own
//     goroutine. Objects must be safe for concurrent use.
//   - Determinism: results preserve input ordering; partial success is
//     supported.
type Runtime struct {
	reg        *poly.Registry
	dispatcher *poly.Dispatcher
	schema     *schema.Schema
}

var (
	_ executor.Runtime                = (*Runtime)(nil)
	_ executor.AbstractFieldCollector = (*Runtime)(nil)
)

type Option func(*Runtime)

// WithDispatcher replaces the default dispatcher.
func WithDispatcher(d *poly.Dispatcher) Option {
	return func(r *Runtime) { r.dispatcher = d }
}

// WithSchema enables enum serialization against sch.
func WithSchema(sch *schema.Schema) Option {
	return func(r *Runtime) { r.schema = sch }
}

func NewRuntime(reg *poly.Registry, opts ...Option) *Runtime {
	r := &Runtime{reg: reg, dispatcher: poly.NewDispatcher()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveSync resolves field on source. When objectType names a registered
// polymorphic type the field is resolved against that type's declared field
// set, so undeclared fields fail with a FieldNotFoundError.
func (r *Runtime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	info, _ := executor.ResolveInfoFromContext(ctx)
	switch src := source.(type) {
	case *poly.Value:
		return r.resolveValue(ctx, objectType, field, src, args, info)
	case poly.Object:
		return src.ResolveField(ctx, field, args)
	case map[string]any:
		return src[field], nil
	case nil:
		return nil, fmt.Errorf("%s.%s: no source value", objectType, field)
	default:
		return nil, fmt.Errorf("%s.%s: unsupported source %T", objectType, field, source)
	}
}

func (r *Runtime) resolveValue(ctx context.Context, objectType, field string, v *poly.Value, args map[string]any, info *executor.ResolveInfo) (any, error) {
	req := poly.FieldRequest{Name: field, Args: args}
	if info != nil {
		req.Position = info.Position()
		req.Path = []any(info.Path)
	}
	if d, ok := r.reg.Lookup(objectType); ok {
		if w, err := r.rewrap(d, v); err == nil {
			v = w
		}
		return r.dispatcher.ResolveField(ctx, v, req)
	}
	if declaresField(v, field) {
		return r.dispatcher.ResolveField(ctx, v, req)
	}
	return r.dispatcher.Concrete(v).ResolveField(ctx, field, args)
}

// declaresField reports whether the interface holding the concrete object
// of v declares field.
func declaresField(v *poly.Value, field string) bool {
	for ; v != nil; v = v.Inner() {
		d := v.Descriptor()
		if d.Kind() == poly.KindInterface && d.Field(field) != nil {
			return true
		}
	}
	return false
}

// BatchResolveAsync resolves each task concurrently and writes results into
// their task's slot.
func (r *Runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	if len(tasks) == 0 {
		return results
	}
	run := func(i int) {
		t := tasks[i]
		taskCtx := executor.WithResolveInfo(ctx, &executor.ResolveInfo{ObjectType: t.ObjectType, Path: t.Path, Fields: t.Fields})
		value, err := r.ResolveSync(taskCtx, t.ObjectType, t.Field, t.Source, t.Args)
		results[i] = executor.AsyncResolveResult{Value: value, Error: err}
	}
	if len(tasks) == 1 {
		run(0)
		return results
	}
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i := range tasks {
		go func(i int) {
			defer wg.Done()
			run(i)
		}(i)
	}
	wg.Wait()
	return results
}

// ResolveType returns the concrete object type name of value.
func (r *Runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	switch v := value.(type) {
	case *poly.Value:
		return r.dispatcher.IntrospectTypename(v), nil
	case poly.Object:
		return v.GraphQLType(), nil
	case map[string]any:
		if name, ok := v["__typename"].(string); ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("cannot determine concrete type of %T for %s", value, abstractType)
}

// ResolveUnionConcreteValue unwraps a union value to its concrete object.
func (r *Runtime) ResolveUnionConcreteValue(ctx context.Context, unionTypeName string, value any) (any, error) {
	if v, ok := value.(*poly.Value); ok {
		return r.dispatcher.Concrete(v), nil
	}
	return value, nil
}

// ResolveInterfaceConcreteValue returns value as a *poly.Value of the
// interface so that interface fields keep going through the dispatcher.
func (r *Runtime) ResolveInterfaceConcreteValue(ctx context.Context, interfaceTypeName string, value any) (any, error) {
	d, ok := r.reg.Lookup(interfaceTypeName)
	if !ok {
		return value, nil
	}
	return r.rewrap(d, value)
}

// rewrap returns value as a *poly.Value of d.
func (r *Runtime) rewrap(d *poly.Descriptor, value any) (*poly.Value, error) {
	if v, ok := value.(*poly.Value); ok && v.Descriptor() == d {
		return v, nil
	}
	if v, ok := value.(*poly.Value); ok {
		if w, err := d.Wrap(v); err == nil {
			return w, nil
		}
		return d.Wrap(r.dispatcher.Concrete(v))
	}
	return d.Wrap(value)
}

// CollectAbstractFields collects the fields of an abstract value through its
// concrete object.
func (r *Runtime) CollectAbstractFields(ctx context.Context, objectType string, value any, selectionSet language.SelectionSet, generic *executor.Collector, out *executor.FieldSet) error {
	switch v := value.(type) {
	case *poly.Value:
		return r.dispatcher.CollectFields(v, selectionSet, generic, out)
	case poly.CollectingObject:
		return v.CollectFields(selectionSet, generic, out)
	default:
		return generic.CollectFields(objectType, selectionSet, out)
	}
}

// SerializeLeafValue serializes built-in scalars and enums. Enum values
// serialize to their name; custom scalars pass through.
func (r *Runtime) SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error) {
	if r.schema != nil {
		if t := r.schema.Types[scalarOrEnumTypeName]; t != nil && t.Kind == schema.TypeKindEnum {
			name := fmt.Sprint(value)
			if s, ok := value.(fmt.Stringer); ok {
				name = s.String()
			}
			for _, ev := range t.EnumValues {
				if ev.Name == name {
					return name, nil
				}
			}
			return nil, fmt.Errorf("enum %s has no value %q", scalarOrEnumTypeName, name)
		}
	}
	return coerce.Serialize(scalarOrEnumTypeName, value)
}
