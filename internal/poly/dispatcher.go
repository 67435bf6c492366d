package poly

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vektah/gqlparser/v2/gqlerror"

	eventbus "github.com/hanpama/polygraph/internal/eventbus"
	events "github.com/hanpama/polygraph/internal/events"
	executor "github.com/hanpama/polygraph/internal/executor"
	language "github.com/hanpama/polygraph/internal/language"
	schema "github.com/hanpama/polygraph/internal/schema"
)

// SelectionResolver resolves the selection set of a field's result. It is
// called by the dispatcher after the concrete object returns a value.
type SelectionResolver interface {
	ResolveSelection(ctx context.Context, fieldType *schema.TypeRef, value any, selectionSet language.SelectionSet, path []any) (any, error)
}

// FieldCollector collects the fields of a selection set that apply to an
// object type. *executor.Collector implements it.
type FieldCollector interface {
	CollectFields(objectType string, selectionSet language.SelectionSet, out *executor.FieldSet) error
}

// CollectingObject is an Object that collects its own fields.
type CollectingObject interface {
	Object
	CollectFields(selectionSet language.SelectionSet, generic FieldCollector, out *executor.FieldSet) error
}

// FieldRequest is one field selection on a polymorphic value. Args are the
// supplied arguments before binding.
type FieldRequest struct {
	Name         string
	Args         map[string]any
	SelectionSet language.SelectionSet
	Position     *language.Position
	Path         []any
}

// Dispatcher routes field resolution, __typename and field collection of a
// polymorphic Value to the concrete object it wraps. It holds no per-request
// state and is safe for concurrent use.
type Dispatcher struct {
	selection SelectionResolver
}

type DispatcherOption func(*Dispatcher)

// WithSelectionResolver makes ResolveField resolve the field's selection set
// on the returned value.
func WithSelectionResolver(r SelectionResolver) DispatcherOption {
	return func(d *Dispatcher) { d.selection = r }
}

func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ResolveField resolves req against v. Flattened members delegate to the
// inner value. On an interface the field must be declared by the interface;
// its arguments are bound before the concrete object is invoked. Unions
// expose no fields besides __typename. Every returned error is a
// *gqlerror.Error carrying the request's path and position.
func (d *Dispatcher) ResolveField(ctx context.Context, v *Value, req FieldRequest) (any, error) {
	if v == nil {
		return nil, locate(errors.New("cannot resolve field of null value"), req.Position, req.Path)
	}
	if req.Name == "__typename" {
		return d.IntrospectTypename(v), nil
	}
	if v.inner != nil {
		return d.ResolveField(ctx, v.inner, req)
	}

	desc := v.desc
	if desc.kind == KindUnion {
		return nil, locate(&FieldNotFoundError{Field: req.Name, Object: desc.name}, req.Position, req.Path)
	}
	fd := desc.Field(req.Name)
	if fd == nil {
		return nil, locate(&FieldNotFoundError{Field: req.Name, Object: desc.name}, req.Position, req.Path)
	}
	args, err := Bind(fd.Args, req.Args)
	if err != nil {
		return nil, locate(err, req.Position, req.Path)
	}

	concrete := desc.members[v.member].Concrete
	pathKey := pathString(req.Path)
	eventbus.Publish(ctx, events.FieldDispatchStart{Type: desc.name, ConcreteType: concrete, Field: fd.Name, Path: pathKey})
	start := time.Now()
	result, err := v.object.ResolveField(ctx, fd.Name, args)
	eventbus.Publish(ctx, events.FieldDispatchFinish{
		Type:         desc.name,
		ConcreteType: concrete,
		Field:        fd.Name,
		Path:         pathKey,
		Err:          err,
		Duration:     time.Since(start),
	})
	if err != nil {
		return nil, locate(&ResolverError{Err: err, Position: req.Position, Path: req.Path}, req.Position, req.Path)
	}

	if d.selection == nil || len(req.SelectionSet) == 0 {
		return result, nil
	}
	out, err := d.selection.ResolveSelection(ctx, fd.Type, result, req.SelectionSet, req.Path)
	if err != nil {
		var located *gqlerror.Error
		if errors.As(err, &located) {
			return nil, err
		}
		return nil, locate(err, req.Position, req.Path)
	}
	return out, nil
}

// IntrospectTypename returns the registered name of the concrete object type
// v wraps, following flattened members.
func (d *Dispatcher) IntrospectTypename(v *Value) string {
	leaf := v.leaf()
	return leaf.desc.members[leaf.member].Concrete
}

// Concrete returns the object v wraps, following flattened members.
func (d *Dispatcher) Concrete(v *Value) Object {
	return v.leaf().object
}

// CollectFields collects the fields of selectionSet for the concrete object
// v wraps. Objects implementing CollectingObject collect their own fields;
// all others use generic. Collection order is left to the collector.
func (d *Dispatcher) CollectFields(v *Value, selectionSet language.SelectionSet, generic FieldCollector, out *executor.FieldSet) error {
	if v == nil {
		return errors.New("cannot collect fields of null value")
	}
	if v.inner != nil {
		return d.CollectFields(v.inner, selectionSet, generic, out)
	}
	if co, ok := v.object.(CollectingObject); ok {
		return co.CollectFields(selectionSet, generic, out)
	}
	if generic == nil {
		return fmt.Errorf("no field collector for %s", d.IntrospectTypename(v))
	}
	return generic.CollectFields(d.IntrospectTypename(v), selectionSet, out)
}

func pathString(path []any) string {
	var b strings.Builder
	for i, elem := range path {
		switch e := elem.(type) {
		case int:
			fmt.Fprintf(&b, "[%d]", e)
		default:
			if i > 0 {
				b.WriteByte('.')
			}
			fmt.Fprint(&b, e)
		}
	}
	return b.String()
}
