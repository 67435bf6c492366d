package executor

import (
	"context"

	language "github.com/hanpama/polygraph/internal/language"
)

// Runtime is the host integration surface of the Executor: field
// resolution, depth-wise batching, abstract type resolution and leaf
// serialization.
//
// Contract
//   - Execution is breadth-first. At each depth all synchronous fields are
//     drained through ResolveSync, then BatchResolveAsync is called once with
//     every async task found at that depth. The next depth starts only after
//     those results are completed.
//   - ResolveSync is never called for fields marked Async, and
//     BatchResolveAsync is only called with at least one task.
//   - Errors returned from any method become GraphQL errors at the field's
//     response path. Errors of type *gqlerror.Error keep their own message,
//     locations, extensions and path. Non-Null fields propagate null to the
//     nearest nullable ancestor.
//   - Implementations must be safe for concurrent use across operations and
//     must not mutate source or args.
//
// Identifiers
//   - objectType is the GraphQL type name (e.g. "User"); for root fields the
//     root type name.
//   - source is the parent object value (nil for root).
//   - args holds argument values already coerced against the schema.
//
// Abstract types
//   - ResolveType returns the concrete object type name of an interface or
//     union value. The Executor rejects names that are not possible types of
//     the abstract type.
//   - The Executor then calls ResolveUnionConcreteValue or
//     ResolveInterfaceConcreteValue and completes the returned value as the
//     concrete object.
//   - A Runtime that also implements AbstractFieldCollector takes over field
//     collection for abstract values.
//
// Batches
//   - BatchResolveAsync returns exactly one result per task, in task order.
//     Failures are per element; the Executor supports partial success.
//   - Tasks under paths nullified by a Non-Null violation are filtered out
//     before the call.
type Runtime interface {
	// ResolveSync resolves a synchronous field value immediately. The
	// field's ResolveInfo is available through ResolveInfoFromContext.
	// Return (nil, nil) to produce null for nullable fields.
	ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	// BatchResolveAsync resolves one execution depth of async field tasks.
	// len(results) must equal len(tasks) and results[i] belongs to tasks[i].
	BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult

	// ResolveType determines the concrete runtime type name for a value of an
	// abstract GraphQL type.
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)

	// ResolveUnionConcreteValue converts a union value into the value the
	// concrete object's fields are resolved against.
	ResolveUnionConcreteValue(ctx context.Context, unionTypeName string, value any) (any, error)

	// ResolveInterfaceConcreteValue converts an interface value into the value
	// the concrete object's fields are resolved against.
	ResolveInterfaceConcreteValue(ctx context.Context, interfaceTypeName string, value any) (any, error)

	// SerializeLeafValue serializes a scalar or enum value to a JSON-safe Go
	// value. Enums serialize to their symbolic name.
	SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error)
}

// AbstractFieldCollector is implemented by runtimes that collect the
// selection set of an abstract value themselves, for example by delegating
// to the concrete object. generic is the request's default collector.
type AbstractFieldCollector interface {
	CollectAbstractFields(ctx context.Context, objectType string, value any, selectionSet language.SelectionSet, generic *Collector, out *FieldSet) error
}

type AsyncResolveTask struct {
	// ObjectType is the parent GraphQL object type name for the field.
	ObjectType string
	// Field is the GraphQL field name to resolve.
	Field string
	// Source is the parent object value (nil for root fields).
	Source any
	// Args are the field arguments, coerced to Go values per the schema.
	Args map[string]any
	// Path is the response path of the field.
	Path Path
	// Fields are the merged AST nodes of the field.
	Fields []*language.Field
}

type AsyncResolveResult struct {
	// Value is the resolved raw value prior to completion, or nil on error.
	Value any
	// Error contains a failure specific to this element.
	Error error
}

// ResolveInfo describes the field being resolved.
type ResolveInfo struct {
	ObjectType string
	Path       Path
	Fields     []*language.Field
}

// Position returns the source position of the first field node, or nil.
func (i *ResolveInfo) Position() *language.Position {
	if i == nil || len(i.Fields) == 0 {
		return nil
	}
	return i.Fields[0].Position
}

type resolveInfoKey struct{}

// WithResolveInfo returns a copy of ctx carrying info.
func WithResolveInfo(ctx context.Context, info *ResolveInfo) context.Context {
	return context.WithValue(ctx, resolveInfoKey{}, info)
}

// ResolveInfoFromContext returns the ResolveInfo stored in ctx, if any.
func ResolveInfoFromContext(ctx context.Context) (*ResolveInfo, bool) {
	info, ok := ctx.Value(resolveInfoKey{}).(*ResolveInfo)
	return info, ok && info != nil
}
