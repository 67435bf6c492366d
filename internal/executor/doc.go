// Package executor implements a breadth-first, batch-friendly GraphQL executor
// with runtime hooks for synchronous resolution, depth-wise batching of
// asynchronous work, abstract-type resolution and leaf serialization.
//
// # Preparation
//
// Before execution the executor picks the operation (by name, or the only
// one when unnamed), coerces variables against the operation's variable
// definitions and selects the root object type. Variable errors stop
// execution before any field is resolved.
//
// # Execution model
//
// Fields are classified by schema.Field.Async:
//
//   - Synchronous fields are resolved immediately through Runtime.ResolveSync
//     and completed in place. Descending through synchronous fields does not
//     add depth.
//   - Asynchronous fields are queued. Once the current depth has been fully
//     expanded the queue is handed to Runtime.BatchResolveAsync in a single
//     call, and the completions of those results form the next depth.
//
// For a graph with asynchronous depth d, BatchResolveAsync is invoked exactly
// d times.
//
// # Field collection
//
// A Collector implements CollectFields for one request. Fields are grouped by
// response name in first-appearance order. @skip and @include are honored on
// fields, inline fragments, fragment spreads and fragment definitions. A
// fragment applies to an object type when its type condition is absent,
// names the object type itself, or names an interface or union that the
// object type belongs to.
//
// # Value completion
//
//   - Non-Null: complete the inner type; a null result records an error and
//     propagates null to the nearest nullable ancestor.
//   - List: complete each element with an index-aware path. A null element of
//     a Non-Null item type nullifies the whole list.
//   - Scalar and enum: Runtime.SerializeLeafValue.
//   - Interface and union: Runtime.ResolveType names the concrete object
//     type, which must be a possible type of the abstract type. The concrete
//     value hook then unwraps the value and it is completed as that object.
//     Runtimes implementing AbstractFieldCollector collect its fields.
//   - Object: collect subfields, resolve synchronous ones and queue the rest.
//
// # Errors
//
// Errors are accumulated with their response path and execution continues
// where possible. Resolver errors of type *gqlerror.Error keep their
// locations and extensions. Queued tasks under a path that was nullified by
// Non-Null propagation are dropped before the next batch.
package executor
