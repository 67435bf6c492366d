package executor

import (
	"context"
	"fmt"

	language "github.com/hanpama/polygraph/internal/language"
	schema "github.com/hanpama/polygraph/internal/schema"
)

// Executor runs operations against one schema through one Runtime. It holds
// no per-request state and is safe for concurrent use.
type Executor struct {
	runtime Runtime
	schema  *schema.Schema
}

func NewExecutor(runtime Runtime, schema *schema.Schema) *Executor {
	return &Executor{runtime: runtime, schema: schema}
}

func (e *Executor) Schema() *schema.Schema { return e.schema }

// ExecuteRequest executes the selected operation of document. Failures that
// stop execution before any field resolves are returned with nil Data.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	operation := selectOperation(document, operationName)
	if operation == nil {
		return failed("operation not found")
	}
	variables, err := coerceVariableValues(e.schema, operation, variableValues)
	if err != nil {
		return failed(err.Error())
	}
	rootType, err := e.rootType(operation.Operation)
	if err != nil {
		return failed(err.Error())
	}

	s := &executionState{
		ctx:       ctx,
		runtime:   e.runtime,
		schema:    e.schema,
		variables: variables,
		collector: NewCollector(e.schema, document, variables),
		nullified: make(map[string]struct{}),
	}
	data := s.executeSelectionSet(rootType, operation.SelectionSet, initialValue, Path{})
	if data == nil {
		data = make(map[string]any)
	}
	for len(s.queue) > 0 {
		s.flush(data)
	}
	return &ExecutionResult{Data: data, Errors: s.errors}
}

func failed(message string) *ExecutionResult {
	return &ExecutionResult{Errors: []GraphQLError{{Message: message}}}
}

func (e *Executor) rootType(op language.Operation) (*schema.Type, error) {
	var t *schema.Type
	switch op {
	case language.Query:
		t = e.schema.GetQueryType()
	case language.Mutation:
		t = e.schema.GetMutationType()
	case language.Subscription:
		t = e.schema.GetSubscriptionType()
	default:
		return nil, fmt.Errorf("unsupported operation type: %s", op)
	}
	if t == nil {
		return nil, fmt.Errorf("root type not found for %s operation", op)
	}
	return t, nil
}

// selectOperation picks the named operation, or the only one when no name
// is given.
func selectOperation(document *language.QueryDocument, name string) *language.OperationDefinition {
	if name == "" {
		if len(document.Operations) == 1 {
			return document.Operations[0]
		}
		return nil
	}
	return document.Operations.ForName(name)
}

// executionState is the per-request state. Fields resolve on one goroutine,
// so it needs no locking.
type executionState struct {
	ctx       context.Context
	runtime   Runtime
	schema    *schema.Schema
	variables map[string]any
	collector *Collector
	errors    []GraphQLError

	// queue holds async fields found at the current depth.
	queue []queuedField
	// nullified holds keys of response paths already set to null; queued
	// fields below them are dropped.
	nullified map[string]struct{}
}

// executeSelectionSet returns nil when a Non-Null field of the object came
// back null, which makes the object itself null.
func (s *executionState) executeSelectionSet(objectType *schema.Type, selectionSet language.SelectionSet, objectValue any, path Path) map[string]any {
	fields := NewFieldSet()
	if err := s.collector.CollectFields(objectType.Name, selectionSet, fields); err != nil {
		s.addError(err.Error(), path)
		return nil
	}
	return s.executeFields(objectType, fields, objectValue, path)
}

func (s *executionState) executeFields(objectType *schema.Type, fields *FieldSet, objectValue any, path Path) map[string]any {
	out := make(map[string]any, fields.Len())
	for _, cf := range fields.Fields() {
		name := cf.Fields[0].Name
		value := s.executeField(objectType, objectValue, cf.Fields, path.with(cf.ResponseName))
		if name == "__typename" {
			out[cf.ResponseName] = value
			continue
		}
		def := objectType.Field(name)
		if def == nil {
			continue
		}
		if isNullish(value) {
			if def.Type.IsNonNull() && len(path) > 0 {
				s.nullify(path)
				return nil
			}
			value = nil
		}
		out[cf.ResponseName] = value
	}
	return out
}

// executeField resolves one response key. Async fields are queued and stand
// in as pending until their batch completes.
func (s *executionState) executeField(objectType *schema.Type, objectValue any, fields []*language.Field, path Path) any {
	name := fields[0].Name
	if name == "__typename" {
		return objectType.Name
	}
	def := objectType.Field(name)
	if def == nil {
		s.addError(fmt.Sprintf("Cannot query field '%s' on type '%s'", name, objectType.Name), path)
		return nil
	}

	args := s.coerceArguments(def, fields[0].Arguments, path)
	if def.Async {
		s.enqueue(queuedField{
			task: AsyncResolveTask{
				ObjectType: objectType.Name,
				Field:      name,
				Source:     objectValue,
				Args:       args,
				Path:       path,
				Fields:     fields,
			},
			fieldType: def.Type,
		})
		return pending{}
	}

	info := &ResolveInfo{ObjectType: objectType.Name, Path: path, Fields: fields}
	value, err := s.runtime.ResolveSync(WithResolveInfo(s.ctx, info), objectType.Name, name, objectValue, args)
	if err != nil {
		s.addResolverError(err, path)
		value = nil
	}
	return s.completeValue(def.Type, fields, value, path)
}
