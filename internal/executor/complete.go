package executor

import (
	"errors"
	"fmt"
	"reflect"

	language "github.com/hanpama/polygraph/internal/language"
	schema "github.com/hanpama/polygraph/internal/schema"
)

// completeValue shapes a resolved value by its field type. Null results of
// Non-Null types are reported once per path.
func (s *executionState) completeValue(fieldType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	if fieldType.IsNonNull() {
		completed := s.completeValue(fieldType.OfType, fields, result, path)
		if isNullish(completed) {
			if isNullish(result) && !s.hasErrorAt(path) {
				s.addError("Cannot return null for non-nullable field "+path.String(), path)
			}
			return nil
		}
		return completed
	}
	if isNullish(result) {
		return nil
	}
	if fieldType.Kind == schema.TypeRefKindList {
		return s.completeList(fieldType.OfType, fields, result, path)
	}

	name := fieldType.GetNamedType()
	t := s.schema.Types[name]
	if t == nil {
		s.addError("Unknown type: "+name, path)
		return nil
	}
	switch t.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		v, err := s.runtime.SerializeLeafValue(s.ctx, name, result)
		if err != nil {
			s.addResolverError(err, path)
			return nil
		}
		return v
	case schema.TypeKindObject:
		return s.executeSelectionSet(t, mergeSelectionSets(fields), result, path)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return s.completeAbstract(t, fields, result, path)
	}
	s.addError(fmt.Sprintf("Cannot complete value of unexpected type: %s", t.Kind), path)
	return nil
}

// completeList completes each item; one null item of a Non-Null item type
// makes the whole list null.
func (s *executionState) completeList(itemType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	items, ok := result.([]any)
	if !ok {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			s.addError(fmt.Sprintf("Expected list value, got %T", result), path)
			return nil
		}
		items = make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
	}

	out := make([]any, len(items))
	for i, item := range items {
		v := s.completeValue(itemType, fields, item, path.with(i))
		if isNullish(v) && itemType.IsNonNull() {
			return nil
		}
		out[i] = v
	}
	return out
}

// completeAbstract asks the runtime for the concrete object type of an
// interface or union value, lets it unwrap the value, and completes the
// result as that object.
func (s *executionState) completeAbstract(abstract *schema.Type, fields []*language.Field, result any, path Path) any {
	typeName, err := s.runtime.ResolveType(s.ctx, abstract.Name, result)
	if err != nil {
		s.addResolverError(err, path)
		return nil
	}
	object := s.schema.Types[typeName]
	switch {
	case object == nil || object.Kind != schema.TypeKindObject:
		s.addError(fmt.Sprintf("Abstract type %s must resolve to an Object type at runtime. Got: %s", abstract.Name, typeName), path)
		return nil
	case !s.schema.IsPossibleType(abstract.Name, typeName):
		s.addError(fmt.Sprintf("Runtime Object type %s is not a possible type for %s", typeName, abstract.Name), path)
		return nil
	}

	var concrete any
	if abstract.Kind == schema.TypeKindUnion {
		concrete, err = s.runtime.ResolveUnionConcreteValue(s.ctx, abstract.Name, result)
	} else {
		concrete, err = s.runtime.ResolveInterfaceConcreteValue(s.ctx, abstract.Name, result)
	}
	if err != nil {
		s.addResolverError(err, path)
		return nil
	}
	if isNullish(concrete) {
		return nil
	}

	selectionSet := mergeSelectionSets(fields)
	collector, ok := s.runtime.(AbstractFieldCollector)
	if !ok {
		return s.executeSelectionSet(object, selectionSet, concrete, path)
	}
	collected := NewFieldSet()
	if err := collector.CollectAbstractFields(s.ctx, typeName, concrete, selectionSet, s.collector, collected); err != nil {
		s.addResolverError(err, path)
		return nil
	}
	return s.executeFields(object, collected, concrete, path)
}

func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// isNullish reports nil and typed nil values.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func (s *executionState) addError(message string, path Path) {
	s.errors = append(s.errors, GraphQLError{Message: message, Path: path})
}

// addResolverError records err at path. Located errors keep their own
// locations and extensions, and their path when they carry one.
func (s *executionState) addResolverError(err error, path Path) {
	var located *language.Error
	if !errors.As(err, &located) {
		s.addError(err.Error(), path)
		return
	}
	ge := GraphQLError{Message: located.Message, Path: path, Extensions: located.Extensions}
	if len(located.Path) > 0 {
		ge.Path = Path(language.FromPath(located.Path))
	}
	if len(located.Locations) > 0 {
		ge.Locations = append([]language.Location(nil), located.Locations...)
	}
	s.errors = append(s.errors, ge)
}

func (s *executionState) hasErrorAt(path Path) bool {
	key := path.String()
	for _, e := range s.errors {
		if e.Path.String() == key {
			return true
		}
	}
	return false
}

func typeRefFromAST(t *language.Type) *schema.TypeRef { return schema.FromAST(t) }
