package executor

import (
	"fmt"

	coerce "github.com/hanpama/polygraph/internal/coerce"
	language "github.com/hanpama/polygraph/internal/language"
	schema "github.com/hanpama/polygraph/internal/schema"
)

// FieldSet groups collected fields by response name, preserving the order in
// which response names first appear in the query.
type FieldSet struct {
	fields []CollectedField
	index  map[string]int
}

type CollectedField struct {
	ResponseName string
	Fields       []*language.Field
}

func NewFieldSet() *FieldSet {
	return &FieldSet{
		fields: make([]CollectedField, 0),
		index:  make(map[string]int),
	}
}

// Add appends field to the group for responseName.
func (s *FieldSet) Add(responseName string, field *language.Field) {
	if idx, exists := s.index[responseName]; exists {
		s.fields[idx].Fields = append(s.fields[idx].Fields, field)
		return
	}
	s.index[responseName] = len(s.fields)
	s.fields = append(s.fields, CollectedField{
		ResponseName: responseName,
		Fields:       []*language.Field{field},
	})
}

func (s *FieldSet) Fields() []CollectedField { return s.fields }

func (s *FieldSet) Len() int { return len(s.fields) }

// Collector implements the CollectFields algorithm for one request: it
// flattens fragments, applies @skip/@include and matches fragment type
// conditions against the object type, including interface and union
// conditions.
type Collector struct {
	schema         *schema.Schema
	document       *language.QueryDocument
	variableValues map[string]any
}

func NewCollector(sch *schema.Schema, document *language.QueryDocument, variableValues map[string]any) *Collector {
	return &Collector{schema: sch, document: document, variableValues: variableValues}
}

// CollectFields collects the fields of selectionSet that apply to the object
// type named objectType into out.
func (c *Collector) CollectFields(objectType string, selectionSet language.SelectionSet, out *FieldSet) error {
	if out == nil {
		return fmt.Errorf("collect fields on %s: nil field set", objectType)
	}
	return c.collect(objectType, selectionSet, out, make(map[string]bool))
}

func (c *Collector) collect(objectType string, selectionSet language.SelectionSet, out *FieldSet, visitedFragments map[string]bool) error {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if !c.shouldIncludeNode(sel.Directives) {
				continue
			}
			responseName := sel.Alias
			if responseName == "" {
				responseName = sel.Name
			}
			out.Add(responseName, sel)

		case *language.InlineFragment:
			if !c.shouldIncludeNode(sel.Directives) {
				continue
			}
			if !c.doesFragmentTypeApply(objectType, sel.TypeCondition) {
				continue
			}
			if err := c.collect(objectType, sel.SelectionSet, out, visitedFragments); err != nil {
				return err
			}

		case *language.FragmentSpread:
			if !c.shouldIncludeNode(sel.Directives) {
				continue
			}
			if visitedFragments[sel.Name] {
				continue
			}
			visitedFragments[sel.Name] = true

			fragmentDef := getFragmentDefinition(c.document, sel.Name)
			if fragmentDef == nil {
				return fmt.Errorf("unknown fragment %q", sel.Name)
			}
			if !c.doesFragmentTypeApply(objectType, fragmentDef.TypeCondition) {
				continue
			}
			if !c.shouldIncludeNode(fragmentDef.Directives) {
				continue
			}
			if err := c.collect(objectType, fragmentDef.SelectionSet, out, visitedFragments); err != nil {
				return err
			}
		}
	}
	return nil
}

// doesFragmentTypeApply reports whether a fragment with the given type
// condition applies to objectType.
func (c *Collector) doesFragmentTypeApply(objectType, typeCondition string) bool {
	if typeCondition == "" || typeCondition == objectType {
		return true
	}
	if c.schema == nil {
		return false
	}
	return c.schema.IsPossibleType(typeCondition, objectType)
}

// shouldIncludeNode applies @skip and @include. A condition that is not a
// boolean is ignored.
func (c *Collector) shouldIncludeNode(directives language.DirectiveList) bool {
	return !c.condition(directives, "skip", true) && !c.condition(directives, "include", false)
}

// condition reports whether directive name is present with if: want.
func (c *Collector) condition(directives language.DirectiveList, name string, want bool) bool {
	d := directives.ForName(name)
	if d == nil {
		return false
	}
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false
	}
	v, ok := coerce.FromAST(arg.Value, c.variableValues).(bool)
	return ok && v == want
}

// getFragmentDefinition finds a fragment definition by name in the document
func getFragmentDefinition(document *language.QueryDocument, name string) *language.FragmentDefinition {
	if document == nil {
		return nil
	}
	return document.Fragments.ForName(name)
}
