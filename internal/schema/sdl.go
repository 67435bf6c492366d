package schema

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	language "github.com/hanpama/polygraph/internal/language"
)

// BuildFromSDL parses SDL and returns the corresponding Schema. Extensions are
// merged into their base definitions. Fields carrying the `@async` directive
// are marked Async; all others resolve synchronously.
//
// When the document has no schema definition, the Query and Mutation types
// are used as roots if present.
func BuildFromSDL(sdl string) (*Schema, error) {
	doc, err := language.ParseSchema("schema.graphql", sdl)
	if err != nil {
		return nil, err
	}
	s := NewSchema("")

	defs := make(map[string]*ast.Definition, len(doc.Definitions))
	var order []string
	for _, def := range doc.Definitions {
		if _, dup := defs[def.Name]; dup {
			return nil, fmt.Errorf("duplicate type %q", def.Name)
		}
		defs[def.Name] = def
		order = append(order, def.Name)
	}
	for _, ext := range doc.Extensions {
		base := defs[ext.Name]
		if base == nil {
			return nil, fmt.Errorf("cannot extend undefined type %q", ext.Name)
		}
		base.Fields = append(base.Fields, ext.Fields...)
		base.Interfaces = append(base.Interfaces, ext.Interfaces...)
		base.Types = append(base.Types, ext.Types...)
		base.EnumValues = append(base.EnumValues, ext.EnumValues...)
	}

	for _, name := range order {
		t, err := buildDefinition(defs[name])
		if err != nil {
			return nil, err
		}
		s.AddType(t)
	}

	// Interfaces learn their possible types from implementing objects.
	for _, name := range order {
		def := defs[name]
		if def.Kind != ast.Object {
			continue
		}
		for _, iface := range def.Interfaces {
			it := s.Types[iface]
			if it == nil || it.Kind != TypeKindInterface {
				return nil, fmt.Errorf("type %q implements unknown interface %q", def.Name, iface)
			}
			it.AddPossibleType(def.Name)
		}
	}

	for _, sd := range doc.Schema {
		for _, op := range sd.OperationTypes {
			switch op.Operation {
			case ast.Query:
				s.SetQueryType(op.Type)
			case ast.Mutation:
				s.SetMutationType(op.Type)
			case ast.Subscription:
				s.SetSubscriptionType(op.Type)
			}
		}
	}
	if s.QueryType == "" && s.Types["Query"] != nil {
		s.SetQueryType("Query")
	}
	if s.MutationType == "" && s.Types["Mutation"] != nil {
		s.SetMutationType("Mutation")
	}
	return s, nil
}

func buildDefinition(def *ast.Definition) (*Type, error) {
	switch def.Kind {
	case ast.Object, ast.Interface:
		kind := TypeKindObject
		if def.Kind == ast.Interface {
			kind = TypeKindInterface
		}
		t := NewType(def.Name, kind, def.Description)
		for _, iface := range def.Interfaces {
			t.AddInterface(iface)
		}
		for _, fd := range def.Fields {
			f, err := buildSDLField(fd)
			if err != nil {
				return nil, fmt.Errorf("type %q: %w", def.Name, err)
			}
			t.AddField(f)
		}
		return t, nil
	case ast.Union:
		t := NewType(def.Name, TypeKindUnion, def.Description)
		for _, member := range def.Types {
			t.AddPossibleType(member)
		}
		return t, nil
	case ast.Enum:
		t := NewType(def.Name, TypeKindEnum, def.Description)
		for _, ev := range def.EnumValues {
			v := NewEnumValue(ev.Name, ev.Description)
			if d := ev.Directives.ForName("deprecated"); d != nil {
				v.Deprecate(deprecationReason(d))
			}
			t.AddEnumValue(v)
		}
		return t, nil
	case ast.InputObject:
		t := NewType(def.Name, TypeKindInputObject, def.Description)
		t.SetOneOf(def.Directives.ForName("oneOf") != nil)
		for _, fd := range def.Fields {
			in, err := buildSDLInputValue(fd.Name, fd.Description, fd.Type, fd.DefaultValue)
			if err != nil {
				return nil, fmt.Errorf("input %q: %w", def.Name, err)
			}
			t.AddInputField(in)
		}
		return t, nil
	case ast.Scalar:
		return NewType(def.Name, TypeKindScalar, def.Description), nil
	}
	return nil, fmt.Errorf("unsupported definition kind %s for %q", def.Kind, def.Name)
}

func buildSDLField(fd *ast.FieldDefinition) (*Field, error) {
	f := NewField(fd.Name, fd.Description, typeRefFromAST(fd.Type)).
		SetAsync(fd.Directives.ForName("async") != nil)
	if d := fd.Directives.ForName("deprecated"); d != nil {
		f.Deprecate(deprecationReason(d))
	}
	for _, ad := range fd.Arguments {
		in, err := buildSDLInputValue(ad.Name, ad.Description, ad.Type, ad.DefaultValue)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", fd.Name, err)
		}
		f.AddArgument(in)
	}
	return f, nil
}

func buildSDLInputValue(name, description string, typ *ast.Type, def *ast.Value) (*InputValue, error) {
	in := NewInputValue(name, description, typeRefFromAST(typ))
	if def != nil {
		v, err := def.Value(nil)
		if err != nil {
			return nil, fmt.Errorf("default value of %q: %w", name, err)
		}
		in.SetDefault(v)
	}
	return in, nil
}

func deprecationReason(d *ast.Directive) string {
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw
	}
	return ""
}

func typeRefFromAST(t *ast.Type) *TypeRef {
	if t == nil {
		return nil
	}
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(typeRefFromAST(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		return NonNullType(ref)
	}
	return ref
}

// FromAST converts a parsed type reference.
func FromAST(t *ast.Type) *TypeRef { return typeRefFromAST(t) }
