package schema

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/lexer"
)

// TypeRef is a possibly wrapped reference to a named type. List and
// NonNull wrap OfType; Named is set only on the innermost reference.
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef
	Named  string
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }

func (t *TypeRef) IsNonNull() bool { return t != nil && t.Kind == TypeRefKindNonNull }

// IsList reports whether t is a list, nullable or not.
func (t *TypeRef) IsList() bool {
	if t.IsNonNull() {
		t = t.OfType
	}
	return t != nil && t.Kind == TypeRefKindList
}

// Unwrap strips one List or NonNull layer. Named references return themselves.
func (t *TypeRef) Unwrap() *TypeRef {
	if t.Kind == TypeRefKindNamed {
		return t
	}
	return t.OfType
}

// GetNamedType returns the name at the core of t.
func (t *TypeRef) GetNamedType() string {
	for t != nil && t.Kind != TypeRefKindNamed {
		t = t.OfType
	}
	if t == nil {
		return ""
	}
	return t.Named
}

func IsNonNull(t *TypeRef) bool      { return t.IsNonNull() }
func IsList(t *TypeRef) bool         { return t != nil && t.IsList() }
func Unwrap(t *TypeRef) *TypeRef     { return t.Unwrap() }
func GetNamedType(t *TypeRef) string { return t.GetNamedType() }

// ParseTypeRef parses a type signature such as "Int", "[String!]" or
// "[[ID]!]!" into a TypeRef.
func ParseTypeRef(signature string) (*TypeRef, error) {
	p := typeRefParser{lex: lexer.New(&ast.Source{Input: signature})}
	if err := p.next(); err != nil {
		return nil, err
	}
	ref, err := p.parseType()
	if err != nil {
		return nil, fmt.Errorf("parse type %q: %w", signature, err)
	}
	if p.tok.Kind != lexer.EOF {
		return nil, fmt.Errorf("parse type %q: unexpected %s after type", signature, p.tok.String())
	}
	return ref, nil
}

// MustParseTypeRef is like ParseTypeRef but panics on malformed input.
func MustParseTypeRef(signature string) *TypeRef {
	ref, err := ParseTypeRef(signature)
	if err != nil {
		panic(err)
	}
	return ref
}

type typeRefParser struct {
	lex lexer.Lexer
	tok lexer.Token
}

func (p *typeRefParser) next() error {
	tok, err := p.lex.ReadToken()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *typeRefParser) parseType() (*TypeRef, error) {
	var ref *TypeRef
	switch p.tok.Kind {
	case lexer.Name:
		ref = NamedType(p.tok.Value)
		if err := p.next(); err != nil {
			return nil, err
		}
	case lexer.BracketL:
		if err := p.next(); err != nil {
			return nil, err
		}
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if p.tok.Kind != lexer.BracketR {
			return nil, fmt.Errorf("expected ], found %s", p.tok.String())
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		ref = ListType(inner)
	default:
		return nil, fmt.Errorf("expected type name or [, found %s", p.tok.String())
	}
	if p.tok.Kind == lexer.Bang {
		if err := p.next(); err != nil {
			return nil, err
		}
		ref = NonNullType(ref)
	}
	return ref, nil
}

// String renders the reference in SDL notation; nil renders empty.
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case TypeRefKindList:
		return "[" + t.OfType.String() + "]"
	case TypeRefKindNonNull:
		return t.OfType.String() + "!"
	default:
		return t.Named
	}
}
