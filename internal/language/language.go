package language

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func ParseSchema(name, source string) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ToPath converts a response path made of names and list indices into the
// parser's path representation.
func ToPath(elems []any) Path {
	if len(elems) == 0 {
		return nil
	}
	out := make(Path, 0, len(elems))
	for _, e := range elems {
		switch v := e.(type) {
		case string:
			out = append(out, ast.PathName(v))
		case int:
			out = append(out, ast.PathIndex(v))
		}
	}
	return out
}

// FromPath is the inverse of ToPath.
func FromPath(p Path) []any {
	if len(p) == 0 {
		return nil
	}
	out := make([]any, 0, len(p))
	for _, e := range p {
		switch v := e.(type) {
		case ast.PathName:
			out = append(out, string(v))
		case ast.PathIndex:
			out = append(out, int(v))
		}
	}
	return out
}
