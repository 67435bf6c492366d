package poly_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	poly "github.com/hanpama/polygraph/internal/poly"
	schema "github.com/hanpama/polygraph/internal/schema"
)

func arg(name, typ string) *poly.ArgumentDescriptor {
	return &poly.ArgumentDescriptor{Name: name, Type: schema.MustParseTypeRef(typ)}
}

func TestBind_DefaultApplication(t *testing.T) {
	first := arg("first", "Int")
	first.Default, first.HasDefault = 10, true
	declared := []*poly.ArgumentDescriptor{first}

	got, err := poly.Bind(declared, map[string]any{})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"first": 10}, got)

	got, err = poly.Bind(declared, map[string]any{"first": 5})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"first": 5}, got)
}

func TestBind_ComputedDefaultEvaluatedPerCall(t *testing.T) {
	n := 0
	seq := arg("seq", "Int!")
	seq.DefaultFunc = func() any { n++; return n }
	declared := []*poly.ArgumentDescriptor{seq}

	first, err := poly.Bind(declared, nil)
	require.NoError(t, err)
	second, err := poly.Bind(declared, nil)
	require.NoError(t, err)

	require.Equal(t, 1, first["seq"])
	require.Equal(t, 2, second["seq"])
}

func TestBind_ComputedDefaultIsCoerced(t *testing.T) {
	limit := arg("limit", "Int")
	limit.DefaultFunc = func() any { return int64(25) }
	bound, err := poly.Bind([]*poly.ArgumentDescriptor{limit}, nil)
	require.NoError(t, err)
	require.Equal(t, 25, bound["limit"])

	limit.DefaultFunc = func() any { return "lots" }
	_, err = poly.Bind([]*poly.ArgumentDescriptor{limit}, nil)
	var be *poly.BindError
	require.ErrorAs(t, err, &be)
	require.Equal(t, poly.TypeMismatch, be.Kind)
	require.Equal(t, "limit", be.Argument)
	require.Equal(t, "lots", be.Got)
}

func TestBind_MissingRequired(t *testing.T) {
	_, err := poly.Bind([]*poly.ArgumentDescriptor{arg("id", "ID!")}, map[string]any{"other": 1})

	var be *poly.BindError
	require.ErrorAs(t, err, &be)
	require.Equal(t, poly.MissingRequiredArgument, be.Kind)
	require.Equal(t, "id", be.Argument)
	require.Equal(t, "ID!", be.Expected)
}

func TestBind_TypeMismatch(t *testing.T) {
	cases := map[string]struct {
		typ   string
		value any
	}{
		"string for int":   {"Int", "five"},
		"null for nonnull": {"Int!", nil},
		"fraction for int": {"Int", 1.5},
		"list item":        {"[Boolean!]", []any{true, "no"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := poly.Bind([]*poly.ArgumentDescriptor{arg("x", tc.typ)}, map[string]any{"x": tc.value})

			var be *poly.BindError
			require.ErrorAs(t, err, &be)
			require.Equal(t, poly.TypeMismatch, be.Kind)
			require.Equal(t, "x", be.Argument)
			require.Equal(t, tc.typ, be.Expected)
			require.Equal(t, tc.value, be.Got)
		})
	}
}

func TestBind_OptionalAbsentIsNil(t *testing.T) {
	got, err := poly.Bind([]*poly.ArgumentDescriptor{arg("after", "String"), arg("tags", "[String]")}, nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"after": nil, "tags": nil}, got)
}

func TestBind_Coerces(t *testing.T) {
	got, err := poly.Bind([]*poly.ArgumentDescriptor{
		arg("id", "ID!"),
		arg("ratio", "Float"),
		arg("tags", "[String!]"),
	}, map[string]any{"id": 7, "ratio": 2, "tags": "solo", "ignored": true})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"id": "7", "ratio": 2.0, "tags": []any{"solo"}}, got)
}
