package objrt_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	executor "github.com/hanpama/polygraph/internal/executor"
	language "github.com/hanpama/polygraph/internal/language"
	objrt "github.com/hanpama/polygraph/internal/objrt"
	poly "github.com/hanpama/polygraph/internal/poly"
	schema "github.com/hanpama/polygraph/internal/schema"
)

type fixture struct {
	schema   *schema.Schema
	registry *poly.Registry
	types    map[string]*poly.Descriptor
	runtime  *objrt.Runtime
}

func newFixture(t *testing.T, sdl string, defs ...*poly.Definition) *fixture {
	t.Helper()
	sch, err := schema.BuildFromSDL(sdl)
	require.NoError(t, err)
	b := poly.NewBuilder()
	require.NoError(t, b.Define(defs...))
	built, err := b.BuildAll()
	require.NoError(t, err)
	reg := poly.NewRegistry(sch)
	require.NoError(t, reg.RegisterAll(built...))
	reg.Freeze()

	types := make(map[string]*poly.Descriptor, len(built))
	for _, d := range built {
		types[d.Name()] = d
	}
	return &fixture{
		schema:   sch,
		registry: reg,
		types:    types,
		runtime:  objrt.NewRuntime(reg, objrt.WithSchema(sch)),
	}
}

func (f *fixture) execute(t *testing.T, query string, root any) *executor.ExecutionResult {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return executor.NewExecutor(f.runtime, f.schema).ExecuteRequest(context.Background(), doc, "", nil, root)
}

func requireResult(t *testing.T, want, got *executor.ExecutionResult) {
	t.Helper()
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func TestUnion_FragmentOnMember(t *testing.T) {
	f := newFixture(t, `
		type MyObj { id: Int! title: String! }
		type Query { node: Node! }
	`, poly.Union("Node").Member("MyObj", "MyObj"))

	root := objrt.NewRecord("Query", map[string]any{
		"node": f.types["Node"].MustWrap(objrt.NewRecord("MyObj", map[string]any{"id": 33, "title": "haha"})),
	})
	got := f.execute(t, `{ node { ... on MyObj { id } } }`, root)

	requireResult(t, &executor.ExecutionResult{
		Data:   map[string]any{"node": map[string]any{"id": 33}},
	}, got)
}

func TestUnion_SameObjectInTwoUnions(t *testing.T) {
	f := newFixture(t, `
		type MyObj { valueA: Int! valueB: Int! valueC: Int! }
		type Query { unionA: UnionA! unionB: UnionB! }
	`,
		poly.Union("UnionA").Member("MyObj", "MyObj"),
		poly.Union("UnionB").Member("MyObj", "MyObj"),
	)
	obj := objrt.NewRecord("MyObj", map[string]any{"valueA": 1, "valueB": 2, "valueC": 3})
	root := objrt.NewRecord("Query", map[string]any{
		"unionA": f.types["UnionA"].MustWrap(obj),
		"unionB": f.types["UnionB"].MustWrap(obj),
	})

	got := f.execute(t, `{
		unionA { ... on MyObj { valueA valueB valueC } }
		unionB { ... on MyObj { valueA valueB valueC } }
	}`, root)

	want := map[string]any{"valueA": 1, "valueB": 2, "valueC": 3}
	requireResult(t, &executor.ExecutionResult{
		Data:   map[string]any{"unionA": want, "unionB": want},
	}, got)
}

func TestUnion_ListMatchesOwnFragments(t *testing.T) {
	f := newFixture(t, `
		type MyObjOne { valueA: Int! valueB: Int! valueC: Int! }
		type MyObjTwo { valueA: Int! }
		type Query { data: [MyUnion!]! }
	`, poly.Union("MyUnion").Member("MyObjOne", "MyObjOne").Member("MyObjTwo", "MyObjTwo"))
	u := f.types["MyUnion"]
	root := objrt.NewRecord("Query", map[string]any{
		"data": []*poly.Value{
			u.MustWrap(objrt.NewRecord("MyObjOne", map[string]any{"valueA": 1, "valueB": 2, "valueC": 3})),
			u.MustWrap(objrt.NewRecord("MyObjTwo", map[string]any{"valueA": 1})),
		},
	})

	got := f.execute(t, `{
		data {
			... on MyObjOne { valueA valueB valueC }
			... on MyObjTwo { valueA }
		}
	}`, root)

	requireResult(t, &executor.ExecutionResult{
		Data: map[string]any{"data": []any{
			map[string]any{"valueA": 1, "valueB": 2, "valueC": 3},
			map[string]any{"valueA": 1},
		}},
	}, got)
}

func TestUnion_FlattenedMembers(t *testing.T) {
	f := newFixture(t, `
		type MyObj1 { value1: Int! }
		type MyObj2 { value2: Int! }
		type Query { value1: MyUnion! value2: MyUnion! }
	`,
		poly.Union("MyUnion").Flatten("Inner1", "Inner1").Flatten("Inner2", "Inner2"),
		poly.Union("Inner1").Member("MyObj1", "MyObj1"),
		poly.Union("Inner2").Member("MyObj2", "MyObj2"),
	)
	require.Equal(t, []string{"MyObj1", "MyObj2"}, f.schema.Types["MyUnion"].PossibleTypes)

	inner1 := f.types["Inner1"].MustWrap(objrt.NewRecord("MyObj1", map[string]any{"value1": 99}))
	root := objrt.NewRecord("Query", map[string]any{
		"value1": f.types["MyUnion"].MustWrap(inner1),
		// A bare object is accepted for a union that reaches it through a flatten.
		"value2": objrt.NewRecord("MyObj2", map[string]any{"value2": 88}),
	})

	got := f.execute(t, `{
		value1 { __typename ... on MyObj1 { value1 } ... on MyObj2 { value2 } }
		value2 { ... on MyObj1 { value1 } ... on MyObj2 { value2 } }
	}`, root)

	requireResult(t, &executor.ExecutionResult{
		Data: map[string]any{
			"value1": map[string]any{"__typename": "MyObj1", "value1": 99},
			"value2": map[string]any{"value2": 88},
		},
	}, got)
}

func nodeFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixture(t, `
		type User { id: ID! name: String! friends(first: Int): [String!]! }
		type Post { id: ID! title: String! }
		type Query { node: Node feed: [Node!]! }
	`, poly.Interface("Node").
		Member("User", "User").
		Member("Post", "Post").
		Field(poly.NewField("id", "ID!")).
		Field(poly.NewField("friends", "[String!]!").Arg(poly.NewArg("first", "Int").WithDefault(2))))
}

func TestInterface_FieldsAndFragments(t *testing.T) {
	f := nodeFixture(t)
	require.True(t, f.schema.Types["User"].HasInterface("Node"))

	node := f.types["Node"]
	friends := objrt.FieldFunc(func(ctx context.Context, args map[string]any) (any, error) {
		return []string{"ann", "bob", "cy"}[:args["first"].(int)], nil
	})
	root := objrt.NewRecord("Query", map[string]any{
		"feed": []*poly.Value{
			node.MustWrap(objrt.NewRecord("User", map[string]any{"id": 1, "name": "ann", "friends": friends})),
			node.MustWrap(objrt.NewRecord("Post", map[string]any{"id": "p1", "title": "hello"})),
		},
	})

	got := f.execute(t, `{
		feed {
			__typename
			id
			... on User { name friends }
			... on Post { title }
		}
	}`, root)

	requireResult(t, &executor.ExecutionResult{
		Data: map[string]any{"feed": []any{
			map[string]any{"__typename": "User", "id": "1", "name": "ann", "friends": []any{"ann", "bob"}},
			map[string]any{"__typename": "Post", "id": "p1", "title": "hello"},
		}},
	}, got)
}

func TestInterface_UnknownFieldNamesInterface(t *testing.T) {
	f := nodeFixture(t)
	v := f.types["Node"].MustWrap(objrt.NewRecord("Post", map[string]any{"id": "p1", "title": "hello"}))

	_, err := f.runtime.ResolveSync(context.Background(), "Node", "title", v, nil)

	var notFound *poly.FieldNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "Node", notFound.Object)
	require.Equal(t, "title", notFound.Field)
}

func TestInterface_ResolverErrorIsLocated(t *testing.T) {
	f := nodeFixture(t)
	user := objrt.NewRecord("User", map[string]any{
		"id": objrt.FieldFunc(func(ctx context.Context, args map[string]any) (any, error) {
			return nil, errors.New("boom")
		}),
	})
	root := objrt.NewRecord("Query", map[string]any{"node": f.types["Node"].MustWrap(user)})

	got := f.execute(t, `{ node { id } }`, root)

	requireResult(t, &executor.ExecutionResult{
		Data: map[string]any{"node": nil},
		Errors: []executor.GraphQLError{{
			Message:    "boom",
			Locations:  []language.Location{{Line: 1, Column: 10}},
			Path:       executor.Path{"node", "id"},
			Extensions: map[string]any{"code": poly.CodeResolverFailed},
		}},
	}, got)
}

func TestInterface_BadArgumentIsLocated(t *testing.T) {
	f := nodeFixture(t)
	user := objrt.NewRecord("User", map[string]any{"friends": []string{}})
	v := f.types["Node"].MustWrap(user)

	_, err := f.runtime.ResolveSync(context.Background(), "User", "friends", v, map[string]any{"first": "lots"})
	var be *poly.BindError
	require.ErrorAs(t, err, &be)
	require.Equal(t, poly.TypeMismatch, be.Kind)
}

func TestBatchResolveAsync_PreservesOrder(t *testing.T) {
	f := newFixture(t, `
		enum Color { RED GREEN }
		type Dog { name: String! color: Color! }
		type Cat { name: String! }
		type Query {
			first: Pet @async
			second: Pet @async
			third: Pet @async
		}
	`, poly.Union("Pet").Member("Dog", "Dog").Member("Cat", "Cat"))
	pet := f.types["Pet"]
	root := objrt.NewRecord("Query", map[string]any{
		"first":  pet.MustWrap(objrt.NewRecord("Dog", map[string]any{"name": "rex", "color": "RED"})),
		"second": pet.MustWrap(objrt.NewRecord("Cat", map[string]any{"name": "tom"})),
		"third": objrt.FieldFunc(func(ctx context.Context, args map[string]any) (any, error) {
			return nil, errors.New("no third pet")
		}),
	})

	got := f.execute(t, `{
		first { ... on Dog { name color } }
		second { ... on Cat { name } }
		third { __typename }
	}`, root)

	requireResult(t, &executor.ExecutionResult{
		Data: map[string]any{
			"first":  map[string]any{"name": "rex", "color": "RED"},
			"second": map[string]any{"name": "tom"},
			"third":  nil,
		},
		Errors: []executor.GraphQLError{{Message: "no third pet", Path: executor.Path{"third"}}},
	}, got)
}

func TestResolveType_RejectsUnknownValue(t *testing.T) {
	rt := objrt.NewRuntime(poly.NewRegistry(nil))
	_, err := rt.ResolveType(context.Background(), "Pet", 42)
	require.Error(t, err)

	name, err := rt.ResolveType(context.Background(), "Pet", map[string]any{"__typename": "Dog"})
	require.NoError(t, err)
	require.Equal(t, "Dog", name)
}

func TestSerializeLeafValue_Enum(t *testing.T) {
	sch, err := schema.BuildFromSDL(`enum Color { RED GREEN } type Query { c: Color }`)
	require.NoError(t, err)
	rt := objrt.NewRuntime(poly.NewRegistry(sch), objrt.WithSchema(sch))

	v, err := rt.SerializeLeafValue(context.Background(), "Color", "GREEN")
	require.NoError(t, err)
	require.Equal(t, "GREEN", v)

	_, err = rt.SerializeLeafValue(context.Background(), "Color", "BLUE")
	require.Error(t, err)

	v, err = rt.SerializeLeafValue(context.Background(), "Float", 3)
	require.NoError(t, err)
	require.Equal(t, 3.0, v)
}
