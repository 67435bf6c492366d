package introspection

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	executor "github.com/hanpama/polygraph/internal/executor"
	language "github.com/hanpama/polygraph/internal/language"
	objrt "github.com/hanpama/polygraph/internal/objrt"
	poly "github.com/hanpama/polygraph/internal/poly"
	schema "github.com/hanpama/polygraph/internal/schema"
)

func buildWrapped(t *testing.T) *Wrapper {
	t.Helper()
	sch, err := schema.BuildFromSDL(`
		type User { id: ID! name: String }
		type Post { id: ID! }
		type Ad { url: String }
		type Query { node: Node feed: [Feed!]! }
	`)
	require.NoError(t, err)

	b := poly.NewBuilder()
	require.NoError(t, b.Define(
		poly.Interface("Node").
			Member("User", "User").
			Member("Post", "Post").
			Field(poly.NewField("id", "ID!")).
			Field(poly.NewField("legacyId", "String").Deprecate("use id").
				Arg(poly.NewArg("prefix", "String").WithDefault("n-"))),
		poly.Union("Feed").Member("Ad", "Ad").Flatten("Node", "Node"),
	))
	built, err := b.BuildAll()
	require.NoError(t, err)
	reg := poly.NewRegistry(sch)
	require.NoError(t, reg.RegisterAll(built...))
	reg.Freeze()

	w, err := Wrap(objrt.NewRuntime(reg, objrt.WithSchema(sch)), sch)
	require.NoError(t, err)
	return w
}

func run(t *testing.T, w *Wrapper, query string) *executor.ExecutionResult {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return executor.NewExecutor(w.Runtime, w.Schema).ExecuteRequest(context.Background(), doc, "", nil, nil)
}

func TestSchemaQueryType(t *testing.T) {
	res := run(t, buildWrapped(t), `{ __schema { queryType { name } } }`)
	require.Empty(t, res.Errors)
	want := map[string]any{"__schema": map[string]any{"queryType": map[string]any{"name": "Query"}}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestUnionPossibleTypesIncludeFlattened(t *testing.T) {
	res := run(t, buildWrapped(t), `{ __type(name: "Feed") { kind possibleTypes { name } } }`)
	require.Empty(t, res.Errors)
	want := map[string]any{"__type": map[string]any{
		"kind": "UNION",
		"possibleTypes": []any{
			map[string]any{"name": "Ad"},
			map[string]any{"name": "User"},
			map[string]any{"name": "Post"},
		},
	}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestInterfaceFieldsAndImplementers(t *testing.T) {
	w := buildWrapped(t)
	res := run(t, w, `{
		node: __type(name: "Node") {
			kind
			fields(includeDeprecated: true) {
				name
				isDeprecated
				type { kind name ofType { kind name } }
				args { name defaultValue }
			}
		}
		user: __type(name: "User") { interfaces { name } }
	}`)
	require.Empty(t, res.Errors)
	want := map[string]any{
		"node": map[string]any{
			"kind": "INTERFACE",
			"fields": []any{
				map[string]any{
					"name":         "id",
					"isDeprecated": false,
					"type":         map[string]any{"kind": "NON_NULL", "name": nil, "ofType": map[string]any{"kind": "SCALAR", "name": "ID"}},
					"args":         []any{},
				},
				map[string]any{
					"name":         "legacyId",
					"isDeprecated": true,
					"type":         map[string]any{"kind": "SCALAR", "name": "String", "ofType": nil},
					"args":         []any{map[string]any{"name": "prefix", "defaultValue": `"n-"`}},
				},
			},
		},
		"user": map[string]any{"interfaces": []any{map[string]any{"name": "Node"}}},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}

	res = run(t, w, `{ __type(name: "Node") { fields { name } } }`)
	require.Empty(t, res.Errors)
	require.Equal(t, []any{map[string]any{"name": "id"}}, res.Data.(map[string]any)["__type"].(map[string]any)["fields"])
}

func TestTypenameWithoutWrapper(t *testing.T) {
	sch, err := schema.BuildFromSDL(`type Query { hello: String }`)
	require.NoError(t, err)
	doc, err := language.ParseQuery(`{ __typename }`)
	require.NoError(t, err)
	res := executor.NewExecutor(objrt.NewRuntime(poly.NewRegistry(sch)), sch).ExecuteRequest(context.Background(), doc, "", nil, nil)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"__typename": "Query"}, res.Data)
}

func TestWrapLeavesOriginalSchema(t *testing.T) {
	sch, err := schema.BuildFromSDL(`type Query { hello: String }`)
	require.NoError(t, err)
	w, err := Wrap(objrt.NewRuntime(poly.NewRegistry(sch)), sch)
	require.NoError(t, err)
	require.Nil(t, sch.GetQueryType().Field("__schema"))
	require.NotNil(t, w.Schema.GetQueryType().Field("__schema"))
	require.NotNil(t, w.Schema.Types["__Type"])
	require.Nil(t, sch.Types["__Type"])
}
