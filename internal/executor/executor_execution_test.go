package executor

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	schema "github.com/hanpama/polygraph/internal/schema"
)

type executionCase struct {
	name      string
	sdl       string
	query     string
	resolvers map[string]MockResolver
	want      *ExecutionResult
	wantCalls []string
}

// callNames renders calls as "Type.field" with an "@batch" suffix for async calls.
func callNames(calls []Call) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.ObjectType + "." + c.Field
		if c.Kind == CallKindAsync {
			out[i] += "@" + strconv.Itoa(c.BatchID)
		}
	}
	return out
}

func runExecutionCases(t *testing.T, cases []executionCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sch, err := schema.BuildFromSDL(c.sdl)
			require.NoError(t, err)
			rt := NewMockRuntime(c.resolvers)
			got := NewExecutor(rt, sch).ExecuteRequest(context.Background(), mustParseQuery(t, c.query), "", nil, nil)
			if diff := cmp.Diff(c.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("result mismatch (-want +got):\n%s", diff)
			}
			if c.wantCalls != nil {
				require.Equal(t, c.wantCalls, callNames(rt.GetCalls()))
			}
		})
	}
}

func TestExecution_Ordering(t *testing.T) {
	runExecutionCases(t, []executionCase{
		{
			name:  "response keeps selection order while async fields resolve last",
			sdl:   `type Query { a: String b: String @async c: String }`,
			query: "{ a b c }",
			resolvers: map[string]MockResolver{
				"Query.a": NewMockValueResolver("A"),
				"Query.b": NewMockValueResolver("B"),
				"Query.c": NewMockValueResolver("C"),
			},
			want:      &ExecutionResult{Data: map[string]any{"a": "A", "b": "B", "c": "C"}},
			wantCalls: []string{"Query.a", "Query.c", "Query.b@1"},
		},
		{
			name:  "repeated fields merge their selections",
			sdl:   `type Sub { x: String y: String } type Obj { a: Sub } type Query { obj: Obj }`,
			query: "{ obj { a { x } a { y } } }",
			resolvers: map[string]MockResolver{
				"Query.obj": NewMockValueResolver(map[string]any{}),
				"Obj.a":     NewMockValueResolver(map[string]any{}),
				"Sub.x":     NewMockValueResolver("X"),
				"Sub.y":     NewMockValueResolver("Y"),
			},
			want:      &ExecutionResult{Data: map[string]any{"obj": map[string]any{"a": map[string]any{"x": "X", "y": "Y"}}}},
			wantCalls: []string{"Query.obj", "Obj.a", "Sub.x", "Sub.y"},
		},
		{
			name:      "async root field",
			sdl:       `type Query { a: String @async }`,
			query:     "{ a }",
			resolvers: map[string]MockResolver{"Query.a": NewMockValueResolver("A")},
			want:      &ExecutionResult{Data: map[string]any{"a": "A"}},
			wantCalls: []string{"Query.a@1"},
		},
		{
			name:  "mutation fields run serially past an error",
			sdl:   `type Query { ok: String } type Mutation { m1: String m2: String m3: String }`,
			query: "mutation { m1 m2 m3 }",
			resolvers: map[string]MockResolver{
				"Mutation.m1": NewMockValueResolver("1"),
				"Mutation.m2": NewMockErrorResolver(errors.New("boom")),
				"Mutation.m3": NewMockValueResolver("3"),
			},
			want: &ExecutionResult{
				Data:   map[string]any{"m1": "1", "m2": nil, "m3": "3"},
				Errors: []GraphQLError{{Message: "boom", Path: Path{"m2"}}},
			},
			wantCalls: []string{"Mutation.m1", "Mutation.m2", "Mutation.m3"},
		},
	})
}

func TestExecution_ErrorPaths(t *testing.T) {
	boom := NewMockErrorResolver(errors.New("boom"))
	runExecutionCases(t, []executionCase{
		{
			name:      "root field",
			sdl:       `type Query { a: String }`,
			query:     "{ a }",
			resolvers: map[string]MockResolver{"Query.a": boom},
			want: &ExecutionResult{
				Data:   map[string]any{"a": nil},
				Errors: []GraphQLError{{Message: "boom", Path: Path{"a"}}},
			},
		},
		{
			name:  "nested field",
			sdl:   `type Obj { a: String } type Query { obj: Obj }`,
			query: "{ obj { a } }",
			resolvers: map[string]MockResolver{
				"Query.obj": NewMockValueResolver(map[string]any{}),
				"Obj.a":     boom,
			},
			want: &ExecutionResult{
				Data:   map[string]any{"obj": map[string]any{"a": nil}},
				Errors: []GraphQLError{{Message: "boom", Path: Path{"obj", "a"}}},
			},
		},
		{
			name:  "list index",
			sdl:   `type Obj { a: String } type Query { objs: [Obj] }`,
			query: "{ objs { a } }",
			resolvers: map[string]MockResolver{
				"Query.objs": NewMockValueResolver([]any{map[string]any{"idx": 0}, map[string]any{"idx": 1}}),
				"Obj.a": func(_ context.Context, src any, _ map[string]any) (any, error) {
					if src.(map[string]any)["idx"] == 1 {
						return nil, errors.New("boom")
					}
					return "A", nil
				},
			},
			want: &ExecutionResult{
				Data:   map[string]any{"objs": []any{map[string]any{"a": "A"}, map[string]any{"a": nil}}},
				Errors: []GraphQLError{{Message: "boom", Path: Path{"objs", 1, "a"}}},
			},
		},
		{
			name:  "async field under a list",
			sdl:   `type Obj { a: String @async } type Query { objs: [Obj] }`,
			query: "{ objs { a } }",
			resolvers: map[string]MockResolver{
				"Query.objs": NewMockValueResolver([]any{map[string]any{}}),
				"Obj.a":      boom,
			},
			want: &ExecutionResult{
				Data:   map[string]any{"objs": []any{map[string]any{"a": nil}}},
				Errors: []GraphQLError{{Message: "boom", Path: Path{"objs", 0, "a"}}},
			},
			wantCalls: []string{"Query.objs", "Obj.a@1"},
		},
	})
}
