package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseTypeRef(t *testing.T) {
	cases := []struct {
		in   string
		want *TypeRef
	}{
		{"Int", NamedType("Int")},
		{"Int!", NonNullType(NamedType("Int"))},
		{"[String]", ListType(NamedType("String"))},
		{"[String!]!", NonNullType(ListType(NonNullType(NamedType("String"))))},
		{" [ [ID]! ] ", ListType(NonNullType(ListType(NamedType("ID"))))},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTypeRef(tc.in)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("type ref mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseTypeRef_Malformed(t *testing.T) {
	for _, in := range []string{"", "[Int", "Int]", "Int!!", "!Int", "Int String", "[]", "{Int}"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseTypeRef(in)
			require.Error(t, err)
		})
	}
}

func TestTypeRefString(t *testing.T) {
	require.Equal(t, "[Int!]!", MustParseTypeRef("[ Int! ]!").String())
}

func TestBuildFromSDL(t *testing.T) {
	sch, err := BuildFromSDL(`
		interface Node { id: ID! }
		type User implements Node {
			id: ID!
			name(upper: Boolean = false): String
			friends: [User!] @async
		}
		type Post implements Node { id: ID! title: String @deprecated(reason: "use headline") }
		union Feed = User | Post
		type Query { node(id: ID!): Node feed: [Feed!]! }
		extend type Query { me: User }
	`)
	require.NoError(t, err)
	require.Equal(t, "Query", sch.QueryType)
	require.Equal(t, "", sch.MutationType)

	node := sch.Types["Node"]
	require.Equal(t, TypeKindInterface, node.Kind)
	require.Equal(t, []string{"User", "Post"}, node.PossibleTypes)
	require.Equal(t, []string{"User", "Post"}, sch.Types["Feed"].PossibleTypes)

	user := sch.Types["User"]
	require.True(t, user.HasInterface("Node"))
	require.True(t, user.Field("friends").Async)
	require.False(t, user.Field("name").Async)
	require.Equal(t, false, user.Field("name").Argument("upper").DefaultValue)

	post := sch.Types["Post"]
	require.True(t, post.Field("title").IsDeprecated)
	require.Equal(t, "use headline", post.Field("title").DeprecationReason)

	require.NotNil(t, sch.Types["Query"].Field("me"))
}

func TestBuildFromSDL_UnknownInterface(t *testing.T) {
	_, err := BuildFromSDL(`type Query implements Missing { a: Int }`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown interface")
}

func TestIsPossibleType(t *testing.T) {
	sch, err := BuildFromSDL(`
		interface Node { id: ID! }
		type A implements Node { id: ID! }
		type B { id: ID! }
		union AB = A | B
		type Query { a: A }
	`)
	require.NoError(t, err)

	require.True(t, sch.IsPossibleType("Node", "A"))
	require.False(t, sch.IsPossibleType("Node", "B"))
	require.True(t, sch.IsPossibleType("AB", "B"))
	require.True(t, sch.IsPossibleType("A", "A"))
	require.False(t, sch.IsPossibleType("Missing", "A"))
}

func TestRender_InterfaceFederation(t *testing.T) {
	sch := NewSchema("")
	iface := NewType("Product", TypeKindInterface, "").SetExtends(true)
	iface.AddField(NewField("upc", "", NonNullType(NamedType("String"))).SetFederation(true, "", ""))
	iface.AddField(NewField("weight", "", NamedType("Int")).SetFederation(false, "", "upc"))
	iface.AddField(NewField("reviews", "", ListType(NamedType("Review"))).
		SetFederation(false, "author", "").
		AddArgument(NewInputValue("first", "", NamedType("Int")).SetDefault(10)))
	sch.AddType(iface)
	sch.AddType(NewType("Review", TypeKindUnion, "").AddPossibleType("A").AddPossibleType("B"))

	want := `extend interface Product {
  upc: String! @external
  weight: Int @requires(fields: "upc")
  reviews(first: Int = 10): [Review] @provides(fields: "author")
}

union Review = A | B
`
	if diff := cmp.Diff(want, Render(sch)); diff != "" {
		t.Fatalf("rendered SDL mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_SkipsBuiltinsAndDeprecates(t *testing.T) {
	sch, err := BuildFromSDL(`
		"Ordering of results."
		enum Order { ASC DESC @deprecated(reason: "use ASC") }
		input Page { first: Int = 10 after: String }
		type Query { items(page: Page, order: Order): [String!]! old: Int @deprecated }
	`)
	require.NoError(t, err)

	want := `"""
Ordering of results.
"""
enum Order {
  ASC
  DESC @deprecated(reason: "use ASC")
}

input Page {
  first: Int = 10
  after: String
}

type Query {
  items(page: Page, order: Order): [String!]!
  old: Int @deprecated
}
`
	if diff := cmp.Diff(want, Render(sch)); diff != "" {
		t.Fatalf("rendered SDL mismatch (-want +got):\n%s", diff)
	}
}

func TestNewSchema_BuiltinsAreNotShared(t *testing.T) {
	a, b := NewSchema(""), NewSchema("")
	a.Types["String"].Description = "changed"
	require.NotEqual(t, "changed", b.Types["String"].Description)
	require.True(t, IsBuiltinType("ID"))
	require.False(t, IsBuiltinType("Node"))
	require.Contains(t, b.Directives, "deprecated")
}
