package main

import (
	"context"
	"fmt"
	"strings"

	objrt "github.com/hanpama/polygraph/internal/objrt"
	poly "github.com/hanpama/polygraph/internal/poly"
	schema "github.com/hanpama/polygraph/internal/schema"
)

const demoSDL = `
type User {
  id: ID!
  name: String!
  friends(first: Int = 10): [User!]!
}

type Post {
  id: ID!
  title: String!
  author: User!
}

type Ad {
  id: ID!
  url: String!
}

type Query {
  node(id: ID!): Node
  search(text: String!): [SearchResult!]!
  feed: [Feed!]!
}
`

const demoTypes = `
types:
  - name: Node
    kind: interface
    description: An object with a globally unique ID.
    members:
      - {name: User, type: User}
      - {name: Post, type: Post}
    fields:
      - {name: id, type: "ID!"}
  - name: SearchResult
    kind: union
    members:
      - {name: User, type: User}
      - {name: Post, type: Post}
  - name: Feed
    kind: union
    members:
      - {name: Ad, type: Ad}
      - {name: Node, flatten: Node}
`

type app struct {
	schema   *schema.Schema
	registry *poly.Registry
	root     any
}

// buildRegistry builds sch's polymorphic types from defs and registers them.
func buildRegistry(sch *schema.Schema, defs []*poly.Definition) (*poly.Registry, error) {
	b := poly.NewBuilder()
	if err := b.Define(defs...); err != nil {
		return nil, err
	}
	built, err := b.BuildAll()
	if err != nil {
		return nil, err
	}
	reg := poly.NewRegistry(sch)
	if err := reg.RegisterAll(built...); err != nil {
		return nil, err
	}
	reg.Freeze()
	return reg, nil
}

// newDemo builds an in-memory blog exercising interfaces, unions and a
// flattened union member.
func newDemo() (*app, error) {
	sch, err := schema.BuildFromSDL(demoSDL)
	if err != nil {
		return nil, fmt.Errorf("demo schema: %w", err)
	}
	defs, err := parseDefinitions([]byte(demoTypes))
	if err != nil {
		return nil, err
	}
	reg, err := buildRegistry(sch, defs)
	if err != nil {
		return nil, err
	}
	node, _ := reg.Lookup("Node")
	search, _ := reg.Lookup("SearchResult")
	feed, _ := reg.Lookup("Feed")

	users := map[string]*objrt.Record{}
	var userOrder []*objrt.Record
	addUser := func(id, name string, friends ...string) {
		u := objrt.NewRecord("User", map[string]any{"id": id, "name": name})
		u.Fields["friends"] = objrt.FieldFunc(func(_ context.Context, args map[string]any) (any, error) {
			first := len(friends)
			if n, ok := args["first"].(int); ok && n < first {
				first = max(n, 0)
			}
			out := make([]any, 0, first)
			for _, id := range friends[:first] {
				out = append(out, users[id])
			}
			return out, nil
		})
		users[id] = u
		userOrder = append(userOrder, u)
	}
	addUser("u1", "Ada", "u2", "u3")
	addUser("u2", "Brian", "u1")
	addUser("u3", "Grace", "u1", "u2")

	posts := map[string]*objrt.Record{}
	var postOrder []*objrt.Record
	addPost := func(id, title, author string) {
		p := objrt.NewRecord("Post", map[string]any{"id": id, "title": title, "author": users[author]})
		posts[id] = p
		postOrder = append(postOrder, p)
	}
	addPost("p1", "Flattening unions", "u1")
	addPost("p2", "Interfaces in practice", "u3")

	ad := objrt.NewRecord("Ad", map[string]any{"id": "a1", "url": "https://example.com"})

	feedItems := []any{feed.MustWrap(ad)}
	for _, p := range postOrder {
		feedItems = append(feedItems, feed.MustWrap(node.MustWrap(p)))
	}
	feedItems = append(feedItems, feed.MustWrap(userOrder[0]))

	root := objrt.NewRecord("Query", map[string]any{
		"node": objrt.FieldFunc(func(_ context.Context, args map[string]any) (any, error) {
			id, _ := args["id"].(string)
			if u, ok := users[id]; ok {
				return node.Wrap(u)
			}
			if p, ok := posts[id]; ok {
				return node.Wrap(p)
			}
			return nil, nil
		}),
		"search": objrt.FieldFunc(func(_ context.Context, args map[string]any) (any, error) {
			text, _ := args["text"].(string)
			text = strings.ToLower(text)
			var out []any
			for _, u := range userOrder {
				if strings.Contains(strings.ToLower(u.Fields["name"].(string)), text) {
					out = append(out, search.MustWrap(u))
				}
			}
			for _, p := range postOrder {
				if strings.Contains(strings.ToLower(p.Fields["title"].(string)), text) {
					out = append(out, search.MustWrap(p))
				}
			}
			if out == nil {
				out = []any{}
			}
			return out, nil
		}),
		"feed": feedItems,
	})
	return &app{schema: sch, registry: reg, root: root}, nil
}

// loadApp builds the app from SDL and types files, or the demo when neither
// is given. Without the demo there is no root value.
func loadApp(schemaPath, typesPath string) (*app, error) {
	if schemaPath == "" && typesPath == "" {
		return newDemo()
	}
	if schemaPath == "" {
		return nil, fmt.Errorf("-graphql.types requires -graphql.schema")
	}
	sdl, err := readFile(schemaPath)
	if err != nil {
		return nil, err
	}
	sch, err := schema.BuildFromSDL(sdl)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	var defs []*poly.Definition
	if typesPath != "" {
		if defs, err = loadDefinitions(typesPath); err != nil {
			return nil, err
		}
	}
	reg, err := buildRegistry(sch, defs)
	if err != nil {
		return nil, err
	}
	return &app{schema: sch, registry: reg}, nil
}
