package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	apq "github.com/hanpama/polygraph/internal/apq"
)

func TestHelp(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, cmdHelp(&out, nil))
	require.Contains(t, out.String(), "COMMANDS:")

	out.Reset()
	require.NoError(t, cmdHelp(&out, []string{"serve"}))
	require.Contains(t, out.String(), "-apq.cache-size")

	require.Error(t, cmdHelp(&out, []string{"nope"}))
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	require.ErrorContains(t, run([]string{"bogus"}), `unknown command "bogus"`)
	require.ErrorContains(t, run(nil), "missing command")
}

func TestSDLDemo(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, cmdSDL(&out, nil))
	sdl := out.String()
	require.Contains(t, sdl, "interface Node {")
	require.Contains(t, sdl, "type User implements Node {")
	require.Contains(t, sdl, "union SearchResult = User | Post")
	require.Contains(t, sdl, "union Feed = Ad | User | Post")
	require.Contains(t, sdl, "friends(first: Int = 10): [User!]!")
}

func TestSDLFromFiles(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.graphql")
	typesPath := filepath.Join(dir, "types.yaml")
	outPath := filepath.Join(dir, "out.graphql")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`
		type Cat { name: String }
		type Dog { name: String }
		type Query { pets: [Pet!]! }
	`), 0o644))
	require.NoError(t, os.WriteFile(typesPath, []byte(`
types:
  - name: Pet
    kind: interface
    members:
      - {name: Cat, type: Cat}
      - {name: Dog, type: Dog}
    fields:
      - name: name
        type: String
        deprecated: use nickname
        args:
          - {name: upper, type: Boolean, default: false}
`), 0o644))

	require.NoError(t, cmdSDL(&bytes.Buffer{}, []string{"-graphql.schema", schemaPath, "-graphql.types", typesPath, "-out", outPath}))
	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Contains(t, string(b), "interface Pet {")
	require.Contains(t, string(b), "name(upper: Boolean = false): String @deprecated")
	require.Contains(t, string(b), "type Dog implements Pet {")

	require.ErrorContains(t, cmdSDL(&bytes.Buffer{}, []string{"-graphql.types", typesPath}), "requires -graphql.schema")
}

func TestParseDefinitionsErrors(t *testing.T) {
	_, err := parseDefinitions([]byte("types:\n  - {name: X, kind: enum}\n"))
	require.ErrorContains(t, err, `unknown kind "enum"`)

	_, err = parseDefinitions([]byte("types:\n  - name: X\n    kind: union\n    members:\n      - {name: A, type: A, flatten: B}\n"))
	require.ErrorContains(t, err, "sets both type and flatten")

	defs, err := parseDefinitions([]byte("types:\n  - name: X\n    kind: interface\n    fields:\n      - name: f\n        type: Int\n        args:\n          - {name: a, type: Int}\n          - {name: b, type: Int, default: 3}\n"))
	require.NoError(t, err)
	args := defs[0].Fields[0].Args
	require.False(t, args[0].HasDefault)
	require.True(t, args[1].HasDefault)
	require.Equal(t, 3, args[1].Default)
}

func TestParseServeConfig(t *testing.T) {
	cfg, err := parseServeConfig([]string{"-server.addr", ":9000", "-server.metadata-header", "X-A", "-server.metadata-header", "X-B"})
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.Server.Addr)
	require.Equal(t, []string{"X-A", "X-B"}, cfg.Server.MetadataHeaders)
	require.Equal(t, 1000, cfg.APQ.CacheSize)

	path := filepath.Join(t.TempDir(), "polygraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":7000"
  timeout: 3s
  cors-origins: ["*"]
apq:
  cache-size: 50
log:
  format: json
`), 0o644))

	cfg, err = parseServeConfig([]string{"-config", path, "-apq.cache-size", "5"})
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.Server.Addr)
	require.Equal(t, 3*time.Second, cfg.Server.Timeout)
	require.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	require.Equal(t, 5, cfg.APQ.CacheSize)
	require.Equal(t, "json", cfg.Log.Format)
	require.True(t, cfg.GraphQL.Introspection)

	_, err = parseServeConfig([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")})
	require.ErrorContains(t, err, "read config")
	_, err = parseServeConfig([]string{"extra"})
	require.Error(t, err)
}

func query(t *testing.T, h http.Handler, body string) any {
	t.Helper()
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var out any
	require.NoError(t, jsoniter.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func demoHandler(t *testing.T) http.Handler {
	t.Helper()
	a, err := newDemo()
	require.NoError(t, err)
	h, err := newHandler(defaultConfig(), a)
	require.NoError(t, err)
	return h
}

func TestDemoFeed(t *testing.T) {
	got := query(t, demoHandler(t), `{"query":"{ feed { __typename ... on Node { id } ... on Ad { url } ... on User { friends(first: 1) { name } } } }"}`)
	want := map[string]any{"data": map[string]any{"feed": []any{
		map[string]any{"__typename": "Ad", "url": "https://example.com"},
		map[string]any{"__typename": "Post", "id": "p1"},
		map[string]any{"__typename": "Post", "id": "p2"},
		map[string]any{"__typename": "User", "id": "u1", "friends": []any{map[string]any{"name": "Brian"}}},
	}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("feed mismatch (-want +got):\n%s", diff)
	}
}

func TestDemoNodeAndSearch(t *testing.T) {
	h := demoHandler(t)
	got := query(t, h, `{"query":"{ a: node(id: \"u3\") { id ... on User { name } } b: node(id: \"p2\") { ... on Post { author { name } } } c: node(id: \"zz\") { id } }"}`)
	want := map[string]any{"data": map[string]any{
		"a": map[string]any{"id": "u3", "name": "Grace"},
		"b": map[string]any{"author": map[string]any{"name": "Grace"}},
		"c": nil,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("node mismatch (-want +got):\n%s", diff)
	}

	got = query(t, h, `{"query":"{ search(text: \"R\") { __typename ... on User { name } ... on Post { title } } }"}`)
	want = map[string]any{"data": map[string]any{"search": []any{
		map[string]any{"__typename": "User", "name": "Brian"},
		map[string]any{"__typename": "User", "name": "Grace"},
		map[string]any{"__typename": "Post", "title": "Interfaces in practice"},
	}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", diff)
	}
}

func TestDemoIntrospectionAndPersistedQuery(t *testing.T) {
	h := demoHandler(t)
	got := query(t, h, `{"query":"{ __type(name: \"Feed\") { possibleTypes { name } } }"}`)
	want := map[string]any{"data": map[string]any{"__type": map[string]any{"possibleTypes": []any{
		map[string]any{"name": "Ad"},
		map[string]any{"name": "User"},
		map[string]any{"name": "Post"},
	}}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("introspection mismatch (-want +got):\n%s", diff)
	}

	q := "{ node(id: \\\"p1\\\") { id } }"
	hash := apq.Hash(`{ node(id: "p1") { id } }`)
	ext := `"extensions":{"persistedQuery":{"version":1,"sha256Hash":"` + hash + `"}}`
	query(t, h, `{"query":"`+q+`",`+ext+`}`)
	got = query(t, h, `{`+ext+`}`)
	require.Equal(t, map[string]any{"data": map[string]any{"node": map[string]any{"id": "p1"}}}, got)
}
