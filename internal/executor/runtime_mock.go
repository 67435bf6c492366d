package executor

import (
	"context"
	"errors"
	"strings"
	"sync"

	schema "github.com/hanpama/polygraph/internal/schema"
)

// MockResolver resolves one field of one source value.
type MockResolver func(ctx context.Context, source any, args map[string]any) (any, error)

const (
	CallKindSync  = "sync"
	CallKindAsync = "async"
)

func NewMockValueResolver(val any) MockResolver {
	return func(context.Context, any, map[string]any) (any, error) { return val, nil }
}

func NewMockErrorResolver(err error) MockResolver {
	return func(context.Context, any, map[string]any) (any, error) { return nil, err }
}

// Call records one resolver invocation. Async calls made in the same
// BatchResolveAsync share a BatchID, counted from 1; sync calls have 0.
type Call struct {
	Kind       string
	ObjectType string
	Field      string
	Source     any
	Args       map[string]any
	BatchID    int
}

type fieldKey struct{ objectType, field string }

// MockRuntime is a Runtime backed by per-field resolvers that logs every
// call it receives. Abstract values resolve through their "__typename" key
// unless SetTypeResolver installs another function.
type MockRuntime struct {
	mu        sync.Mutex
	resolvers map[fieldKey]MockResolver
	calls     []Call
	batches   int

	typeOf    func(value any) (string, error)
	serialize func(val any, t schema.TypeRef) (any, error)
}

var _ Runtime = (*MockRuntime)(nil)

var errNoTypename = errors.New("cannot resolve type")

// NewMockRuntime takes resolvers keyed "Type.field".
func NewMockRuntime(resolvers map[string]MockResolver) *MockRuntime {
	m := &MockRuntime{resolvers: make(map[fieldKey]MockResolver, len(resolvers))}
	for key, r := range resolvers {
		typ, field, _ := strings.Cut(key, ".")
		m.resolvers[fieldKey{typ, field}] = r
	}
	return m
}

func (m *MockRuntime) SetResolver(objectType, field string, resolver MockResolver) {
	m.mu.Lock()
	m.resolvers[fieldKey{objectType, field}] = resolver
	m.mu.Unlock()
}

// SetTypeResolver replaces the type resolution of r when r is a *MockRuntime.
func SetTypeResolver(r Runtime, f func(value any) (string, error)) {
	if m, ok := r.(*MockRuntime); ok {
		m.mu.Lock()
		m.typeOf = f
		m.mu.Unlock()
	}
}

// SetSerializer replaces the leaf serialization of r when r is a *MockRuntime.
func SetSerializer(r Runtime, f func(val any, t schema.TypeRef) (any, error)) {
	if m, ok := r.(*MockRuntime); ok {
		m.mu.Lock()
		m.serialize = f
		m.mu.Unlock()
	}
}

func (m *MockRuntime) call(ctx context.Context, c Call) (any, error) {
	m.mu.Lock()
	r := m.resolvers[fieldKey{c.ObjectType, c.Field}]
	m.calls = append(m.calls, c)
	m.mu.Unlock()
	if r == nil {
		return nil, nil
	}
	return r(ctx, c.Source, c.Args)
}

func (m *MockRuntime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	return m.call(ctx, Call{Kind: CallKindSync, ObjectType: objectType, Field: field, Source: source, Args: args})
}

// BatchResolveAsync resolves tasks grouped by field, groups in order of
// first appearance, so the call log reads like a batching loader's.
func (m *MockRuntime) BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult {
	if len(tasks) == 0 {
		return nil
	}
	m.mu.Lock()
	m.batches++
	batch := m.batches
	m.mu.Unlock()

	var order []fieldKey
	groups := make(map[fieldKey][]int)
	for i, t := range tasks {
		k := fieldKey{t.ObjectType, t.Field}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	results := make([]AsyncResolveResult, len(tasks))
	for _, k := range order {
		for _, i := range groups[k] {
			t := tasks[i]
			v, err := m.call(ctx, Call{Kind: CallKindAsync, ObjectType: t.ObjectType, Field: t.Field, Source: t.Source, Args: t.Args, BatchID: batch})
			results[i] = AsyncResolveResult{Value: v, Error: err}
		}
	}
	return results
}

func (m *MockRuntime) ResolveType(_ context.Context, _ string, value any) (string, error) {
	m.mu.Lock()
	typeOf := m.typeOf
	m.mu.Unlock()
	if typeOf != nil {
		return typeOf(value)
	}
	if obj, ok := value.(map[string]any); ok {
		if name, ok := obj["__typename"].(string); ok {
			return name, nil
		}
	}
	return "", errNoTypename
}

func (m *MockRuntime) ResolveUnionConcreteValue(_ context.Context, _ string, value any) (any, error) {
	return value, nil
}

func (m *MockRuntime) ResolveInterfaceConcreteValue(_ context.Context, _ string, value any) (any, error) {
	return value, nil
}

func (m *MockRuntime) SerializeLeafValue(_ context.Context, typeName string, value any) (any, error) {
	m.mu.Lock()
	serialize := m.serialize
	m.mu.Unlock()
	if serialize == nil {
		return value, nil
	}
	return serialize(value, *schema.NamedType(typeName))
}

// GetCalls returns the calls recorded so far, oldest first.
func (m *MockRuntime) GetCalls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}
