package poly_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	poly "github.com/hanpama/polygraph/internal/poly"
)

type resolverFunc func(ctx context.Context, args map[string]any) (any, error)

// testObject is a concrete object whose fields are either plain values or
// resolverFuncs.
type testObject struct {
	typ    string
	fields map[string]any
}

func newObject(typ string, fields map[string]any) *testObject {
	return &testObject{typ: typ, fields: fields}
}

func (o *testObject) GraphQLType() string { return o.typ }

func (o *testObject) ResolveField(ctx context.Context, field string, args map[string]any) (any, error) {
	v, ok := o.fields[field]
	if !ok {
		return nil, fmt.Errorf("%s has no field %s", o.typ, field)
	}
	if fn, ok := v.(resolverFunc); ok {
		return fn(ctx, args)
	}
	return v, nil
}

func mustBuildAll(t *testing.T, defs ...*poly.Definition) map[string]*poly.Descriptor {
	t.Helper()
	b := poly.NewBuilder()
	require.NoError(t, b.Define(defs...))
	built, err := b.BuildAll()
	require.NoError(t, err)
	out := make(map[string]*poly.Descriptor, len(built))
	for _, d := range built {
		out[d.Name()] = d
	}
	return out
}
