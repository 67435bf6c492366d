package objrt

import (
	"context"
	"fmt"

	poly "github.com/hanpama/polygraph/internal/poly"
)

// FieldFunc computes a field from its bound arguments.
type FieldFunc func(ctx context.Context, args map[string]any) (any, error)

// Record is a poly.Object backed by a map. A field holding a FieldFunc is
// called; any other value is returned as is.
type Record struct {
	Type   string
	Fields map[string]any
}

var _ poly.Object = (*Record)(nil)

// NewRecord returns a Record of object type typ.
func NewRecord(typ string, fields map[string]any) *Record {
	return &Record{Type: typ, Fields: fields}
}

func (r *Record) GraphQLType() string { return r.Type }

func (r *Record) ResolveField(ctx context.Context, field string, args map[string]any) (any, error) {
	v, ok := r.Fields[field]
	if !ok {
		return nil, fmt.Errorf("%s has no field %q", r.Type, field)
	}
	if fn, ok := v.(FieldFunc); ok {
		return fn(ctx, args)
	}
	return v, nil
}
