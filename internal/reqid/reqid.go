// Package reqid carries a per-request identifier through context. Event
// subscribers use it to correlate the start and finish events of a request.
package reqid

import (
	"context"
	"math/rand"
)

// key is the context key for the request ID.
type key struct{}

// NewContext returns a copy of parent with a new random, positive request ID
// stored. It also returns the generated ID.
func NewContext(parent context.Context) (context.Context, int64) {
	id := rand.Int63n(1<<63-1) + 1
	return WithID(parent, id), id
}

// WithID returns a copy of parent carrying id.
func WithID(parent context.Context, id int64) context.Context {
	return context.WithValue(parent, key{}, id)
}

// FromContext extracts the request ID from ctx.
// It returns the ID and whether it was present.
func FromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(key{}).(int64)
	return id, ok
}
