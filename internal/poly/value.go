package poly

import "context"

// Object is the capability a concrete object type exposes to the
// dispatcher: its registered schema type name and its field resolvers.
type Object interface {
	GraphQLType() string
	ResolveField(ctx context.Context, field string, args map[string]any) (any, error)
}

// Value is a request-time value of a polymorphic type. It holds exactly one
// of a concrete Object or, for a flattened member, an inner *Value. Values
// are created with Descriptor.Wrap and never modified.
type Value struct {
	desc   *Descriptor
	member int
	object Object
	inner  *Value
}

// Descriptor returns the polymorphic type the value belongs to.
func (v *Value) Descriptor() *Descriptor { return v.desc }

// Member returns the member the value was wrapped under.
func (v *Value) Member() Member { return v.desc.members[v.member] }

// Inner returns the wrapped value of a flattened member, or nil.
func (v *Value) Inner() *Value { return v.inner }

// leaf follows flattened members down to the value holding the object.
func (v *Value) leaf() *Value {
	for v.inner != nil {
		v = v.inner
	}
	return v
}
