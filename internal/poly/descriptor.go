package poly

import (
	"fmt"

	schema "github.com/hanpama/polygraph/internal/schema"
)

type Kind int

const (
	KindInterface Kind = iota + 1
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindUnion:
		return "union"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Descriptor is the built, immutable form of an interface or union.
type Descriptor struct {
	name          string
	description   string
	kind          Kind
	extends       bool
	members       []Member
	fields        []*FieldDescriptor
	fieldIndex    map[string]int
	possibleTypes []string
}

// Member is one built member: either a concrete object type or a flattened
// polymorphic type.
type Member struct {
	Name      string
	Concrete  string
	Flattened *Descriptor
}

func (m Member) IsFlattened() bool { return m.Flattened != nil }

type FieldDescriptor struct {
	Name        string
	Description string
	Deprecation *string
	Type        *schema.TypeRef
	Args        []*ArgumentDescriptor

	External bool
	Provides string
	Requires string
}

// Arg returns the argument named name, or nil.
func (f *FieldDescriptor) Arg(name string) *ArgumentDescriptor {
	for _, a := range f.Args {
		if a.Name == name {
			return a
		}
	}
	return nil
}

type ArgumentDescriptor struct {
	Name        string
	Description string
	Type        *schema.TypeRef
	// Default is the literal default, coerced to Type.
	Default     any
	HasDefault  bool
	DefaultFunc func() any
	// DisplayDefault is the default shown in the schema. For computed
	// defaults it is the value produced at build time.
	DisplayDefault any
}

func (d *Descriptor) Name() string        { return d.name }
func (d *Descriptor) Description() string { return d.description }
func (d *Descriptor) Kind() Kind          { return d.kind }
func (d *Descriptor) Extends() bool       { return d.extends }

func (d *Descriptor) Members() []Member {
	return append([]Member(nil), d.members...)
}

func (d *Descriptor) Fields() []*FieldDescriptor {
	return append([]*FieldDescriptor(nil), d.fields...)
}

// Field returns the interface field named name, or nil.
func (d *Descriptor) Field(name string) *FieldDescriptor {
	if i, ok := d.fieldIndex[name]; ok {
		return d.fields[i]
	}
	return nil
}

// PossibleTypes returns the concrete object types d can resolve to, in order
// of first appearance with flattened members expanded.
func (d *Descriptor) PossibleTypes() []string {
	return append([]string(nil), d.possibleTypes...)
}

func (d *Descriptor) IsPossibleType(typeName string) bool {
	for _, name := range d.possibleTypes {
		if name == typeName {
			return true
		}
	}
	return false
}

// Wrap builds a Value of d holding payload, which is either an Object or a
// *Value of a flattened member's type. An Object whose type is reachable only
// through a flattened member is wrapped through that member.
func (d *Descriptor) Wrap(payload any) (*Value, error) {
	switch p := payload.(type) {
	case *Value:
		if p == nil {
			return nil, fmt.Errorf("%s: cannot wrap nil value", d.name)
		}
		for i, m := range d.members {
			if m.Flattened == p.desc {
				return &Value{desc: d, member: i, inner: p}, nil
			}
		}
		return nil, fmt.Errorf("%s: %s is not a member", d.name, p.desc.name)
	case Object:
		typeName := p.GraphQLType()
		for i, m := range d.members {
			if m.Concrete == typeName {
				return &Value{desc: d, member: i, object: p}, nil
			}
		}
		for i, m := range d.members {
			if m.Flattened != nil && m.Flattened.IsPossibleType(typeName) {
				inner, err := m.Flattened.Wrap(p)
				if err != nil {
					return nil, err
				}
				return &Value{desc: d, member: i, inner: inner}, nil
			}
		}
		return nil, fmt.Errorf("%s: object type %s is not a possible type", d.name, typeName)
	default:
		return nil, fmt.Errorf("%s: cannot wrap %T", d.name, payload)
	}
}

// MustWrap is like Wrap but panics on error.
func (d *Descriptor) MustWrap(payload any) *Value {
	v, err := d.Wrap(payload)
	if err != nil {
		panic(err)
	}
	return v
}
