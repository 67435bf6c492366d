package poly

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"

	coerce "github.com/hanpama/polygraph/internal/coerce"
	schema "github.com/hanpama/polygraph/internal/schema"
)

// ErrDuplicateType is returned by Define for a name that is already defined.
var ErrDuplicateType = errors.New("type already defined")

// Builder turns Definitions into Descriptors. Flattened members refer to
// other definitions by name, so all definitions of a schema are given to one
// Builder before building.
type Builder struct {
	defs   map[string]*Definition
	order  []string
	built  map[string]*Descriptor
	naming func(string) string
}

type BuilderOption func(*Builder)

// WithNaming replaces the field and argument name normalization, which
// defaults to lower camel case.
func WithNaming(fn func(string) string) BuilderOption {
	return func(b *Builder) { b.naming = fn }
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		defs:   make(map[string]*Definition),
		built:  make(map[string]*Descriptor),
		naming: strcase.ToLowerCamel,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Define adds definitions to the builder.
func (b *Builder) Define(defs ...*Definition) error {
	for _, def := range defs {
		if def.Name == "" {
			return &DefinitionError{Kind: ErrInvalidMemberShape, Type: "<unnamed>", Err: errors.New("definition has no name")}
		}
		if def.Kind != KindInterface && def.Kind != KindUnion {
			return &DefinitionError{Kind: ErrInvalidMemberShape, Type: def.Name, Err: fmt.Errorf("unsupported kind %v", def.Kind)}
		}
		if _, dup := b.defs[def.Name]; dup {
			return &DefinitionError{Kind: ErrDuplicateType, Type: def.Name}
		}
		b.defs[def.Name] = def
		b.order = append(b.order, def.Name)
	}
	return nil
}

// Build returns the descriptor for the definition named name, building the
// definitions it flattens first. Descriptors are built once and shared.
func (b *Builder) Build(name string) (*Descriptor, error) {
	if _, ok := b.defs[name]; !ok {
		return nil, &DefinitionError{Kind: ErrUnknownType, Type: name}
	}
	return b.build(name, nil)
}

// BuildAll builds every definition in definition order and stops at the
// first error.
func (b *Builder) BuildAll() ([]*Descriptor, error) {
	out := make([]*Descriptor, 0, len(b.order))
	for _, name := range b.order {
		d, err := b.build(name, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (b *Builder) build(name string, visiting []string) (*Descriptor, error) {
	if d, ok := b.built[name]; ok {
		return d, nil
	}
	def := b.defs[name]
	visiting = append(visiting, name)

	d := &Descriptor{
		name:        def.Name,
		description: def.Description,
		kind:        def.Kind,
		extends:     def.Extends,
		fieldIndex:  make(map[string]int),
	}
	if err := b.buildMembers(d, def, visiting); err != nil {
		return nil, err
	}
	if err := b.buildFields(d, def); err != nil {
		return nil, err
	}
	b.built[name] = d
	return d, nil
}

func (b *Builder) buildMembers(d *Descriptor, def *Definition, visiting []string) error {
	direct := make(map[string]string)    // concrete type -> member
	flattened := make(map[string]string) // polymorphic type -> member
	fromFlatten := make(map[string]bool) // concrete types reached through flatten
	seen := make(map[string]bool)

	for _, spec := range def.Members {
		memberName := spec.Name
		if memberName == "" && len(spec.Payloads) == 1 {
			memberName = spec.Payloads[0]
		}
		shapeErr := func(err error) error {
			return &DefinitionError{Kind: ErrInvalidMemberShape, Type: def.Name, Member: memberName, Err: err}
		}
		switch {
		case len(spec.NamedFields) > 0:
			return shapeErr(fmt.Errorf("named fields %v instead of a single payload", spec.NamedFields))
		case len(spec.Payloads) == 0:
			return shapeErr(errors.New("no payload"))
		case len(spec.Payloads) > 1:
			return shapeErr(fmt.Errorf("%d payloads", len(spec.Payloads)))
		}
		ref := spec.Payloads[0]

		if !spec.Flatten {
			if prev, dup := direct[ref]; dup {
				return &DefinitionError{Kind: ErrDuplicateMember, Type: def.Name, Member: memberName,
					Err: fmt.Errorf("%s is already a member through %q", ref, prev)}
			}
			if fromFlatten[ref] {
				return &DefinitionError{Kind: ErrDuplicateMember, Type: def.Name, Member: memberName,
					Err: fmt.Errorf("%s is already reachable through a flattened member", ref)}
			}
			direct[ref] = memberName
			d.members = append(d.members, Member{Name: memberName, Concrete: ref})
			if !seen[ref] {
				seen[ref] = true
				d.possibleTypes = append(d.possibleTypes, ref)
			}
			continue
		}

		if def.Kind == KindInterface && len(def.Fields) > 0 {
			return shapeErr(errors.New("flattened members cannot be combined with interface fields"))
		}
		if prev, dup := flattened[ref]; dup {
			return &DefinitionError{Kind: ErrDuplicateMember, Type: def.Name, Member: memberName,
				Err: fmt.Errorf("%s is already flattened through %q", ref, prev)}
		}
		for _, v := range visiting {
			if v == ref {
				return &DefinitionError{Kind: ErrCyclicFlatten, Type: def.Name, Member: memberName,
					Err: fmt.Errorf("%s -> %s", strings.Join(visiting, " -> "), ref)}
			}
		}
		if _, ok := b.defs[ref]; !ok {
			return &DefinitionError{Kind: ErrUnknownType, Type: def.Name, Member: memberName,
				Err: fmt.Errorf("flattened type %s is not defined", ref)}
		}
		inner, err := b.build(ref, visiting)
		if err != nil {
			return err
		}
		flattened[ref] = memberName
		d.members = append(d.members, Member{Name: memberName, Flattened: inner})
		for _, pt := range inner.possibleTypes {
			if prev, dup := direct[pt]; dup {
				return &DefinitionError{Kind: ErrDuplicateMember, Type: def.Name, Member: memberName,
					Err: fmt.Errorf("%s is already a member through %q", pt, prev)}
			}
			fromFlatten[pt] = true
			if !seen[pt] {
				seen[pt] = true
				d.possibleTypes = append(d.possibleTypes, pt)
			}
		}
	}
	return nil
}

func (b *Builder) buildFields(d *Descriptor, def *Definition) error {
	if def.Kind == KindUnion && len(def.Fields) > 0 {
		return &DefinitionError{Kind: ErrInvalidMemberShape, Type: def.Name, Field: def.Fields[0].Name,
			Err: errors.New("unions cannot declare fields")}
	}
	for _, spec := range def.Fields {
		name := spec.Rename
		if name == "" {
			name = b.naming(spec.Name)
		}
		if _, dup := d.fieldIndex[name]; dup {
			return &DefinitionError{Kind: ErrDuplicateField, Type: def.Name, Field: name}
		}
		typ, err := schema.ParseTypeRef(spec.Type)
		if err != nil {
			return &DefinitionError{Kind: ErrTypeParse, Type: def.Name, Field: name, Err: err}
		}
		fd := &FieldDescriptor{
			Name:        name,
			Description: spec.Description,
			Deprecation: spec.Deprecation,
			Type:        typ,
			External:    spec.External,
			Provides:    spec.Provides,
			Requires:    spec.Requires,
		}
		for _, as := range spec.Args {
			ad, err := b.buildArgument(as)
			if err != nil {
				var de *DefinitionError
				if errors.As(err, &de) {
					de.Type = def.Name
					de.Field = name
				}
				return err
			}
			if fd.Arg(ad.Name) != nil {
				return &DefinitionError{Kind: ErrDuplicateField, Type: def.Name, Field: name, Argument: ad.Name}
			}
			fd.Args = append(fd.Args, ad)
		}
		d.fieldIndex[name] = len(d.fields)
		d.fields = append(d.fields, fd)
	}
	return nil
}

func (b *Builder) buildArgument(spec *ArgumentSpec) (*ArgumentDescriptor, error) {
	name := spec.Rename
	if name == "" {
		name = b.naming(spec.Name)
	}
	typ, err := schema.ParseTypeRef(spec.Type)
	if err != nil {
		return nil, &DefinitionError{Kind: ErrTypeParse, Argument: name, Err: err}
	}
	ad := &ArgumentDescriptor{
		Name:        name,
		Description: spec.Description,
		Type:        typ,
		DefaultFunc: spec.DefaultFunc,
	}
	switch {
	case spec.DefaultFunc != nil:
		v, err := coerce.Value(spec.DefaultFunc(), typ, nil)
		if err != nil {
			return nil, &DefinitionError{Kind: ErrInvalidDefault, Argument: name, Err: err}
		}
		ad.DisplayDefault = v
	case spec.HasDefault:
		v, err := coerce.Value(spec.Default, typ, nil)
		if err != nil {
			return nil, &DefinitionError{Kind: ErrInvalidDefault, Argument: name, Err: err}
		}
		ad.Default = v
		ad.HasDefault = true
		ad.DisplayDefault = v
	}
	return ad, nil
}
