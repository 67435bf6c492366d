package poly

import (
	"fmt"
	"sync"

	schema "github.com/hanpama/polygraph/internal/schema"
)

// Registry stores built descriptors and writes them into a schema. It is
// populated during schema construction and read-only after Freeze.
type Registry struct {
	mu     sync.RWMutex
	schema *schema.Schema
	types  map[string]*Descriptor
	order  []string
	frozen bool
}

func NewRegistry(sch *schema.Schema) *Registry {
	return &Registry{schema: sch, types: make(map[string]*Descriptor)}
}

// Register adds d to the registry and its schema. Registering a name that is
// already registered is a no-op and keeps the stored descriptor. Object types
// already present in the schema are marked as implementing a registered
// interface.
func (r *Registry) Register(d *Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[d.name]; ok {
		return nil
	}
	if r.frozen {
		return fmt.Errorf("register %s: %w", d.name, ErrRegistryFrozen)
	}
	if r.schema != nil {
		if existing := r.schema.Types[d.name]; existing != nil {
			return fmt.Errorf("register %s: schema already has a %s type of that name", d.name, existing.Kind)
		}
		r.schema.AddType(schemaType(d))
		r.markImplements(d)
	}
	r.types[d.name] = d
	r.order = append(r.order, d.name)
	return nil
}

// Freeze makes the registry read-only. Later registrations of new names
// fail with ErrRegistryFrozen. Object types added to the schema after their
// interface was registered are marked as implementing it here.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return
	}
	if r.schema != nil {
		for _, name := range r.order {
			r.markImplements(r.types[name])
		}
	}
	r.frozen = true
}

func (r *Registry) markImplements(d *Descriptor) {
	if d.kind != KindInterface {
		return
	}
	for _, name := range d.possibleTypes {
		if obj := r.schema.Types[name]; obj != nil && obj.Kind == schema.TypeKindObject {
			obj.AddInterface(d.name)
		}
	}
}

func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.types[name]
	return d, ok
}

// Descriptors returns the registered descriptors in registration order.
func (r *Registry) Descriptors() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, len(r.order))
	for i, name := range r.order {
		out[i] = r.types[name]
	}
	return out
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// schemaType converts d into the schema's interface or union type.
func schemaType(d *Descriptor) *schema.Type {
	kind := schema.TypeKindUnion
	if d.kind == KindInterface {
		kind = schema.TypeKindInterface
	}
	t := schema.NewType(d.name, kind, d.description).SetExtends(d.extends)
	for _, name := range d.possibleTypes {
		t.AddPossibleType(name)
	}
	for _, fd := range d.fields {
		f := schema.NewField(fd.Name, fd.Description, fd.Type).
			SetFederation(fd.External, fd.Provides, fd.Requires)
		if fd.Deprecation != nil {
			f.Deprecate(*fd.Deprecation)
		}
		for _, ad := range fd.Args {
			f.AddArgument(schema.NewInputValue(ad.Name, ad.Description, ad.Type).SetDefault(ad.DisplayDefault))
		}
		t.AddField(f)
	}
	return t
}

// RegisterAll registers each descriptor in order and stops at the first
// error.
func (r *Registry) RegisterAll(ds ...*Descriptor) error {
	for _, d := range ds {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}
