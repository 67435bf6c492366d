package poly

// Definition declares an interface or union before it is built into a
// Descriptor. Definitions are plain data; Interface and Union return one
// ready for fluent declaration.
type Definition struct {
	Name        string
	Description string
	Kind        Kind
	Extends     bool
	Members     []MemberSpec
	Fields      []*FieldSpec
}

// MemberSpec declares one member. A legal member carries exactly one payload
// and no named sub-fields. The payload names a concrete object type, or,
// when Flatten is set, another polymorphic type whose members are merged in.
type MemberSpec struct {
	Name        string
	Payloads    []string
	NamedFields []string
	Flatten     bool
}

// FieldSpec declares a field of an interface's shared contract. Type and
// argument types are GraphQL type signatures such as "[String!]!".
type FieldSpec struct {
	Name        string
	Rename      string
	Description string
	Deprecation *string
	Type        string
	Args        []*ArgumentSpec

	External bool
	Provides string
	Requires string
}

// ArgumentSpec declares a field argument. A literal Default applies when
// HasDefault is set; DefaultFunc takes precedence and is evaluated again on
// every bind.
type ArgumentSpec struct {
	Name        string
	Rename      string
	Description string
	Type        string
	Default     any
	HasDefault  bool
	DefaultFunc func() any
}

func Interface(name string) *Definition { return &Definition{Name: name, Kind: KindInterface} }

func Union(name string) *Definition { return &Definition{Name: name, Kind: KindUnion} }

func (d *Definition) Describe(description string) *Definition {
	d.Description = description
	return d
}

// Extend marks the type as a federation entity extension.
func (d *Definition) Extend() *Definition {
	d.Extends = true
	return d
}

// Member adds a concrete member whose payload is the object type typeName.
func (d *Definition) Member(name, typeName string) *Definition {
	d.Members = append(d.Members, MemberSpec{Name: name, Payloads: []string{typeName}})
	return d
}

// Flatten adds a member that merges the members of the polymorphic type
// polyType into d.
func (d *Definition) Flatten(name, polyType string) *Definition {
	d.Members = append(d.Members, MemberSpec{Name: name, Payloads: []string{polyType}, Flatten: true})
	return d
}

func (d *Definition) Field(f *FieldSpec) *Definition {
	d.Fields = append(d.Fields, f)
	return d
}

func NewField(name, typ string) *FieldSpec { return &FieldSpec{Name: name, Type: typ} }

func (f *FieldSpec) Arg(a *ArgumentSpec) *FieldSpec {
	f.Args = append(f.Args, a)
	return f
}

func (f *FieldSpec) Describe(description string) *FieldSpec {
	f.Description = description
	return f
}

// RenameTo sets the schema-visible name, bypassing name normalization.
func (f *FieldSpec) RenameTo(name string) *FieldSpec {
	f.Rename = name
	return f
}

func (f *FieldSpec) Deprecate(reason string) *FieldSpec {
	f.Deprecation = &reason
	return f
}

// Federation sets the passthrough federation attributes.
func (f *FieldSpec) Federation(external bool, provides, requires string) *FieldSpec {
	f.External = external
	f.Provides = provides
	f.Requires = requires
	return f
}

func NewArg(name, typ string) *ArgumentSpec { return &ArgumentSpec{Name: name, Type: typ} }

func (a *ArgumentSpec) Describe(description string) *ArgumentSpec {
	a.Description = description
	return a
}

func (a *ArgumentSpec) RenameTo(name string) *ArgumentSpec {
	a.Rename = name
	return a
}

func (a *ArgumentSpec) WithDefault(v any) *ArgumentSpec {
	a.Default = v
	a.HasDefault = true
	return a
}

func (a *ArgumentSpec) WithDefaultFunc(fn func() any) *ArgumentSpec {
	a.DefaultFunc = fn
	return a
}
