package schema

// NewSchema returns an empty schema with the built-in scalars and directives.
func NewSchema(description string) *Schema {
	s := &Schema{
		Types:       make(map[string]*Type),
		Directives:  make(map[string]*Directive),
		Description: description,
	}
	addBuiltins(s)
	return s
}

func (s *Schema) SetQueryType(name string) *Schema        { s.QueryType = name; return s }
func (s *Schema) SetMutationType(name string) *Schema     { s.MutationType = name; return s }
func (s *Schema) SetSubscriptionType(name string) *Schema { s.SubscriptionType = name; return s }

// AddType stores t under its name, replacing any previous type of that name.
func (s *Schema) AddType(t *Type) *Schema {
	if s.Types == nil {
		s.Types = make(map[string]*Type)
	}
	s.Types[t.Name] = t
	return s
}

func (s *Schema) AddDirective(d *Directive) *Schema {
	if s.Directives == nil {
		s.Directives = make(map[string]*Directive)
	}
	s.Directives[d.Name] = d
	return s
}

// IsPossibleType reports whether the object type named objectType can appear
// where abstractType is expected. A type is always possible for itself.
func (s *Schema) IsPossibleType(abstractType, objectType string) bool {
	if abstractType == objectType {
		return true
	}
	t := s.Types[abstractType]
	if t == nil {
		return false
	}
	switch t.Kind {
	case TypeKindInterface, TypeKindUnion:
		for _, name := range t.PossibleTypes {
			if name == objectType {
				return true
			}
		}
		if obj := s.Types[objectType]; obj != nil && t.Kind == TypeKindInterface {
			return obj.HasInterface(abstractType)
		}
	}
	return false
}

func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

func (t *Type) AddField(f *Field) *Type { t.Fields = append(t.Fields, f); return t }

// AddInterface records that t implements iface. Repeated names are ignored.
func (t *Type) AddInterface(iface string) *Type {
	if !t.HasInterface(iface) {
		t.Interfaces = append(t.Interfaces, iface)
	}
	return t
}

// AddPossibleType appends name to the possible types. Repeated names are ignored.
func (t *Type) AddPossibleType(name string) *Type {
	for _, n := range t.PossibleTypes {
		if n == name {
			return t
		}
	}
	t.PossibleTypes = append(t.PossibleTypes, name)
	return t
}

func (t *Type) AddEnumValue(v *EnumValue) *Type    { t.EnumValues = append(t.EnumValues, v); return t }
func (t *Type) AddInputField(v *InputValue) *Type  { t.InputFields = append(t.InputFields, v); return t }
func (t *Type) SetOneOf(oneOf bool) *Type          { t.OneOf = oneOf; return t }
func (t *Type) SetExtends(extends bool) *Type      { t.Extends = extends; return t }
func (t *Type) SetSpecifiedByURL(url string) *Type { t.SpecifiedByURL = &url; return t }

func (t *Type) HasInterface(iface string) bool {
	for _, name := range t.Interfaces {
		if name == iface {
			return true
		}
	}
	return false
}

// Field returns the field definition named name, or nil.
func (t *Type) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func NewField(name, description string, typ *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: typ}
}

// NewFieldMap is a convenience for building a type's ordered field list.
func NewFieldMap(fields ...*Field) []*Field { return fields }

func (f *Field) SetAsync(async bool) *Field          { f.Async = async; return f }
func (f *Field) AddArgument(arg *InputValue) *Field { f.Arguments = append(f.Arguments, arg); return f }

func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

// SetFederation sets the federation passthrough attributes.
func (f *Field) SetFederation(external bool, provides, requires string) *Field {
	f.External = external
	f.Provides = provides
	f.Requires = requires
	return f
}

// Argument returns the argument definition named name, or nil.
func (f *Field) Argument(name string) *InputValue {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

func NewInputValue(name, description string, typ *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: typ}
}

func (v *InputValue) SetDefault(value any) *InputValue { v.DefaultValue = value; return v }

func (v *InputValue) Deprecate(reason string) *InputValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

func NewEnumValue(name, description string) *EnumValue {
	return &EnumValue{Name: name, Description: description}
}

func (v *EnumValue) Deprecate(reason string) *EnumValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

func NewDirective(name, description string) *Directive {
	return &Directive{Name: name, Description: description}
}

func (d *Directive) SetRepeatable(repeatable bool) *Directive { d.IsRepeatable = repeatable; return d }
func (d *Directive) AddArgument(arg *InputValue) *Directive {
	d.Arguments = append(d.Arguments, arg)
	return d
}
