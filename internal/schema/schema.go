package schema

// Schema is a type system keyed by type name. Root operation types are
// referenced by name and may be empty.
type Schema struct {
	Description      string
	QueryType        string
	MutationType     string
	SubscriptionType string
	Types            map[string]*Type
	Directives       map[string]*Directive
}

func (s *Schema) GetQueryType() *Type        { return s.Types[s.QueryType] }
func (s *Schema) GetMutationType() *Type     { return s.Types[s.MutationType] }
func (s *Schema) GetSubscriptionType() *Type { return s.Types[s.SubscriptionType] }

type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// Type is any named type. Which of the slices are populated depends on Kind:
// objects and interfaces carry Fields and Interfaces, interfaces and unions
// carry PossibleTypes, enums carry EnumValues and input objects InputFields.
type Type struct {
	Name        string
	Kind        TypeKind
	Description string

	Fields        []*Field
	Interfaces    []string
	PossibleTypes []string
	EnumValues    []*EnumValue
	InputFields   []*InputValue

	SpecifiedByURL *string
	OneOf          bool
	// Extends renders the interface as `extend interface`.
	Extends bool
}

// Field is an output field. Async fields are resolved in the depth-wise
// batch instead of one at a time.
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	Async             bool
	IsDeprecated      bool
	DeprecationReason string

	// Federation attributes are rendered but never interpreted.
	External bool
	Provides string
	Requires string
}

// InputValue is an argument or an input object field.
type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      any
	IsDeprecated      bool
	DeprecationReason string
}

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

type Directive struct {
	Name         string
	Description  string
	Arguments    []*InputValue
	Locations    []string
	IsRepeatable bool
}
