package schema

var builtinScalars = []struct{ name, description string }{
	{"String", "The `String` scalar type represents textual data, represented as UTF-8 character sequences."},
	{"Int", "The `Int` scalar type represents non-fractional signed whole numeric values."},
	{"Float", "The `Float` scalar type represents signed double-precision fractional values."},
	{"Boolean", "The `Boolean` scalar type represents `true` or `false`."},
	{"ID", "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching."},
}

var executableLocations = []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"}

// addBuiltins installs fresh copies of the standard scalars and directives,
// so no two schemas share a mutable definition.
func addBuiltins(s *Schema) {
	for _, sc := range builtinScalars {
		s.AddType(NewType(sc.name, TypeKindScalar, sc.description))
	}
	condition := func(name, description, when string) *Directive {
		d := NewDirective(name, description).
			AddArgument(NewInputValue("if", when, NonNullType(NamedType("Boolean"))))
		d.Locations = append([]string(nil), executableLocations...)
		return d
	}
	s.AddDirective(condition("include", "Directs the executor to include this field or fragment only when the `if` argument is true.", "Included when true."))
	s.AddDirective(condition("skip", "Directs the executor to skip this field or fragment when the `if` argument is true.", "Skipped when true."))

	deprecated := NewDirective("deprecated", "Marks an element of a GraphQL schema as no longer supported.").
		AddArgument(NewInputValue("reason", "The reason for the deprecation.", NamedType("String")).SetDefault("No longer supported"))
	deprecated.Locations = []string{"FIELD_DEFINITION", "ARGUMENT_DEFINITION", "INPUT_FIELD_DEFINITION", "ENUM_VALUE"}
	s.AddDirective(deprecated)
}

// IsBuiltinType reports whether name is one of the standard scalars.
func IsBuiltinType(name string) bool {
	for _, sc := range builtinScalars {
		if sc.name == name {
			return true
		}
	}
	return false
}

func isBuiltinDirective(name string) bool {
	switch name {
	case "include", "skip", "deprecated":
		return true
	}
	return false
}
