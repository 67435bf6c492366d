package introspection

import (
	"fmt"

	schema "github.com/hanpama/polygraph/internal/schema"
)

const introspectionSDL = `
type __Schema {
  description: String
  types: [__Type!]!
  queryType: __Type!
  mutationType: __Type
  subscriptionType: __Type
  directives: [__Directive!]!
}

type __Type {
  kind: __TypeKind!
  name: String
  description: String
  specifiedByURL: String
  fields(includeDeprecated: Boolean = false): [__Field!]
  interfaces: [__Type!]
  possibleTypes: [__Type!]
  enumValues(includeDeprecated: Boolean = false): [__EnumValue!]
  inputFields(includeDeprecated: Boolean = false): [__InputValue!]
  ofType: __Type
  isOneOf: Boolean
}

type __Field {
  name: String!
  description: String
  args(includeDeprecated: Boolean = false): [__InputValue!]!
  type: __Type!
  isDeprecated: Boolean!
  deprecationReason: String
}

type __InputValue {
  name: String!
  description: String
  type: __Type!
  defaultValue: String
  isDeprecated: Boolean!
  deprecationReason: String
}

type __EnumValue {
  name: String!
  description: String
  isDeprecated: Boolean!
  deprecationReason: String
}

type __Directive {
  name: String!
  description: String
  isRepeatable: Boolean!
  locations: [__DirectiveLocation!]!
  args(includeDeprecated: Boolean = false): [__InputValue!]!
}

enum __TypeKind { SCALAR OBJECT INTERFACE UNION ENUM INPUT_OBJECT LIST NON_NULL }

enum __DirectiveLocation {
  QUERY MUTATION SUBSCRIPTION FIELD FRAGMENT_DEFINITION FRAGMENT_SPREAD
  INLINE_FRAGMENT VARIABLE_DEFINITION SCHEMA SCALAR OBJECT FIELD_DEFINITION
  ARGUMENT_DEFINITION INTERFACE UNION ENUM ENUM_VALUE INPUT_OBJECT
  INPUT_FIELD_DEFINITION
}
`

// extend returns a copy of original with the introspection types added and
// the __schema and __type fields appended to the query type. original is not
// modified.
func extend(original *schema.Schema) (*schema.Schema, error) {
	meta, err := schema.BuildFromSDL(introspectionSDL)
	if err != nil {
		return nil, fmt.Errorf("introspection types: %w", err)
	}
	extended := &schema.Schema{
		QueryType:        original.QueryType,
		MutationType:     original.MutationType,
		SubscriptionType: original.SubscriptionType,
		Types:            make(map[string]*schema.Type, len(original.Types)+len(meta.Types)),
		Directives:       original.Directives,
		Description:      original.Description,
	}
	for name, t := range original.Types {
		extended.Types[name] = t
	}
	for name, t := range meta.Types {
		if _, ok := extended.Types[name]; !ok {
			extended.Types[name] = t
		}
	}

	query := original.GetQueryType()
	if query == nil {
		return extended, nil
	}
	q := *query
	q.Fields = append(append([]*schema.Field(nil), query.Fields...),
		schema.NewField("__schema", "Access the current type schema of this server.",
			schema.NonNullType(schema.NamedType("__Schema"))),
		schema.NewField("__type", "Request the type information of a single type.",
			schema.NamedType("__Type")).
			AddArgument(schema.NewInputValue("name", "The name of the type to look up.",
				schema.NonNullType(schema.NamedType("String")))),
	)
	extended.Types[q.Name] = &q
	return extended, nil
}
