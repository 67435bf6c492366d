package language

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Executable documents.
type (
	QueryDocument       = ast.QueryDocument
	OperationDefinition = ast.OperationDefinition
	FragmentDefinition  = ast.FragmentDefinition
	SelectionSet        = ast.SelectionSet
	Field               = ast.Field
	FragmentSpread      = ast.FragmentSpread
	InlineFragment      = ast.InlineFragment
	DirectiveList       = ast.DirectiveList
	Directive           = ast.Directive
	ArgumentList        = ast.ArgumentList
	Value               = ast.Value
	Type                = ast.Type
	Operation           = ast.Operation
)

const (
	Query        = ast.Query
	Mutation     = ast.Mutation
	Subscription = ast.Subscription
)

// Literal kinds of a Value.
const (
	Variable     = ast.Variable
	IntValue     = ast.IntValue
	FloatValue   = ast.FloatValue
	StringValue  = ast.StringValue
	BlockValue   = ast.BlockValue
	BooleanValue = ast.BooleanValue
	NullValue    = ast.NullValue
	EnumValue    = ast.EnumValue
	ListValue    = ast.ListValue
	ObjectValue  = ast.ObjectValue
)

// Type system documents.
type SchemaDocument = ast.SchemaDocument

// Positions, paths and errors share gqlparser's types so errors raised by the
// parser flow to responses unchanged.
type (
	Position = ast.Position
	Path     = ast.Path
	Error    = gqlerror.Error
	Location = gqlerror.Location
)
