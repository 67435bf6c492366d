package poly

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/gqlerror"

	language "github.com/hanpama/polygraph/internal/language"
)

// Definition error kinds. A *DefinitionError matches its kind with errors.Is.
var (
	ErrDuplicateMember    = errors.New("duplicate member")
	ErrInvalidMemberShape = errors.New("invalid member shape")
	ErrTypeParse          = errors.New("malformed type")
	ErrCyclicFlatten      = errors.New("cyclic flatten")
	ErrUnknownType        = errors.New("unknown type")
	ErrInvalidDefault     = errors.New("invalid default value")
	ErrDuplicateField     = errors.New("duplicate field")
)

// ErrRegistryFrozen is returned when registering a new type after Freeze.
var ErrRegistryFrozen = errors.New("registry is frozen")

// DefinitionError reports a malformed polymorphic type definition. Type is
// always set; Member, Field and Argument locate the offending declaration
// when relevant.
type DefinitionError struct {
	Kind     error
	Type     string
	Member   string
	Field    string
	Argument string
	Err      error
}

func (e *DefinitionError) Error() string {
	var b strings.Builder
	b.WriteString(e.Type)
	if e.Member != "" {
		fmt.Fprintf(&b, " member %q", e.Member)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %q", e.Field)
	}
	if e.Argument != "" {
		fmt.Fprintf(&b, " argument %q", e.Argument)
	}
	fmt.Fprintf(&b, ": %v", e.Kind)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *DefinitionError) Is(target error) bool { return target == e.Kind }

func (e *DefinitionError) Unwrap() error { return e.Err }

// FieldNotFoundError reports a field that the polymorphic type does not
// declare. Object is the schema name of the interface or union.
type FieldNotFoundError struct {
	Field  string
	Object string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("Unknown field %q on type %q", e.Field, e.Object)
}

type BindErrorKind int

const (
	TypeMismatch BindErrorKind = iota + 1
	MissingRequiredArgument
)

func (k BindErrorKind) String() string {
	switch k {
	case TypeMismatch:
		return "TypeMismatch"
	case MissingRequiredArgument:
		return "MissingRequiredArgument"
	}
	return fmt.Sprintf("BindErrorKind(%d)", int(k))
}

// BindError reports an argument that could not be bound.
type BindError struct {
	Kind     BindErrorKind
	Argument string
	Expected string
	Got      any
	Err      error
}

func (e *BindError) Error() string {
	switch e.Kind {
	case MissingRequiredArgument:
		return fmt.Sprintf("argument %q of type %s is required but not provided", e.Argument, e.Expected)
	default:
		return fmt.Sprintf("invalid value %v for argument %q, expected type %s", e.Got, e.Argument, e.Expected)
	}
}

func (e *BindError) Unwrap() error { return e.Err }

// ResolverError wraps a failure returned by a concrete object's field
// capability.
type ResolverError struct {
	Err      error
	Position *language.Position
	Path     []any
}

func (e *ResolverError) Error() string { return e.Err.Error() }

func (e *ResolverError) Unwrap() error { return e.Err }

// Extension codes attached to located resolution errors.
const (
	CodeFieldNotFound  = "FIELD_NOT_FOUND"
	CodeBadArgument    = "BAD_USER_INPUT"
	CodeResolverFailed = "RESOLVER_ERROR"
)

// locate annotates err with the query position and response path.
func locate(err error, pos *language.Position, path []any) *gqlerror.Error {
	gerr := &gqlerror.Error{
		Message: err.Error(),
		Path:    language.ToPath(path),
	}
	gerr.Err = err
	if pos != nil {
		gerr.Locations = []gqlerror.Location{{Line: pos.Line, Column: pos.Column}}
	}
	var (
		notFound *FieldNotFoundError
		bind     *BindError
	)
	switch {
	case errors.As(err, &notFound):
		gerr.Extensions = map[string]any{"code": CodeFieldNotFound}
	case errors.As(err, &bind):
		gerr.Extensions = map[string]any{"code": CodeBadArgument, "argument": bind.Argument}
	default:
		gerr.Extensions = map[string]any{"code": CodeResolverFailed}
	}
	return gerr
}
