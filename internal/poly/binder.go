package poly

import (
	coerce "github.com/hanpama/polygraph/internal/coerce"
	schema "github.com/hanpama/polygraph/internal/schema"
)

// Bind binds supplied argument values against the declared arguments of a
// field. Supplied values are coerced to the declared type. Missing arguments
// take their default, computed defaults being evaluated and coerced on every
// call. A missing non-null argument without a default is an error; any other
// missing argument binds to nil. Supplied names that are not declared are ignored.
func Bind(declared []*ArgumentDescriptor, supplied map[string]any) (map[string]any, error) {
	bound := make(map[string]any, len(declared))
	for _, arg := range declared {
		if v, ok := supplied[arg.Name]; ok {
			cv, err := coerceArgument(arg, v)
			if err != nil {
				return nil, err
			}
			bound[arg.Name] = cv
			continue
		}
		if arg.DefaultFunc != nil {
			cv, err := coerceArgument(arg, arg.DefaultFunc())
			if err != nil {
				return nil, err
			}
			bound[arg.Name] = cv
			continue
		}
		if arg.HasDefault {
			bound[arg.Name] = arg.Default
			continue
		}
		if schema.IsNonNull(arg.Type) {
			return nil, &BindError{Kind: MissingRequiredArgument, Argument: arg.Name, Expected: arg.Type.String()}
		}
		bound[arg.Name] = nil
	}
	return bound, nil
}

func coerceArgument(arg *ArgumentDescriptor, v any) (any, error) {
	cv, err := coerce.Value(v, arg.Type, nil)
	if err != nil {
		return nil, &BindError{Kind: TypeMismatch, Argument: arg.Name, Expected: arg.Type.String(), Got: v, Err: err}
	}
	return cv, nil
}
