package executor

import (
	"fmt"
	"strings"

	coerce "github.com/hanpama/polygraph/internal/coerce"
	language "github.com/hanpama/polygraph/internal/language"
	schema "github.com/hanpama/polygraph/internal/schema"
)

// coerceVariableValues checks the request variables against the
// operation's definitions. Names may be given with or without the "$".
func coerceVariableValues(sch *schema.Schema, operation *language.OperationDefinition, values map[string]any) (map[string]any, error) {
	var types map[string]*schema.Type
	if sch != nil {
		types = sch.Types
	}
	out := make(map[string]any, len(operation.VariableDefinitions))
	for _, def := range operation.VariableDefinitions {
		name, typ := def.Variable, def.Type
		v, ok := values[name]
		if !ok {
			v, ok = values[strings.TrimPrefix(name, "$")]
		}
		switch {
		case !ok && def.DefaultValue != nil:
			v = coerce.FromAST(def.DefaultValue, nil)
		case !ok && typ.NonNull:
			return nil, fmt.Errorf("variable $%s of required type %s was not provided", name, typ)
		case !ok:
			continue
		case v == nil && typ.NonNull:
			return nil, fmt.Errorf("variable $%s of type %s cannot be null", name, typ)
		}
		cv, err := coerce.Value(v, typeRefFromAST(typ), types)
		if err != nil {
			return nil, fmt.Errorf("variable $%s of type %s cannot be coerced: %v", name, typ, err)
		}
		out[name] = cv
	}
	return out, nil
}

// coerceArguments resolves a field's arguments from literals and variables,
// filling defaults. Problems are recorded at path and the argument is left
// out.
func (s *executionState) coerceArguments(def *schema.Field, arguments language.ArgumentList, path Path) map[string]any {
	out := make(map[string]any, len(def.Arguments))
	for _, arg := range arguments {
		argDef := def.Argument(arg.Name)
		if argDef == nil {
			continue
		}
		v, err := coerce.Value(coerce.FromAST(arg.Value, s.variables), argDef.Type, s.schema.Types)
		if err != nil {
			s.addError(fmt.Sprintf("argument '%s' cannot be coerced: %v", arg.Name, err), path)
			continue
		}
		out[arg.Name] = v
	}
	for _, argDef := range def.Arguments {
		if _, ok := out[argDef.Name]; ok {
			continue
		}
		if argDef.DefaultValue != nil {
			out[argDef.Name] = argDef.DefaultValue
		} else if argDef.Type.IsNonNull() {
			s.addError(fmt.Sprintf("argument '%s' of required type was not provided", argDef.Name), path)
		}
	}
	return out
}
