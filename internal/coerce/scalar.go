package coerce

import (
	"fmt"
	"math"
	"strconv"
)

type scalarFunc func(value any) (any, error)

// builtinScalars coerce both input values and resolved leaf values.
var builtinScalars = map[string]scalarFunc{
	"Int":     asInt,
	"Float":   asFloat,
	"String":  asString,
	"Boolean": asBoolean,
	"ID":      asID,
}

func mismatch(value any, kind string) error {
	return fmt.Errorf("cannot coerce %v (%T) to %s", value, value, kind)
}

func asInt(value any) (any, error) {
	var f float64
	switch v := value.(type) {
	case int32:
		return int(v), nil
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case float32:
		f = float64(v)
	case float64:
		f = v
	default:
		return nil, mismatch(value, "int")
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return nil, mismatch(value, "int")
	}
	return int(f), nil
}

func asFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return nil, mismatch(value, "float")
}

func asString(value any) (any, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	return nil, mismatch(value, "string")
}

func asBoolean(value any) (any, error) {
	if b, ok := value.(bool); ok {
		return b, nil
	}
	return nil, mismatch(value, "boolean")
}

func asID(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	}
	return nil, mismatch(value, "ID")
}

// Serialize converts a resolved leaf value of a built-in scalar into its
// response form. Stringers serialize as String. Other types pass through.
func Serialize(typeName string, value any) (any, error) {
	if typeName == "String" {
		if s, ok := value.(fmt.Stringer); ok {
			return s.String(), nil
		}
	}
	if f, ok := builtinScalars[typeName]; ok {
		return f(value)
	}
	return value, nil
}
