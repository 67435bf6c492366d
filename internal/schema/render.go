package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Render prints s as SDL. Types and directives come out sorted by name;
// standard scalars and directives are left out.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	w := &sdlWriter{}
	for _, name := range sortedKeys(s.Types) {
		if IsBuiltinType(name) {
			continue
		}
		w.typ(s.Types[name])
	}
	for _, name := range sortedKeys(s.Directives) {
		if isBuiltinDirective(name) {
			continue
		}
		w.directive(s.Directives[name])
	}
	return strings.TrimRight(w.String(), "\n") + "\n"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type sdlWriter struct {
	strings.Builder
}

func (w *sdlWriter) printf(format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

func (w *sdlWriter) description(desc, indent string) {
	if desc == "" {
		return
	}
	w.printf("%s\"\"\"\n%s%s\n%s\"\"\"\n", indent, indent, strings.ReplaceAll(desc, `"""`, `\"""`), indent)
}

func (w *sdlWriter) typ(t *Type) {
	w.description(t.Description, "")
	switch t.Kind {
	case TypeKindScalar:
		w.printf("scalar %s", t.Name)
		if t.SpecifiedByURL != nil {
			w.printf(" @specifiedBy(url: %s)", strconv.Quote(*t.SpecifiedByURL))
		}
		w.WriteString("\n\n")
	case TypeKindEnum:
		w.printf("enum %s {\n", t.Name)
		for _, v := range t.EnumValues {
			w.description(v.Description, "  ")
			w.printf("  %s%s\n", v.Name, deprecation(v.IsDeprecated, v.DeprecationReason))
		}
		w.WriteString("}\n\n")
	case TypeKindInputObject:
		w.printf("input %s", t.Name)
		if t.OneOf {
			w.WriteString(" @oneOf")
		}
		w.WriteString(" {\n")
		for _, f := range t.InputFields {
			w.description(f.Description, "  ")
			w.printf("  %s%s\n", inputValue(f), deprecation(f.IsDeprecated, f.DeprecationReason))
		}
		w.WriteString("}\n\n")
	case TypeKindObject, TypeKindInterface:
		keyword := "type"
		if t.Kind == TypeKindInterface {
			keyword = "interface"
			if t.Extends {
				keyword = "extend interface"
			}
		}
		w.printf("%s %s", keyword, t.Name)
		if len(t.Interfaces) > 0 {
			w.printf(" implements %s", strings.Join(t.Interfaces, " & "))
		}
		w.WriteString(" {\n")
		for _, f := range t.Fields {
			w.field(f)
		}
		w.WriteString("}\n\n")
	case TypeKindUnion:
		w.printf("union %s = %s\n\n", t.Name, strings.Join(t.PossibleTypes, " | "))
	}
}

func (w *sdlWriter) field(f *Field) {
	w.description(f.Description, "  ")
	w.printf("  %s%s: %s", f.Name, argumentList(f.Arguments), f.Type)
	if f.External {
		w.WriteString(" @external")
	}
	if f.Provides != "" {
		w.printf(" @provides(fields: %s)", strconv.Quote(f.Provides))
	}
	if f.Requires != "" {
		w.printf(" @requires(fields: %s)", strconv.Quote(f.Requires))
	}
	w.printf("%s\n", deprecation(f.IsDeprecated, f.DeprecationReason))
}

func (w *sdlWriter) directive(d *Directive) {
	w.description(d.Description, "")
	w.printf("directive @%s%s", d.Name, argumentList(d.Arguments))
	if d.IsRepeatable {
		w.WriteString(" repeatable")
	}
	w.printf(" on %s\n\n", strings.Join(d.Locations, " | "))
}

func argumentList(args []*InputValue) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = inputValue(a)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func inputValue(v *InputValue) string {
	s := v.Name + ": " + v.Type.String()
	if v.DefaultValue != nil {
		s += " = " + RenderValue(v.DefaultValue)
	}
	return s
}

func deprecation(deprecated bool, reason string) string {
	switch {
	case !deprecated:
		return ""
	case reason == "":
		return " @deprecated"
	default:
		return " @deprecated(reason: " + strconv.Quote(reason) + ")"
	}
}

// RenderValue renders value as a GraphQL literal. Strings are quoted; any
// other unknown value prints bare, which is how enum values appear.
func RenderValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = RenderValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		parts := make([]string, 0, len(v))
		for _, k := range sortedKeys(v) {
			parts = append(parts, k+": "+RenderValue(v[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(v)
	}
}
