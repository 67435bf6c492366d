package executor

import (
	"strconv"
	"strings"
)

// Path is a response path of field names and list indices.
type Path []PathElement

// PathElement is a string for a response name or an int for a list index.
type PathElement = any

// with returns a copy of p extended by elem; p itself is never shared.
func (p Path) with(elem PathElement) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = elem
	return out
}

// topLevel returns the root response field p starts from.
func (p Path) topLevel() Path {
	for _, elem := range p {
		if name, ok := elem.(string); ok {
			return Path{name}
		}
	}
	return Path{}
}

// String renders p as "a.b.[1].c".
func (p Path) String() string {
	var b strings.Builder
	for i, elem := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		switch v := elem.(type) {
		case string:
			b.WriteString(v)
		case int:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(v))
			b.WriteByte(']')
		}
	}
	return b.String()
}
