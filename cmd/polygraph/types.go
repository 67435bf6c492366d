package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	poly "github.com/hanpama/polygraph/internal/poly"
)

// typesFile is the YAML form of interface and union definitions:
//
//	types:
//	  - name: Node
//	    kind: interface
//	    members:
//	      - {name: User, type: User}
//	    fields:
//	      - name: friends
//	        type: "[User!]!"
//	        args:
//	          - {name: first, type: Int, default: 10}
//	  - name: Feed
//	    kind: union
//	    members:
//	      - {name: Ad, type: Ad}
//	      - {name: Node, flatten: Node}
type typesFile struct {
	Types []typeDef `yaml:"types"`
}

type typeDef struct {
	Name        string      `yaml:"name"`
	Kind        string      `yaml:"kind"`
	Description string      `yaml:"description"`
	Extend      bool        `yaml:"extend"`
	Members     []memberDef `yaml:"members"`
	Fields      []fieldDef  `yaml:"fields"`
}

type memberDef struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Flatten string `yaml:"flatten"`
}

type fieldDef struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Description string   `yaml:"description"`
	Deprecated  *string  `yaml:"deprecated"`
	Args        []argDef `yaml:"args"`
	External    bool     `yaml:"external"`
	Provides    string   `yaml:"provides"`
	Requires    string   `yaml:"requires"`
}

type argDef struct {
	Name        string    `yaml:"name"`
	Type        string    `yaml:"type"`
	Description string    `yaml:"description"`
	Default     yaml.Node `yaml:"default"`
}

func loadDefinitions(path string) ([]*poly.Definition, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read types: %w", err)
	}
	return parseDefinitions(b)
}

func parseDefinitions(b []byte) ([]*poly.Definition, error) {
	var file typesFile
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("parse types: %w", err)
	}
	defs := make([]*poly.Definition, 0, len(file.Types))
	for _, td := range file.Types {
		def, err := td.definition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (td typeDef) definition() (*poly.Definition, error) {
	var def *poly.Definition
	switch td.Kind {
	case "interface":
		def = poly.Interface(td.Name)
	case "union":
		def = poly.Union(td.Name)
	default:
		return nil, fmt.Errorf("type %s: unknown kind %q", td.Name, td.Kind)
	}
	def.Describe(td.Description)
	if td.Extend {
		def.Extend()
	}
	for _, m := range td.Members {
		switch {
		case m.Type != "" && m.Flatten != "":
			return nil, fmt.Errorf("type %s: member %s sets both type and flatten", td.Name, m.Name)
		case m.Flatten != "":
			def.Flatten(m.Name, m.Flatten)
		default:
			def.Member(m.Name, m.Type)
		}
	}
	for _, fd := range td.Fields {
		f := poly.NewField(fd.Name, fd.Type).Describe(fd.Description)
		if fd.Deprecated != nil {
			f.Deprecate(*fd.Deprecated)
		}
		if fd.External || fd.Provides != "" || fd.Requires != "" {
			f.Federation(fd.External, fd.Provides, fd.Requires)
		}
		for _, ad := range fd.Args {
			a := poly.NewArg(ad.Name, ad.Type).Describe(ad.Description)
			if !ad.Default.IsZero() {
				var v any
				if err := ad.Default.Decode(&v); err != nil {
					return nil, fmt.Errorf("type %s: field %s: argument %s default: %w", td.Name, fd.Name, ad.Name, err)
				}
				a.WithDefault(v)
			}
			f.Arg(a)
		}
		def.Field(f)
	}
	return def, nil
}
