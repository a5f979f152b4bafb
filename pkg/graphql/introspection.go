package graphql

import (
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// introspector builds __Schema and __Type values as lazy maps. Each map entry
// is either a plain value or a thunk, so only the selected parts are built
// when the executor completes them.
type introspector struct {
	schema *ast.Schema
}

func (in introspector) schemaValue() map[string]interface{} {
	return map[string]interface{}{
		"description": nil,
		"types": func() interface{} {
			names := make([]string, 0, len(in.schema.Types))
			for name := range in.schema.Types {
				names = append(names, name)
			}
			sort.Strings(names)
			out := make([]interface{}, 0, len(names))
			for _, name := range names {
				out = append(out, in.typeValue(in.schema.Types[name]))
			}
			return out
		},
		"queryType": func() interface{} {
			return in.definitionValue(in.schema.Query)
		},
		"mutationType": func() interface{} {
			return in.definitionValue(in.schema.Mutation)
		},
		"subscriptionType": func() interface{} {
			return in.definitionValue(in.schema.Subscription)
		},
		"directives": func() interface{} {
			names := make([]string, 0, len(in.schema.Directives))
			for name := range in.schema.Directives {
				names = append(names, name)
			}
			sort.Strings(names)
			out := make([]interface{}, 0, len(names))
			for _, name := range names {
				out = append(out, in.directiveValue(in.schema.Directives[name]))
			}
			return out
		},
	}
}

// namedType returns the __Type for a type name, or nil when it is unknown.
func (in introspector) namedType(name string) interface{} {
	return in.definitionValue(in.schema.Types[name])
}

func (in introspector) definitionValue(def *ast.Definition) interface{} {
	if def == nil {
		return nil
	}
	return in.typeValue(def)
}

func (in introspector) typeValue(def *ast.Definition) map[string]interface{} {
	return map[string]interface{}{
		"kind":           kindName(def.Kind),
		"name":           def.Name,
		"description":    nilIfEmpty(def.Description),
		"specifiedByURL": nil,
		"isOneOf":        false,
		"fields": func(args map[string]interface{}) interface{} {
			if def.Kind != ast.Object && def.Kind != ast.Interface {
				return nil
			}
			includeDeprecated, _ := args["includeDeprecated"].(bool)
			out := make([]interface{}, 0, len(def.Fields))
			for _, f := range def.Fields {
				if strings.HasPrefix(f.Name, "__") {
					continue
				}
				if !includeDeprecated && isDeprecated(f.Directives) {
					continue
				}
				out = append(out, in.fieldValue(f))
			}
			return out
		},
		"interfaces": func() interface{} {
			if def.Kind != ast.Object && def.Kind != ast.Interface {
				return nil
			}
			out := make([]interface{}, 0, len(def.Interfaces))
			for _, name := range def.Interfaces {
				if iface := in.schema.Types[name]; iface != nil {
					out = append(out, in.typeValue(iface))
				}
			}
			return out
		},
		"possibleTypes": func() interface{} {
			if def.Kind != ast.Interface && def.Kind != ast.Union {
				return nil
			}
			possible := in.schema.GetPossibleTypes(def)
			out := make([]interface{}, 0, len(possible))
			for _, p := range possible {
				out = append(out, in.typeValue(p))
			}
			return out
		},
		"enumValues": func(args map[string]interface{}) interface{} {
			if def.Kind != ast.Enum {
				return nil
			}
			includeDeprecated, _ := args["includeDeprecated"].(bool)
			out := make([]interface{}, 0, len(def.EnumValues))
			for _, ev := range def.EnumValues {
				if !includeDeprecated && isDeprecated(ev.Directives) {
					continue
				}
				out = append(out, map[string]interface{}{
					"name":              ev.Name,
					"description":       nilIfEmpty(ev.Description),
					"isDeprecated":      isDeprecated(ev.Directives),
					"deprecationReason": deprecationReason(ev.Directives),
				})
			}
			return out
		},
		"inputFields": func() interface{} {
			if def.Kind != ast.InputObject {
				return nil
			}
			out := make([]interface{}, 0, len(def.Fields))
			for _, f := range def.Fields {
				out = append(out, in.inputValue(f.Name, f.Description, f.Type, f.DefaultValue, f.Directives))
			}
			return out
		},
		"ofType": nil,
	}
}

// typeRef describes a possibly wrapped type reference.
func (in introspector) typeRef(t *ast.Type) interface{} {
	if t == nil {
		return nil
	}
	if t.NonNull {
		inner := *t
		inner.NonNull = false
		return map[string]interface{}{
			"kind":   "NON_NULL",
			"name":   nil,
			"ofType": func() interface{} { return in.typeRef(&inner) },
		}
	}
	if t.Elem != nil {
		return map[string]interface{}{
			"kind":   "LIST",
			"name":   nil,
			"ofType": func() interface{} { return in.typeRef(t.Elem) },
		}
	}
	return in.namedType(t.NamedType)
}

func (in introspector) fieldValue(f *ast.FieldDefinition) map[string]interface{} {
	return map[string]interface{}{
		"name":        f.Name,
		"description": nilIfEmpty(f.Description),
		"args": func() interface{} {
			out := make([]interface{}, 0, len(f.Arguments))
			for _, a := range f.Arguments {
				out = append(out, in.inputValue(a.Name, a.Description, a.Type, a.DefaultValue, a.Directives))
			}
			return out
		},
		"type":              func() interface{} { return in.typeRef(f.Type) },
		"isDeprecated":      isDeprecated(f.Directives),
		"deprecationReason": deprecationReason(f.Directives),
	}
}

func (in introspector) inputValue(name, description string, typ *ast.Type, defaultValue *ast.Value, directives ast.DirectiveList) map[string]interface{} {
	var def interface{}
	if defaultValue != nil {
		def = defaultValue.String()
	}
	return map[string]interface{}{
		"name":              name,
		"description":       nilIfEmpty(description),
		"type":              func() interface{} { return in.typeRef(typ) },
		"defaultValue":      def,
		"isDeprecated":      isDeprecated(directives),
		"deprecationReason": deprecationReason(directives),
	}
}

func (in introspector) directiveValue(d *ast.DirectiveDefinition) map[string]interface{} {
	locations := make([]interface{}, len(d.Locations))
	for i, loc := range d.Locations {
		locations[i] = string(loc)
	}
	return map[string]interface{}{
		"name":         d.Name,
		"description":  nilIfEmpty(d.Description),
		"locations":    locations,
		"isRepeatable": d.IsRepeatable,
		"args": func() interface{} {
			out := make([]interface{}, 0, len(d.Arguments))
			for _, a := range d.Arguments {
				out = append(out, in.inputValue(a.Name, a.Description, a.Type, a.DefaultValue, a.Directives))
			}
			return out
		},
	}
}

func kindName(kind ast.DefinitionKind) string {
	switch kind {
	case ast.Scalar:
		return "SCALAR"
	case ast.Object:
		return "OBJECT"
	case ast.Interface:
		return "INTERFACE"
	case ast.Union:
		return "UNION"
	case ast.Enum:
		return "ENUM"
	case ast.InputObject:
		return "INPUT_OBJECT"
	default:
		return "OBJECT"
	}
}

func isDeprecated(directives ast.DirectiveList) bool {
	return directives.ForName("deprecated") != nil
}

func deprecationReason(directives ast.DirectiveList) interface{} {
	d := directives.ForName("deprecated")
	if d == nil {
		return nil
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw
	}
	return "No longer supported"
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
