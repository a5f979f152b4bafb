package graphql

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// Schema is a parsed GraphQL schema with lookup helpers.
type Schema struct {
	ast       *ast.Schema
	source    string
	queries   map[string]*ast.FieldDefinition
	mutations map[string]*ast.FieldDefinition
}

// ParseSchema parses a GraphQL SDL string and returns a Schema.
func ParseSchema(sdl string) (*Schema, error) {
	return loadSchema(&ast.Source{Name: "schema", Input: sdl})
}

// ParseSchemaFile parses a GraphQL schema from a file and returns a Schema.
func ParseSchemaFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}
	return loadSchema(&ast.Source{Name: path, Input: string(data)})
}

func loadSchema(source *ast.Source) (*Schema, error) {
	schema, err := gqlparser.LoadSchema(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GraphQL schema from %s: %w", source.Name, err)
	}

	s := &Schema{
		ast:       schema,
		source:    source.Input,
		queries:   make(map[string]*ast.FieldDefinition),
		mutations: make(map[string]*ast.FieldDefinition),
	}
	if schema.Query != nil {
		for _, field := range schema.Query.Fields {
			if !isIntrospectionField(field.Name) {
				s.queries[field.Name] = field
			}
		}
	}
	if schema.Mutation != nil {
		for _, field := range schema.Mutation.Fields {
			s.mutations[field.Name] = field
		}
	}
	return s, nil
}

// isIntrospectionField returns true if the field name is reserved for introspection.
func isIntrospectionField(name string) bool {
	return strings.HasPrefix(name, "__")
}

// AST returns the underlying gqlparser AST schema.
func (s *Schema) AST() *ast.Schema {
	return s.ast
}

// Source returns the original SDL source string.
func (s *Schema) Source() string {
	return s.source
}

// GetType returns a type definition by name, or nil if not found.
func (s *Schema) GetType(name string) *ast.Definition {
	return s.ast.Types[name]
}

// GetQueryField returns a query field definition by name, or nil if not found.
func (s *Schema) GetQueryField(name string) *ast.FieldDefinition {
	return s.queries[name]
}

// GetMutationField returns a mutation field definition by name, or nil if not found.
func (s *Schema) GetMutationField(name string) *ast.FieldDefinition {
	return s.mutations[name]
}

// GetField returns a field definition by type and field name.
func (s *Schema) GetField(typeName, fieldName string) *ast.FieldDefinition {
	def := s.GetType(typeName)
	if def == nil {
		return nil
	}
	return def.Fields.ForName(fieldName)
}

// ListQueries returns all query field names in sorted order.
func (s *Schema) ListQueries() []string {
	return sortedKeys(s.queries)
}

// ListMutations returns all mutation field names in sorted order.
func (s *Schema) ListMutations() []string {
	return sortedKeys(s.mutations)
}

// ListTypes returns all type names in sorted order, optionally filtering by kind.
// Built-in introspection types are left out.
func (s *Schema) ListTypes(kinds ...ast.DefinitionKind) []string {
	names := make([]string, 0, len(s.ast.Types))
	for name, def := range s.ast.Types {
		if isIntrospectionField(name) {
			continue
		}
		if len(kinds) == 0 || containsKind(kinds, def.Kind) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// HasQuery returns true if the schema has a query type with fields.
func (s *Schema) HasQuery() bool {
	return len(s.queries) > 0
}

// HasMutation returns true if the schema has a mutation type with fields.
func (s *Schema) HasMutation() bool {
	return len(s.mutations) > 0
}

// Validate performs checks beyond what gqlparser enforces while parsing.
func (s *Schema) Validate() error {
	if !s.HasQuery() {
		return errors.New("schema must define a Query type with at least one field")
	}
	if s.ast.Subscription != nil {
		return errors.New("subscriptions are not supported")
	}
	return nil
}

func sortedKeys(m map[string]*ast.FieldDefinition) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func containsKind(kinds []ast.DefinitionKind, k ast.DefinitionKind) bool {
	for _, want := range kinds {
		if want == k {
			return true
		}
	}
	return false
}
