package graphql

import (
	"context"
	"encoding/json"

	"github.com/vektah/gqlparser/v2/ast"
)

// Config configures an Executor and its Handler.
type Config struct {
	// Path is the URL path where the endpoint is served.
	Path string `json:"path" yaml:"path"`
	// Introspection enables __schema and __type.
	Introspection bool `json:"introspection" yaml:"introspection"`
}

// DefaultPath is used when Config.Path is empty.
const DefaultPath = "/graphql"

// ResolveParams is passed to a FieldResolveFn.
type ResolveParams struct {
	// Source is the resolved value of the parent object (nil for root fields).
	Source interface{}
	// Args holds the coerced argument values, keyed by argument name.
	Args map[string]interface{}
	// Field is the selected field as it appears in the query document.
	Field *ast.Field
	// ParentType is the name of the object type that owns the field.
	ParentType string
	// Path is the response path of the field.
	Path []interface{}
}

// FieldResolveFn produces the value of one field.
// A returned error is reported in the response and the field becomes null.
type FieldResolveFn func(ctx context.Context, p ResolveParams) (interface{}, error)

// GraphQLError represents a GraphQL error in the response format.
type GraphQLError struct {
	// Message is the error message.
	Message string `json:"message"`
	// Locations indicates where in the query the error occurred.
	Locations []GraphQLErrorLocation `json:"locations,omitempty"`
	// Path is the response field path where the error occurred.
	Path []interface{} `json:"path,omitempty"`
	// Extensions contains additional error metadata.
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// Error implements the error interface so resolvers can return a
// GraphQLError directly.
func (e *GraphQLError) Error() string {
	return e.Message
}

// GraphQLErrorLocation represents a location in the GraphQL query where an error occurred.
type GraphQLErrorLocation struct {
	// Line is the line number (1-indexed).
	Line int `json:"line"`
	// Column is the column number (1-indexed).
	Column int `json:"column"`
}

// GraphQLRequest represents an incoming GraphQL request.
type GraphQLRequest struct {
	// Query is the GraphQL query string.
	Query string `json:"query"`
	// OperationName is the name of the operation to execute (for multi-operation documents).
	OperationName string `json:"operationName,omitempty"`
	// Variables are the variable values for the query.
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// GraphQLResponse represents a GraphQL response.
type GraphQLResponse struct {
	// Data contains the result of the query execution. The executor sets it
	// to an *Object.
	Data interface{} `json:"data,omitempty"`
	// Errors contains any errors that occurred during execution.
	Errors []GraphQLError `json:"errors,omitempty"`
	// Extensions contains additional response metadata.
	Extensions map[string]interface{} `json:"extensions,omitempty"`

	operation ast.Operation
	executed  bool
	rejected  bool
}

// OperationType returns the type of the operation the request selected
// ("query", "mutation" or "subscription"), or "" if the document was
// rejected before an operation was selected.
func (r *GraphQLResponse) OperationType() string {
	return string(r.operation)
}

// MarshalJSON writes "data": null when execution started but a non-null
// error reached the root. Before execution the key is omitted.
func (r GraphQLResponse) MarshalJSON() ([]byte, error) {
	type wire GraphQLResponse
	if r.executed && r.Data == nil {
		return json.Marshal(struct {
			Data interface{} `json:"data"`
			wire
		}{wire: wire(r)})
	}
	return json.Marshal(wire(r))
}

// FieldPath represents a path to a field in the schema (e.g., "Query.getStudent" or "Student.courses").
type FieldPath struct {
	// TypeName is the parent type name (e.g., "Query", "Mutation", "Student").
	TypeName string
	// FieldName is the field name.
	FieldName string
}

// String returns the string representation of the field path.
func (fp FieldPath) String() string {
	return fp.TypeName + "." + fp.FieldName
}

// ParseFieldPath parses a field path string (e.g., "Query.getStudent") into a FieldPath.
func ParseFieldPath(path string) FieldPath {
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			return FieldPath{
				TypeName:  path[:i],
				FieldName: path[i+1:],
			}
		}
	}
	// No dot found, treat the whole string as a field name
	return FieldPath{FieldName: path}
}
