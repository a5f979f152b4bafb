package graphql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/validator"

	"github.com/getmockd/registrar/pkg/logging"
	"github.com/getmockd/registrar/pkg/util"
)

// Executor executes GraphQL operations against registered field resolvers.
// Fields without a resolver are read from the parent value.
type Executor struct {
	schema    *Schema
	config    Config
	resolvers map[string]FieldResolveFn // "Query.getStudent" -> resolver
	log       *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithLogger sets the executor logger.
func WithLogger(log *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if log != nil {
			e.log = log
		}
	}
}

// NewExecutor creates a new GraphQL executor for the given schema.
func NewExecutor(schema *Schema, config *Config, opts ...ExecutorOption) *Executor {
	e := &Executor{
		schema:    schema,
		resolvers: make(map[string]FieldResolveFn),
		log:       logging.Nop(),
	}
	if config != nil {
		e.config = *config
	}
	if e.config.Path == "" {
		e.config.Path = DefaultPath
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Schema returns the schema the executor runs against.
func (e *Executor) Schema() *Schema {
	return e.schema
}

// Config returns the executor configuration.
func (e *Executor) Config() Config {
	return e.config
}

// Register binds a resolver to a field path such as "Query.getStudent".
// The field must exist in the schema.
func (e *Executor) Register(path string, fn FieldResolveFn) error {
	fp := ParseFieldPath(path)
	if fp.TypeName == "" {
		return fmt.Errorf("resolver path %q must be of the form Type.field", path)
	}
	if e.schema.GetField(fp.TypeName, fp.FieldName) == nil {
		return fmt.Errorf("resolver path %q: no such field in schema", path)
	}
	if fn == nil {
		return fmt.Errorf("resolver path %q: nil resolver", path)
	}
	e.resolvers[fp.String()] = fn
	return nil
}

// ExecuteOption adjusts a single Execute call.
type ExecuteOption func(*executeOptions)

type executeOptions struct {
	queriesOnly bool
}

// QueriesOnly rejects any operation other than a query. The decision is made
// on the parsed operation the request selects, so comments and
// multi-operation documents cannot hide a mutation.
func QueriesOnly() ExecuteOption {
	return func(o *executeOptions) {
		o.queriesOnly = true
	}
}

// Execute executes a GraphQL request and returns a response.
func (e *Executor) Execute(ctx context.Context, req *GraphQLRequest, opts ...ExecuteOption) *GraphQLResponse {
	var o executeOptions
	for _, opt := range opts {
		opt(&o)
	}

	if req == nil || req.Query == "" {
		return &GraphQLResponse{
			Errors: []GraphQLError{{Message: "query is required"}},
		}
	}

	start := time.Now()

	doc, errs := gqlparser.LoadQuery(e.schema.AST(), req.Query)
	if len(errs) > 0 {
		return &GraphQLResponse{Errors: convertErrorList(errs)}
	}

	op, err := selectOperation(doc, req.OperationName)
	if err != nil {
		return &GraphQLResponse{Errors: []GraphQLError{{Message: err.Error()}}}
	}

	resp := &GraphQLResponse{operation: op.Operation}
	if o.queriesOnly && op.Operation != ast.Query {
		resp.rejected = true
		resp.Errors = []GraphQLError{{Message: fmt.Sprintf("%s operations are not allowed here", op.Operation)}}
		return resp
	}

	vars, err := validator.VariableValues(e.schema.AST(), op, normalizeVariables(req.Variables))
	if err != nil {
		resp.Errors = []GraphQLError{variableError(err)}
		return resp
	}

	var root *ast.Definition
	switch op.Operation {
	case ast.Query:
		root = e.schema.AST().Query
	case ast.Mutation:
		root = e.schema.AST().Mutation
	case ast.Subscription:
		resp.Errors = []GraphQLError{{Message: "subscriptions are not supported"}}
		return resp
	}
	if root == nil {
		resp.Errors = []GraphQLError{{Message: fmt.Sprintf("schema does not support %s operations", op.Operation)}}
		return resp
	}

	ex := &execution{
		executor: e,
		doc:      doc,
		vars:     vars,
	}
	fields := ex.collectFields(root, op.SelectionSet, nil)
	data, nulled := ex.executeFields(ctx, root, nil, fields, nil)

	resp.executed = true
	resp.Errors = ex.errors
	if !nulled {
		resp.Data = data
	}

	e.log.Debug("operation executed",
		"operation", string(op.Operation),
		"operationName", op.Name,
		"errors", len(ex.errors),
		"durationMs", time.Since(start).Milliseconds(),
		"query", util.TruncateBody(req.Query, 0),
	)
	return resp
}

// selectOperation picks the operation to run from a document.
func selectOperation(doc *ast.QueryDocument, name string) (*ast.OperationDefinition, error) {
	if name != "" {
		op := doc.Operations.ForName(name)
		if op == nil {
			return nil, fmt.Errorf("operation %q not found", name)
		}
		return op, nil
	}
	switch len(doc.Operations) {
	case 0:
		return nil, errors.New("no operation found in query")
	case 1:
		return doc.Operations[0], nil
	default:
		return nil, errors.New("operationName is required when the document contains multiple operations")
	}
}

// execution carries per-request state.
type execution struct {
	executor *Executor
	doc      *ast.QueryDocument
	vars     map[string]interface{}
	errors   []GraphQLError
}

// fieldSet is an ordered group of fields keyed by response name.
type fieldSet struct {
	keys   []string
	fields map[string][]*ast.Field
}

func (fs *fieldSet) add(f *ast.Field) {
	if fs.fields == nil {
		fs.fields = make(map[string][]*ast.Field)
	}
	key := f.Alias
	if key == "" {
		key = f.Name
	}
	if _, ok := fs.fields[key]; !ok {
		fs.keys = append(fs.keys, key)
	}
	fs.fields[key] = append(fs.fields[key], f)
}

// collectFields flattens fragments and applies @skip and @include for the
// given runtime object type.
func (ex *execution) collectFields(objType *ast.Definition, set ast.SelectionSet, fs *fieldSet) *fieldSet {
	if fs == nil {
		fs = &fieldSet{}
	}
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			if ex.skipped(s.Directives) {
				continue
			}
			fs.add(s)
		case *ast.InlineFragment:
			if ex.skipped(s.Directives) || !ex.typeApplies(objType, s.TypeCondition) {
				continue
			}
			ex.collectFields(objType, s.SelectionSet, fs)
		case *ast.FragmentSpread:
			if ex.skipped(s.Directives) {
				continue
			}
			frag := ex.doc.Fragments.ForName(s.Name)
			if frag == nil || !ex.typeApplies(objType, frag.TypeCondition) {
				continue
			}
			ex.collectFields(objType, frag.SelectionSet, fs)
		}
	}
	return fs
}

func (ex *execution) skipped(directives ast.DirectiveList) bool {
	if d := directives.ForName("skip"); d != nil {
		if v, _ := d.ArgumentMap(ex.vars)["if"].(bool); v {
			return true
		}
	}
	if d := directives.ForName("include"); d != nil {
		if v, _ := d.ArgumentMap(ex.vars)["if"].(bool); !v {
			return true
		}
	}
	return false
}

func (ex *execution) typeApplies(objType *ast.Definition, condition string) bool {
	if condition == "" || condition == objType.Name {
		return true
	}
	schema := ex.executor.schema.AST()
	cond := schema.Types[condition]
	if cond == nil || (cond.Kind != ast.Interface && cond.Kind != ast.Union) {
		return false
	}
	for _, possible := range schema.GetPossibleTypes(cond) {
		if possible.Name == objType.Name {
			return true
		}
	}
	return false
}

// executeFields resolves every field of an object. nulled reports that a
// non-null field failed and the object itself must become null.
func (ex *execution) executeFields(ctx context.Context, objType *ast.Definition, source interface{}, fs *fieldSet, path []interface{}) (*Object, bool) {
	result := NewObject(len(fs.keys))
	nulled := false
	for _, key := range fs.keys {
		// Siblings still run after a failure.
		value, failed := ex.executeField(ctx, objType, source, fs.fields[key], appendPath(path, key))
		if failed {
			nulled = true
			continue
		}
		result.Set(key, value)
	}
	if nulled {
		return nil, true
	}
	return result, false
}

// fieldInfo identifies the field being completed, for error messages.
type fieldInfo struct {
	parent string
	def    *ast.FieldDefinition
	nodes  []*ast.Field
}

func (ex *execution) executeField(ctx context.Context, objType *ast.Definition, source interface{}, nodes []*ast.Field, path []interface{}) (interface{}, bool) {
	field := nodes[0]
	if field.Name == "__typename" {
		return objType.Name, false
	}

	def := objType.Fields.ForName(field.Name)
	if def == nil {
		def = field.Definition
	}
	if def == nil {
		ex.addError(fmt.Errorf("cannot query field %q on type %q", field.Name, objType.Name), field, path)
		return nil, false
	}
	info := fieldInfo{parent: objType.Name, def: def, nodes: nodes}

	var raw map[string]interface{}
	if field.Definition != nil {
		raw = field.ArgumentMap(ex.vars)
	}
	args, err := coerceArguments(def.Arguments, raw)
	if err != nil {
		ex.addError(err, field, path)
		return nil, def.Type.NonNull
	}

	if ctx.Err() != nil {
		ex.addError(errors.New("request cancelled"), field, path)
		return nil, def.Type.NonNull
	}

	resolved, err := ex.resolve(ctx, objType, source, field, args, path)
	if err != nil {
		ex.addError(err, field, path)
		return nil, def.Type.NonNull
	}
	return ex.complete(ctx, def.Type, info, resolved, path)
}

func (ex *execution) resolve(ctx context.Context, objType *ast.Definition, source interface{}, field *ast.Field, args map[string]interface{}, path []interface{}) (interface{}, error) {
	e := ex.executor
	if schemaQuery := e.schema.AST().Query; schemaQuery != nil && objType.Name == schemaQuery.Name {
		switch field.Name {
		case "__schema", "__type":
			if !e.config.Introspection {
				return nil, errors.New("introspection is disabled")
			}
			in := introspector{schema: e.schema.AST()}
			if field.Name == "__schema" {
				return in.schemaValue(), nil
			}
			name, _ := args["name"].(string)
			return in.namedType(name), nil
		}
	}

	if fn, ok := e.resolvers[objType.Name+"."+field.Name]; ok {
		return fn(ctx, ResolveParams{
			Source:     source,
			Args:       args,
			Field:      field,
			ParentType: objType.Name,
			Path:       path,
		})
	}
	return defaultResolve(source, field.Name, args), nil
}

// complete converts a resolved value to its response form. The second result
// reports that a null reached a non-null position and must propagate.
func (ex *execution) complete(ctx context.Context, typ *ast.Type, info fieldInfo, value interface{}, path []interface{}) (interface{}, bool) {
	v, failed := ex.completeValue(ctx, typ, info, value, path)
	if typ.NonNull {
		if failed {
			return nil, true
		}
		if v == nil {
			ex.addError(fmt.Errorf("Cannot return null for non-nullable field %s.%s.", info.parent, info.def.Name), info.nodes[0], path)
			return nil, true
		}
	}
	if failed {
		return nil, false
	}
	return v, false
}

// completeValue completes value against typ ignoring typ's own non-null
// marker. failed means an error was recorded and the value is null.
func (ex *execution) completeValue(ctx context.Context, typ *ast.Type, info fieldInfo, value interface{}, path []interface{}) (interface{}, bool) {
	if isNil(value) {
		return nil, false
	}

	if typ.Elem != nil {
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			ex.addError(fmt.Errorf("expected a list for field %s.%s, got %T", info.parent, info.def.Name, value), info.nodes[0], path)
			return nil, true
		}
		out := make([]interface{}, rv.Len())
		for i := range out {
			item, nulled := ex.complete(ctx, typ.Elem, info, rv.Index(i).Interface(), appendPath(path, i))
			if nulled {
				return nil, true
			}
			out[i] = item
		}
		return out, false
	}

	def := ex.executor.schema.AST().Types[typ.NamedType]
	if def == nil {
		ex.addError(fmt.Errorf("unknown type %q", typ.NamedType), info.nodes[0], path)
		return nil, true
	}

	switch def.Kind {
	case ast.Scalar, ast.Enum:
		v, err := serializeLeaf(def, value)
		if err != nil {
			ex.addError(err, info.nodes[0], path)
			return nil, true
		}
		return v, false

	case ast.Object, ast.Interface, ast.Union:
		objType := def
		if def.Kind != ast.Object {
			objType = ex.runtimeType(def, value)
			if objType == nil {
				ex.addError(fmt.Errorf("could not determine the concrete type of %s", def.Name), info.nodes[0], path)
				return nil, true
			}
		}
		fs := &fieldSet{}
		for _, node := range info.nodes {
			ex.collectFields(objType, node.SelectionSet, fs)
		}
		obj, nulled := ex.executeFields(ctx, objType, value, fs, path)
		if nulled {
			return nil, true
		}
		return obj, false
	}

	ex.addError(fmt.Errorf("type %s cannot be used as an output type", def.Name), info.nodes[0], path)
	return nil, true
}

// typeNamer is implemented by values that know their GraphQL object type.
type typeNamer interface {
	GraphQLTypeName() string
}

func (ex *execution) runtimeType(abstract *ast.Definition, value interface{}) *ast.Definition {
	var name string
	switch v := value.(type) {
	case typeNamer:
		name = v.GraphQLTypeName()
	case map[string]interface{}:
		name, _ = v["__typename"].(string)
	}
	if name == "" {
		return nil
	}
	schema := ex.executor.schema.AST()
	for _, possible := range schema.GetPossibleTypes(abstract) {
		if possible.Name == name {
			return possible
		}
	}
	return nil
}

// coder is implemented by errors that carry a machine-readable code.
type coder interface {
	Code() string
}

type hinter interface {
	Hint() string
}

func (ex *execution) addError(err error, field *ast.Field, path []interface{}) {
	gqlErr := GraphQLError{Message: err.Error()}

	var typed *GraphQLError
	if errors.As(err, &typed) {
		gqlErr = *typed
	} else {
		var c coder
		if errors.As(err, &c) && c.Code() != "" {
			gqlErr.Extensions = map[string]interface{}{"code": c.Code()}
		}
		var h hinter
		if errors.As(err, &h) && h.Hint() != "" {
			if gqlErr.Extensions == nil {
				gqlErr.Extensions = make(map[string]interface{})
			}
			gqlErr.Extensions["hint"] = h.Hint()
		}
	}

	if len(gqlErr.Locations) == 0 && field != nil && field.Position != nil {
		gqlErr.Locations = []GraphQLErrorLocation{{Line: field.Position.Line, Column: field.Position.Column}}
	}
	if len(gqlErr.Path) == 0 {
		gqlErr.Path = path
	}
	ex.errors = append(ex.errors, gqlErr)
}

func appendPath(path []interface{}, segment interface{}) []interface{} {
	out := make([]interface{}, len(path), len(path)+1)
	copy(out, path)
	return append(out, segment)
}

func convertErrorList(list gqlerror.List) []GraphQLError {
	out := make([]GraphQLError, 0, len(list))
	for _, e := range list {
		out = append(out, convertError(e))
	}
	return out
}

func convertError(e *gqlerror.Error) GraphQLError {
	ge := GraphQLError{Message: e.Message, Extensions: e.Extensions}
	for _, loc := range e.Locations {
		ge.Locations = append(ge.Locations, GraphQLErrorLocation{Line: loc.Line, Column: loc.Column})
	}
	return ge
}

func variableError(err error) GraphQLError {
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) {
		return convertError(gqlErr)
	}
	return GraphQLError{Message: err.Error()}
}
