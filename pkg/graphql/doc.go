// Package graphql provides GraphQL schema parsing, execution and HTTP serving
// for the registrar API.
//
// Schemas and queries are parsed and validated with gqlparser. The Executor
// walks the validated document itself: it collects fields through fragments
// and @skip/@include, calls the resolver registered for "Type.field" (or reads
// the field from the parent value), and completes results against the schema
// types, propagating nulls from non-null positions to the nearest nullable
// parent.
//
// Basic usage:
//
//	schema, err := graphql.ParseSchema(`
//	    type Query {
//	        getStudent(id: ID!): Student
//	    }
//	    type Student {
//	        id: ID!
//	        name: String!
//	    }
//	`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	exec := graphql.NewExecutor(schema, &graphql.Config{Introspection: true})
//	_ = exec.Register("Query.getStudent", func(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
//	    return map[string]interface{}{"id": p.Args["id"], "name": "Ahmed Hassan"}, nil
//	})
//
//	http.Handle("/graphql", graphql.NewHandler(exec))
//
// Field values returned by resolvers may be maps, structs (read through their
// json tags) or thunks of type func() interface{} and
// func(map[string]interface{}) interface{}, which are only called when the
// field is selected.
//
// Result objects are *Object values that serialize their fields in
// selection order. The HTTP handler only runs queries for GET requests; the
// operation type is taken from the parsed document.
//
// Subscriptions are not supported.
package graphql
