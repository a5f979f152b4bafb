package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
)

const handlerTestSchema = `
type Query {
	user(id: ID!): User
	users: [User!]!
}

type Mutation {
	createUser(name: String!, email: String!): User
}

type User {
	id: ID!
	name: String!
	email: String!
}
`

type recordedRequest struct {
	opType string
	opName string
	status int
	errors int
}

type fakeRecorder struct {
	mu   sync.Mutex
	seen []recordedRequest
}

func (f *fakeRecorder) ObserveRequest(opType, opName string, status, errorCount int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, recordedRequest{opType, opName, status, errorCount})
}

func newTestHandler(t *testing.T, opts ...HandlerOption) *Handler {
	t.Helper()

	schema, err := ParseSchema(handlerTestSchema)
	if err != nil {
		t.Fatalf("ParseSchema() error = %v", err)
	}
	exec := NewExecutor(schema, &Config{Introspection: true})

	users := map[string]map[string]interface{}{
		"1": {"id": "1", "name": "User 1", "email": "user1@example.com"},
		"2": {"id": "2", "name": "User 2", "email": "user2@example.com"},
	}
	mustRegister(t, exec, "Query.user", func(_ context.Context, p ResolveParams) (interface{}, error) {
		if u, ok := users[p.Args["id"].(string)]; ok {
			return u, nil
		}
		return nil, nil
	})
	mustRegister(t, exec, "Query.users", func(_ context.Context, _ ResolveParams) (interface{}, error) {
		return []interface{}{users["1"], users["2"]}, nil
	})
	mustRegister(t, exec, "Mutation.createUser", func(_ context.Context, p ResolveParams) (interface{}, error) {
		return map[string]interface{}{"id": "new-123", "name": p.Args["name"], "email": p.Args["email"]}, nil
	})

	return NewHandler(exec, opts...)
}

func mustRegister(t *testing.T, exec *Executor, path string, fn FieldResolveFn) {
	t.Helper()
	if err := exec.Register(path, fn); err != nil {
		t.Fatalf("Register(%q) error = %v", path, err)
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) GraphQLResponse {
	t.Helper()
	var resp GraphQLResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestHandler_ServeHTTP_POST_JSON(t *testing.T) {
	handler := newTestHandler(t)

	body, _ := json.Marshal(GraphQLRequest{
		Query:     `query GetUser($id: ID!) { user(id: $id) { id name email } }`,
		Variables: map[string]interface{}{"id": "1"},
	})
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	resp := decodeResponse(t, rec)
	if len(resp.Errors) > 0 {
		t.Fatalf("Errors = %v", resp.Errors)
	}
	user := resp.Data.(map[string]interface{})["user"].(map[string]interface{})
	if user["name"] != "User 1" || user["email"] != "user1@example.com" {
		t.Errorf("user = %v", user)
	}
}

func TestHandler_ServeHTTP_POST_GraphQL(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{ users { id } }`))
	req.Header.Set("Content-Type", "application/graphql")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	users := resp.Data.(map[string]interface{})["users"].([]interface{})
	if len(users) != 2 {
		t.Errorf("users = %v", users)
	}
}

func TestHandler_ServeHTTP_GET(t *testing.T) {
	handler := newTestHandler(t)

	params := url.Values{}
	params.Set("query", `query Q($id: ID!) { user(id: $id) { name } }`)
	params.Set("variables", `{"id":"2"}`)
	req := httptest.NewRequest(http.MethodGet, "/graphql?"+params.Encode(), nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	user := resp.Data.(map[string]interface{})["user"].(map[string]interface{})
	if user["name"] != "User 2" {
		t.Errorf("name = %v", user["name"])
	}
}

func TestHandler_ServeHTTP_GET_RejectsMutation(t *testing.T) {
	handler := newTestHandler(t)

	params := url.Values{}
	params.Set("query", `mutation { createUser(name: "x", email: "y") { id } }`)
	req := httptest.NewRequest(http.MethodGet, "/graphql?"+params.Encode(), nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandler_ServeHTTP_GET_RejectsHiddenMutations(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		operationName string
	}{
		{
			name:  "leading comment",
			query: "# create one\nmutation { createUser(name: \"x\", email: \"y\") { id name } }",
		},
		{
			name:  "leading whitespace and comment lines",
			query: "\n  # a\n  # b\n  mutation M { createUser(name: \"x\", email: \"y\") { id } }",
		},
		{
			name:          "selected from a multi-operation document",
			query:         `query Read { users { id } } mutation Write { createUser(name: "x", email: "y") { id } }`,
			operationName: "Write",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created := 0
			recorder := &fakeRecorder{}
			handler := newTestHandler(t, WithRecorder(recorder))
			mustRegister(t, handler.executor, "Mutation.createUser", func(_ context.Context, _ ResolveParams) (interface{}, error) {
				created++
				return map[string]interface{}{"id": "new-123", "name": "x", "email": "y"}, nil
			})

			params := url.Values{}
			params.Set("query", tt.query)
			if tt.operationName != "" {
				params.Set("operationName", tt.operationName)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql?"+params.Encode(), nil))

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, http.StatusMethodNotAllowed, rec.Body.String())
			}
			if created != 0 {
				t.Errorf("mutation resolver ran %d times", created)
			}
			if got := rec.Header().Get("Allow"); got != "POST" {
				t.Errorf("Allow = %q, want POST", got)
			}
			resp := decodeResponse(t, rec)
			if len(resp.Errors) != 1 || resp.Errors[0].Message != "mutation operations must use POST" {
				t.Errorf("Errors = %v", resp.Errors)
			}
			if len(recorder.seen) != 1 || recorder.seen[0].opType != "mutation" {
				t.Errorf("recorded = %+v", recorder.seen)
			}
		})
	}
}

func TestHandler_ServeHTTP_GET_QueryFromMultiOperationDocument(t *testing.T) {
	handler := newTestHandler(t)

	params := url.Values{}
	params.Set("query", `query Read { user(id: "1") { name } } mutation Write { createUser(name: "x", email: "y") { id } }`)
	params.Set("operationName", "Read")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql?"+params.Encode(), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if want := `{"data":{"user":{"name":"User 1"}}}`; strings.TrimSpace(rec.Body.String()) != want {
		t.Errorf("body = %s, want %s", rec.Body.String(), want)
	}
}

func TestHandler_ServeHTTP_FieldOrder(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{ user(id: "1") { name id email } }`))
	req.Header.Set("Content-Type", "application/graphql")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	want := `{"data":{"user":{"name":"User 1","id":"1","email":"user1@example.com"}}}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("body = %s\nwant   %s", got, want)
	}
}

func TestHandler_ServeHTTP_GET_Errors(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name    string
		rawURL  string
		wantMsg string
	}{
		{"missing query", "/graphql", "missing query parameter"},
		{"invalid variables", "/graphql?query=%7Busers%7Bid%7D%7D&variables=not-json", "invalid variables JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.rawURL, nil))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			resp := decodeResponse(t, rec)
			if len(resp.Errors) != 1 || resp.Errors[0].Message != tt.wantMsg {
				t.Errorf("Errors = %v", resp.Errors)
			}
		})
	}
}

func TestHandler_ServeHTTP_OPTIONS(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/graphql", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHandler_ServeHTTP_MethodNotAllowed(t *testing.T) {
	recorder := &fakeRecorder{}
	handler := newTestHandler(t, WithRecorder(recorder))

	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(method, "/graphql", nil))

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
			}
			if allow := rec.Header().Get("Allow"); allow == "" {
				t.Error("Allow header not set")
			}
		})
	}

	if len(recorder.seen) != 3 || recorder.seen[0].opType != "unknown" || recorder.seen[0].status != http.StatusMethodNotAllowed {
		t.Errorf("recorded = %+v", recorder.seen)
	}
}

func TestHandler_ServeHTTP_BadBodies(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"empty", "", "empty request body"},
		{"whitespace", "   \n", "empty request body"},
		{"invalid json", "{not json", "invalid JSON request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			resp := decodeResponse(t, rec)
			if len(resp.Errors) != 1 || resp.Errors[0].Message != tt.wantMsg {
				t.Errorf("Errors = %v", resp.Errors)
			}
		})
	}
}

func TestHandler_ServeHTTP_BodyTooLarge(t *testing.T) {
	handler := newTestHandler(t)

	big := `{"query":"` + strings.Repeat(" ", MaxRequestBodySize) + `{ users { id } }"}`
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestHandler_ServeHTTP_GraphQLErrorsAre200(t *testing.T) {
	handler := newTestHandler(t)

	body, _ := json.Marshal(GraphQLRequest{Query: `{ user(id: "1") { nope } }`})
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if len(resp.Errors) == 0 {
		t.Error("expected validation errors")
	}
	if resp.Data != nil {
		t.Errorf("Data = %v, want omitted", resp.Data)
	}
}

func TestHandler_ServeHTTP_Mutation(t *testing.T) {
	recorder := &fakeRecorder{}
	handler := newTestHandler(t, WithRecorder(recorder))

	body, _ := json.Marshal(GraphQLRequest{
		Query:         `mutation Create($name: String!) { createUser(name: $name, email: "n@example.com") { id name } }`,
		OperationName: "Create",
		Variables:     map[string]interface{}{"name": "New User"},
	})
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	resp := decodeResponse(t, rec)
	created := resp.Data.(map[string]interface{})["createUser"].(map[string]interface{})
	if created["id"] != "new-123" || created["name"] != "New User" {
		t.Errorf("createUser = %v", created)
	}

	want := recordedRequest{opType: "mutation", opName: "Create", status: http.StatusOK, errors: 0}
	if len(recorder.seen) != 1 || recorder.seen[0] != want {
		t.Errorf("recorded = %+v, want %+v", recorder.seen, want)
	}
}

func TestHandler_RequestID(t *testing.T) {
	handler := newTestHandler(t)

	t.Run("echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ users { id } }"}`))
		req.Header.Set(RequestIDHeader, "trace-abc")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get(RequestIDHeader); got != "trace-abc" {
			t.Errorf("%s = %q", RequestIDHeader, got)
		}
	})

	t.Run("generated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ users { id } }"}`))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get(RequestIDHeader); len(got) != 36 {
			t.Errorf("%s = %q, want a UUID", RequestIDHeader, got)
		}
	})
}

func TestHandler_Pattern(t *testing.T) {
	handler := newTestHandler(t)
	if got := handler.Pattern(); got != DefaultPath {
		t.Errorf("Pattern() = %q, want %q", got, DefaultPath)
	}
}
