package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/spf13/cobra"

	"github.com/getmockd/registrar/pkg/cli/internal/parse"
	"github.com/getmockd/registrar/pkg/graphql"
)

// queryFlags holds flags for the query command.
type queryFlags struct {
	vars          []string
	variables     string
	operationName string
	selectExpr    string
	headers       []string
	raw           bool
	timeout       time.Duration
}

func newQueryCmd(g *globalFlags) *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query <query | @file | ->",
		Short: "Execute a GraphQL operation against a running server",
		Example: `  # Simple query
  registrar query '{ getAllStudents { id name } }'

  # Variables, one by one or as JSON
  registrar query 'query($id: ID!) { getStudent(id: $id) { name } }' --var id=1
  registrar query @add.graphql --variables '{"name":"Mona","age":23}'

  # Extract values with JSONPath
  registrar query '{ getAllCourses { code } }' --select '$.data.getAllCourses[*].code'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			query, err := readQuery(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			req, err := buildRequest(query, f)
			if err != nil {
				return err
			}
			return runQuery(cmd, cfg.URL, req, f)
		},
	}

	cmd.Flags().String("url", "", "GraphQL endpoint URL (default: http://localhost:<port><path>)")
	cmd.Flags().StringArrayVar(&f.vars, "var", nil, "Variable as name=value; JSON values are decoded (repeatable)")
	cmd.Flags().StringVarP(&f.variables, "variables", "v", "", "JSON object of variables")
	cmd.Flags().StringVarP(&f.operationName, "operation", "o", "", "Operation name for multi-operation documents")
	cmd.Flags().StringVarP(&f.selectExpr, "select", "s", "", "JSONPath applied to the response; prints each match")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "Additional header as key:value (repeatable)")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "Print the response without indentation")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 30*time.Second, "Request timeout")
	return cmd
}

// readQuery resolves the query argument: literal text, @file or - for stdin.
func readQuery(arg string, stdin io.Reader) (string, error) {
	switch {
	case arg == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read query from stdin: %w", err)
		}
		return string(data), nil
	case strings.HasPrefix(arg, "@"):
		data, err := os.ReadFile(arg[1:])
		if err != nil {
			return "", fmt.Errorf("failed to read query file: %w", err)
		}
		return string(data), nil
	}
	return arg, nil
}

// buildRequest merges --variables and --var into one GraphQL request.
// --var wins over a key of the same name in --variables.
func buildRequest(query string, f *queryFlags) (*graphql.GraphQLRequest, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is empty")
	}

	vars := make(map[string]interface{})
	if f.variables != "" {
		if err := json.Unmarshal([]byte(f.variables), &vars); err != nil {
			return nil, fmt.Errorf("invalid variables JSON: %w", err)
		}
	}
	for _, kv := range f.vars {
		name, value, ok := parse.KeyValue(kv, '=')
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q (want name=value)", kv)
		}
		vars[name] = parse.Value(value)
	}

	req := &graphql.GraphQLRequest{Query: query, OperationName: f.operationName}
	if len(vars) > 0 {
		req.Variables = vars
	}
	return req, nil
}

func runQuery(cmd *cobra.Command, endpoint string, gqlReq *graphql.GraphQLRequest, f *queryFlags) error {
	var expr jp.Expr
	if f.selectExpr != "" {
		var err error
		if expr, err = jp.ParseString(f.selectExpr); err != nil {
			return fmt.Errorf("invalid --select expression: %w", err)
		}
	}

	body, err := json.Marshal(gqlReq)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range parse.Headers(f.headers) {
		req.Header.Set(key, value)
	}

	client := &http.Client{Timeout: f.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	out := cmd.OutOrStdout()
	var decoded map[string]interface{}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		fmt.Fprintln(out, string(respBody))
		return fmt.Errorf("server returned %s with a non-JSON body", resp.Status)
	}

	if expr != nil {
		for _, match := range expr.Get(decoded) {
			if err := printValue(out, match); err != nil {
				return err
			}
		}
	} else if err := printJSON(out, respBody, f.raw); err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	if errs, _ := decoded["errors"].([]interface{}); len(errs) > 0 {
		return fmt.Errorf("query returned %d error(s)", len(errs))
	}
	return nil
}

func printJSON(w io.Writer, data []byte, raw bool) error {
	var buf bytes.Buffer
	var err error
	if raw {
		err = json.Compact(&buf, data)
	} else {
		err = json.Indent(&buf, data, "", "  ")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, buf.String())
	return err
}

// printValue prints strings bare and everything else as JSON.
func printValue(w io.Writer, v interface{}) error {
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
