package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/getmockd/registrar/pkg/cli/internal/output"
	"github.com/getmockd/registrar/pkg/resolver"
)

// SchemaSummary is the JSON form of `registrar schema --summary`.
type SchemaSummary struct {
	Types     []string `json:"types"`
	Queries   []string `json:"queries"`
	Mutations []string `json:"mutations"`
}

func newSchemaCmd(g *globalFlags) *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the GraphQL schema (SDL)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if !summary {
				_, err := fmt.Fprint(out, resolver.SDL)
				return err
			}

			schema, err := resolver.Schema()
			if err != nil {
				return err
			}
			s := SchemaSummary{
				Types:     schema.ListTypes(ast.Object),
				Queries:   schema.ListQueries(),
				Mutations: schema.ListMutations(),
			}
			if g.jsonOutput {
				return output.JSON(out, s)
			}
			fmt.Fprintf(out, "Types (%d): %s\n", len(s.Types), strings.Join(s.Types, ", "))
			fmt.Fprintf(out, "Queries (%d): %s\n", len(s.Queries), strings.Join(s.Queries, ", "))
			fmt.Fprintf(out, "Mutations (%d): %s\n", len(s.Mutations), strings.Join(s.Mutations, ", "))
			return nil
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "List types and root fields instead of printing SDL")
	return cmd
}
