package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/registrar/pkg/cliconfig"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// globalFlags holds persistent flags shared by every subcommand.
type globalFlags struct {
	configFile string
	jsonOutput bool
}

// NewRootCommand builds the registrar command tree.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "registrar",
		Short: "registrar serves a GraphQL API over students and courses",
		Long: `registrar is a small GraphQL service that keeps students, courses and
their enrollments in memory.

Configuration can be provided via flags, REGISTRAR_* environment variables,
a local .registrarrc.yaml or the global ~/.config/registrar/config.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&g.configFile, "config", "c", "", "Config file (replaces .registrarrc.yaml lookup)")
	rootCmd.PersistentFlags().BoolVar(&g.jsonOutput, "json", false, "Output command results in JSON format")

	rootCmd.AddCommand(
		newServeCmd(g),
		newQueryCmd(g),
		newSchemaCmd(g),
		newValidateSeedCmd(g),
		newInitSeedCmd(),
		newConfigCmd(g),
		newVersionCmd(g),
	)
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves configuration from files and env, then applies the
// flags the user actually set on cmd.
func loadConfig(cmd *cobra.Command, g *globalFlags) (*cliconfig.CLIConfig, error) {
	cfg, err := cliconfig.LoadAll(g.configFile)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
