package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/registrar/pkg/cli/internal/output"
	"github.com/getmockd/registrar/pkg/cliconfig"
)

// ConfigEntry is one row of `registrar config`.
type ConfigEntry struct {
	Key    string      `json:"key"`
	Value  interface{} `json:"value"`
	Source string      `json:"source"`
}

// ConfigOutput is the JSON form of `registrar config`.
type ConfigOutput struct {
	ConfigFile string        `json:"configFile,omitempty"`
	Entries    []ConfigEntry `json:"entries"`
}

func newConfigCmd(g *globalFlags) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration and where each value came from",
		Long: `Show the configuration after merging defaults, the global config file,
the local .registrarrc.yaml (or --config), and REGISTRAR_* environment variables.`,
		Example: `  registrar config
  registrar config --json
  registrar config --yaml > .registrarrc.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if asYAML {
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("failed to marshal config: %w", err)
				}
				_, err = out.Write(data)
				return err
			}

			result := ConfigOutput{ConfigFile: cfg.ConfigFile, Entries: configEntries(cfg)}
			if g.jsonOutput {
				return output.JSON(out, result)
			}

			if cfg.ConfigFile != "" {
				fmt.Fprintf(out, "Config file: %s\n\n", cfg.ConfigFile)
			}
			w := output.Table(out)
			fmt.Fprintln(w, "KEY\tVALUE\tSOURCE")
			for _, e := range result.Entries {
				fmt.Fprintf(w, "%s\t%v\t%s\n", e.Key, e.Value, e.Source)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the merged configuration as a YAML config file")
	return cmd
}

func configEntries(cfg *cliconfig.CLIConfig) []ConfigEntry {
	values := map[string]interface{}{
		"host":                cfg.Host,
		"port":                cfg.Port,
		"path":                cfg.Path,
		"readTimeout":         cfg.ReadTimeout,
		"writeTimeout":        cfg.WriteTimeout,
		"playground":          cfg.Playground,
		"metrics":             cfg.Metrics,
		"introspection":       cfg.Introspection,
		"seedFile":            cfg.SeedFile,
		"idPolicy":            cfg.IDPolicy,
		"cascadeCourseDelete": cfg.CascadeCourseDelete,
		"logLevel":            cfg.LogLevel,
		"logFormat":           cfg.LogFormat,
		"logFile":             cfg.LogFile,
		"url":                 cfg.URL,
	}
	entries := make([]ConfigEntry, 0, len(cliconfig.Keys))
	for _, key := range cliconfig.Keys {
		source := cfg.Sources[key]
		if source == "" {
			source = cliconfig.SourceDefault
		}
		entries = append(entries, ConfigEntry{Key: key, Value: values[key], Source: source})
	}
	return entries
}
